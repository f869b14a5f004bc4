package utils

import (
	"time"
)

// UnixTimeToTime converts Unix seconds to UTC. Non-positive input yields the zero time
// so a missing timestamp stays distinguishable from the epoch.
func UnixTimeToTime(unixTime int64) time.Time {
	if unixTime <= 0 {
		return time.Time{}
	}
	return time.Unix(unixTime, 0).UTC()
}
