package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "checkin_lock:"

// ScanLock serializes concurrent scans of the same registration.
type ScanLock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewScanLock(client *redis.Client, ttl time.Duration) *ScanLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &ScanLock{Client: client, TTL: ttl}
}

// Acquire takes the lock for registrationID on behalf of owner. It reports false when someone else holds it.
func (l *ScanLock) Acquire(ctx context.Context, registrationID, owner string) (bool, error) {
	ok, err := l.Client.SetNX(ctx, keyPrefix+registrationID, owner, l.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire scan lock for %s: %w", registrationID, err)
	}
	return ok, nil
}

// Release drops the lock only if owner still holds it.
func (l *ScanLock) Release(ctx context.Context, registrationID, owner string) error {
	key := keyPrefix + registrationID
	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // expired already
	}
	if err != nil {
		return err
	}
	if val == owner {
		return l.Client.Del(ctx, key).Err()
	}
	return nil
}

// IsLocked reports whether a scan of registrationID is in flight.
func (l *ScanLock) IsLocked(ctx context.Context, registrationID string) (bool, error) {
	n, err := l.Client.Exists(ctx, keyPrefix+registrationID).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
