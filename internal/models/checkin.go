package models

import "time"

// CheckinRequest is what a scanner submits.
type CheckinRequest struct {
	Code    string `json:"code" validate:"required,max=2048"`
	EventID string `json:"event_id" validate:"omitempty,max=64"`
}

// CheckinResult describes the outcome of a scan. AlreadyCheckedIn scans carry the
// original timestamp and leave the registration untouched.
type CheckinResult struct {
	RegistrationID   string    `json:"registration_id"`
	EventID          string    `json:"event_id"`
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	TicketCode       string    `json:"ticket_code"`
	MatchedBy        string    `json:"matched_by"`
	AlreadyCheckedIn bool      `json:"already_checked_in"`
	CheckedInAt      time.Time `json:"checked_in_at"`
}

// CheckinEvent is published to Kafka and streamed to dashboards.
type CheckinEvent struct {
	RegistrationID string    `json:"registration_id"`
	EventID        string    `json:"event_id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	ScannerID      string    `json:"scanner_id"`
	CheckedInAt    time.Time `json:"checked_in_at"`
}
