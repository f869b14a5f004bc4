package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RegistrationStatusRegistered = "registered"
	RegistrationStatusCancelled  = "cancelled"
)

// Registration is a user's RSVP for an event, and carries its check-in state.
type Registration struct {
	bun.BaseModel `bun:"table:event_registrations"`

	ID          string    `bun:"id,pk" json:"id"`
	EventID     string    `bun:"event_id,notnull" json:"event_id"`
	UserID      string    `bun:"user_id,notnull" json:"user_id"`
	Name        string    `bun:"name" json:"name"`
	Email       string    `bun:"email" json:"email"`
	TicketCode  string    `bun:"ticket_code,notnull,unique" json:"ticket_code"`
	Status      string    `bun:"status,notnull" json:"status"`
	CheckedInAt time.Time `bun:"checked_in_at,nullzero" json:"checked_in_at,omitempty"`
	CheckedInBy string    `bun:"checked_in_by,nullzero" json:"checked_in_by,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at"`

	Event *Event `bun:"rel:belongs-to,join:event_id=id" json:"event,omitempty"`
}

func (r *Registration) IsCheckedIn() bool {
	return !r.CheckedInAt.IsZero()
}

func (r *Registration) IsActive() bool {
	return r.Status == RegistrationStatusRegistered
}

// RegistrationEvent is the payload published to Kafka for registration changes.
type RegistrationEvent struct {
	RegistrationID string    `json:"registration_id"`
	EventID        string    `json:"event_id"`
	UserID         string    `json:"user_id"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}
