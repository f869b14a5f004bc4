package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID               string    `bun:"id,pk" json:"id"`
	Title            string    `bun:"title,notnull" json:"title"`
	Description      string    `bun:"description" json:"description"`
	Location         string    `bun:"location" json:"location"`
	Category         string    `bun:"category" json:"category"`
	ImageURL         string    `bun:"image_url" json:"image_url"`
	StartsAt         time.Time `bun:"starts_at,notnull" json:"starts_at"`
	EndsAt           time.Time `bun:"ends_at,notnull" json:"ends_at"`
	Capacity         int       `bun:"capacity,notnull" json:"capacity"`
	RegistrationOpen bool      `bun:"registration_open,notnull" json:"registration_open"`
	CreatedBy        string    `bun:"created_by" json:"created_by"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

// HasEnded reports whether the event is over at now.
func (e *Event) HasEnded(now time.Time) bool {
	return !e.EndsAt.IsZero() && now.After(e.EndsAt)
}

// IsFull reports whether registered already fills the event. Capacity 0 means unlimited.
func (e *Event) IsFull(registered int) bool {
	return e.Capacity > 0 && registered >= e.Capacity
}

// EventInput is the admin create/update payload.
type EventInput struct {
	Title            string    `json:"title" validate:"required,min=3,max=200"`
	Description      string    `json:"description" validate:"max=10000"`
	Location         string    `json:"location" validate:"max=200"`
	Category         string    `json:"category" validate:"max=50"`
	ImageURL         string    `json:"image_url" validate:"omitempty,url"`
	StartsAt         time.Time `json:"starts_at" validate:"required"`
	EndsAt           time.Time `json:"ends_at" validate:"required,gtefield=StartsAt"`
	Capacity         int       `json:"capacity" validate:"min=0"`
	RegistrationOpen *bool     `json:"registration_open"`
}

// EventFilter narrows event listings.
type EventFilter struct {
	Upcoming bool
	Past     bool
	Category string
	Limit    int
}
