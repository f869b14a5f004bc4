package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	InternshipSourceManual    = "manual"
	InternshipSourceRemotive  = "remotive"
	InternshipSourceArbeitnow = "arbeitnow"
)

// Internship rows are unique on (source, external_id) so job-board syncs can upsert.
type Internship struct {
	bun.BaseModel `bun:"table:internships"`

	ID          string    `bun:"id,pk" json:"id"`
	Source      string    `bun:"source,notnull" json:"source"`
	ExternalID  string    `bun:"external_id,notnull" json:"external_id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Company     string    `bun:"company" json:"company"`
	Location    string    `bun:"location" json:"location"`
	URL         string    `bun:"url" json:"url"`
	Description string    `bun:"description" json:"description"`
	Tags        []string  `bun:"tags" json:"tags"`
	Remote      bool      `bun:"remote,notnull" json:"remote"`
	PostedAt    time.Time `bun:"posted_at,nullzero" json:"posted_at,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

type InternshipInput struct {
	Title       string    `json:"title" validate:"required,min=2,max=200"`
	Company     string    `json:"company" validate:"required,max=200"`
	Location    string    `json:"location" validate:"max=200"`
	URL         string    `json:"url" validate:"omitempty,url"`
	Description string    `json:"description" validate:"max=20000"`
	Tags        []string  `json:"tags" validate:"max=20,dive,min=1,max=40"`
	Remote      bool      `json:"remote"`
	PostedAt    time.Time `json:"posted_at"`
}

type InternshipFilter struct {
	Query  string
	Source string
	Limit  int
}
