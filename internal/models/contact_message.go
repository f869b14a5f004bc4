package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ContactMessage struct {
	bun.BaseModel `bun:"table:contact_messages"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	Subject   string    `bun:"subject" json:"subject"`
	Message   string    `bun:"message,notnull" json:"message"`
	Read      bool      `bun:"read,notnull" json:"read"`
	RelayedAt time.Time `bun:"relayed_at,nullzero" json:"relayed_at,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// ContactInput is the public contact form. Messages shorter than 10 characters are rejected.
type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}
