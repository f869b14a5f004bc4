package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Poll struct {
	bun.BaseModel `bun:"table:polls"`

	ID        string    `bun:"id,pk" json:"id"`
	Question  string    `bun:"question,notnull" json:"question"`
	Active    bool      `bun:"active,notnull" json:"active"`
	ClosesAt  time.Time `bun:"closes_at,nullzero" json:"closes_at,omitempty"`
	CreatedBy string    `bun:"created_by" json:"created_by"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Options []*PollOption `bun:"rel:has-many,join:id=poll_id" json:"options"`
}

// IsOpen reports whether votes are accepted at now.
func (p *Poll) IsOpen(now time.Time) bool {
	return p.Active && (p.ClosesAt.IsZero() || now.Before(p.ClosesAt))
}

type PollOption struct {
	bun.BaseModel `bun:"table:poll_options"`

	ID       string `bun:"id,pk" json:"id"`
	PollID   string `bun:"poll_id,notnull" json:"poll_id"`
	Label    string `bun:"label,notnull" json:"label"`
	Position int    `bun:"position,notnull" json:"position"`
	Votes    int    `bun:"votes,scanonly" json:"votes"`
}

type PollVote struct {
	bun.BaseModel `bun:"table:poll_votes"`

	PollID    string    `bun:"poll_id,pk" json:"poll_id"`
	UserID    string    `bun:"user_id,pk" json:"user_id"`
	OptionID  string    `bun:"option_id,notnull" json:"option_id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type PollInput struct {
	Question string    `json:"question" validate:"required,min=5,max=300"`
	Options  []string  `json:"options" validate:"required,min=2,max=10,dive,required,max=120"`
	ClosesAt time.Time `json:"closes_at"`
}

type PollUpdate struct {
	Question *string    `json:"question" validate:"omitempty,min=5,max=300"`
	Active   *bool      `json:"active"`
	ClosesAt *time.Time `json:"closes_at"`
}

type VoteRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}
