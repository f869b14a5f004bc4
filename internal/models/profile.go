package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleAdmin   = "admin"
	RoleScanner = "scanner"
)

type Profile struct {
	bun.BaseModel `bun:"table:profiles"`

	UserID     string    `bun:"user_id,pk" json:"user_id"`
	FullName   string    `bun:"full_name" json:"full_name"`
	Email      string    `bun:"email" json:"email"`
	Department string    `bun:"department" json:"department"`
	Year       int       `bun:"year,notnull" json:"year"`
	AvatarURL  string    `bun:"avatar_url" json:"avatar_url"`
	Bio        string    `bun:"bio" json:"bio"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

type ProfileUpdate struct {
	FullName   string `json:"full_name" validate:"required,min=2,max=100"`
	Department string `json:"department" validate:"max=100"`
	Year       int    `json:"year" validate:"min=0,max=8"`
	AvatarURL  string `json:"avatar_url" validate:"omitempty,url"`
	Bio        string `json:"bio" validate:"max=1000"`
}

type UserRole struct {
	bun.BaseModel `bun:"table:user_roles"`

	UserID    string    `bun:"user_id,pk" json:"user_id"`
	Role      string    `bun:"role,pk" json:"role"`
	GrantedBy string    `bun:"granted_by" json:"granted_by"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type RoleGrant struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=admin scanner"`
}

// Claims are the identity fields taken from a verified bearer token.
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}
