package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Project struct {
	bun.BaseModel `bun:"table:projects"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description"`
	ImageURL    string    `bun:"image_url" json:"image_url"`
	RepoURL     string    `bun:"repo_url" json:"repo_url"`
	DemoURL     string    `bun:"demo_url" json:"demo_url"`
	Tags        []string  `bun:"tags" json:"tags"`
	Featured    bool      `bun:"featured,notnull" json:"featured"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

type ProjectInput struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Description string   `json:"description" validate:"max=10000"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	RepoURL     string   `json:"repo_url" validate:"omitempty,url"`
	DemoURL     string   `json:"demo_url" validate:"omitempty,url"`
	Tags        []string `json:"tags" validate:"max=20,dive,min=1,max=40"`
	Featured    bool     `json:"featured"`
}
