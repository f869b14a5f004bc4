package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SocialLink struct {
	bun.BaseModel `bun:"table:social_links"`

	ID        string    `bun:"id,pk" json:"id"`
	Platform  string    `bun:"platform,notnull" json:"platform"`
	URL       string    `bun:"url,notnull" json:"url"`
	Position  int       `bun:"position,notnull" json:"position"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type SocialLinkInput struct {
	Platform string `json:"platform" validate:"required,max=40"`
	URL      string `json:"url" validate:"required,url"`
	Position int    `json:"position" validate:"min=0"`
}
