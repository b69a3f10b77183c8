package models

import "time"

// LinkRef is an external link attached to a post.
type LinkRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Post struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AuthorID  string     `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Type      string     `gorm:"type:varchar(32);not null" json:"type"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	Media     []MediaRef `gorm:"serializer:json" json:"media,omitempty"`
	Links     []LinkRef  `gorm:"serializer:json" json:"links,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Author *UserSummary `gorm:"-" json:"author,omitempty"`
}

// PostSummary is what gets attached to a message that shares a post.
type PostSummary struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
}

func (p *Post) Summary() *PostSummary {
	return &PostSummary{ID: p.ID, AuthorID: p.AuthorID, Type: p.Type, Title: p.Title}
}
