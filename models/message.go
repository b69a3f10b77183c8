package models

import "time"

const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// MediaRef points at an already-uploaded media object. Storage of the bytes
// is someone else's job; messages only carry references.
type MediaRef struct {
	Kind string `json:"type"`
	URL  string `json:"url"`
}

// Message is an immutable per-message record. Only IsRead ever changes after
// the append, and it transitions false to true exactly once.
type Message struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SenderID    string     `gorm:"type:varchar(36);not null;index:idx_messages_pair,priority:1" json:"sender_id"`
	RecipientID string     `gorm:"type:varchar(36);not null;index:idx_messages_pair,priority:2" json:"recipient_id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Media       []MediaRef `gorm:"serializer:json" json:"media,omitempty"`
	PostID      string     `gorm:"type:varchar(36)" json:"post_id,omitempty"`
	IsRead      bool       `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time  `gorm:"index:idx_messages_pair,priority:3" json:"created_at"`

	// Presentation-only enrichment, populated by the messaging service.
	ConversationID string       `gorm:"-" json:"conversation_id,omitempty"`
	Sender         *UserSummary `gorm:"-" json:"sender,omitempty"`
	Recipient      *UserSummary `gorm:"-" json:"recipient,omitempty"`
	Post           *PostSummary `gorm:"-" json:"post,omitempty"`
}

// ValidMediaKind reports whether kind is one of the accepted media kinds.
func ValidMediaKind(kind string) bool {
	return kind == MediaKindImage || kind == MediaKindVideo
}
