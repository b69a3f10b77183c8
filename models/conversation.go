package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dojosgithub/the-minaret/apperrors"
)

// Conversation tracks the metadata of a two-user message thread. The
// participant pair is stored in canonical order (lexicographic) so that
// (A,B) and (B,A) map to the same row; the composite unique index is what
// guarantees at most one conversation per pair.
type Conversation struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ParticipantLo string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_conversations_pair,priority:1" json:"-"`
	ParticipantHi string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_conversations_pair,priority:2" json:"-"`
	LastMessageID string    `gorm:"type:varchar(36)" json:"last_message_id,omitempty"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
	UnreadCount   int64     `gorm:"not null;default:0" json:"unread_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CanonicalPair normalizes two user ids into their canonical storage order.
// Every registry lookup and insert goes through this; it replaces the
// persistence-hook sorting the data model otherwise relies on.
func CanonicalPair(a, b string) (lo, hi string, err error) {
	if !IsValidUserRef(a) || !IsValidUserRef(b) {
		return "", "", apperrors.InvalidArgument("invalid user reference")
	}
	if a == b {
		return "", "", apperrors.InvalidArgument("conversation requires two distinct participants")
	}
	if strings.Compare(a, b) < 0 {
		return a, b, nil
	}
	return b, a, nil
}

// IsValidUserRef reports whether id is syntactically a user reference.
func IsValidUserRef(id string) bool {
	return uuid.Validate(id) == nil
}

func (c *Conversation) Participants() [2]string {
	return [2]string{c.ParticipantLo, c.ParticipantHi}
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantLo == userID || c.ParticipantHi == userID
}

// OtherParticipant returns the participant that is not userID. ok is false
// when userID is not part of the conversation at all.
func (c *Conversation) OtherParticipant(userID string) (string, bool) {
	switch userID {
	case c.ParticipantLo:
		return c.ParticipantHi, true
	case c.ParticipantHi:
		return c.ParticipantLo, true
	default:
		return "", false
	}
}
