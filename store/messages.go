package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
)

// MessageStore owns the append-only message records. It carries no aggregate
// state; that belongs to the ConversationStore.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append persists a new message. Messages are immutable once appended apart
// from the read flag.
func (s *MessageStore) Append(ctx context.Context, msg *models.Message) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return apperrors.Internal("appending message", err)
	}
	return nil
}

// GetByID returns the message, or nil when absent.
func (s *MessageStore) GetByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetching message", err)
	}
	return &msg, nil
}

// ListBetween returns every message exchanged between the two users, both
// directions, oldest first.
func (s *MessageStore) ListBetween(ctx context.Context, u1, u2 string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", u1, u2, u2, u1).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, apperrors.Internal("listing messages", err)
	}
	return msgs, nil
}

// MarkRead flips the read flag. The WHERE clause makes the transition happen
// at most once; the return value reports whether this call was the one that
// performed it, so the caller knows whether to touch the unread counter.
func (s *MessageStore) MarkRead(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true)
	if res.Error != nil {
		return false, apperrors.Internal("marking message read", res.Error)
	}
	return res.RowsAffected == 1, nil
}
