package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
)

type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return apperrors.Internal("creating notification", err)
	}
	return nil
}

// ListForRecipient returns the user's notifications, newest first.
func (s *NotificationStore) ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	var ns []models.Notification
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&ns).Error
	if err != nil {
		return nil, apperrors.Internal("listing notifications", err)
	}
	return ns, nil
}

// MarkAllRead marks every unread notification of the recipient read and
// returns how many transitioned.
func (s *NotificationStore) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, apperrors.Internal("marking notifications read", res.Error)
	}
	return res.RowsAffected, nil
}

// MarkRead marks the recipient's notification read. Reports whether a row
// matched, so callers can 404 on someone else's notification without a
// separate ownership query.
func (s *NotificationStore) MarkRead(ctx context.Context, id, recipientID string) (*models.Notification, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return nil, apperrors.Internal("marking notification read", res.Error)
	}

	var n models.Notification
	err := s.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Notification not found")
	}
	if err != nil {
		return nil, apperrors.Internal("fetching notification", err)
	}
	return &n, nil
}
