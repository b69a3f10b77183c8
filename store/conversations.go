// Package store contains the gorm-backed persistence layer. Each store is
// constructed with an explicit *gorm.DB handle and injected into the services
// that need it.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
)

// getOrCreateAttempts bounds the insert/read-back loop. A retry only happens
// when the conflicting row is not yet visible to the read-back, which resolves
// within one round trip.
const getOrCreateAttempts = 3

// ConversationStore is the single source of truth for the participant-pair to
// conversation mapping. All uniqueness and counter updates happen inside the
// database so that concurrent requests, including requests served by other
// processes, cannot interleave badly.
type ConversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// FindByParticipants returns the conversation for the pair, or nil when none
// exists. It never creates one.
func (s *ConversationStore) FindByParticipants(ctx context.Context, u1, u2 string) (*models.Conversation, error) {
	lo, hi, err := models.CanonicalPair(u1, u2)
	if err != nil {
		return nil, err
	}
	return s.findPair(ctx, lo, hi)
}

func (s *ConversationStore) findPair(ctx context.Context, lo, hi string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where("participant_lo = ? AND participant_hi = ?", lo, hi).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetching conversation", err)
	}
	return &conv, nil
}

// GetByID returns the conversation with the given id, or nil when absent.
func (s *ConversationStore) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetching conversation", err)
	}
	return &conv, nil
}

// GetOrCreate returns the conversation for the pair, creating it when absent.
// The insert is an ON CONFLICT DO NOTHING against the unique pair index, so
// when two sends race only one row is ever created; the loser reads the
// winner's row back. A plain find-then-insert would reintroduce the race this
// store exists to close.
func (s *ConversationStore) GetOrCreate(ctx context.Context, u1, u2 string) (*models.Conversation, error) {
	lo, hi, err := models.CanonicalPair(u1, u2)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < getOrCreateAttempts; attempt++ {
		conv := models.Conversation{
			ID:            uuid.NewString(),
			ParticipantLo: lo,
			ParticipantHi: hi,
			LastMessageAt: time.Now().UTC(),
		}
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "participant_lo"}, {Name: "participant_hi"}},
				DoNothing: true,
			}).
			Create(&conv)
		if res.Error != nil {
			return nil, apperrors.Internal("creating conversation", res.Error)
		}
		if res.RowsAffected == 1 {
			return &conv, nil
		}

		// Lost the insert race: another request owns the row now.
		existing, err := s.findPair(ctx, lo, hi)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, apperrors.Conflict("conversation insert kept conflicting")
}

// RecordMessage folds a freshly appended message into the aggregate: the
// unread counter goes up by one and the last-message pointer advances, but
// only if the message is at least as new as the current pointer. Everything
// happens in one UPDATE so concurrent sends neither lose increments nor let
// an older message clobber a newer pointer.
func (s *ConversationStore) RecordMessage(ctx context.Context, conversationID string, msg *models.Message) (*models.Conversation, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"unread_count":    gorm.Expr("unread_count + 1"),
			"last_message_id": gorm.Expr("CASE WHEN last_message_at <= ? THEN ? ELSE last_message_id END", msg.CreatedAt, msg.ID),
			"last_message_at": gorm.Expr("CASE WHEN last_message_at <= ? THEN ? ELSE last_message_at END", msg.CreatedAt, msg.CreatedAt),
		})
	if res.Error != nil {
		return nil, apperrors.Internal("recording message", res.Error)
	}
	return s.mustGet(ctx, conversationID)
}

// AcknowledgeRead decrements the unread counter by amount, clamped at zero.
// The clamp lives in the UPDATE expression, not in application code.
func (s *ConversationStore) AcknowledgeRead(ctx context.Context, conversationID string, amount int) (*models.Conversation, error) {
	if amount < 0 {
		return nil, apperrors.InvalidArgument("amount must be non-negative")
	}
	res := s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("unread_count", gorm.Expr("CASE WHEN unread_count >= ? THEN unread_count - ? ELSE 0 END", amount, amount))
	if res.Error != nil {
		return nil, apperrors.Internal("acknowledging read", res.Error)
	}
	return s.mustGet(ctx, conversationID)
}

// mustGet is GetByID with absence promoted to NotFound. MySQL reports zero
// affected rows for UPDATEs that change nothing, so RowsAffected cannot
// distinguish "missing row" from "clamped no-op"; a read-back can.
func (s *ConversationStore) mustGet(ctx context.Context, id string) (*models.Conversation, error) {
	conv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperrors.NotFound("Conversation not found")
	}
	return conv, nil
}

// ListForUser returns the user's conversations ordered by most recent
// activity first.
func (s *ConversationStore) ListForUser(ctx context.Context, userID string, offset, limit int) ([]models.Conversation, error) {
	var convs []models.Conversation
	q := s.db.WithContext(ctx).
		Where("participant_lo = ? OR participant_hi = ?", userID, userID).
		Order("last_message_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&convs).Error; err != nil {
		return nil, apperrors.Internal("listing conversations", err)
	}
	return convs, nil
}
