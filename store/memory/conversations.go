// Package memory provides in-memory implementations of the persistence
// interfaces. They back the service tests and the dev mode that runs without
// a database. The mutex-based atomicity here is process-local; production
// deployments use the gorm stores, whose guarantees live in the database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
)

type ConversationStore struct {
	mu     sync.Mutex
	byID   map[string]*models.Conversation
	byPair map[[2]string]*models.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		byID:   make(map[string]*models.Conversation),
		byPair: make(map[[2]string]*models.Conversation),
	}
}

func (s *ConversationStore) FindByParticipants(_ context.Context, u1, u2 string) (*models.Conversation, error) {
	lo, hi, err := models.CanonicalPair(u1, u2)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.byPair[[2]string{lo, hi}]; ok {
		c := *conv
		return &c, nil
	}
	return nil, nil
}

func (s *ConversationStore) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.byID[id]; ok {
		c := *conv
		return &c, nil
	}
	return nil, nil
}

func (s *ConversationStore) GetOrCreate(_ context.Context, u1, u2 string) (*models.Conversation, error) {
	lo, hi, err := models.CanonicalPair(u1, u2)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{lo, hi}
	if conv, ok := s.byPair[key]; ok {
		c := *conv
		return &c, nil
	}
	conv := &models.Conversation{
		ID:            uuid.NewString(),
		ParticipantLo: lo,
		ParticipantHi: hi,
		LastMessageAt: time.Now().UTC(),
		CreatedAt:     time.Now().UTC(),
	}
	s.byPair[key] = conv
	s.byID[conv.ID] = conv
	c := *conv
	return &c, nil
}

func (s *ConversationStore) RecordMessage(_ context.Context, conversationID string, msg *models.Message) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.byID[conversationID]
	if !ok {
		return nil, apperrors.NotFound("Conversation not found")
	}
	conv.UnreadCount++
	if !msg.CreatedAt.Before(conv.LastMessageAt) {
		conv.LastMessageID = msg.ID
		conv.LastMessageAt = msg.CreatedAt
	}
	c := *conv
	return &c, nil
}

func (s *ConversationStore) AcknowledgeRead(_ context.Context, conversationID string, amount int) (*models.Conversation, error) {
	if amount < 0 {
		return nil, apperrors.InvalidArgument("amount must be non-negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.byID[conversationID]
	if !ok {
		return nil, apperrors.NotFound("Conversation not found")
	}
	conv.UnreadCount -= int64(amount)
	if conv.UnreadCount < 0 {
		conv.UnreadCount = 0
	}
	c := *conv
	return &c, nil
}

func (s *ConversationStore) ListForUser(_ context.Context, userID string, offset, limit int) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var convs []models.Conversation
	for _, conv := range s.byID {
		if conv.HasParticipant(userID) {
			convs = append(convs, *conv)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessageAt.After(convs[j].LastMessageAt)
	})

	if limit > 0 {
		if offset >= len(convs) {
			return nil, nil
		}
		end := offset + limit
		if end > len(convs) {
			end = len(convs)
		}
		convs = convs[offset:end]
	}
	return convs, nil
}
