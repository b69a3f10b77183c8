package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dojosgithub/the-minaret/models"
)

type MessageStore struct {
	mu   sync.Mutex
	byID map[string]*models.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{byID: make(map[string]*models.Message)}
}

func (s *MessageStore) Append(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := *msg
	s.byID[msg.ID] = &m
	return nil
}

func (s *MessageStore) GetByID(_ context.Context, id string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := s.byID[id]; ok {
		m := *msg
		return &m, nil
	}
	return nil, nil
}

func (s *MessageStore) ListBetween(_ context.Context, u1, u2 string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var msgs []models.Message
	for _, msg := range s.byID {
		if (msg.SenderID == u1 && msg.RecipientID == u2) || (msg.SenderID == u2 && msg.RecipientID == u1) {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (s *MessageStore) MarkRead(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.byID[id]
	if !ok || msg.IsRead {
		return false, nil
	}
	msg.IsRead = true
	return true, nil
}
