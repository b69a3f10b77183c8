package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
)

type NotificationStore struct {
	mu   sync.Mutex
	byID map[string]*models.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{byID: make(map[string]*models.Notification)}
}

func (s *NotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *n
	s.byID[n.ID] = &c
	return nil
}

func (s *NotificationStore) ListForRecipient(_ context.Context, recipientID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ns []models.Notification
	for _, n := range s.byID {
		if n.RecipientID == recipientID {
			ns = append(ns, *n)
		}
	}
	sort.Slice(ns, func(i, j int) bool {
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
	return ns, nil
}

func (s *NotificationStore) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for _, n := range s.byID {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, id, recipientID string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.RecipientID != recipientID {
		return nil, apperrors.NotFound("Notification not found")
	}
	n.IsRead = true
	c := *n
	return &c, nil
}
