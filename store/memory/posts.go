package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dojosgithub/the-minaret/models"
)

type PostStore struct {
	mu   sync.Mutex
	byID map[string]*models.Post
}

func NewPostStore() *PostStore {
	return &PostStore{byID: make(map[string]*models.Post)}
}

func (s *PostStore) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *post
	s.byID[post.ID] = &p
	return nil
}

func (s *PostStore) GetByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post, ok := s.byID[id]; ok {
		p := *post
		return &p, nil
	}
	return nil, nil
}

func (s *PostStore) List(_ context.Context, postType string, offset, limit int) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []models.Post
	for _, post := range s.byID {
		if postType != "" && post.Type != postType {
			continue
		}
		posts = append(posts, *post)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if limit > 0 {
		if offset > len(posts) {
			offset = len(posts)
		}
		posts = posts[offset:]
		if limit < len(posts) {
			posts = posts[:limit]
		}
	}
	return posts, nil
}

func (s *PostStore) ListByAuthor(_ context.Context, authorID string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []models.Post
	for _, post := range s.byID {
		if post.AuthorID == authorID {
			posts = append(posts, *post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *PostStore) GetSummary(ctx context.Context, id string) (*models.PostSummary, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	return post.Summary(), nil
}
