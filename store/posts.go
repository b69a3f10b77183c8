package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
)

type PostStore struct {
	db *gorm.DB
}

func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return apperrors.Internal("creating post", err)
	}
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetching post", err)
	}
	return &post, nil
}

// List returns posts newest first, optionally filtered by type.
func (s *PostStore) List(ctx context.Context, postType string, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if postType != "" {
		q = q.Where("type = ?", postType)
	}
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, apperrors.Internal("listing posts", err)
	}
	return posts, nil
}

// ListByAuthor returns the author's posts, newest first.
func (s *PostStore) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, apperrors.Internal("listing posts", err)
	}
	return posts, nil
}

// GetSummary resolves the presentation projection of a post, nil when absent.
func (s *PostStore) GetSummary(ctx context.Context, id string) (*models.PostSummary, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	return post.Summary(), nil
}
