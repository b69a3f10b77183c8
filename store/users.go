package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
)

// UserStore is the account store and doubles as the identity directory the
// messaging service resolves recipients through.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Resolve looks a user id up in the directory. Returns nil when the id does
// not resolve.
func (s *UserStore) Resolve(ctx context.Context, id string) (*models.UserSummary, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	return user.Summary(), nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetching user", err)
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetching user", err)
	}
	return &user, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetching user", err)
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return apperrors.Internal("creating user", err)
	}
	return nil
}

// UpdatePassword swaps the stored hash for the user.
func (s *UserStore) UpdatePassword(ctx context.Context, id, hashed string) error {
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", hashed).Error
	if err != nil {
		return apperrors.Internal("updating password", err)
	}
	return nil
}

// Follow inserts the directed edge; repeating an existing follow is a no-op.
func (s *UserStore) Follow(ctx context.Context, followerID, followeeID string) error {
	follow := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error
	if err != nil {
		return apperrors.Internal("creating follow", err)
	}
	return nil
}

func (s *UserStore) Unfollow(ctx context.Context, followerID, followeeID string) error {
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return apperrors.Internal("deleting follow", err)
	}
	return nil
}

// FollowCounts returns (followers, following) for the user.
func (s *UserStore) FollowCounts(ctx context.Context, userID string) (int64, int64, error) {
	var followers, following int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, apperrors.Internal("counting followers", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, apperrors.Internal("counting following", err)
	}
	return followers, following, nil
}
