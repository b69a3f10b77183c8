package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dojosgithub/the-minaret/models"
)

type UserStore struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	follows map[[2]string]time.Time // (follower, followee)
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*models.User),
		follows: make(map[[2]string]time.Time),
	}
}

func (s *UserStore) Resolve(ctx context.Context, id string) (*models.UserSummary, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	return user.Summary(), nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.byID[user.ID] = &u
	return nil
}

func (s *UserStore) UpdatePassword(_ context.Context, id, hashed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		user.Password = hashed
	}
	return nil
}

func (s *UserStore) Follow(_ context.Context, followerID, followeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{followerID, followeeID}
	if _, ok := s.follows[key]; !ok {
		s.follows[key] = time.Now().UTC()
	}
	return nil
}

func (s *UserStore) Unfollow(_ context.Context, followerID, followeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.follows, [2]string{followerID, followeeID})
	return nil
}

func (s *UserStore) FollowCounts(_ context.Context, userID string) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var followers, following int64
	for key := range s.follows {
		if key[1] == userID {
			followers++
		}
		if key[0] == userID {
			following++
		}
	}
	return followers, following, nil
}
