package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
)

// UserRepository is the account store as the social service sees it.
type UserRepository interface {
	UserDirectory
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, hashed string) error
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	FollowCounts(ctx context.Context, userID string) (followers, following int64, err error)
}

// PostRepository is the post store as the social service sees it.
type PostRepository interface {
	PostDirectory
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, postType string, offset, limit int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
}

// NotificationRepository stores notification fan-out rows.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// SocialService covers registration, login, profiles, follows, posts and
// notifications. Plain create/read/update around the messaging core.
type SocialService struct {
	users         UserRepository
	posts         PostRepository
	notifications NotificationRepository
	tokens        *TokenService
	logger        *zap.Logger
}

func NewSocialService(
	users UserRepository,
	posts PostRepository,
	notifications NotificationRepository,
	tokens *TokenService,
	logger *zap.Logger,
) *SocialService {
	return &SocialService{
		users:         users,
		posts:         posts,
		notifications: notifications,
		tokens:        tokens,
		logger:        logger,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token string              `json:"token"`
	User  *models.UserSummary `json:"user"`
}

func (s *SocialService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.InvalidArgument("username, email and password are required")
	}

	if existing, err := s.users.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.InvalidArgument("Email already in use")
	}
	if existing, err := s.users.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.InvalidArgument("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("hashing password", err)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.Summary()}, nil
}

func (s *SocialService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.Summary()}, nil
}

// ChangePassword swaps the user's password after verifying the current one.
func (s *SocialService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return apperrors.InvalidArgument("password must be at least 8 characters")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NotFound("User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return apperrors.Unauthorized("Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal("hashing password", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hashed))
}

// Profile is a public user profile with follow counts.
type Profile struct {
	*models.UserSummary
	Bio       string `json:"bio"`
	Followers int64  `json:"followers"`
	Following int64  `json:"following"`
}

func (s *SocialService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("User not found")
	}
	followers, following, err := s.users.FollowCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserSummary: user.Summary(),
		Bio:         user.Bio,
		Followers:   followers,
		Following:   following,
	}, nil
}

// Follow records the edge and fans a notification out to the followee.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return apperrors.InvalidArgument("Cannot follow yourself")
	}
	followee, err := s.users.GetByID(ctx, followeeID)
	if err != nil {
		return err
	}
	if followee == nil {
		return apperrors.NotFound("User not found")
	}

	if err := s.users.Follow(ctx, followerID, followeeID); err != nil {
		return err
	}

	n := &models.Notification{
		ID:          uuid.NewString(),
		Type:        models.NotificationFollow,
		SenderID:    followerID,
		RecipientID: followeeID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		// The follow itself stood; losing the notification is tolerable.
		s.logger.Warn("follow notification write failed",
			zap.String("followee_id", followeeID),
			zap.Error(err))
	}
	return nil
}

func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.users.Unfollow(ctx, followerID, followeeID)
}

type CreatePostInput struct {
	AuthorID string
	Type     string
	Title    string
	Body     string
	Media    []models.MediaRef
	Links    []models.LinkRef
}

func (s *SocialService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, apperrors.InvalidArgument("title and body are required")
	}
	for _, m := range in.Media {
		if !models.ValidMediaKind(m.Kind) {
			return nil, apperrors.InvalidArgument("media type must be image or video")
		}
	}

	post := &models.Post{
		ID:       uuid.NewString(),
		AuthorID: in.AuthorID,
		Type:     in.Type,
		Title:    in.Title,
		Body:     in.Body,
		Media:    in.Media,
		Links:    in.Links,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *SocialService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NotFound("Post not found")
	}
	if author, err := s.users.Resolve(ctx, post.AuthorID); err == nil {
		post.Author = author
	}
	return post, nil
}

// ListPosts returns the feed, newest first; postType narrows it when set.
func (s *SocialService) ListPosts(ctx context.Context, postType string, offset, limit int) ([]models.Post, error) {
	posts, err := s.posts.List(ctx, postType, offset, limit)
	if err != nil {
		return nil, err
	}
	s.attachAuthors(ctx, posts)
	return posts, nil
}

// ListPostsByAuthor returns the author's own posts, newest first.
func (s *SocialService) ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	s.attachAuthors(ctx, posts)
	return posts, nil
}

func (s *SocialService) attachAuthors(ctx context.Context, posts []models.Post) {
	for i := range posts {
		if author, err := s.users.Resolve(ctx, posts[i].AuthorID); err == nil {
			posts[i].Author = author
		}
	}
}

func (s *SocialService) ListNotifications(ctx context.Context, recipientID string) ([]models.Notification, error) {
	ns, err := s.notifications.ListForRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	for i := range ns {
		if sender, err := s.users.Resolve(ctx, ns[i].SenderID); err == nil {
			ns[i].Sender = sender
		}
	}
	return ns, nil
}

func (s *SocialService) MarkNotificationRead(ctx context.Context, id, recipientID string) (*models.Notification, error) {
	return s.notifications.MarkRead(ctx, id, recipientID)
}

// MarkAllNotificationsRead clears the user's unread notifications and returns
// how many changed.
func (s *SocialService) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, recipientID)
}
