package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
	"github.com/dojosgithub/the-minaret/services"
	"github.com/dojosgithub/the-minaret/store/memory"
)

func newSocialService() (*services.SocialService, *memory.NotificationStore) {
	notifications := memory.NewNotificationStore()
	svc := services.NewSocialService(
		memory.NewUserStore(),
		memory.NewPostStore(),
		notifications,
		services.NewTokenService("test-secret", time.Hour),
		zap.NewNop(),
	)
	return svc, notifications
}

func TestRegisterAndLogin(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newSocialService()

	reg, err := svc.Register(ctx, services.RegisterInput{
		FirstName: "Alice",
		LastName:  "Ahmed",
		Username:  "alice",
		Email:     "Alice@Example.com",
		Password:  "hunter22!",
	})
	req.NoError(err)
	req.NotEmpty(reg.Token)
	req.Equal("alice", reg.User.Username)

	// Email lookup is case-insensitive because it is stored lowercased
	login, err := svc.Login(ctx, "alice@example.com", "hunter22!")
	req.NoError(err)
	req.Equal(reg.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	req.Error(err)
	req.Equal(apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestRegister_DuplicateEmailAndUsername(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newSocialService()

	_, err := svc.Register(ctx, services.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter22!",
	})
	req.NoError(err)

	_, err = svc.Register(ctx, services.RegisterInput{
		Username: "alice2", Email: "alice@example.com", Password: "hunter22!",
	})
	req.Error(err)
	req.Equal(apperrors.KindInvalidArgument, apperrors.KindOf(err))

	_, err = svc.Register(ctx, services.RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "hunter22!",
	})
	req.Error(err)
	req.Equal(apperrors.KindInvalidArgument, apperrors.KindOf(err))
}

func TestFollow_WritesNotification(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, notifications := newSocialService()

	alice, err := svc.Register(ctx, services.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter22!",
	})
	req.NoError(err)
	bob, err := svc.Register(ctx, services.RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "hunter22!",
	})
	req.NoError(err)

	req.NoError(svc.Follow(ctx, alice.User.ID, bob.User.ID))
	// Following twice is a no-op
	req.NoError(svc.Follow(ctx, alice.User.ID, bob.User.ID))

	profile, err := svc.GetProfile(ctx, bob.User.ID)
	req.NoError(err)
	req.EqualValues(1, profile.Followers)

	ns, err := notifications.ListForRecipient(ctx, bob.User.ID)
	req.NoError(err)
	req.NotEmpty(ns)
	req.Equal(models.NotificationFollow, ns[0].Type)
	req.Equal(alice.User.ID, ns[0].SenderID)

	req.NoError(svc.Unfollow(ctx, alice.User.ID, bob.User.ID))
	profile, err = svc.GetProfile(ctx, bob.User.ID)
	req.NoError(err)
	req.EqualValues(0, profile.Followers)
}

func TestChangePassword(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newSocialService()

	alice, err := svc.Register(ctx, services.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter22!",
	})
	req.NoError(err)

	// The current password must match
	err = svc.ChangePassword(ctx, alice.User.ID, "wrong", "newpassword1")
	req.Error(err)
	req.Equal(apperrors.KindUnauthorized, apperrors.KindOf(err))

	// Too-short replacements are rejected
	err = svc.ChangePassword(ctx, alice.User.ID, "hunter22!", "short")
	req.Error(err)
	req.Equal(apperrors.KindInvalidArgument, apperrors.KindOf(err))

	req.NoError(svc.ChangePassword(ctx, alice.User.ID, "hunter22!", "newpassword1"))

	// The old password no longer logs in, the new one does
	_, err = svc.Login(ctx, "alice@example.com", "hunter22!")
	req.Error(err)
	req.Equal(apperrors.KindUnauthorized, apperrors.KindOf(err))
	login, err := svc.Login(ctx, "alice@example.com", "newpassword1")
	req.NoError(err)
	req.Equal(alice.User.ID, login.User.ID)
}

func TestListPosts_FeedAndTypeFilter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newSocialService()

	alice, err := svc.Register(ctx, services.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter22!",
	})
	req.NoError(err)
	bob, err := svc.Register(ctx, services.RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "hunter22!",
	})
	req.NoError(err)

	for _, p := range []struct {
		author, postType, title string
	}{
		{alice.User.ID, "Discussion", "first"},
		{bob.User.ID, "Question", "second"},
		{alice.User.ID, "Discussion", "third"},
	} {
		_, err := svc.CreatePost(ctx, services.CreatePostInput{
			AuthorID: p.author, Type: p.postType, Title: p.title, Body: "body",
		})
		req.NoError(err)
	}

	feed, err := svc.ListPosts(ctx, "", 0, 0)
	req.NoError(err)
	req.Len(feed, 3)
	req.NotNil(feed[0].Author)

	questions, err := svc.ListPosts(ctx, "Question", 0, 0)
	req.NoError(err)
	req.Len(questions, 1)
	req.Equal("second", questions[0].Title)

	mine, err := svc.ListPostsByAuthor(ctx, alice.User.ID)
	req.NoError(err)
	req.Len(mine, 2)
	for _, post := range mine {
		req.Equal(alice.User.ID, post.AuthorID)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, notifications := newSocialService()

	alice, err := svc.Register(ctx, services.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter22!",
	})
	req.NoError(err)
	bob, err := svc.Register(ctx, services.RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "hunter22!",
	})
	req.NoError(err)
	carol, err := svc.Register(ctx, services.RegisterInput{
		Username: "carol", Email: "carol@example.com", Password: "hunter22!",
	})
	req.NoError(err)

	req.NoError(svc.Follow(ctx, alice.User.ID, carol.User.ID))
	req.NoError(svc.Follow(ctx, bob.User.ID, carol.User.ID))

	updated, err := svc.MarkAllNotificationsRead(ctx, carol.User.ID)
	req.NoError(err)
	req.EqualValues(2, updated)

	ns, err := notifications.ListForRecipient(ctx, carol.User.ID)
	req.NoError(err)
	req.Len(ns, 2)
	for _, n := range ns {
		req.True(n.IsRead)
	}

	// Nothing left unread, so a second pass changes nothing
	updated, err = svc.MarkAllNotificationsRead(ctx, carol.User.ID)
	req.NoError(err)
	req.Zero(updated)
}

func TestFollow_SelfAndUnknown(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newSocialService()

	alice, err := svc.Register(ctx, services.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter22!",
	})
	req.NoError(err)

	err = svc.Follow(ctx, alice.User.ID, alice.User.ID)
	req.Error(err)
	req.Equal(apperrors.KindInvalidArgument, apperrors.KindOf(err))

	err = svc.Follow(ctx, alice.User.ID, "00000000-0000-0000-0000-000000000000")
	req.Error(err)
	req.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}
