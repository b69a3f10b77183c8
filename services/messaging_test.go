package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
	"github.com/dojosgithub/the-minaret/services"
	"github.com/dojosgithub/the-minaret/store/memory"
)

type messagingFixture struct {
	svc           *services.MessagingService
	conversations *memory.ConversationStore
	messages      *memory.MessageStore
	users         *memory.UserStore
	posts         *memory.PostStore
	notifications *memory.NotificationStore
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	f := &messagingFixture{
		conversations: memory.NewConversationStore(),
		messages:      memory.NewMessageStore(),
		users:         memory.NewUserStore(),
		posts:         memory.NewPostStore(),
		notifications: memory.NewNotificationStore(),
	}
	f.svc = services.NewMessagingService(
		f.conversations, f.messages, f.users, f.posts, f.notifications, nil, zap.NewNop())
	return f
}

func (f *messagingFixture) addUser(t *testing.T, username string) string {
	t.Helper()
	user := &models.User{ID: uuid.NewString(), Username: username, Email: username + "@example.com"}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func TestSend_FirstMessageCreatesConversation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	// When Alice sends "hi" to Bob
	msg, err := f.svc.Send(ctx, services.SendInput{
		SenderID: alice, RecipientRef: bob, Content: "hi",
	})
	req.NoError(err)
	req.Equal(alice, msg.SenderID)
	req.Equal(bob, msg.RecipientID)
	req.NotEmpty(msg.ConversationID)
	req.NotNil(msg.Sender)
	req.Equal("alice", msg.Sender.Username)

	// Then a conversation exists with unreadCount 1 and the right pointer
	conv, err := f.conversations.FindByParticipants(ctx, bob, alice)
	req.NoError(err)
	req.NotNil(conv)
	req.Equal(msg.ConversationID, conv.ID)
	req.EqualValues(1, conv.UnreadCount)
	req.Equal(msg.ID, conv.LastMessageID)
}

func TestSend_ReplyReusesConversation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	// Given Alice sent "hi" to Bob
	hi, err := f.svc.Send(ctx, services.SendInput{
		SenderID: alice, RecipientRef: bob, Content: "hi",
	})
	req.NoError(err)

	// When Bob replies "hey"
	hey, err := f.svc.Send(ctx, services.SendInput{
		SenderID: bob, RecipientRef: alice, Content: "hey",
	})
	req.NoError(err)

	// Then the same conversation was reused, no second row
	req.Equal(hi.ConversationID, hey.ConversationID)
	convs, err := f.svc.ListConversations(ctx, alice, 0, 0)
	req.NoError(err)
	req.Len(convs, 1)
	req.EqualValues(2, convs[0].UnreadCount)
	req.Equal(hey.ID, convs[0].LastMessage.ID)

	// And when Bob marks Alice's message read, the counter drops to 1
	_, err = f.svc.MarkRead(ctx, hi.ID, bob)
	req.NoError(err)
	convs, err = f.svc.ListConversations(ctx, alice, 0, 0)
	req.NoError(err)
	req.EqualValues(1, convs[0].UnreadCount)
}

func TestSend_WritesRecipientNotification(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	msg, err := f.svc.Send(ctx, services.SendInput{
		SenderID: alice, RecipientRef: bob, Content: "hi",
	})
	req.NoError(err)

	// The recipient has a message notification from the sender
	ns, err := f.notifications.ListForRecipient(ctx, bob)
	req.NoError(err)
	req.Len(ns, 1)
	req.Equal(models.NotificationMessage, ns[0].Type)
	req.Equal(alice, ns[0].SenderID)
	req.Equal(msg.CreatedAt, ns[0].CreatedAt)

	// The sender does not notify themselves
	ns, err = f.notifications.ListForRecipient(ctx, alice)
	req.NoError(err)
	req.Empty(ns)
}

func TestSend_SelfMessageRejected(t *testing.T) {
	req := require.New(t)
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")

	_, err := f.svc.Send(context.Background(), services.SendInput{
		SenderID: alice, RecipientRef: alice, Content: "note to self",
	})
	req.Error(err)
	req.Equal(apperrors.KindInvalidArgument, apperrors.KindOf(err))
}

func TestSend_UnresolvableRecipient(t *testing.T) {
	req := require.New(t)
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")

	_, err := f.svc.Send(context.Background(), services.SendInput{
		SenderID: alice, RecipientRef: uuid.NewString(), Content: "hello?",
	})
	req.Error(err)
	req.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestSend_ConversationRefResolvesOtherParticipant(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	first, err := f.svc.Send(ctx, services.SendInput{
		SenderID: alice, RecipientRef: bob, Content: "hi",
	})
	req.NoError(err)

	// Bob can address the conversation id directly; the recipient is Alice
	reply, err := f.svc.Send(ctx, services.SendInput{
		SenderID: bob, RecipientRef: first.ConversationID, Content: "hey",
	})
	req.NoError(err)
	req.Equal(alice, reply.RecipientID)
	req.Equal(first.ConversationID, reply.ConversationID)

	// Carol is not a participant, so the same reference does not resolve
	_, err = f.svc.Send(ctx, services.SendInput{
		SenderID: carol, RecipientRef: first.ConversationID, Content: "hi there",
	})
	req.Error(err)
	req.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestSend_ConcurrentFirstSendsShareOneConversation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	// When K messages fly in both directions concurrently
	const k = 30
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, recipient := alice, bob
			if i%2 == 1 {
				sender, recipient = bob, alice
			}
			_, err := f.svc.Send(ctx, services.SendInput{
				SenderID: sender, RecipientRef: recipient, Content: "msg",
			})
			req.NoError(err)
		}(i)
	}
	wg.Wait()

	// Then exactly one conversation exists and no increment was lost
	convs, err := f.svc.ListConversations(ctx, alice, 0, 0)
	req.NoError(err)
	req.Len(convs, 1)
	req.EqualValues(k, convs[0].UnreadCount)
}

func TestMarkRead_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	msg, err := f.svc.Send(ctx, services.SendInput{
		SenderID: alice, RecipientRef: bob, Content: "hi",
	})
	req.NoError(err)

	// Marking twice is not an error and decrements only once
	first, err := f.svc.MarkRead(ctx, msg.ID, bob)
	req.NoError(err)
	req.True(first.IsRead)

	second, err := f.svc.MarkRead(ctx, msg.ID, bob)
	req.NoError(err)
	req.True(second.IsRead)

	conv, err := f.conversations.FindByParticipants(ctx, alice, bob)
	req.NoError(err)
	req.EqualValues(0, conv.UnreadCount)
}

func TestMarkRead_OnlyRecipientMay(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	msg, err := f.svc.Send(ctx, services.SendInput{
		SenderID: alice, RecipientRef: bob, Content: "hi",
	})
	req.NoError(err)

	_, err = f.svc.MarkRead(ctx, msg.ID, alice)
	req.Error(err)
	req.Equal(apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = f.svc.MarkRead(ctx, uuid.NewString(), bob)
	req.Error(err)
	req.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestListMessages_OrderingAndAccess(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	var convID string
	for _, content := range []string{"one", "two", "three"} {
		msg, err := f.svc.Send(ctx, services.SendInput{
			SenderID: alice, RecipientRef: bob, Content: content,
		})
		req.NoError(err)
		convID = msg.ConversationID
	}
	reply, err := f.svc.Send(ctx, services.SendInput{
		SenderID: bob, RecipientRef: alice, Content: "four",
	})
	req.NoError(err)
	req.Equal(convID, reply.ConversationID)

	// Both directions, non-decreasing createdAt
	msgs, err := f.svc.ListMessages(ctx, convID, alice)
	req.NoError(err)
	req.Len(msgs, 4)
	for i := 1; i < len(msgs); i++ {
		req.False(msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
	}

	// A non-participant is rejected
	_, err = f.svc.ListMessages(ctx, convID, carol)
	req.Error(err)
	req.Equal(apperrors.KindForbidden, apperrors.KindOf(err))

	// A missing conversation is not found
	_, err = f.svc.ListMessages(ctx, uuid.NewString(), alice)
	req.Error(err)
	req.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestListConversations_MostRecentFirst(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	_, err := f.svc.Send(ctx, services.SendInput{
		SenderID: alice, RecipientRef: bob, Content: "to bob",
	})
	req.NoError(err)
	// Keep the two activity timestamps apart on coarse clocks.
	time.Sleep(2 * time.Millisecond)
	_, err = f.svc.Send(ctx, services.SendInput{
		SenderID: alice, RecipientRef: carol, Content: "to carol",
	})
	req.NoError(err)

	convs, err := f.svc.ListConversations(ctx, alice, 0, 0)
	req.NoError(err)
	req.Len(convs, 2)
	req.False(convs[0].LastMessageAt.Before(convs[1].LastMessageAt))
	req.NotNil(convs[0].Participant)
	req.Equal("carol", convs[0].Participant.Username)
}

func TestSendPost_ReferencesPost(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newMessagingFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	post := &models.Post{ID: uuid.NewString(), AuthorID: alice, Type: "Discussion", Title: "A title", Body: "A body"}
	req.NoError(f.posts.Create(ctx, post))

	msg, err := f.svc.SendPost(ctx, alice, bob, post.ID)
	req.NoError(err)
	req.Equal(post.ID, msg.PostID)
	req.Equal("A title", msg.Content)
	req.NotNil(msg.Post)
	req.Equal(post.ID, msg.Post.ID)

	_, err = f.svc.SendPost(ctx, alice, bob, uuid.NewString())
	req.Error(err)
	req.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}
