package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
)

// MessagingService orchestrates sending, listing and read acknowledgment. It
// is the only component that talks to both the message repository and the
// conversation registry.
type MessagingService struct {
	conversations ConversationRegistry
	messages      MessageRepository
	users         UserDirectory
	posts         PostDirectory
	notifications NotificationRepository
	publisher     MessagePublisher
	logger        *zap.Logger
}

func NewMessagingService(
	conversations ConversationRegistry,
	messages MessageRepository,
	users UserDirectory,
	posts PostDirectory,
	notifications NotificationRepository,
	publisher MessagePublisher,
	logger *zap.Logger,
) *MessagingService {
	return &MessagingService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		posts:         posts,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// SendInput is a send request. RecipientRef is either a conversation id or a
// user id; it is resolved exactly once, at the service boundary.
type SendInput struct {
	SenderID     string
	RecipientRef string
	Content      string
	Media        []models.MediaRef
	PostID       string
}

// ConversationView is a conversation projected for one of its participants:
// the other participant's summary plus the thread metadata.
type ConversationView struct {
	ID            string              `json:"id"`
	Participant   *models.UserSummary `json:"participant"`
	LastMessage   *models.Message     `json:"last_message,omitempty"`
	LastMessageAt time.Time           `json:"last_message_at"`
	UnreadCount   int64               `json:"unread_count"`
}

// resolveRecipient turns a recipient reference into a concrete user id.
// A reference that matches an existing conversation means "the other side of
// that conversation"; anything else is treated as a direct user id and
// resolved through the identity directory.
func (s *MessagingService) resolveRecipient(ctx context.Context, senderID, recipientRef string) (string, error) {
	if strings.TrimSpace(recipientRef) == "" {
		return "", apperrors.InvalidArgument("recipient is required")
	}

	conv, err := s.conversations.GetByID(ctx, recipientRef)
	if err != nil {
		return "", err
	}
	if conv != nil {
		other, ok := conv.OtherParticipant(senderID)
		if !ok {
			return "", apperrors.NotFound("Conversation does not include sender")
		}
		return other, nil
	}

	profile, err := s.users.Resolve(ctx, recipientRef)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", apperrors.NotFound("Recipient not found")
	}
	return profile.ID, nil
}

// Send appends a message and folds it into the pair's conversation. The
// conversation is created lazily on the first message between the pair; the
// registry guarantees concurrent first sends still end up in a single
// conversation.
func (s *MessagingService) Send(ctx context.Context, in SendInput) (*models.Message, error) {
	recipientID, err := s.resolveRecipient(ctx, in.SenderID, in.RecipientRef)
	if err != nil {
		return nil, err
	}
	if in.SenderID == recipientID {
		return nil, apperrors.InvalidArgument("Cannot send a message to yourself")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperrors.InvalidArgument("content is required")
	}
	for _, m := range in.Media {
		if !models.ValidMediaKind(m.Kind) {
			return nil, apperrors.InvalidArgument("media type must be image or video")
		}
	}

	msg := &models.Message{
		ID:          uuid.NewString(),
		SenderID:    in.SenderID,
		RecipientID: recipientID,
		Content:     in.Content,
		Media:       in.Media,
		PostID:      in.PostID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, err
	}

	conv, err := s.conversations.GetOrCreate(ctx, in.SenderID, recipientID)
	if err != nil {
		return nil, err
	}
	conv, err = s.conversations.RecordMessage(ctx, conv.ID, msg)
	if err != nil {
		// The message row is already committed; the aggregate is stale until
		// the next successful send or read against this conversation.
		s.logger.Error("conversation update failed after append",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return nil, err
	}
	msg.ConversationID = conv.ID

	s.enrich(ctx, msg)

	// Fan out to the recipient: a notification row they can list later plus a
	// websocket push if they are online right now. The send already stood, so
	// neither failure mode is allowed to fail it.
	n := &models.Notification{
		ID:          uuid.NewString(),
		Type:        models.NotificationMessage,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		PostID:      msg.PostID,
		CreatedAt:   msg.CreatedAt,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Warn("message notification write failed",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}
	if s.publisher != nil {
		s.publisher.PublishMessage(recipientID, msg)
	}
	return msg, nil
}

// SendPost shares a post as a direct message.
func (s *MessagingService) SendPost(ctx context.Context, senderID, recipientRef, postID string) (*models.Message, error) {
	post, err := s.posts.GetSummary(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NotFound("Post not found")
	}
	return s.Send(ctx, SendInput{
		SenderID:     senderID,
		RecipientRef: recipientRef,
		Content:      post.Title,
		PostID:       post.ID,
	})
}

// ListConversations returns the user's conversations, most recent activity
// first, projected for presentation.
func (s *MessagingService) ListConversations(ctx context.Context, userID string, offset, limit int) ([]ConversationView, error) {
	convs, err := s.conversations.ListForUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	views := lo.Map(convs, func(conv models.Conversation, _ int) ConversationView {
		view := ConversationView{
			ID:            conv.ID,
			LastMessageAt: conv.LastMessageAt,
			UnreadCount:   conv.UnreadCount,
		}
		if other, ok := conv.OtherParticipant(userID); ok {
			view.Participant, _ = s.users.Resolve(ctx, other)
		}
		if conv.LastMessageID != "" {
			view.LastMessage, _ = s.messages.GetByID(ctx, conv.LastMessageID)
		}
		return view
	})
	return views, nil
}

// ListMessages returns every message of the conversation, oldest first. Only
// participants may read a conversation.
func (s *MessagingService) ListMessages(ctx context.Context, conversationID, requesterID string) ([]models.Message, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperrors.NotFound("Conversation not found")
	}
	if !conv.HasParticipant(requesterID) {
		return nil, apperrors.Forbidden("You are not part of this conversation")
	}

	pair := conv.Participants()
	msgs, err := s.messages.ListBetween(ctx, pair[0], pair[1])
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		msgs[i].ConversationID = conv.ID
	}
	return msgs, nil
}

// MarkRead marks a message read and acknowledges it against the pair's
// conversation. Only the recipient may mark a message read, and re-marking an
// already read message neither errors nor decrements the counter again.
func (s *MessagingService) MarkRead(ctx context.Context, messageID, requesterID string) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperrors.NotFound("Message not found")
	}
	if msg.RecipientID != requesterID {
		return nil, apperrors.Forbidden("Not authorized")
	}

	transitioned, err := s.messages.MarkRead(ctx, messageID)
	if err != nil {
		return nil, err
	}
	msg.IsRead = true

	if transitioned {
		conv, err := s.conversations.FindByParticipants(ctx, msg.SenderID, msg.RecipientID)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			if _, err := s.conversations.AcknowledgeRead(ctx, conv.ID, 1); err != nil {
				return nil, err
			}
			msg.ConversationID = conv.ID
		}
	}

	s.enrich(ctx, msg)
	return msg, nil
}

// enrich attaches the presentation summaries. Failures here only degrade the
// response, never the operation.
func (s *MessagingService) enrich(ctx context.Context, msg *models.Message) {
	if sender, err := s.users.Resolve(ctx, msg.SenderID); err == nil {
		msg.Sender = sender
	}
	if recipient, err := s.users.Resolve(ctx, msg.RecipientID); err == nil {
		msg.Recipient = recipient
	}
	if msg.PostID != "" && s.posts != nil {
		if post, err := s.posts.GetSummary(ctx, msg.PostID); err == nil {
			msg.Post = post
		}
	}
}
