package services

import (
	"context"

	"github.com/dojosgithub/the-minaret/models"
)

// ConversationRegistry is the consistency layer for the participant-pair to
// conversation mapping. Implementations must make GetOrCreate, RecordMessage
// and AcknowledgeRead safe under concurrent calls from multiple processes.
type ConversationRegistry interface {
	FindByParticipants(ctx context.Context, u1, u2 string) (*models.Conversation, error)
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	GetOrCreate(ctx context.Context, u1, u2 string) (*models.Conversation, error)
	RecordMessage(ctx context.Context, conversationID string, msg *models.Message) (*models.Conversation, error)
	AcknowledgeRead(ctx context.Context, conversationID string, amount int) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID string, offset, limit int) ([]models.Conversation, error)
}

// MessageRepository is the append-only message record store.
type MessageRepository interface {
	Append(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	ListBetween(ctx context.Context, u1, u2 string) ([]models.Message, error)
	// MarkRead reports whether this call performed the false->true transition.
	MarkRead(ctx context.Context, id string) (bool, error)
}

// UserDirectory resolves user ids to profile summaries.
type UserDirectory interface {
	Resolve(ctx context.Context, id string) (*models.UserSummary, error)
}

// PostDirectory resolves post ids to summaries.
type PostDirectory interface {
	GetSummary(ctx context.Context, id string) (*models.PostSummary, error)
}

// MessagePublisher pushes a freshly created message towards its recipient
// (e.g. over an open websocket). Delivery is best effort.
type MessagePublisher interface {
	PublishMessage(recipientID string, msg *models.Message)
}
