package core

import (
	"context"
)

type MessagesRepository interface {
	AddMessage(ctx context.Context, sessionID string, msg *Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]*Message, error)
	UpdateEmbeddings(ctx context.Context, updates []EmbeddingUpdate) error
	GetUnembeddedMessages(ctx context.Context, limit int) ([]*Message, error)
}
