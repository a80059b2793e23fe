package core

import (
	"context"
)

type Memory interface {
	GetFullContext(ctx context.Context, sessionID, userQuery string) ([]Message, error)
	SaveMessage(ctx context.Context, sessionID string, msg *Message) error
}

// ContextSelector picks the prior turns that go back into the LLM context window.
type ContextSelector interface {
	Select(ctx context.Context, query string, history []*Message) []*Message
}
