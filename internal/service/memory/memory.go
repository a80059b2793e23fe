package memory

import (
	"context"
	"fmt"

	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/pkg/log"
)

type Memory struct {
	cfg      core.AppConfig
	msgRepo  core.MessagesRepository
	selector core.ContextSelector
	prompter *SysPrompt
}

func NewMemory(
	cfg core.AppConfig,
	msgRepo core.MessagesRepository,
	selector core.ContextSelector,
	prompter *SysPrompt,
) *Memory {
	return &Memory{
		cfg:      cfg,
		msgRepo:  msgRepo,
		selector: selector,
		prompter: prompter,
	}
}

// GetFullContext returns the system prompt followed by the stored turns
// selected for userQuery. Embeddings computed during selection are saved.
func (s *Memory) GetFullContext(ctx context.Context, sessionID, userQuery string) ([]core.Message, error) {
	messages := s.prompter.Build()

	history, err := s.msgRepo.GetMessages(ctx, sessionID, s.cfg.GetHistoryLimit())
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	var pending []*core.Message
	for _, m := range history {
		if !m.Embedding.Attempted() {
			pending = append(pending, m)
		}
	}

	selected := s.selector.Select(ctx, userQuery, history)
	s.persistEmbeddings(ctx, pending)

	for _, m := range selected {
		messages = append(messages, *m)
	}

	log.FromCtx(ctx).Debug().
		Str("session_id", sessionID).
		Int("history", len(history)).
		Int("selected", len(selected)).
		Msg("built context")
	return messages, nil
}

// persistEmbeddings stores vectors the selector backfilled. Failed attempts
// are not stored so the background worker can retry them.
func (s *Memory) persistEmbeddings(ctx context.Context, pending []*core.Message) {
	var updates []core.EmbeddingUpdate
	for _, m := range pending {
		if m.Embedding.Status() == core.EmbeddingSucceeded {
			updates = append(updates, core.EmbeddingUpdate{MessageID: m.ID, Embedding: m.Embedding})
		}
	}
	if len(updates) == 0 {
		return
	}

	if err := s.msgRepo.UpdateEmbeddings(ctx, updates); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Int("count", len(updates)).Msg("failed to save backfilled embeddings")
	}
}

func (s *Memory) SaveMessage(ctx context.Context, sessionID string, msg *core.Message) error {
	return s.msgRepo.AddMessage(ctx, sessionID, msg)
}
