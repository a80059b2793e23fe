package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/pkg/log"
)

type Agent struct {
	ai     core.AIProvider
	memory core.Memory
}

func NewAgent(ai core.AIProvider, memory core.Memory) *Agent {
	return &Agent{
		ai:     ai,
		memory: memory,
	}
}

// Run answers input within session sessionID. The context is built before
// the user turn is stored, so the new turn is not scored against itself.
func (a *Agent) Run(ctx context.Context, sessionID string, input string) (string, error) {
	logger := log.FromCtx(ctx).With().Str("session_id", sessionID).Logger()

	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("empty input")
	}

	messages, err := a.memory.GetFullContext(ctx, sessionID, input)
	if err != nil {
		return "", fmt.Errorf("failed to build context: %w", err)
	}

	userMsg := core.NewMessage(core.RoleUser, input)
	messages = append(messages, *userMsg)

	if err := a.memory.SaveMessage(ctx, sessionID, userMsg); err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}

	responseMsg, err := a.ai.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("ai chat error: %w", err)
	}

	reply := core.NewMessage(core.RoleAssistant, responseMsg.Content)
	if err := a.memory.SaveMessage(ctx, sessionID, reply); err != nil {
		logger.Error().Err(err).Msg("failed to save assistant message")
	}

	logger.Debug().Int("context", len(messages)).Msg("turn complete")
	return reply.Content, nil
}
