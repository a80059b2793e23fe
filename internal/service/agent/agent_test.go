package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/workbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemory struct {
	context []core.Message
	saved   []*core.Message
	queries []string
	saveErr error
}

func (m *fakeMemory) GetFullContext(_ context.Context, _ string, userQuery string) ([]core.Message, error) {
	m.queries = append(m.queries, userQuery)
	return append([]core.Message(nil), m.context...), nil
}

func (m *fakeMemory) SaveMessage(_ context.Context, _ string, msg *core.Message) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, msg)
	return nil
}

type fakeAI struct {
	got   []core.Message
	reply string
	err   error
}

func (f *fakeAI) Chat(_ context.Context, history []core.Message) (core.Message, error) {
	f.got = history
	if f.err != nil {
		return core.Message{}, f.err
	}
	return core.Message{Role: core.RoleAssistant, Content: f.reply}, nil
}

func TestAgent_Run(t *testing.T) {
	mem := &fakeMemory{context: []core.Message{
		{Role: core.RoleSystem, Content: "system"},
		{Role: core.RoleUser, Content: "earlier question"},
	}}
	ai := &fakeAI{reply: "X shipped on Friday"}

	reply, err := NewAgent(ai, mem).Run(context.Background(), "s1", "status of X?")
	require.NoError(t, err)
	assert.Equal(t, "X shipped on Friday", reply)

	assert.Equal(t, []string{"status of X?"}, mem.queries)
	require.Len(t, ai.got, 3)
	assert.Equal(t, "status of X?", ai.got[2].Content)

	require.Len(t, mem.saved, 2)
	assert.Equal(t, core.RoleUser, mem.saved[0].Role)
	assert.Equal(t, core.RoleAssistant, mem.saved[1].Role)
	assert.NotEmpty(t, mem.saved[1].ID)
	assert.False(t, mem.saved[1].CreatedAt.Before(mem.saved[0].CreatedAt))
}

func TestAgent_RunErrors(t *testing.T) {
	_, err := NewAgent(&fakeAI{}, &fakeMemory{}).Run(context.Background(), "s", "  ")
	assert.Error(t, err)

	_, err = NewAgent(&fakeAI{err: errors.New("down")}, &fakeMemory{}).Run(context.Background(), "s", "hi")
	assert.ErrorContains(t, err, "ai chat error")

	_, err = NewAgent(&fakeAI{}, &fakeMemory{saveErr: errors.New("locked")}).Run(context.Background(), "s", "hi")
	assert.ErrorContains(t, err, "failed to save user message")
}
