package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/workbot/internal/config"
	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/internal/service/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	dir   string
	limit int
}

func (c testConfig) GetRuntimePath() string  { return c.dir }
func (c testConfig) GetDatabasePath() string { return filepath.Join(c.dir, "test.db") }
func (c testConfig) GetHistoryLimit() int    { return c.limit }
func (c testConfig) GetSystemPath() string   { return filepath.Join(c.dir, "SYSTEM.md") }
func (c testConfig) GetIdentityPath() string { return filepath.Join(c.dir, "IDENTITY.md") }

type fakeRepo struct {
	mu        sync.Mutex
	messages  map[string][]*core.Message
	updates   []core.EmbeddingUpdate
	updateErr error
	limits    []int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{messages: make(map[string][]*core.Message)}
}

func (r *fakeRepo) AddMessage(_ context.Context, sessionID string, msg *core.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[sessionID] = append(r.messages[sessionID], msg)
	return nil
}

func (r *fakeRepo) GetMessages(_ context.Context, sessionID string, limit int) ([]*core.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limits = append(r.limits, limit)
	msgs := r.messages[sessionID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	// hand out copies like a real store would
	out := make([]*core.Message, len(msgs))
	for i, m := range msgs {
		c := *m
		out[i] = &c
	}
	return out, nil
}

func (r *fakeRepo) UpdateEmbeddings(_ context.Context, updates []core.EmbeddingUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, updates...)
	for _, u := range updates {
		for _, msgs := range r.messages {
			for _, m := range msgs {
				if m.ID == u.MessageID {
					m.Embedding = u.Embedding
				}
			}
		}
	}
	return nil
}

func (r *fakeRepo) GetUnembeddedMessages(_ context.Context, limit int) ([]*core.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*core.Message
	for _, msgs := range r.messages {
		for _, m := range msgs {
			if !m.Embedding.Attempted() && len(out) < limit {
				c := *m
				out = append(out, &c)
			}
		}
	}
	return out, nil
}

type mapEmbedder struct {
	vectors  map[string][]float32
	batchErr error
	batches  int
}

func (e *mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return nil, errors.New("unknown text")
}

func (e *mapEmbedder) EmbedBatch(_ context.Context, texts []string) (map[string][]float32, error) {
	e.batches++
	if e.batchErr != nil {
		return nil, e.batchErr
	}
	out := map[string][]float32{}
	for _, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[t] = v
		}
	}
	return out, nil
}

func seed(t *testing.T, repo *fakeRepo, session string, contents ...string) []*core.Message {
	t.Helper()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	var msgs []*core.Message
	for i, c := range contents {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		m := &core.Message{ID: c, Role: role, Content: c, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.AddMessage(context.Background(), session, m))
		msgs = append(msgs, m)
	}
	return msgs
}

func TestMemory_GetFullContext(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig{dir: dir, limit: 50}
	repo := newFakeRepo()
	seed(t, repo, "s", "deploy plan", "ship friday", "lunch?", "pizza")

	emb := &mapEmbedder{vectors: map[string][]float32{
		"when do we deploy": {1, 0},
		"deploy plan":       {1, 0.1},
		"ship friday":       {0.9, 0.3},
		"lunch?":            {0, 1},
	}}
	sel, err := selector.New(config.DefaultContextConfig(), emb)
	require.NoError(t, err)

	mem := NewMemory(cfg, repo, sel, NewSysPrompt(cfg))
	got, err := mem.GetFullContext(context.Background(), "s", "when do we deploy")
	require.NoError(t, err)

	require.Len(t, got, 4)
	assert.Equal(t, core.RoleSystem, got[0].Role)
	assert.Equal(t, defaultSystemPrompt, got[0].Content)
	assert.Equal(t, "deploy plan", got[1].Content)
	assert.Equal(t, "ship friday", got[2].Content)
	assert.Equal(t, "pizza", got[3].Content, "most recent turn always kept")

	assert.Equal(t, []int{50}, repo.limits)

	// "pizza" had no vector, it stays retryable
	var saved []string
	for _, u := range repo.updates {
		saved = append(saved, u.MessageID)
		assert.Equal(t, core.EmbeddingSucceeded, u.Embedding.Status())
	}
	assert.ElementsMatch(t, []string{"deploy plan", "ship friday", "lunch?"}, saved)
}

func TestMemory_GetFullContextSaveFailureIsNotFatal(t *testing.T) {
	cfg := testConfig{dir: t.TempDir(), limit: 10}
	repo := newFakeRepo()
	repo.updateErr = errors.New("disk full")
	seed(t, repo, "s", "a", "b")

	emb := &mapEmbedder{vectors: map[string][]float32{"q": {1}, "a": {1}, "b": {1}}}
	sel, err := selector.New(config.DefaultContextConfig(), emb)
	require.NoError(t, err)

	got, err := NewMemory(cfg, repo, sel, NewSysPrompt(cfg)).GetFullContext(context.Background(), "s", "q")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMemory_SaveMessage(t *testing.T) {
	cfg := testConfig{dir: t.TempDir(), limit: 10}
	repo := newFakeRepo()
	sel, err := selector.New(config.ContextConfig{MaxContextTurns: 5}, nil)
	require.NoError(t, err)

	mem := NewMemory(cfg, repo, sel, NewSysPrompt(cfg))
	require.NoError(t, mem.SaveMessage(context.Background(), "s", core.NewMessage(core.RoleUser, "hello")))
	assert.Len(t, repo.messages["s"], 1)
}

func TestSysPrompt_Build(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig{dir: dir}

	got := NewSysPrompt(cfg).Build()
	require.Len(t, got, 1)
	assert.Equal(t, defaultSystemPrompt, got[0].Content)

	require.NoError(t, os.WriteFile(cfg.GetSystemPath(), []byte("custom system\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg.GetIdentityPath(), []byte("I am the release bot"), 0o644))

	got = NewSysPrompt(cfg).Build()
	require.Len(t, got, 2)
	assert.Equal(t, "custom system", got[0].Content)
	assert.Equal(t, "I am the release bot", got[1].Content)
	assert.Equal(t, core.RoleSystem, got[1].Role)
}
