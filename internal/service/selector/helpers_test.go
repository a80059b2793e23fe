package selector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sandevgo/workbot/internal/core"
)

var baseTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// msg builds a message at baseTime+offset. A vector marks it as already embedded.
func msg(role, content string, offset time.Duration, vec ...float32) *core.Message {
	m := &core.Message{
		ID:        content,
		Role:      role,
		Content:   content,
		CreatedAt: baseTime.Add(offset),
	}
	if len(vec) > 0 {
		m.Embedding = core.Embedded(vec)
	}
	return m
}

func contents(msgs []*core.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}

type fakeEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	embedErr error
	batchErr error

	embedCalls []string
	batchCalls [][]string
}

func newFakeEmbedder(vectors map[string][]float32) *fakeEmbedder {
	return &fakeEmbedder{vectors: vectors}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.embedCalls = append(f.embedCalls, text)
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text")
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) (map[string][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batchCalls = append(f.batchCalls, texts)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make(map[string][]float32, len(texts))
	for _, t := range texts {
		if vec, ok := f.vectors[t]; ok {
			out[t] = vec
		}
	}
	return out, nil
}
