// Package transcript loads conversations from YAML files for offline
// context selection runs.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/workbot/internal/core"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoMessages = errors.New("transcript has no messages")
	ErrNoVector   = errors.New("no vector in transcript")
)

type Transcript struct {
	Query          string
	QueryEmbedding []float32
	Messages       []*core.Message
	// Vectors maps text to a precomputed embedding.
	Vectors map[string][]float32
}

type file struct {
	Query          string               `yaml:"query"`
	QueryEmbedding []float32            `yaml:"query_embedding"`
	Vectors        map[string][]float32 `yaml:"vectors"`
	Messages       []entry              `yaml:"messages"`
}

type entry struct {
	ID        string    `yaml:"id"`
	Role      string    `yaml:"role"`
	Content   string    `yaml:"content"`
	At        time.Time `yaml:"at"`
	Offset    string    `yaml:"offset"`
	Embedding []float32 `yaml:"embedding"`
	Failed    bool      `yaml:"embedding_failed"`
}

func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	t, err := Parse(data, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a transcript. Offsets such as "-10m" are resolved against now.
func Parse(data []byte, now time.Time) (*Transcript, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	if len(f.Messages) == 0 {
		return nil, ErrNoMessages
	}

	t := &Transcript{
		Query:          f.Query,
		QueryEmbedding: f.QueryEmbedding,
		Vectors:        make(map[string][]float32, len(f.Vectors)+len(f.Messages)),
		Messages:       make([]*core.Message, 0, len(f.Messages)),
	}
	for text, vec := range f.Vectors {
		t.Vectors[text] = vec
	}
	if f.Query != "" && len(f.QueryEmbedding) > 0 {
		t.Vectors[f.Query] = f.QueryEmbedding
	}

	for i, e := range f.Messages {
		msg, err := e.message(now)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i+1, err)
		}
		if len(e.Embedding) > 0 {
			t.Vectors[e.Content] = e.Embedding
		}
		t.Messages = append(t.Messages, msg)
	}
	return t, nil
}

func (e entry) message(now time.Time) (*core.Message, error) {
	switch e.Role {
	case core.RoleUser, core.RoleAssistant, core.RoleSystem:
	default:
		return nil, fmt.Errorf("unknown role %q", e.Role)
	}

	msg := &core.Message{
		ID:      e.ID,
		Role:    e.Role,
		Content: e.Content,
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	switch {
	case !e.At.IsZero() && e.Offset != "":
		return nil, errors.New("both at and offset set")
	case !e.At.IsZero():
		msg.CreatedAt = e.At
	case e.Offset != "":
		d, err := time.ParseDuration(strings.TrimSpace(e.Offset))
		if err != nil {
			return nil, fmt.Errorf("offset: %w", err)
		}
		msg.CreatedAt = now.Add(d)
	default:
		return nil, errors.New("missing at or offset")
	}

	switch {
	case len(e.Embedding) > 0:
		msg.Embedding = core.Embedded(e.Embedding)
	case e.Failed:
		msg.Embedding = core.FailedEmbedding()
	}
	return msg, nil
}

// StaticEmbedder serves the vectors of a transcript and never calls out.
type StaticEmbedder struct {
	vectors map[string][]float32
}

func NewStaticEmbedder(t *Transcript) *StaticEmbedder {
	return &StaticEmbedder{vectors: t.Vectors}
}

func (s *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoVector, text)
	}
	return vec, nil
}

// EmbedBatch returns the known vectors; unknown texts are left out.
func (s *StaticEmbedder) EmbedBatch(_ context.Context, texts []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(texts))
	for _, t := range texts {
		if vec, ok := s.vectors[t]; ok {
			out[t] = vec
		}
	}
	return out, nil
}
