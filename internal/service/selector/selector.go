// Package selector decides which prior turns of a conversation go back into
// the LLM context window for a new user turn.
//
// Selection combines an unconditional recency window with embedding
// similarity to the current query, caps the result, collapses repeated
// questions and falls back to plain recency whenever embeddings are
// disabled or unavailable. It never fails: the worst case is time-based
// selection.
//
// Select writes backfilled embeddings onto the history messages it is given,
// so concurrent calls must not share the same message slice.
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/workbot/internal/config"
	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/internal/metrics"
	"github.com/sandevgo/workbot/pkg/log"
)

const (
	PathNoop     = "noop"
	PathDisabled = "disabled"
	PathFallback = "fallback"
	PathSemantic = "semantic"
)

var ErrNoEmbedder = errors.New("semantic filtering requires an embedder")

type Selector struct {
	cfg      config.ContextConfig
	embedder core.Embedder
	metrics  *metrics.Selection
}

type Option func(*Selector)

func WithMetrics(m *metrics.Selection) Option {
	return func(s *Selector) {
		s.metrics = m
	}
}

// New validates cfg and returns a Selector. embedder may be nil only when
// semantic filtering is disabled.
func New(cfg config.ContextConfig, embedder core.Embedder, opts ...Option) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.EnableSemanticFiltering && embedder == nil {
		return nil, ErrNoEmbedder
	}

	s := &Selector{
		cfg:      cfg,
		embedder: embedder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Select returns the messages of history to feed back for query, a
// subsequence of history sorted ascending by CreatedAt.
func (s *Selector) Select(ctx context.Context, query string, history []*core.Message) []*core.Message {
	logger := log.FromCtx(ctx).With().Str("component", "context_selector").Logger()

	if strings.TrimSpace(query) == "" || len(history) == 0 {
		return s.done(PathNoop, []*core.Message{})
	}

	if !s.cfg.EnableSemanticFiltering {
		return s.done(PathDisabled, TimeBasedFallback(history, s.cfg.MaxContextTurns))
	}

	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("query embedding failed, using recent turns only")
		return s.done(PathFallback, TimeBasedFallback(history, s.cfg.MaxContextTurns))
	}

	res, err := backfill(ctx, s.embedder, history)
	s.metrics.ObserveBackfill(res.Embedded, res.Failed, res.Skipped)
	if err != nil {
		logger.Warn().Err(err).Int("pending", res.Skipped).Msg("history embedding backfill failed, scoring with existing embeddings")
	}

	sorted := chronological(history)
	recent := tail(sorted, s.cfg.MinRecentTurns)
	scored := relevant(sorted, queryVec, s.cfg.RelevanceThreshold)
	set := fuse(recent, scored, s.cfg.MaxContextTurns)

	if s.cfg.EnableQueryDeduplication {
		stats := collapse(set, sorted, s.cfg.QueryDuplicationThreshold)
		if stats.Skipped {
			logger.Debug().Msg("some candidates lack embeddings, duplicate questions kept")
		}
		s.metrics.ObserveDuplicatesRemoved(stats.Removed)
	}

	selected := inOrder(sorted, set)
	logger.Debug().
		Int("history", len(history)).
		Int("recent", len(recent)).
		Int("relevant", len(scored)).
		Int("selected", len(selected)).
		Msg("context selected")

	return s.done(PathSemantic, selected)
}

func (s *Selector) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}
	return vec, nil
}

func (s *Selector) done(path string, selected []*core.Message) []*core.Message {
	s.metrics.ObservePath(path)
	s.metrics.ObserveSelected(len(selected))
	return selected
}
