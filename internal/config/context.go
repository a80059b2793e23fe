package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/workbot/pkg/log"
)

var ErrInvalidContextConfig = errors.New("invalid context config")

// ContextConfig controls which prior turns are fed back into the LLM context window.
type ContextConfig struct {
	RelevanceThreshold float64 `env:"CONTEXT_RELEVANCE_THRESHOLD" envDefault:"0.70"`
	MaxContextTurns    int     `env:"CONTEXT_MAX_TURNS" envDefault:"10"`
	MinRecentTurns     int     `env:"CONTEXT_MIN_RECENT_TURNS" envDefault:"1"`

	EnableSemanticFiltering   bool    `env:"CONTEXT_SEMANTIC_FILTERING" envDefault:"true"`
	EnableQueryDeduplication  bool    `env:"CONTEXT_QUERY_DEDUP" envDefault:"true"`
	QueryDuplicationThreshold float64 `env:"CONTEXT_QUERY_DEDUP_THRESHOLD" envDefault:"0.95"`
}

func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		RelevanceThreshold:        0.70,
		MaxContextTurns:           10,
		MinRecentTurns:            1,
		EnableSemanticFiltering:   true,
		EnableQueryDeduplication:  true,
		QueryDuplicationThreshold: 0.95,
	}
}

func NewContextConfig(ctx context.Context) *ContextConfig {
	c := &ContextConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Context config")
	}
	if err := c.Validate(); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("context config rejected")
	}
	return c
}

func (c ContextConfig) Validate() error {
	if c.RelevanceThreshold < 0 || c.RelevanceThreshold > 1 {
		return fmt.Errorf("%w: relevance threshold %.2f outside [0,1]", ErrInvalidContextConfig, c.RelevanceThreshold)
	}
	if c.QueryDuplicationThreshold < 0 || c.QueryDuplicationThreshold > 1 {
		return fmt.Errorf("%w: query duplication threshold %.2f outside [0,1]", ErrInvalidContextConfig, c.QueryDuplicationThreshold)
	}
	if c.MaxContextTurns < 1 {
		return fmt.Errorf("%w: max context turns must be at least 1, got %d", ErrInvalidContextConfig, c.MaxContextTurns)
	}
	if c.MinRecentTurns < 0 {
		return fmt.Errorf("%w: min recent turns must not be negative, got %d", ErrInvalidContextConfig, c.MinRecentTurns)
	}
	if c.MinRecentTurns > c.MaxContextTurns {
		return fmt.Errorf("%w: min recent turns (%d) exceeds max context turns (%d)",
			ErrInvalidContextConfig, c.MinRecentTurns, c.MaxContextTurns)
	}
	if c.EnableQueryDeduplication && c.QueryDuplicationThreshold < c.RelevanceThreshold {
		return fmt.Errorf("%w: query duplication threshold (%.2f) must not be below relevance threshold (%.2f)",
			ErrInvalidContextConfig, c.QueryDuplicationThreshold, c.RelevanceThreshold)
	}
	return nil
}
