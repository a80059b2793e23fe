package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/workbot/pkg/log"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type EmbeddingConfig struct {
	BaseURL     string        `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey      string        `env:"EMBEDDING_API_KEY"`
	Model       string        `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	BatchSize   int           `env:"EMBEDDING_BATCH_SIZE" envDefault:"64"`
	MaxTokens   int           `env:"EMBEDDING_MAX_TOKENS" envDefault:"8191"`
	Timeout     time.Duration `env:"EMBEDDING_TIMEOUT" envDefault:"30s"`
	Concurrency int           `env:"EMBEDDING_CONCURRENCY" envDefault:"4"`

	Cache     string        `env:"EMBEDDING_CACHE" envDefault:"memory"`
	CacheSize int           `env:"EMBEDDING_CACHE_SIZE" envDefault:"4096"`
	CacheTTL  time.Duration `env:"EMBEDDING_CACHE_TTL" envDefault:"24h"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return c
}
