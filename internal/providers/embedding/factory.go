package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sandevgo/workbot/internal/config"
	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/internal/metrics"
)

// NewFromConfig builds the embeddings client and the cache in front of it.
// The returned close func releases the cache backend.
func NewFromConfig(ctx context.Context, cfg *config.EmbeddingConfig, m *metrics.Cache) (core.Embedder, func() error, error) {
	client := NewClient(ClientConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BatchSize:   cfg.BatchSize,
		MaxTokens:   cfg.MaxTokens,
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
	})
	noop := func() error { return nil }

	switch cfg.Cache {
	case config.CacheNone, "":
		return client, noop, nil

	case config.CacheMemory:
		cache := NewMemoryCache(cfg.CacheSize, cfg.CacheTTL)
		return NewCached(client, cache, cfg.Model, m), noop, nil

	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}

		cache := NewRedisCache(rdb, cfg.CacheTTL)
		return NewCached(client, cache, cfg.Model, m), cache.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown embedding cache %q", cfg.Cache)
	}
}
