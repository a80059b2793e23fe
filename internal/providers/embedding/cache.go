package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var ErrCacheMiss = errors.New("embedding cache miss")

// Cache stores vectors by Key. Get returns ErrCacheMiss for absent or expired keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, error)
	Set(ctx context.Context, key string, vec []float32) error
	Name() string
}

// Key identifies the vector of text under model.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// MemoryCache is an in-process LRU bounded by size, with entries expiring after ttl.
type MemoryCache struct {
	lru *expirable.LRU[string, []float32]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 4096
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]float32, error) {
	vec, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return slices.Clone(vec), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, vec []float32) error {
	c.lru.Add(key, slices.Clone(vec))
	return nil
}

func (c *MemoryCache) Name() string { return "memory" }

func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
