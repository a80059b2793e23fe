package embedding

import (
	"context"
	"errors"
	"strings"

	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/internal/metrics"
	"github.com/sandevgo/workbot/pkg/log"
	"golang.org/x/sync/singleflight"
)

// Cached serves vectors from a Cache and asks next only for misses.
// Cache failures are logged and treated as misses.
type Cached struct {
	next    core.Embedder
	cache   Cache
	model   string
	metrics *metrics.Cache
	group   singleflight.Group
}

func NewCached(next core.Embedder, cache Cache, model string, m *metrics.Cache) *Cached {
	return &Cached{
		next:    next,
		cache:   cache,
		model:   model,
		metrics: m,
	}
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return c.next.Embed(ctx, text)
	}

	key := Key(c.model, text)
	if vec, ok := c.lookup(ctx, key); ok {
		return vec, nil
	}

	// The shared call outlives any single caller; each caller still stops
	// waiting when its own context is done.
	ch := c.group.DoChan(key, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		vec, err := c.next.Embed(shared, text)
		if err != nil {
			return nil, err
		}
		c.store(shared, key, vec)
		return vec, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	}
}

func (c *Cached) EmbedBatch(ctx context.Context, texts []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(texts))
	keys := make(map[string]string, len(texts))
	var misses []string

	for _, t := range texts {
		if _, seen := keys[t]; seen {
			continue
		}
		key := Key(c.model, t)
		keys[t] = key
		if vec, ok := c.lookup(ctx, key); ok {
			out[t] = vec
			continue
		}
		misses = append(misses, t)
	}

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.next.EmbedBatch(ctx, misses)
	if err != nil {
		return nil, err
	}
	for t, vec := range fetched {
		out[t] = vec
		if key, ok := keys[t]; ok {
			c.store(ctx, key, vec)
		}
	}
	return out, nil
}

func (c *Cached) lookup(ctx context.Context, key string) ([]float32, bool) {
	vec, err := c.cache.Get(ctx, key)
	switch {
	case err == nil && len(vec) > 0:
		c.metrics.Hit(c.cache.Name())
		return vec, true
	case err == nil, errors.Is(err, ErrCacheMiss):
		c.metrics.Miss(c.cache.Name())
	default:
		c.metrics.Error(c.cache.Name(), "get")
		c.metrics.Miss(c.cache.Name())
		log.FromCtx(ctx).Warn().Err(err).Str("cache", c.cache.Name()).Msg("embedding cache read failed")
	}
	return nil, false
}

func (c *Cached) store(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	if err := c.cache.Set(ctx, key, vec); err != nil {
		c.metrics.Error(c.cache.Name(), "set")
		log.FromCtx(ctx).Warn().Err(err).Str("cache", c.cache.Name()).Msg("embedding cache write failed")
	}
}
