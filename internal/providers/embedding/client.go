// Package embedding turns text into vectors through an OpenAI-compatible
// embeddings endpoint, with optional caching in front of it.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/pkg/retry"
	"golang.org/x/sync/errgroup"
)

var ErrEmptyInput = errors.New("empty embedding input")

type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	BatchSize   int
	MaxTokens   int
	Concurrency int
	Timeout     time.Duration
	Retry       *retry.Config
}

// Client calls POST {base}/v1/embeddings. It works with OpenAI, OpenRouter,
// Ollama and vLLM style servers.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	batchSize   int
	maxTokens   int
	concurrency int
	retrier     *retry.Retrier
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry == nil {
		cfg.Retry = retry.NewDefaultConfig()
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		batchSize:   cfg.BatchSize,
		maxTokens:   cfg.MaxTokens,
		concurrency: cfg.Concurrency,
		retrier:     retry.NewRetrier(cfg.Retry),
	}
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	vecs, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs[0]) == 0 {
		return nil, fmt.Errorf("empty embedding returned for model %s", c.model)
	}
	return vecs[0], nil
}

// EmbedBatch embeds distinct non-empty texts in sub-batches of at most
// batchSize, sent concurrently. Texts the server returned no vector for are
// absent from the result. Any failed sub-batch fails the whole call.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) (map[string][]float32, error) {
	unique := make([]string, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}

	out := make(map[string][]float32, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for start := 0; start < len(unique); start += c.batchSize {
		batch := unique[start:min(start+c.batchSize, len(unique))]
		g.Go(func() error {
			vecs, err := c.embed(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for i, vec := range vecs {
				if len(vec) > 0 {
					out[batch[i]] = vec
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// embed returns one vector per input, in input order. Missing entries are nil.
func (c *Client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	payload := embeddingRequest{
		Model: c.model,
		Input: make([]string, len(texts)),
	}
	for i, t := range texts {
		payload.Input[i] = Truncate(t, c.maxTokens)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	var vecs [][]float32
	err = c.retrier.Do(ctx, func() error {
		vecs, err = c.post(ctx, body, len(texts))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings %s: %w", c.model, err)
	}
	return vecs, nil
}

func (c *Client) post(ctx context.Context, body []byte, n int) ([][]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.WorkbotUserAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, retry.Permanent(err)
	}

	var result embeddingResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, retry.Permanent(fmt.Errorf("decode: %w", err))
	}

	vecs := make([][]float32, n)
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= n {
			return nil, retry.Permanent(fmt.Errorf("response index %d out of range for %d inputs", d.Index, n))
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}
