package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/workbot/internal/config"
	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/pkg/log"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderCustom     = "custom"
)

const (
	openAIBaseURL     = "https://api.openai.com"
	openRouterBaseURL = "https://openrouter.ai/api"
	ollamaBaseURL     = "http://localhost:11434"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	pc := OpenAICompatibleConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		pc.BaseURL = orDefault(cfg.BaseURL, openAIBaseURL)
	case ProviderOpenRouter:
		pc.BaseURL = orDefault(cfg.BaseURL, openRouterBaseURL)
		pc.ExtraHeaders = map[string]string{
			"X-Title": core.WorkbotName,
		}
	case ProviderOllama:
		pc.BaseURL = orDefault(cfg.BaseURL, ollamaBaseURL)
	case ProviderCustom:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("custom llm provider requires LLM_BASE_URL")
		}
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	return NewOpenAICompatible(pc), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
