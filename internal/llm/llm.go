// Package llm adapts langchaingo chat models to the single-prompt generator
// used for routing and answering.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"albumrag/internal/config"
)

// ErrEmptyResponse is returned when the model produced no choices.
var ErrEmptyResponse = errors.New("llm returned no choices")

// Generator sends one user prompt and returns the first choice verbatim.
type Generator struct {
	name  string
	model llms.Model
	opts  []llms.CallOption
}

// New builds a Generator for the configured provider.
func New(cfg config.LLMConfig) (*Generator, error) {
	model, err := newModel(cfg)
	if err != nil {
		return nil, err
	}
	var opts []llms.CallOption
	if cfg.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(cfg.Temperature))
	}
	return Wrap(cfg.Provider+"/"+cfg.Model, model, opts...), nil
}

// Wrap builds a Generator around an existing model.
func Wrap(name string, model llms.Model, opts ...llms.CallOption) *Generator {
	return &Generator{name: name, model: model, opts: opts}
}

func (g *Generator) Name() string { return g.name }

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, g.opts...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.name, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", g.name, ErrEmptyResponse)
	}
	return resp.Choices[0].Content, nil
}

func newModel(cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		return ollama.New(opts...)
	case "openai":
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.APIKeyEnv != "" {
			key := os.Getenv(cfg.APIKeyEnv)
			if key == "" {
				return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
			}
			opts = append(opts, openai.WithToken(key))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
