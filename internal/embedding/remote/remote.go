// Package remote embeds text through a provider API (Ollama or an
// OpenAI-compatible endpoint) with retry and exponential backoff.
package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"albumrag/internal/config"
)

const (
	defaultBaseDelay = 200 * time.Millisecond
	maxDelay         = 5 * time.Second
)

// Embedder is a remote embeddings client implementing domain.Embedder.
type Embedder struct {
	name       string
	impl       embeddings.Embedder
	maxRetries uint64
	baseDelay  time.Duration
}

// New creates an embedder for the configured provider. No request is made
// until the first embed call.
func New(cfg config.RemoteEmbedderConfig) (*Embedder, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	opts := []embeddings.Option{embeddings.WithStripNewLines(false)}
	if cfg.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	impl, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s embedder: %w", cfg.Provider, err)
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return Wrap(cfg.Provider+"/"+cfg.Model, impl, uint64(retries), defaultBaseDelay), nil
}

// Wrap retries an existing langchaingo embedder up to maxRetries times,
// starting at baseDelay and doubling up to a 5s cap.
func Wrap(name string, impl embeddings.Embedder, maxRetries uint64, baseDelay time.Duration) *Embedder {
	return &Embedder{name: name, impl: impl, maxRetries: maxRetries, baseDelay: baseDelay}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return e.name }

// Prepare is not required for remote embedding.
func (e *Embedder) Prepare(context.Context, []string) error { return nil }

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := e.do(ctx, func(ctx context.Context) error {
		vecs, err := e.impl.EmbedDocuments(ctx, texts)
		if err != nil {
			return err
		}
		if len(vecs) != len(texts) {
			return fmt.Errorf("got %d embeddings for %d texts", len(vecs), len(texts))
		}
		out = vecs
		return nil
	})
	return out, err
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := e.do(ctx, func(ctx context.Context) error {
		vec, err := e.impl.EmbedQuery(ctx, text)
		if err != nil {
			return err
		}
		if len(vec) == 0 {
			return errors.New("no embedding returned")
		}
		out = vec
		return nil
	})
	return out, err
}

// do retries fn on every failure except context cancellation.
func (e *Embedder) do(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(e.maxRetries, retry.WithCappedDuration(maxDelay, retry.NewExponential(e.baseDelay)))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return fmt.Errorf("%s embeddings failed: %w", e.name, err)
	}
	return nil
}

func newClient(cfg config.RemoteEmbedderConfig) (embeddings.EmbedderClient, error) {
	switch cfg.Provider {
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		return ollama.New(opts...)
	case "openai":
		opts := []openai.Option{openai.WithEmbeddingModel(cfg.Model)}
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
		return nil, fmt.Errorf("unknown embedder provider: %s", cfg.Provider)
	}
}
