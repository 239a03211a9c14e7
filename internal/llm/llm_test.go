package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"albumrag/internal/config"
)

type fakeModel struct {
	reply    string
	err      error
	noChoice bool
	got      []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.got = messages
	for _, o := range options {
		o(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.noChoice {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}, {Content: "ignored"}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("ShouldReturnFirstChoiceVerbatim", func(t *testing.T) {
		m := &fakeModel{reply: "  The Link has 10 tracks.\n"}
		out, err := Wrap("fake", m, llms.WithTemperature(0.2)).Generate(context.Background(), "How many?")

		require.NoError(t, err)
		assert.Equal(t, "  The Link has 10 tracks.\n", out)
		require.Len(t, m.got, 1)
		assert.Equal(t, llms.ChatMessageTypeHuman, m.got[0].Role)
		assert.Equal(t, llms.TextContent{Text: "How many?"}, m.got[0].Parts[0])
		assert.InDelta(t, 0.2, m.opts.Temperature, 1e-9)
	})

	t.Run("ShouldWrapModelError", func(t *testing.T) {
		boom := errors.New("connection refused")
		_, err := Wrap("fake", &fakeModel{err: boom}).Generate(context.Background(), "q")

		assert.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "fake")
	})

	t.Run("ShouldFailWithoutChoices", func(t *testing.T) {
		_, err := Wrap("fake", &fakeModel{noChoice: true}).Generate(context.Background(), "q")

		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestNew(t *testing.T) {
	t.Run("ShouldBuildOllamaWithoutNetwork", func(t *testing.T) {
		g, err := New(config.LLMConfig{Provider: "ollama", Model: "llama3.2:3b", BaseURL: "http://localhost:11434"})

		require.NoError(t, err)
		assert.Equal(t, "ollama/llama3.2:3b", g.Name())
	})

	t.Run("ShouldRequireOpenAIKey", func(t *testing.T) {
		t.Setenv("ALBUMRAG_TEST_KEY", "")
		_, err := New(config.LLMConfig{Provider: "openai", Model: "gpt-4o-mini", APIKeyEnv: "ALBUMRAG_TEST_KEY"})

		assert.ErrorContains(t, err, "ALBUMRAG_TEST_KEY")
	})

	t.Run("ShouldRejectUnknownProvider", func(t *testing.T) {
		_, err := New(config.LLMConfig{Provider: "bard"})

		assert.ErrorContains(t, err, "unsupported")
	})
}
