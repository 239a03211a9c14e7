package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, charmlog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, charmlog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, charmlog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, charmlog.InfoLevel, ParseLevel(""))
	assert.Equal(t, charmlog.InfoLevel, ParseLevel("verbose"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "debug", Output: &buf, JSON: true})

	l.Debug("routing decided", "method", "llm")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "routing decided", line["msg"])
	assert.Equal(t, "llm", line["method"])
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "warn", Output: &buf})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_Interface(t *testing.T) {
	t.Run("ShouldSatisfyLoggerInterface", func(t *testing.T) {
		var l Logger = NewLogger(DefaultConfig())
		assert.NotNil(t, l)

		l = GetDefault()
		assert.NotNil(t, l)
	})

	t.Run("ShouldAttachFieldsWithWith", func(t *testing.T) {
		prev := GetDefault()
		t.Cleanup(func() { defaultLogger = prev })
		var buf bytes.Buffer
		Init(&Config{Level: "info", Output: &buf, JSON: true})

		var l Logger = With("component", "router")
		l.Info("query routed")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "query routed", line["msg"])
		assert.Equal(t, "router", line["component"])
	})
}
