package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencySummarizer(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Gojira recorded The Link in their own studio. " +
		"The weather was cold. " +
		"The studio sessions shaped the Gojira sound on The Link. " +
		"Fans bought it."

	t.Run("ShouldKeepTopSentencesInOriginalOrder", func(t *testing.T) {
		out, err := s.Summarize(text, 2)

		require.NoError(t, err)
		assert.Equal(t, "Gojira recorded The Link in their own studio. The studio sessions shaped the Gojira sound on The Link.", out)
	})

	t.Run("ShouldReturnEverythingWhenShort", func(t *testing.T) {
		out, err := s.Summarize("One thing. Another thing.", 5)

		require.NoError(t, err)
		assert.Equal(t, "One thing. Another thing.", out)
	})

	t.Run("ShouldReturnTrimmedTextWithoutSentences", func(t *testing.T) {
		out, err := s.Summarize("  1) Connected\n2) Remembrance  ", 3)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "1) Connected"))
	})

	t.Run("ShouldIgnoreExtraStopwords", func(t *testing.T) {
		out, err := NewFrequencySummarizer(WithStopwords("Gojira", "The Link")).Summarize(text, 2)

		require.NoError(t, err)
		assert.Equal(t, "The studio sessions shaped the Gojira sound on The Link. Fans bought it.", out)
	})

	t.Run("ShouldTokenizeCurlyApostrophes", func(t *testing.T) {
		assert.Equal(t, []string{"gojira’s", "sound"}, tokenize("Gojira’s sound"))
	})
}
