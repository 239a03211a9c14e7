package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumrag/internal/domain"
)

func doc(section, content string) domain.Document {
	return domain.Document{
		ID:      "doc1",
		Path:    "data/theLink/" + section + ".txt",
		Content: content,
		Metadata: map[string]string{
			domain.MetaAlbum:   "The Link",
			domain.MetaSection: section,
		},
	}
}

func TestSentenceChunker(t *testing.T) {
	t.Run("ShouldOverlapSentences", func(t *testing.T) {
		c := NewSentenceChunker(2, 1)

		chunks, err := c.Chunk(doc("overview", "One. Two. Three. Four."))

		require.NoError(t, err)
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}
		assert.Equal(t, []string{"One. Two.", "Two. Three.", "Three. Four."}, texts)
		assert.Equal(t, "doc1:2", chunks[2].ChunkID)
		assert.Equal(t, "The Link", chunks[2].Metadata[domain.MetaAlbum])
	})

	t.Run("ShouldKeepTextWithoutPunctuation", func(t *testing.T) {
		chunks, err := NewSentenceChunker(5, 0).Chunk(doc("overview", "  no punctuation here "))

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "no punctuation here", chunks[0].Text)
	})

	t.Run("ShouldKeepTrailingFragment", func(t *testing.T) {
		chunks, err := NewSentenceChunker(5, 0).Chunk(doc("overview", "Released in 2003! Produced by Joe Duplantier"))

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "Released in 2003! Produced by Joe Duplantier", chunks[0].Text)
	})

	t.Run("ShouldTerminateWhenOverlapTooLarge", func(t *testing.T) {
		chunks, err := NewSentenceChunker(2, 5).Chunk(doc("overview", "A. B. C."))

		require.NoError(t, err)
		assert.Len(t, chunks, 2)
	})
}

func TestRecursiveChunker(t *testing.T) {
	t.Run("ShouldRespectSizeBudget", func(t *testing.T) {
		c, err := NewRecursiveChunker(100, 20)
		require.NoError(t, err)
		para := strings.Repeat("Gojira recorded the album in their own studio. ", 4)
		content := para + "\n\n" + para + "\n\n" + para

		chunks, err := c.Chunk(doc("production_recording", content))

		require.NoError(t, err)
		require.Greater(t, len(chunks), 3)
		for i, ch := range chunks {
			assert.LessOrEqual(t, len(ch.Text), 100)
			assert.Equal(t, i, ch.Index)
			assert.Equal(t, "production_recording", ch.Metadata[domain.MetaSection])
		}
	})

	t.Run("ShouldRejectBadSettings", func(t *testing.T) {
		_, err := NewRecursiveChunker(0, 0)
		assert.Error(t, err)
		_, err = NewRecursiveChunker(100, 100)
		assert.Error(t, err)
	})
}

func TestSectionChunker(t *testing.T) {
	prose, err := NewRecursiveChunker(50, 10)
	require.NoError(t, err)
	c := NewSectionChunker(prose, []string{"tracklist", "basic_info"})
	tracklist := "1. Connected\n2. Remembrance\n3. Torii\n4. Indians\n5. Inward Movements\n6. Embrace the World"

	t.Run("ShouldKeepTracklistWhole", func(t *testing.T) {
		chunks, err := c.Chunk(doc("tracklist", tracklist+"\n"))

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, tracklist, chunks[0].Text)
		assert.Equal(t, TypeEnumeration, chunks[0].Metadata[domain.MetaType])
	})

	t.Run("ShouldTagFacts", func(t *testing.T) {
		chunks, err := c.Chunk(doc("basic_info", "Released: 2003\nLabel: Gabriel Editions"))

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, TypeFacts, chunks[0].Metadata[domain.MetaType])
	})

	t.Run("ShouldSplitProse", func(t *testing.T) {
		chunks, err := c.Chunk(doc("overview", strings.Repeat("The Link is the second album. ", 5)))

		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)
		for _, ch := range chunks {
			assert.Equal(t, TypeProse, ch.Metadata[domain.MetaType])
		}
	})

	t.Run("ShouldSkipEmptyWholeSection", func(t *testing.T) {
		chunks, err := c.Chunk(doc("tracklist", "  \n"))

		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("ShouldNotLeakMetadataBetweenChunks", func(t *testing.T) {
		d := doc("overview", strings.Repeat("Duplantier brothers. ", 10))
		chunks, err := c.Chunk(d)
		require.NoError(t, err)

		chunks[0].Metadata["x"] = "y"

		assert.NotContains(t, chunks[1].Metadata, "x")
		assert.NotContains(t, d.Metadata, domain.MetaType)
	})
}
