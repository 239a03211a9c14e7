package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumrag/internal/embedding"
)

func norm(v []float32) float64 {
	s := 0.0
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func dot(a, b []float32) float64 {
	s := 0.0
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestEmbedder(t *testing.T) {
	ctx := context.Background()
	corpus := []string{
		"Joe Duplantier recorded the guitars at Le Studio des Milans.",
		"The album closes with a long instrumental track about whales.",
		"Mario Duplantier plays double bass drums throughout.",
	}

	t.Run("ShouldFailBeforePrepare", func(t *testing.T) {
		_, err := NewEmbedder().EmbedQuery(ctx, "guitars")

		assert.ErrorIs(t, err, embedding.ErrNotPrepared)
	})

	t.Run("ShouldRejectEmptyCorpus", func(t *testing.T) {
		assert.Error(t, NewEmbedder().Prepare(ctx, nil))
		assert.Error(t, NewEmbedder().Prepare(ctx, []string{"the and of"}))
	})

	t.Run("ShouldProduceNormalizedVectors", func(t *testing.T) {
		e := NewEmbedder()
		require.NoError(t, e.Prepare(ctx, corpus))

		vecs, err := e.EmbedDocuments(ctx, corpus)

		require.NoError(t, err)
		require.Len(t, vecs, 3)
		for _, v := range vecs {
			assert.Len(t, v, e.Dimension())
			assert.InDelta(t, 1.0, norm(v), 1e-5)
		}
	})

	t.Run("ShouldRankMatchingDocumentFirst", func(t *testing.T) {
		e := NewEmbedder()
		require.NoError(t, e.Prepare(ctx, corpus))
		docs, err := e.EmbedDocuments(ctx, corpus)
		require.NoError(t, err)

		q, err := e.EmbedQuery(ctx, "who plays the drums?")

		require.NoError(t, err)
		assert.Greater(t, dot(q, docs[2]), dot(q, docs[0]))
		assert.Greater(t, dot(q, docs[2]), dot(q, docs[1]))
	})

	t.Run("ShouldReturnZeroVectorOutOfVocabulary", func(t *testing.T) {
		e := NewEmbedder()
		require.NoError(t, e.Prepare(ctx, corpus))

		q, err := e.EmbedQuery(ctx, "zzz qqq")

		require.NoError(t, err)
		assert.True(t, embedding.IsZero(q))
	})
}
