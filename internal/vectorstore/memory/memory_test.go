package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumrag/internal/domain"
)

func chunk(id, album, section string) domain.Chunk {
	return domain.Chunk{ChunkID: id, Text: id, Metadata: map[string]string{
		domain.MetaAlbum:   album,
		domain.MetaSection: section,
	}}
}

func ids(results []domain.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Chunk.ChunkID
	}
	return out
}

func seeded(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx,
		[]domain.Chunk{
			chunk("a", "The Link", "tracklist"),
			chunk("b", "The Link", "overview"),
			chunk("c", "From Mars to Sirius", "tracklist"),
			chunk("d", "From Mars to Sirius", "overview"),
		},
		[][]float32{{1, 0}, {0.6, 0.8}, {0.8, 0.6}, {0, 1}},
	))
	return s
}

func TestStorage_Search(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	t.Run("ShouldRankByCosine", func(t *testing.T) {
		res, err := s.Search(ctx, []float32{1, 0}, 3, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "b"}, ids(res))
		assert.InDelta(t, 1.0, res[0].Score, 1e-6)
	})

	t.Run("ShouldApplyFilter", func(t *testing.T) {
		f := domain.And(domain.Eq(domain.MetaAlbum, "From Mars to Sirius"), domain.In(domain.MetaSection, "tracklist", "overview"))

		res, err := s.Search(ctx, []float32{1, 0}, 10, f)

		require.NoError(t, err)
		assert.Equal(t, []string{"c", "d"}, ids(res))
	})

	t.Run("ShouldReturnEmptyForNoMatch", func(t *testing.T) {
		res, err := s.Search(ctx, []float32{1, 0}, 10, domain.Eq(domain.MetaSection, "philosophy"))

		require.NoError(t, err)
		assert.Empty(t, res)
	})

	t.Run("ShouldKeepInsertionOrderOnTies", func(t *testing.T) {
		res, err := s.Search(ctx, []float32{0, 0}, 4, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(res))
	})
}

func TestStorage_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("ShouldReplaceByChunkID", func(t *testing.T) {
		s := seeded(t)
		replaced := chunk("a", "The Link", "philosophy")

		require.NoError(t, s.Upsert(ctx, []domain.Chunk{replaced}, [][]float32{{0, 1}}))

		assert.Equal(t, 4, s.Len())
		res, err := s.Search(ctx, []float32{0, 1}, 1, domain.Eq(domain.MetaSection, "philosophy"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(res))
	})

	t.Run("ShouldRejectMismatches", func(t *testing.T) {
		s := seeded(t)

		assert.Error(t, s.Upsert(ctx, []domain.Chunk{chunk("x", "", "")}, nil))
		assert.Error(t, s.Upsert(ctx, []domain.Chunk{chunk("x", "", "")}, [][]float32{{1, 2, 3}}))
	})

	t.Run("ShouldClear", func(t *testing.T) {
		s := seeded(t)

		require.NoError(t, s.Clear(ctx))

		assert.Equal(t, 0, s.Len())
	})

	t.Run("ShouldResetOnDimensionChange", func(t *testing.T) {
		s := seeded(t)

		require.NoError(t, s.Init(ctx, 3))

		assert.Equal(t, 0, s.Len())
		assert.Error(t, s.Init(ctx, 0))
	})
}
