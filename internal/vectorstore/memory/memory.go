package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"albumrag/internal/domain"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	chunks    []domain.Chunk
	byID      map[string]int
}

func NewStorage() *Storage { return &Storage{byID: make(map[string]int)} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != dimension {
		s.vectors = nil
		s.chunks = nil
		s.byID = make(map[string]int)
	}
	s.dimension = dimension
	return nil
}

// Upsert adds chunks, replacing any stored chunk with the same ChunkID.
func (s *Storage) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector %d: dimension %d, want %d", i, len(v), s.dimension)
		}
	}
	for i := range chunks {
		if j, ok := s.byID[chunks[i].ChunkID]; ok {
			s.chunks[j] = chunks[i]
			s.vectors[j] = vectors[i]
			continue
		}
		s.byID[chunks[i].ChunkID] = len(s.chunks)
		s.chunks = append(s.chunks, chunks[i])
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}

// Search returns up to topK chunks matching filter, best first. Equal scores
// keep insertion order.
func (s *Storage) Search(_ context.Context, vector []float32, topK int, filter *domain.Filter) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	results := make([]domain.SearchResult, 0, len(s.chunks))
	for i := range s.chunks {
		if !filter.Matches(s.chunks[i].Metadata) {
			continue
		}
		// vectors are assumed L2-normalized
		results = append(results, domain.SearchResult{Chunk: s.chunks[i], Score: dot(s.vectors[i], vector)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (s *Storage) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	s.byID = make(map[string]int)
	return nil
}

func (s *Storage) Close() error { return nil }

// Len reports the number of stored chunks.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
