package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"albumrag/internal/domain"
	"albumrag/internal/embedding"
	"albumrag/internal/executor"
	"albumrag/internal/logger"
)

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Index embeds chunks into a vector store and searches them. It keeps the
// chunks it loaded so it can fall back to lexical ranking when the query
// vector carries no signal.
type Index struct {
	embedder domain.Embedder
	store    domain.VectorStore
	log      logger.Logger

	mu     sync.RWMutex
	chunks []domain.Chunk
}

var _ executor.Retriever = (*Index)(nil)

func NewIndex(embedder domain.Embedder, store domain.VectorStore, log logger.Logger) *Index {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Index{embedder: embedder, store: store, log: log}
}

// Load fits the embedder to the chunks and replaces the store contents.
func (ix *Index) Load(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return ErrNoDocuments
	}
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	if err := ix.embedder.Prepare(ctx, texts); err != nil {
		return fmt.Errorf("prepare %s embedder: %w", ix.embedder.Name(), err)
	}
	vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if err := ix.store.Init(ctx, len(vectors[0])); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	if err := ix.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	if err := ix.store.Upsert(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	ix.mu.Lock()
	ix.chunks = chunks
	ix.mu.Unlock()
	ix.log.Info("index loaded", "chunks", len(chunks), "embedder", ix.embedder.Name(), "dimension", len(vectors[0]))
	return nil
}

// Search returns up to k passages matching filter, most similar first.
func (ix *Index) Search(ctx context.Context, query string, k int, filter *domain.Filter) ([]domain.Passage, error) {
	vec, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		if errors.Is(err, embedding.ErrNotPrepared) {
			return nil, fmt.Errorf("index not loaded, run ingest first: %w", err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if embedding.IsZero(vec) && ix.hasChunks() {
		ix.log.Debug("query vector is empty, using lexical ranking", "filter", filter)
		return ix.lexicalSearch(query, k, filter), nil
	}
	res, err := ix.store.Search(ctx, vec, k, filter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if allZero(res) && ix.hasChunks() {
		ix.log.Debug("vector scores are all zero, using lexical ranking", "filter", filter)
		return ix.lexicalSearch(query, k, filter), nil
	}
	out := make([]domain.Passage, len(res))
	for i, r := range res {
		out[i] = toPassage(r)
	}
	return out, nil
}

func (ix *Index) hasChunks() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks) > 0
}

func allZero(res []domain.SearchResult) bool {
	for _, r := range res {
		if r.Score > 1e-9 {
			return false
		}
	}
	return true
}

// lexicalSearch ranks the filtered chunks by the Ochiai coefficient of
// their token sets.
func (ix *Index) lexicalSearch(query string, k int, filter *domain.Filter) []domain.Passage {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	qset := toTokenSet(query)
	var results []domain.SearchResult
	for _, ch := range ix.chunks {
		if !filter.Matches(ch.Metadata) {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: ch, Score: float32(overlapOchiai(qset, ch.Text))})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && k < len(results) {
		results = results[:k]
	}
	out := make([]domain.Passage, len(results))
	for i, r := range results {
		out[i] = toPassage(r)
	}
	return out
}

func toPassage(r domain.SearchResult) domain.Passage {
	return domain.Passage{Text: r.Chunk.Text, Metadata: r.Chunk.Metadata, Score: r.Score}
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai is |A∩B| / sqrt(|A||B|).
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	seen := toTokenSet(text)
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	inter := 0
	for t := range seen {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}
