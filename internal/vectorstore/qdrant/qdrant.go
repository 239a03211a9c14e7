package qdrant

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"albumrag/internal/domain"
)

const (
	payloadText       = "text"
	payloadChunkID    = "chunk_id"
	payloadDocumentID = "document_id"
	payloadIndex      = "index"
)

// indexedFields get keyword payload indexes so filtered search stays fast.
var indexedFields = []string{domain.MetaAlbum, domain.MetaSection}

// Storage stores chunks in a Qdrant collection over gRPC.
// It assumes cosine distance and creates the collection if missing.
type Storage struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

type Config struct {
	// URL is the Qdrant gRPC address, e.g. "http://localhost:6334".
	URL        string
	APIKey     string
	Collection string
}

func NewStorage(cfg Config) (*Storage, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}
	raw := cfg.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}
	port := 6334
	if u.Port() != "" {
		if port, err = strconv.Atoi(u.Port()); err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &Storage{client: client, collection: cfg.Collection}, nil
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}
	return s.create(ctx)
}

func (s *Storage) create(ctx context.Context) error {
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection %s: %w", s.collection, err)
	}
	for _, field := range indexedFields {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      field,
			FieldType:      qdrant.PtrOf(qdrant.FieldType_FieldTypeKeyword),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("qdrant index %s.%s: %w", s.collection, field, err)
		}
	}
	return nil
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(chunks))
	for i := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(chunks[i].ChunkID)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: toPayload(chunks[i]),
		}
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert %d points: %w", len(points), err)
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, topK int, filter *domain.Filter) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	limit := uint64(topK)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		Filter:         toFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}
	results := make([]domain.SearchResult, 0, len(points))
	for _, p := range points {
		results = append(results, domain.SearchResult{Chunk: fromPayload(p.GetPayload()), Score: p.GetScore()})
	}
	return results, nil
}

// Clear drops the collection and recreates it empty when the dimension is
// known.
func (s *Storage) Clear(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant collection %s: %w", s.collection, err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("qdrant drop collection %s: %w", s.collection, err)
		}
	}
	if s.dimension == 0 {
		return nil
	}
	return s.create(ctx)
}

func (s *Storage) Close() error {
	return s.client.Close()
}

// pointID derives a stable UUID so re-ingesting a chunk overwrites it.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("albumrag:"+chunkID)).String()
}

// toFilter flattens nested conjunctions into one Must list.
func toFilter(f *domain.Filter) *qdrant.Filter {
	if f == nil {
		return nil
	}
	return &qdrant.Filter{Must: conditions(f)}
}

func conditions(f *domain.Filter) []*qdrant.Condition {
	switch f.Op {
	case domain.OpEq:
		return []*qdrant.Condition{fieldCondition(f.Key, &qdrant.Match{
			MatchValue: &qdrant.Match_Keyword{Keyword: f.Values[0]},
		})}
	case domain.OpIn:
		return []*qdrant.Condition{fieldCondition(f.Key, &qdrant.Match{
			MatchValue: &qdrant.Match_Keywords{
				Keywords: &qdrant.RepeatedStrings{Strings: append([]string(nil), f.Values...)},
			},
		})}
	case domain.OpAnd:
		var out []*qdrant.Condition
		for _, c := range f.Clauses {
			out = append(out, conditions(c)...)
		}
		return out
	}
	return nil
}

func fieldCondition(key string, match *qdrant.Match) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{Key: key, Match: match},
		},
	}
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func toPayload(ch domain.Chunk) map[string]*qdrant.Value {
	payload := make(map[string]*qdrant.Value, len(ch.Metadata)+4)
	for k, v := range ch.Metadata {
		payload[k] = stringValue(v)
	}
	payload[payloadText] = stringValue(ch.Text)
	payload[payloadChunkID] = stringValue(ch.ChunkID)
	payload[payloadDocumentID] = stringValue(ch.DocumentID)
	payload[payloadIndex] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(ch.Index)}}
	return payload
}

func fromPayload(payload map[string]*qdrant.Value) domain.Chunk {
	ch := domain.Chunk{Metadata: make(map[string]string)}
	for k, v := range payload {
		switch k {
		case payloadText:
			ch.Text = v.GetStringValue()
		case payloadChunkID:
			ch.ChunkID = v.GetStringValue()
		case payloadDocumentID:
			ch.DocumentID = v.GetStringValue()
		case payloadIndex:
			ch.Index = int(v.GetIntegerValue())
		default:
			if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				ch.Metadata[k] = s.StringValue
			}
		}
	}
	return ch
}
