// Package service wires routing, retrieval and generation into the
// question-answering operations exposed by the CLI, TUI and HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"albumrag/internal/catalog"
	"albumrag/internal/chunker"
	"albumrag/internal/config"
	"albumrag/internal/domain"
	"albumrag/internal/executor"
	"albumrag/internal/logger"
	"albumrag/internal/metrics"
	"albumrag/internal/router"
)

var (
	ErrEmptyQuery  = errors.New("query must not be empty")
	ErrNoDocuments = errors.New("no documents found")
)

// Answer is the result of one question.
type Answer struct {
	Answer  string             `json:"answer"`
	Query   string             `json:"query"`
	Routing router.RoutingPlan `json:"routing"`
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Documents int
	Chunks    int
	// Summaries holds a short extractive summary of each album's prose.
	Summaries map[string]string
}

// Deps are the collaborators of a Service. Chunker, Summarizer and Corpus
// are only needed for Ingest.
type Deps struct {
	Catalog             *catalog.Catalog
	Router              *router.Router
	Executor            *executor.Executor
	Index               *Index
	Chunker             domain.Chunker
	Summarizer          domain.Summarizer
	SummaryMaxSentences int
	Corpus              config.CorpusConfig
	DefaultK            int
	Metrics             *metrics.Metrics
	Logger              logger.Logger
}

type Service struct {
	catalog             *catalog.Catalog
	router              *router.Router
	executor            *executor.Executor
	index               *Index
	chunker             domain.Chunker
	summarizer          domain.Summarizer
	summaryMaxSentences int
	corpus              config.CorpusConfig
	defaultK            int
	metrics             *metrics.Metrics
	log                 logger.Logger
}

func New(d Deps) *Service {
	s := &Service{
		catalog:             d.Catalog,
		router:              d.Router,
		executor:            d.Executor,
		index:               d.Index,
		chunker:             d.Chunker,
		summarizer:          d.Summarizer,
		summaryMaxSentences: d.SummaryMaxSentences,
		corpus:              d.Corpus,
		defaultK:            d.DefaultK,
		metrics:             d.Metrics,
		log:                 d.Logger,
	}
	if s.defaultK <= 0 {
		s.defaultK = 10
	}
	if s.log == nil {
		s.log = logger.GetDefault()
	}
	return s
}

func (s *Service) DefaultK() int { return s.defaultK }

// Route returns the plan a query would be answered with, without retrieval.
func (s *Service) Route(ctx context.Context, query string) (router.RoutingPlan, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return router.RoutingPlan{}, ErrEmptyQuery
	}
	return s.router.Route(ctx, query), nil
}

// AnswerQuery routes the query and answers it from at most k passages per
// search. A zero k means the configured default; a negative k is rejected.
func (s *Service) AnswerQuery(ctx context.Context, query string, k int) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k == 0 {
		k = s.defaultK
	}
	if k < 1 {
		return nil, executor.ErrInvalidTopK
	}
	start := time.Now()
	plan := s.router.Route(ctx, query)
	answer, err := s.executor.Execute(ctx, query, plan, k)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	s.metrics.QueryDuration(string(plan.QueryType), elapsed)
	s.log.Debug("query answered", "query_type", plan.QueryType, "elapsed", elapsed)
	return &Answer{Answer: answer, Query: query, Routing: plan}, nil
}

// Ingest reads the corpus, chunks every section file and replaces the
// index contents.
func (s *Service) Ingest(ctx context.Context) (*IngestReport, error) {
	documents, err := LoadCorpus(s.corpus, s.catalog, s.log)
	if err != nil {
		return nil, err
	}
	var all []domain.Chunk
	prose := make(map[string]*strings.Builder)
	for _, d := range documents {
		chunks, err := s.chunker.Chunk(d)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", d.Path, err)
		}
		all = append(all, chunks...)
		s.log.Debug("chunked document", "path", d.Path, "section", d.Metadata[domain.MetaSection], "chunks", len(chunks))
		if len(chunks) > 0 && chunks[0].Metadata[domain.MetaType] == chunker.TypeProse {
			album := d.Metadata[domain.MetaAlbum]
			if prose[album] == nil {
				prose[album] = &strings.Builder{}
			}
			prose[album].WriteString("\n")
			prose[album].WriteString(d.Content)
		}
	}
	if err := s.index.Load(ctx, all); err != nil {
		return nil, err
	}

	report := &IngestReport{Documents: len(documents), Chunks: len(all), Summaries: make(map[string]string)}
	if s.summarizer != nil {
		for album, text := range prose {
			summary, err := s.summarizer.Summarize(text.String(), s.summaryMaxSentences)
			if err != nil {
				return nil, fmt.Errorf("summarize %s: %w", album, err)
			}
			report.Summaries[album] = summary
		}
	}
	s.log.Info("ingestion complete", "documents", report.Documents, "chunks", report.Chunks)
	return report, nil
}
