package main

import (
	"fmt"
	"os"

	"albumrag/internal/chunker"
	"albumrag/internal/config"
	"albumrag/internal/domain"
	"albumrag/internal/embedding/remote"
	"albumrag/internal/embedding/tfidf"
	"albumrag/internal/executor"
	"albumrag/internal/llm"
	"albumrag/internal/logger"
	"albumrag/internal/metrics"
	"albumrag/internal/router"
	"albumrag/internal/service"
	"albumrag/internal/summarizer"
	"albumrag/internal/vectorstore/memory"
	"albumrag/internal/vectorstore/qdrant"
)

// app holds the assembled component graph.
type app struct {
	cfg     *config.AppConfig
	svc     *service.Service
	metrics *metrics.Metrics
	store   domain.VectorStore
	log     logger.Logger
}

func (a *app) Close() error { return a.store.Close() }

func buildApp(cfg *config.AppConfig, log logger.Logger) (*app, error) {
	cat, err := cfg.BuildCatalog()
	if err != nil {
		return nil, err
	}
	m := metrics.New()

	gen, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm init failed: %w", err)
	}

	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "remote":
		if emb, err = remote.New(*cfg.Embedder.Remote); err != nil {
			return nil, fmt.Errorf("remote embedder init failed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var prose domain.Chunker
	switch cfg.Chunker.Type {
	case "recursive", "":
		if prose, err = chunker.NewRecursiveChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap); err != nil {
			return nil, err
		}
	case "sentence":
		prose = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var st domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		var apiKey string
		if q.APIKeyEnv != "" {
			apiKey = os.Getenv(q.APIKeyEnv)
		}
		if st, err = qdrant.NewStorage(qdrant.Config{URL: q.URL, APIKey: apiKey, Collection: q.Collection}); err != nil {
			return nil, fmt.Errorf("qdrant init failed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		// Album titles and the band name appear in every sentence.
		sum = summarizer.NewFrequencySummarizer(summarizer.WithStopwords(append(cat.AlbumNames(), cat.Subject)...))
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	// A nil generator leaves the router on keyword classification alone.
	var classifierGen domain.Generator = gen
	if cfg.Router.KeywordOnly {
		classifierGen = nil
	}
	rt := router.New(cat, classifierGen,
		router.WithThreshold(cfg.Router.ConfidenceThreshold),
		router.WithMetrics(m),
		router.WithLogger(log),
	)
	idx := service.NewIndex(emb, st, log)
	ex := executor.New(cat, idx, gen, executor.WithMetrics(m), executor.WithLogger(log))

	svc := service.New(service.Deps{
		Catalog:             cat,
		Router:              rt,
		Executor:            ex,
		Index:               idx,
		Chunker:             chunker.NewSectionChunker(prose, cfg.Corpus.WholeSections),
		Summarizer:          sum,
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
		Corpus:              cfg.Corpus,
		DefaultK:            cfg.Retrieval.DefaultK,
		Metrics:             m,
		Logger:              log,
	})
	return &app{cfg: cfg, svc: svc, metrics: m, store: st, log: log}, nil
}
