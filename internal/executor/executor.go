// Package executor runs a routing plan: it retrieves passages with metadata
// filters, assembles them into a context block and asks the generation
// model for the answer.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"albumrag/internal/catalog"
	"albumrag/internal/domain"
	"albumrag/internal/logger"
	"albumrag/internal/metrics"
	"albumrag/internal/router"
)

// ErrInvalidTopK is returned when fewer than one passage per search is
// requested.
var ErrInvalidTopK = errors.New("k must be at least 1")

// Retriever searches the document store.
type Retriever interface {
	Search(ctx context.Context, query string, k int, filter *domain.Filter) ([]domain.Passage, error)
}

// PairKey identifies one album/section retrieval of a comparison.
type PairKey struct {
	Album   string
	Section string
}

type Executor struct {
	catalog   *catalog.Catalog
	retriever Retriever
	generator domain.Generator
	metrics   *metrics.Metrics
	log       logger.Logger
}

type Option func(*Executor)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func WithLogger(l logger.Logger) Option {
	return func(e *Executor) { e.log = l }
}

func New(c *catalog.Catalog, r Retriever, g domain.Generator, opts ...Option) *Executor {
	e := &Executor{catalog: c, retriever: r, generator: g, log: logger.GetDefault()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute answers query according to plan, retrieving up to k passages per
// search. Retrieval and generation errors are returned as-is, wrapped.
func (e *Executor) Execute(ctx context.Context, query string, plan router.RoutingPlan, k int) (string, error) {
	if k < 1 {
		return "", ErrInvalidTopK
	}

	var prompt string
	if plan.QueryType == router.QueryCompare {
		results, err := e.retrieveForComparison(ctx, query, plan, k)
		if err != nil {
			return "", err
		}
		prompt = comparisonPrompt(e.catalog.Subject, query, comparisonContext(plan, results), plan)
	} else {
		passages, err := e.retrieveCombined(ctx, query, plan, k)
		if err != nil {
			return "", err
		}
		prompt = answerPrompt(e.catalog.Subject, query, joinPassages(passages), plan)
	}

	answer, err := e.generator.Generate(ctx, prompt)
	e.metrics.Generation(err)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// retrieveForComparison issues one search per album × section pair.
func (e *Executor) retrieveForComparison(ctx context.Context, query string, plan router.RoutingPlan, k int) (map[PairKey][]domain.Passage, error) {
	results := make(map[PairKey][]domain.Passage, len(plan.Albums)*len(plan.Sections))
	for _, album := range plan.Albums {
		for _, section := range plan.Sections {
			filter := domain.And(domain.Eq(domain.MetaAlbum, album), domain.Eq(domain.MetaSection, section))
			passages, err := e.retriever.Search(ctx, query, k, filter)
			e.metrics.Retrieval(err)
			if err != nil {
				return nil, fmt.Errorf("retrieve %s / %s: %w", album, section, err)
			}
			e.log.Debug("retrieved passages", "filter", filter, "count", len(passages))
			results[PairKey{Album: album, Section: section}] = passages
		}
	}
	return results, nil
}

func (e *Executor) retrieveCombined(ctx context.Context, query string, plan router.RoutingPlan, k int) ([]domain.Passage, error) {
	filter := e.combinedFilter(plan)
	passages, err := e.retriever.Search(ctx, query, k, filter)
	e.metrics.Retrieval(err)
	if err != nil {
		return nil, fmt.Errorf("retrieve %s: %w", filter, err)
	}
	e.log.Debug("retrieved passages", "filter", filter, "count", len(passages))
	return passages, nil
}

// combinedFilter matches the plan's albums and sections. The album clause
// is dropped when the plan covers the whole catalog.
func (e *Executor) combinedFilter(plan router.RoutingPlan) *domain.Filter {
	var albumClause, sectionClause *domain.Filter
	switch {
	case len(plan.Albums) == 1:
		albumClause = domain.Eq(domain.MetaAlbum, plan.Albums[0])
	case len(plan.Albums) > 1 && !e.catalog.CoversAllAlbums(plan.Albums):
		albumClause = domain.In(domain.MetaAlbum, plan.Albums...)
	}
	switch {
	case len(plan.Sections) == 1:
		sectionClause = domain.Eq(domain.MetaSection, plan.Sections[0])
	case len(plan.Sections) > 1:
		sectionClause = domain.In(domain.MetaSection, plan.Sections...)
	}
	return domain.And(albumClause, sectionClause)
}

// comparisonContext groups passages under one heading per album and one
// sub-heading per section. Pairs without passages are left out, and so are
// albums with nothing retrieved.
func comparisonContext(plan router.RoutingPlan, results map[PairKey][]domain.Passage) string {
	var blocks []string
	for _, album := range plan.Albums {
		var parts []string
		for _, section := range plan.Sections {
			passages := results[PairKey{Album: album, Section: section}]
			if len(passages) == 0 {
				continue
			}
			parts = append(parts, "["+strings.ToUpper(section)+"]\n"+joinPassages(passages))
		}
		if len(parts) == 0 {
			continue
		}
		blocks = append(blocks, "=== "+strings.ToUpper(album)+" ===\n"+strings.Join(parts, "\n\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func joinPassages(passages []domain.Passage) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n")
}
