// Package router turns a free-text question into a RoutingPlan: which
// albums and sections to search, and whether to compare albums.
//
// The LLM classifier is tried first. Its plan is replaced by the keyword
// classifier's when the call or parse fails, or when its confidence is
// below the threshold. Every returned plan has passed the Validator.
package router

import (
	"context"

	"albumrag/internal/catalog"
	"albumrag/internal/domain"
	"albumrag/internal/logger"
	"albumrag/internal/metrics"
)

// Classifier is the primary, fallible classification strategy.
type Classifier interface {
	Classify(ctx context.Context, query string) (RoutingPlan, error)
}

type Router struct {
	primary   Classifier
	fallback  *KeywordClassifier
	validator *Validator
	threshold float64
	metrics   *metrics.Metrics
	log       logger.Logger
}

type Option func(*Router)

// WithThreshold sets the minimum primary confidence. Values outside (0, 1]
// are ignored.
func WithThreshold(t float64) Option {
	return func(r *Router) {
		if t > 0 && t <= 1 {
			r.threshold = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

func WithLogger(l logger.Logger) Option {
	return func(r *Router) { r.log = l }
}

// WithClassifier replaces the primary classifier.
func WithClassifier(c Classifier) Option {
	return func(r *Router) { r.primary = c }
}

// New builds a router whose primary classifier prompts g. A nil g leaves
// only the keyword classifier.
func New(c *catalog.Catalog, g domain.Generator, opts ...Option) *Router {
	r := &Router{
		fallback:  NewKeywordClassifier(c),
		validator: NewValidator(c),
		threshold: DefaultConfidenceThreshold,
		log:       logger.GetDefault(),
	}
	if g != nil {
		r.primary = NewLLMClassifier(c, g)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route never fails; the keyword classifier is the last resort.
func (r *Router) Route(ctx context.Context, query string) RoutingPlan {
	plan, ok := r.classifyPrimary(ctx, query)
	if !ok {
		plan = r.validator.ValidatePlan(r.fallback.Classify(query))
		plan.Method = MethodKeywords
	}
	r.metrics.RoutingDecision(string(plan.Method), string(plan.QueryType))
	r.log.Info("query routed",
		"type", plan.QueryType,
		"sections", plan.Sections,
		"albums", plan.Albums,
		"confidence", plan.Confidence,
		"method", plan.Method,
	)
	return plan
}

func (r *Router) classifyPrimary(ctx context.Context, query string) (RoutingPlan, bool) {
	if r.primary == nil {
		return RoutingPlan{}, false
	}
	plan, err := r.primary.Classify(ctx, query)
	if err != nil {
		r.metrics.ClassifierError()
		r.log.Warn("llm routing failed, using keyword fallback", "error", err)
		return RoutingPlan{}, false
	}
	plan = r.validator.ValidatePlan(plan)
	if plan.Confidence < r.threshold {
		r.log.Debug("llm routing below threshold, using keyword fallback",
			"confidence", plan.Confidence, "threshold", r.threshold)
		return RoutingPlan{}, false
	}
	plan.Method = MethodLLM
	return plan, true
}
