package router

import "strings"

// QueryType selects the retrieval strategy for a plan.
type QueryType string

const (
	QuerySingle       QueryType = "single"
	QueryCompare      QueryType = "compare"
	QueryMultiSection QueryType = "multi_section"
)

// ParseQueryType returns the recognized type for s, or false.
func ParseQueryType(s string) (QueryType, bool) {
	switch qt := QueryType(strings.TrimSpace(s)); qt {
	case QuerySingle, QueryCompare, QueryMultiSection:
		return qt, true
	}
	return "", false
}

// Method records which classifier produced a plan.
type Method string

const (
	MethodLLM      Method = "llm"
	MethodKeywords Method = "keyword_fallback"
)

// Default confidences used when a classifier does not supply one.
const (
	DefaultLLMConfidence     = 0.8
	DefaultKeywordConfidence = 0.6
)

// DefaultConfidenceThreshold is the minimum LLM confidence that avoids the
// keyword fallback.
const DefaultConfidenceThreshold = 0.7

// RoutingPlan is the retrieval decision for one query. Plans returned by
// Validate and Router.Route satisfy: QueryType is recognized, Sections and
// Albums are non-empty catalog members, Confidence is in [0, 1].
type RoutingPlan struct {
	QueryType  QueryType `json:"query_type"`
	Sections   []string  `json:"sections"`
	Albums     []string  `json:"albums"`
	Confidence float64   `json:"confidence"`
	Method     Method    `json:"method"`
}

func defaultConfidence(m Method) float64 {
	if m == MethodLLM {
		return DefaultLLMConfidence
	}
	return DefaultKeywordConfidence
}
