package router

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"albumrag/internal/catalog"
	"albumrag/internal/domain"
)

// ErrNoPlan is returned when the model output holds no usable JSON object.
var ErrNoPlan = errors.New("classifier output is not a JSON object")

var (
	fenceJSONRe = regexp.MustCompile("```json\\n?")
	fenceRe     = regexp.MustCompile("```\\n?")
	// An object with at most one level of nesting that mentions query_type.
	planObjectRe = regexp.MustCompile(`\{(?:[^{}]|\{[^{}]*\})*"query_type"(?:[^{}]|\{[^{}]*\})*\}`)
)

// LLMClassifier asks the generation model to classify a query and parses
// its JSON answer.
type LLMClassifier struct {
	catalog   *catalog.Catalog
	generator domain.Generator
	validator *Validator
}

func NewLLMClassifier(c *catalog.Catalog, g domain.Generator) *LLMClassifier {
	return &LLMClassifier{catalog: c, generator: g, validator: NewValidator(c)}
}

// Classify returns a validated plan with method llm, or an error when the
// model call fails or its output cannot be parsed.
func (l *LLMClassifier) Classify(ctx context.Context, query string) (RoutingPlan, error) {
	raw, err := l.generator.Generate(ctx, l.prompt(query))
	if err != nil {
		return RoutingPlan{}, fmt.Errorf("classify query: %w", err)
	}
	obj, err := parsePlanJSON(raw)
	if err != nil {
		return RoutingPlan{}, err
	}
	return l.validator.Validate(obj, MethodLLM), nil
}

func (l *LLMClassifier) prompt(query string) string {
	sections := strings.Join(l.catalog.SectionIDs(), ", ")
	albums := l.catalog.AlbumNames()

	var hints strings.Builder
	for _, s := range l.catalog.Sections {
		if s.Hint != "" {
			fmt.Fprintf(&hints, "- %s → %q\n", s.Hint, s.ID)
		}
	}

	quoted := make([]string, len(albums))
	for i, a := range albums {
		quoted[i] = fmt.Sprintf("%q", a)
	}

	return fmt.Sprintf(`Analyze this query about %s: %q

Your task is to determine:
1. Query type: Is this comparing albums ("compare"), asking about one specific thing ("single"), or covering multiple sections ("multi_section")?
2. Relevant sections: Which sections would contain the answer? Available: %s
3. Albums mentioned: Which album(s)? Options: %s, or "both" if comparing

Detect comparison keywords: %s, between

For sections, consider:
%s
Output ONLY valid JSON in this exact format:
{
    "query_type": "single" or "compare" or "multi_section",
    "sections": ["section1", "section2"],
    "albums": ["album1"] or [%s],
    "confidence": 0.0-1.0
}

Be specific with sections. If unsure about section, default to [%q]. If comparing, include every album being compared.`,
		l.catalog.Subject, query,
		sections,
		strings.Join(albums, ", "),
		strings.Join(l.catalog.CompareTriggers, ", "),
		hints.String(),
		strings.Join(quoted, ", "),
		l.catalog.DefaultSection,
	)
}

// extractPlanJSON pulls the routing object out of a model reply that may
// be wrapped in prose or code fences.
func extractPlanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = fenceJSONRe.ReplaceAllString(s, "")
	s = fenceRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if m := planObjectRe.FindString(s); m != "" {
		return m
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return s
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s
}

func parsePlanJSON(raw string) (gjson.Result, error) {
	js := extractPlanJSON(raw)
	if !gjson.Valid(js) {
		return gjson.Result{}, fmt.Errorf("%w: %.120q", ErrNoPlan, raw)
	}
	obj := gjson.Parse(js)
	if !obj.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: %.120q", ErrNoPlan, raw)
	}
	return obj, nil
}
