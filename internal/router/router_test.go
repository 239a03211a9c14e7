package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumrag/internal/catalog"
	"albumrag/internal/metrics"
)

func TestRouter_Route(t *testing.T) {
	c := catalog.Default()
	ctx := context.Background()
	const query = "How many songs are in The Link?"

	keywordPlan := NewValidator(c).ValidatePlan(NewKeywordClassifier(c).Classify(query))
	keywordPlan.Method = MethodKeywords

	t.Run("ShouldUseConfidentLLMPlan", func(t *testing.T) {
		gen := &stubGenerator{response: `{"query_type": "multi_section", "sections": ["tracklist", "basic_info"], "albums": ["The Link"], "confidence": 0.95}`}
		plan := New(c, gen).Route(ctx, query)

		assert.Equal(t, RoutingPlan{QueryMultiSection, []string{"tracklist", "basic_info"}, []string{"The Link"}, 0.95, MethodLLM}, plan)
	})

	t.Run("ShouldAcceptConfidenceAtThreshold", func(t *testing.T) {
		gen := &stubGenerator{response: `{"query_type": "single", "sections": ["overview"], "albums": ["The Link"], "confidence": 0.7}`}
		plan := New(c, gen).Route(ctx, query)

		assert.Equal(t, MethodLLM, plan.Method)
		assert.Equal(t, []string{"overview"}, plan.Sections)
	})

	t.Run("ShouldFallBackOnLowConfidence", func(t *testing.T) {
		gen := &stubGenerator{response: `{"query_type": "compare", "sections": ["philosophy"], "albums": "both", "confidence": 0.4}`}
		plan := New(c, gen).Route(ctx, query)

		assert.Equal(t, keywordPlan, plan)
	})

	t.Run("ShouldFallBackOnParseFailure", func(t *testing.T) {
		gen := &stubGenerator{response: "no idea"}
		plan := New(c, gen).Route(ctx, query)

		assert.Equal(t, keywordPlan, plan)
	})

	t.Run("ShouldFallBackOnGeneratorError", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("model not loaded")}
		plan := New(c, gen).Route(ctx, query)

		assert.Equal(t, keywordPlan, plan)
	})

	t.Run("ShouldUseKeywordsWithoutGenerator", func(t *testing.T) {
		plan := New(c, nil).Route(ctx, query)

		assert.Equal(t, keywordPlan, plan)
	})

	t.Run("ShouldHonorCustomThreshold", func(t *testing.T) {
		gen := &stubGenerator{response: `{"query_type": "single", "sections": ["overview"], "confidence": 0.8}`}
		plan := New(c, gen, WithThreshold(0.85)).Route(ctx, query)

		assert.Equal(t, MethodKeywords, plan.Method)
	})
}

type fixedClassifier struct {
	plan RoutingPlan
}

func (f fixedClassifier) Classify(context.Context, string) (RoutingPlan, error) {
	return f.plan, nil
}

func TestRouter_ValidatesInjectedClassifier(t *testing.T) {
	c := catalog.Default()
	r := New(c, nil, WithClassifier(fixedClassifier{plan: RoutingPlan{
		QueryType:  "compare",
		Sections:   []string{"bogus"},
		Albums:     []string{"the link"},
		Confidence: 0.9,
	}}))

	plan := r.Route(context.Background(), "anything")

	assert.Equal(t, RoutingPlan{QueryCompare, []string{"overview"}, []string{"The Link"}, 0.9, MethodLLM}, plan)
}

func TestRouter_FallbackEqualsKeywordOutputForManyQueries(t *testing.T) {
	c := catalog.Default()
	v := NewValidator(c)
	k := NewKeywordClassifier(c)
	gen := &stubGenerator{response: `{"query_type": "single", "confidence": 0.1}`}
	r := New(c, gen)

	for _, q := range []string{
		"What is the guitar work like on From Mars to Sirius?",
		"Compare the technical analysis between The Link and From Mars to Sirius",
		"What are the differences in lyrical themes between both albums?",
		"Tell me about the production and recording of The Link",
		"What is The Link album about?",
	} {
		want := v.ValidatePlan(k.Classify(q))
		want.Method = MethodKeywords
		got := r.Route(context.Background(), q)
		assert.Equal(t, want, got, q)
		assertPlanInvariants(t, c, got)
	}
}

func TestRouter_RecordsMetrics(t *testing.T) {
	c := catalog.Default()
	m := metrics.New()
	r := New(c, &stubGenerator{err: errors.New("down")}, WithMetrics(m))

	r.Route(context.Background(), "compare both albums")
	r.Route(context.Background(), "tracklist of the link")

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var decisions, failures float64
	for _, f := range families {
		switch f.GetName() {
		case "albumrag_router_decisions_total":
			for _, metric := range f.GetMetric() {
				decisions += metric.GetCounter().GetValue()
			}
		case "albumrag_router_llm_classifier_errors_total":
			failures = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, decisions)
	assert.Equal(t, 2.0, failures)
}
