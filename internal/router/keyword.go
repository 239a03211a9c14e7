package router

import (
	"sort"
	"strings"

	"albumrag/internal/catalog"
)

// maxKeywordSections caps how many sections the keyword classifier picks.
const maxKeywordSections = 2

// KeywordClassifier routes queries by substring matching against the
// catalog lexicon. It is deterministic and never fails.
type KeywordClassifier struct {
	catalog *catalog.Catalog
}

func NewKeywordClassifier(c *catalog.Catalog) *KeywordClassifier {
	return &KeywordClassifier{catalog: c}
}

// Classify returns an unvalidated plan with method keyword_fallback.
func (k *KeywordClassifier) Classify(query string) RoutingPlan {
	q := strings.ToLower(query)

	qt := QuerySingle
	if containsAny(q, k.catalog.CompareTriggers) {
		qt = QueryCompare
	}

	return RoutingPlan{
		QueryType:  qt,
		Sections:   k.sections(q),
		Albums:     k.albums(q),
		Confidence: DefaultKeywordConfidence,
		Method:     MethodKeywords,
	}
}

// albums selects the one album whose triggers appear in q. When none or
// several match, every album is selected.
func (k *KeywordClassifier) albums(q string) []string {
	matched := -1
	for i, a := range k.catalog.Albums {
		if !containsAny(q, a.Triggers) {
			continue
		}
		if matched >= 0 {
			return k.catalog.AlbumNames()
		}
		matched = i
	}
	if matched < 0 {
		return k.catalog.AlbumNames()
	}
	return []string{k.catalog.Albums[matched].Name}
}

func (k *KeywordClassifier) sections(q string) []string {
	type scored struct {
		id    string
		score int
	}
	var hits []scored
	for _, s := range k.catalog.Sections {
		n := 0
		for _, kw := range s.Keywords {
			if strings.Contains(q, kw) {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, scored{s.ID, n})
		}
	}
	if len(hits) == 0 {
		return []string{k.catalog.DefaultSection}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > maxKeywordSections {
		hits = hits[:maxKeywordSections]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
