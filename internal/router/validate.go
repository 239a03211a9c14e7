package router

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"albumrag/internal/catalog"
)

// Validator repairs routing plans so they always satisfy the plan
// invariants, whatever the classifier produced.
type Validator struct {
	catalog *catalog.Catalog
}

func NewValidator(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// Validate normalizes decoded classifier output. raw may be any JSON value;
// missing keys, wrong types and unknown values are all repaired.
func (v *Validator) Validate(raw gjson.Result, method Method) RoutingPlan {
	qt := QuerySingle
	if r := raw.Get("query_type"); r.Type == gjson.String {
		if parsed, ok := ParseQueryType(r.Str); ok {
			qt = parsed
		}
	}

	var albums []string
	if r := raw.Get("albums"); r.Type == gjson.String && isBothAlbums(r.Str) {
		albums = v.catalog.AlbumNames()
	} else {
		albums = stringsOf(r)
	}

	confidence := math.NaN()
	if r := raw.Get("confidence"); r.Type == gjson.Number {
		confidence = r.Num
	}

	return v.normalize(qt, stringsOf(raw.Get("sections")), albums, confidence, method)
}

// ValidatePlan normalizes a typed plan, such as the keyword classifier's.
func (v *Validator) ValidatePlan(p RoutingPlan) RoutingPlan {
	qt, ok := ParseQueryType(string(p.QueryType))
	if !ok {
		qt = QuerySingle
	}
	albums := p.Albums
	if len(albums) == 1 && isBothAlbums(albums[0]) {
		albums = v.catalog.AlbumNames()
	}
	return v.normalize(qt, p.Sections, albums, p.Confidence, p.Method)
}

func (v *Validator) normalize(qt QueryType, sections, albums []string, confidence float64, method Method) RoutingPlan {
	if method == "" {
		method = MethodKeywords
	}

	validSections := make([]string, 0, len(sections))
	seen := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		s = strings.ToLower(strings.TrimSpace(s))
		if _, dup := seen[s]; dup || !v.catalog.HasSection(s) {
			continue
		}
		seen[s] = struct{}{}
		validSections = append(validSections, s)
	}
	if len(validSections) == 0 {
		validSections = []string{v.catalog.DefaultSection}
	}

	validAlbums := make([]string, 0, len(albums))
	seen = make(map[string]struct{}, len(albums))
	for _, a := range albums {
		name, ok := v.catalog.MatchAlbum(a)
		if _, dup := seen[name]; !ok || dup {
			continue
		}
		seen[name] = struct{}{}
		validAlbums = append(validAlbums, name)
	}
	// An empty album list widens to the whole catalog even for single
	// queries.
	if len(validAlbums) == 0 {
		validAlbums = v.catalog.AlbumNames()
	}

	switch {
	case math.IsNaN(confidence) || math.IsInf(confidence, 0):
		confidence = defaultConfidence(method)
	case confidence < 0:
		confidence = 0
	case confidence > 1:
		confidence = 1
	}

	return RoutingPlan{
		QueryType:  qt,
		Sections:   validSections,
		Albums:     validAlbums,
		Confidence: confidence,
		Method:     method,
	}
}

func isBothAlbums(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "both", "both albums":
		return true
	}
	return false
}

// stringsOf reads a JSON string or array of strings; other element types
// are skipped.
func stringsOf(r gjson.Result) []string {
	if r.Type == gjson.String {
		return []string{r.Str}
	}
	if !r.IsArray() {
		return nil
	}
	var out []string
	for _, el := range r.Array() {
		if el.Type == gjson.String {
			out = append(out, el.Str)
		}
	}
	return out
}
