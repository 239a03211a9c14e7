package domain

import (
	"fmt"
	"strings"
)

// FilterOp is the kind of a Filter node.
type FilterOp int

const (
	OpEq FilterOp = iota
	OpIn
	OpAnd
)

// Filter is a metadata predicate: exact match on one key, membership in a
// set of values for one key, or a conjunction of sub-filters.
type Filter struct {
	Op      FilterOp
	Key     string
	Values  []string
	Clauses []*Filter
}

// Eq matches chunks whose metadata key equals value.
func Eq(key, value string) *Filter {
	return &Filter{Op: OpEq, Key: key, Values: []string{value}}
}

// In matches chunks whose metadata key is one of values.
func In(key string, values ...string) *Filter {
	return &Filter{Op: OpIn, Key: key, Values: append([]string(nil), values...)}
}

// And matches chunks satisfying every clause. Nil clauses are skipped; a
// single remaining clause is returned as-is and no clauses yields nil.
func And(clauses ...*Filter) *Filter {
	kept := make([]*Filter, 0, len(clauses))
	for _, c := range clauses {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &Filter{Op: OpAnd, Clauses: kept}
}

// Matches evaluates the filter against chunk metadata. A nil filter matches
// everything.
func (f *Filter) Matches(meta map[string]string) bool {
	if f == nil {
		return true
	}
	switch f.Op {
	case OpEq, OpIn:
		v, ok := meta[f.Key]
		if !ok {
			return false
		}
		for _, want := range f.Values {
			if v == want {
				return true
			}
		}
		return false
	case OpAnd:
		for _, c := range f.Clauses {
			if !c.Matches(meta) {
				return false
			}
		}
		return true
	}
	return false
}

func (f *Filter) String() string {
	if f == nil {
		return "<all>"
	}
	switch f.Op {
	case OpEq:
		return fmt.Sprintf("%s=%q", f.Key, f.Values[0])
	case OpIn:
		return fmt.Sprintf("%s in %q", f.Key, f.Values)
	case OpAnd:
		parts := make([]string, len(f.Clauses))
		for i, c := range f.Clauses {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " AND ") + ")"
	}
	return "<invalid>"
}
