package types

import "strings"

// Query is an ordered sequence of search terms derived from a raw query string.
// The zero value is the empty query.
type Query struct {
	raw   string
	terms []string
}

// NewQuery builds a Query from a raw string and its tokenized terms.
// Empty terms are dropped; the order of the remaining terms is kept.
func NewQuery(raw string, terms []string) Query {
	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.TrimSpace(t) == "" {
			continue
		}
		kept = append(kept, t)
	}
	return Query{raw: raw, terms: kept}
}

// Raw returns the query string as entered.
func (q Query) Raw() string {
	return q.raw
}

// Terms returns a copy of the query terms in query order.
func (q Query) Terms() []string {
	out := make([]string, len(q.terms))
	copy(out, q.terms)
	return out
}

// Len returns the number of terms.
func (q Query) Len() int {
	return len(q.terms)
}

// IsEmpty reports whether the query has no terms.
func (q Query) IsEmpty() bool {
	return len(q.terms) == 0
}

// String returns the terms joined by a single space.
func (q Query) String() string {
	return strings.Join(q.terms, " ")
}
