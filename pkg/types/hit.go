package types

import "time"

// RawHit is one record as returned by a full-text backend.
// Title and Content may carry several candidate fragments; the first is authoritative.
type RawHit struct {
	Title    []string
	Content  []string
	URL      string
	Category string
}

// PrimaryTitle returns the authoritative title, or "" when the backend sent none.
func (r RawHit) PrimaryTitle() string {
	return first(r.Title)
}

// PrimaryContent returns the authoritative content, or "" when the backend sent none.
func (r RawHit) PrimaryContent() string {
	return first(r.Content)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// HighlightSource tells the highlighter where a record's marked-up text comes from.
// It is either Precomputed or NeedsComputation.
type HighlightSource interface {
	highlightSource()
}

// Precomputed carries highlighting produced by the backend.
type Precomputed struct {
	Title   string
	Content string
}

// NeedsComputation carries raw text that must be highlighted locally.
type NeedsComputation struct {
	RawTitle   string
	RawContent string
}

func (Precomputed) highlightSource()      {}
func (NeedsComputation) highlightSource() {}

// Hit is a normalized backend record ready for the post-processing pipeline.
type Hit struct {
	RawHit

	// ID is the backend's document identifier, if any
	ID string

	// Score is the backend's relevance score, if any
	Score float64

	// Source selects backend or local highlighting. A nil Source means
	// the raw title and content need local highlighting.
	Source HighlightSource
}

// HighlightSource returns the hit's highlight source, defaulting to
// NeedsComputation over the authoritative raw fields.
func (h Hit) HighlightSource() HighlightSource {
	if h.Source != nil {
		return h.Source
	}
	return NeedsComputation{
		RawTitle:   h.PrimaryTitle(),
		RawContent: h.PrimaryContent(),
	}
}

// BackendResponse is the normalized shape every backend adapter produces.
type BackendResponse struct {
	Hits []Hit

	// Total is the backend's hit count when it reports one
	Total *int

	// Duration is the backend's own timing when it reports one
	Duration *time.Duration
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// DurationPtr returns a pointer to d.
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}
