// Package types provides shared type definitions for hitlight.
//
// This package defines the domain types passed between the backends, the
// post-processing pipeline and the display surfaces.
//
// # Core Types
//
// Query is the ordered list of terms derived from a raw query string:
//
//	q := types.NewQuery("alpha beta", []string{"alpha", "beta"})
//
// RawHit is a record as returned by a full-text backend. Hit wraps it with a
// HighlightSource saying whether the backend already highlighted it:
//
//	hit := types.Hit{
//	    RawHit: types.RawHit{Title: []string{"Alpha notes"}, Category: "Note"},
//	    Source: types.Precomputed{Title: "<mark>Alpha</mark> notes"},
//	}
//
// HighlightedRecord is the result of resolving a Hit against a Query, and
// ResultGroup buckets records by category for display.
//
// # Documents
//
// Document is the indexable unit used by the reference backends. Multiple
// content fields are joined with FieldSeparator:
//
//	doc := &types.Document{
//	    Key:      types.DocumentKey("Note", "alpha"),
//	    Category: "Note",
//	    Title:    "Alpha",
//	    Content:  types.JoinFields([]string{"first", "second"}),
//	}
//	doc.ComputeContentHash()
//
// # Validation
//
// Document.Validate returns one of the sentinel errors in errors.go.
// Backend adapters return ErrMalformedResponse, wrapped, when a response
// violates the backend contract.
package types
