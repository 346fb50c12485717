package types

import "errors"

// Domain errors for type validation
var (
	// Backend contract errors
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrUnbalancedMarkup  = errors.New("unbalanced highlight markup")

	// Document errors
	ErrEmptyKey      = errors.New("document key cannot be empty")
	ErrEmptyCategory = errors.New("document category cannot be empty")
	ErrEmptyContent  = errors.New("document has neither title nor content")
	ErrMissingHash   = errors.New("content hash must be computed")
)
