package types

import (
	"crypto/sha256"
	"strings"
)

// FieldSeparator joins the content fields of one document into a single
// indexed string.
const FieldSeparator = "|||"

// Document is one indexable record: a whole file or one of its sections.
type Document struct {
	// Identification
	ID       int64
	Key      string // "<category>-<name>", unique across the index
	Name     string
	Category string

	// Searchable text
	Title   string
	Content string // content fields joined with FieldSeparator

	// Metadata
	URL         string
	SourcePath  string   // relative to the indexed root
	ContentHash [32]byte // SHA-256 over title and content
}

// DocumentKey builds the unique key for a document of the given category.
func DocumentKey(category, name string) string {
	return category + "-" + name
}

// JoinFields joins content fields with FieldSeparator, skipping blank ones.
func JoinFields(fields []string) string {
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, FieldSeparator)
}

// SplitFields is the inverse of JoinFields.
func SplitFields(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, FieldSeparator)
}

// ComputeContentHash computes the SHA-256 hash of the document text
func (d *Document) ComputeContentHash() {
	h := sha256.New()
	h.Write([]byte(d.Title))
	h.Write([]byte{0})
	h.Write([]byte(d.Content))
	copy(d.ContentHash[:], h.Sum(nil))
}

// Validate checks that the document can be stored
func (d *Document) Validate() error {
	if d.Key == "" {
		return ErrEmptyKey
	}
	if d.Category == "" {
		return ErrEmptyCategory
	}
	if d.Title == "" && d.Content == "" {
		return ErrEmptyContent
	}

	var zeroHash [32]byte
	if d.ContentHash == zeroHash {
		return ErrMissingHash
	}

	return nil
}

// ToRawHit converts the document to the backend hit shape.
func (d *Document) ToRawHit() RawHit {
	return RawHit{
		Title:    []string{d.Title},
		Content:  []string{d.Content},
		URL:      d.URL,
		Category: d.Category,
	}
}
