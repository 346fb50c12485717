package chunker

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dshills/hitlight/pkg/types"
)

const (
	// DefaultMaxContentRunes caps the content of a single document
	DefaultMaxContentRunes = 32 * 1024

	// SectionTitleSeparator joins a file title and a section heading
	SectionTitleSeparator = " › "
)

// ErrNilParseResult is returned when ChunkFile is called without a parse result
var ErrNilParseResult = errors.New("parse result is nil")

// Source describes where a parsed file came from
type Source struct {
	Path     string // relative to the indexed root
	Category string
	BaseURL  string // prefix for document URLs, may be empty
}

// Chunker turns parsed files into indexable documents
type Chunker struct {
	splitSections   bool
	maxContentRunes int
}

// Option configures a Chunker
type Option func(*Chunker)

// WithSplitSections makes the chunker emit one document per headed section
// instead of one document per file.
func WithSplitSections(split bool) Option {
	return func(c *Chunker) {
		c.splitSections = split
	}
}

// WithMaxContentRunes sets the content cap. Values <= 0 disable it.
func WithMaxContentRunes(n int) Option {
	return func(c *Chunker) {
		c.maxContentRunes = n
	}
}

// New creates a new Chunker instance
func New(opts ...Option) *Chunker {
	c := &Chunker{maxContentRunes: DefaultMaxContentRunes}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SplitsSections reports whether the chunker emits per-section documents
func (c *Chunker) SplitsSections() bool {
	return c.splitSections
}

// ChunkFile creates documents from a parsed file. Files without any text
// produce no documents.
func (c *Chunker) ChunkFile(src Source, result *types.ParseResult) ([]types.Document, error) {
	if result == nil {
		return nil, ErrNilParseResult
	}
	if src.Category == "" {
		return nil, types.ErrEmptyCategory
	}

	name := DocumentName(src.Path)
	url := DocumentURL(src.BaseURL, name)

	if !c.splitSections || len(result.Sections) <= 1 {
		doc := c.newDocument(src, name, url, result.Title, result.Paragraphs())
		if doc == nil {
			return nil, nil
		}
		return []types.Document{*doc}, nil
	}

	docs := make([]types.Document, 0, len(result.Sections))
	for _, section := range result.Sections {
		title := result.Title
		sectionName := name
		sectionURL := url
		if section.Heading != "" {
			title = result.Title + SectionTitleSeparator + section.Heading
			sectionName = name + "#" + section.Anchor
			sectionURL = url + "#" + section.Anchor
		}

		doc := c.newDocument(src, sectionName, sectionURL, title, section.Paragraphs)
		if doc == nil {
			continue
		}
		docs = append(docs, *doc)
	}

	return docs, nil
}

// newDocument builds and validates one document, or returns nil when there
// is nothing to index.
func (c *Chunker) newDocument(src Source, name, url, title string, paragraphs []string) *types.Document {
	doc := &types.Document{
		Key:        types.DocumentKey(src.Category, name),
		Name:       name,
		Category:   src.Category,
		Title:      strings.TrimSpace(title),
		Content:    c.capContent(paragraphs),
		URL:        url,
		SourcePath: src.Path,
	}
	doc.ComputeContentHash()

	if err := doc.Validate(); err != nil {
		return nil
	}
	return doc
}

// capContent joins paragraphs into fields, dropping whole trailing fields
// once the cap is reached. A single oversized first field is cut.
func (c *Chunker) capContent(paragraphs []string) string {
	content := types.JoinFields(paragraphs)
	if c.maxContentRunes <= 0 || utf8.RuneCountInString(content) <= c.maxContentRunes {
		return content
	}

	fields := types.SplitFields(content)
	var kept []string
	used := 0
	for _, f := range fields {
		n := utf8.RuneCountInString(f)
		if len(kept) > 0 {
			n += utf8.RuneCountInString(types.FieldSeparator)
		}
		if used+n > c.maxContentRunes {
			break
		}
		kept = append(kept, f)
		used += n
	}

	if len(kept) == 0 {
		return string([]rune(fields[0])[:c.maxContentRunes])
	}
	return strings.Join(kept, types.FieldSeparator)
}

// DocumentName derives a document name from a relative file path: the
// slash-separated path without its extension.
func DocumentName(relPath string) string {
	p := filepath.ToSlash(relPath)
	p = strings.TrimPrefix(p, "./")
	return strings.TrimSuffix(p, path.Ext(p))
}

// DocumentURL joins a base URL and a document name
func DocumentURL(baseURL, name string) string {
	if baseURL == "" {
		return "/" + name
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + name
}

// CategoryFor derives the category of a file from its path relative to the
// indexed root: the first directory, or fallback for files at the root.
func CategoryFor(relPath, fallback string) string {
	p := filepath.ToSlash(relPath)
	p = strings.TrimPrefix(p, "./")
	dir, _, found := strings.Cut(p, "/")
	if !found {
		return fallback
	}
	if category := titleCase(dir); category != "" {
		return category
	}
	return fallback
}

// titleCase turns "meeting-notes" into "Meeting Notes"
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Describe returns a short human readable summary of a document
func Describe(doc types.Document) string {
	return fmt.Sprintf("%s (%s, %d fields)", doc.Key, doc.Category, len(types.SplitFields(doc.Content)))
}
