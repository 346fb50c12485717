package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dshills/hitlight/pkg/types"
)

// Parser splits Markdown and plain-text files into a title and sections
type Parser struct {
	stripMarkdown bool
}

// Option configures a Parser
type Option func(*Parser)

// WithRawMarkdown keeps Markdown syntax in paragraph text
func WithRawMarkdown() Option {
	return func(p *Parser) {
		p.stripMarkdown = false
	}
}

// New creates a new Parser instance
func New(opts ...Option) *Parser {
	p := &Parser{stripMarkdown: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Supported reports whether path has an extension the parser reads
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// ParseFile reads and parses a source file
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(filePath, content), nil
}

// Parse parses content read from filePath. Problems such as invalid UTF-8
// or an unclosed code fence are recorded in the result, never returned.
//
// The title is the first ATX heading, else the first non-empty line, else
// the file name. Headings after the title start new sections. Text before
// the first such heading forms a leading section with no heading.
func (p *Parser) Parse(filePath string, content []byte) *types.ParseResult {
	result := &types.ParseResult{}

	text := string(content)
	if !utf8.ValidString(text) {
		result.AddError(filePath, 0, "invalid UTF-8, replaced undecodable bytes")
		text = strings.ToValidUTF8(text, "�")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	markdown := isMarkdown(filePath)
	lines := strings.Split(text, "\n")

	b := &sectionBuilder{parser: p, markdown: markdown}
	inFence := false
	fenceLine := 0
	titleFromLine := false

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		if markdown && isFence(trimmed) {
			if inFence {
				b.flushParagraph()
			} else {
				b.flushParagraph()
				fenceLine = lineNo
			}
			inFence = !inFence
			b.inFence = inFence
			continue
		}

		if inFence {
			b.addLine(line)
			continue
		}

		if markdown {
			if _, heading, ok := atxHeading(trimmed); ok {
				heading = p.cleanInline(heading)
				if result.Title == "" || titleFromLine {
					b.flushParagraph()
					// A heading outranks a title taken from a plain line
					if titleFromLine {
						b.prependParagraph(result.Title)
						titleFromLine = false
					}
					result.Title = heading
					continue
				}
				b.startSection(heading)
				continue
			}
			if isRule(trimmed) {
				b.flushParagraph()
				continue
			}
		}

		if trimmed == "" {
			b.flushParagraph()
			continue
		}

		if result.Title == "" {
			result.Title = trimmed
			if markdown {
				result.Title = p.cleanLine(trimmed)
			}
			titleFromLine = true
			continue
		}

		b.addLine(line)
	}

	if inFence {
		result.AddError(filePath, fenceLine, "unclosed code fence")
	}

	result.Sections = b.finish()

	if result.Title == "" {
		base := filepath.Base(filePath)
		result.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return result
}

// sectionBuilder accumulates lines into paragraphs and paragraphs into sections
type sectionBuilder struct {
	parser   *Parser
	markdown bool
	inFence  bool

	sections []types.Section
	current  types.Section
	lines    []string
	anchors  map[string]int
}

func (b *sectionBuilder) addLine(line string) {
	b.lines = append(b.lines, line)
}

func (b *sectionBuilder) flushParagraph() {
	if len(b.lines) == 0 {
		return
	}

	var para string
	if b.inFence {
		para = strings.TrimSpace(strings.Join(b.lines, "\n"))
	} else {
		cleaned := make([]string, 0, len(b.lines))
		for _, l := range b.lines {
			l = strings.TrimSpace(l)
			if b.markdown && b.parser.stripMarkdown {
				l = b.parser.cleanLine(l)
			}
			if l != "" {
				cleaned = append(cleaned, l)
			}
		}
		para = strings.Join(cleaned, " ")
	}
	b.lines = b.lines[:0]

	if para != "" {
		b.current.Paragraphs = append(b.current.Paragraphs, para)
	}
}

// prependParagraph puts text first in the leading section
func (b *sectionBuilder) prependParagraph(text string) {
	if len(b.sections) > 0 || b.current.Heading != "" {
		return
	}
	b.current.Paragraphs = append([]string{text}, b.current.Paragraphs...)
}

func (b *sectionBuilder) startSection(heading string) {
	b.flushParagraph()
	b.closeSection()
	b.current = types.Section{
		Heading: heading,
		Anchor:  b.uniqueAnchor(heading),
	}
}

func (b *sectionBuilder) closeSection() {
	if b.current.Heading != "" || len(b.current.Paragraphs) > 0 {
		b.sections = append(b.sections, b.current)
	}
	b.current = types.Section{}
}

func (b *sectionBuilder) finish() []types.Section {
	b.flushParagraph()
	b.closeSection()
	return b.sections
}

// uniqueAnchor slugs heading and suffixes repeats with -1, -2...
func (b *sectionBuilder) uniqueAnchor(heading string) string {
	if b.anchors == nil {
		b.anchors = make(map[string]int)
	}
	slug := Anchor(heading)
	n := b.anchors[slug]
	b.anchors[slug] = n + 1
	if n == 0 {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, n)
}
