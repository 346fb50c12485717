package highlighter

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/hitlight/internal/matcher"
)

// span is a byte range of content selected as a snippet window.
type span struct {
	start int
	end   int
}

// BuildContentSnippets cuts one window per term around the term's first
// occurrence in content, marks the term inside it, trims it and appends
// Ellipsis. Windows are concatenated in term order. A term with no
// occurrence contributes nothing.
func (h *Highlighter) BuildContentSnippets(content string, terms []string) string {
	if content == "" {
		return ""
	}

	var b strings.Builder
	for _, term := range terms {
		for _, w := range h.windows(content, term) {
			snippet := strings.TrimSpace(h.markTerm(content[w.start:w.end], term))
			if snippet == "" {
				continue
			}
			b.WriteString(snippet)
			b.WriteString(Ellipsis)
		}
	}
	return b.String()
}

// windows returns the snippet windows for term under the configured policy.
func (h *Highlighter) windows(content, term string) []span {
	if term == "" {
		return nil
	}

	if !h.window.AllOccurrences {
		m, ok := matcher.FirstOccurrence(term, content)
		if !ok {
			return nil
		}
		return []span{h.windowAround(content, term, m)}
	}

	var out []span
	covered := 0
	for _, m := range matcher.FindMatches(term, content, false) {
		if m.Start < covered {
			continue
		}
		w := h.windowAround(content, term, m)
		out = append(out, w)
		covered = w.end
	}
	return out
}

// windowAround computes the window for one match. Margins are counted in
// characters and the result always falls on rune boundaries.
func (h *Highlighter) windowAround(content, term string, m matcher.Match) span {
	start := backRunes(content, m.Start, h.window.Margin)

	right := h.window.Margin
	if h.window.WidenByTerm {
		right += utf8.RuneCountInString(term)
	}
	end := forwardRunes(content, m.Start, right)
	if h.window.WidenByTerm && end < m.End {
		// case folding can make the match wider than the term
		end = m.End
	}

	return span{start: start, end: end}
}

// backRunes moves n runes left from byte offset i, stopping at 0.
func backRunes(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}

// forwardRunes moves n runes right from byte offset i, stopping at len(s).
func forwardRunes(s string, i, n int) int {
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
