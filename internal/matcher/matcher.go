package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/hitlight/pkg/types"
)

// Match is the byte span of one occurrence of a term inside a text.
// End may differ from Start+len(term) when case folding changes the
// encoded width of a rune.
type Match struct {
	Start int
	End   int
}

// Tokenize splits a query on Unicode whitespace and returns the non-empty
// terms in their original order. No case folding happens here.
func Tokenize(query string) []string {
	return strings.Fields(query)
}

// Parse tokenizes raw and returns the resulting Query.
func Parse(raw string) types.Query {
	return types.NewQuery(raw, Tokenize(raw))
}

// FindOccurrences returns the start byte offset of every non-overlapping
// occurrence of term in text, scanning left to right. Offsets index the
// UTF-8 bytes of text, not its runes.
func FindOccurrences(term, text string, caseSensitive bool) []int {
	matches := FindMatches(term, text, caseSensitive)
	if len(matches) == 0 {
		return nil
	}

	offsets := make([]int, len(matches))
	for i, m := range matches {
		offsets[i] = m.Start
	}
	return offsets
}

// FirstOccurrence returns the first case-insensitive match of term in text.
func FirstOccurrence(term, text string) (Match, bool) {
	if term == "" {
		return Match{}, false
	}
	for i := 0; i < len(text); {
		if end, ok := matchAt(text, i, term); ok {
			return Match{Start: i, End: end}, true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return Match{}, false
}

// FindMatches returns the span of every non-overlapping occurrence of term
// in text. After each hit the scan resumes past the full match, so
// overlapping occurrences are not counted twice. An empty term matches nothing.
func FindMatches(term, text string, caseSensitive bool) []Match {
	if term == "" || text == "" {
		return nil
	}

	var matches []Match
	if caseSensitive {
		for start := 0; start < len(text); {
			idx := strings.Index(text[start:], term)
			if idx < 0 {
				break
			}
			m := Match{Start: start + idx, End: start + idx + len(term)}
			matches = append(matches, m)
			start = m.End
		}
		return matches
	}

	for i := 0; i < len(text); {
		if end, ok := matchAt(text, i, term); ok {
			matches = append(matches, Match{Start: i, End: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return matches
}

// matchAt reports whether term matches text at byte offset i under simple
// case folding, returning the end offset of the match in text.
func matchAt(text string, i int, term string) (int, bool) {
	j := i
	for _, want := range term {
		if j >= len(text) {
			return 0, false
		}
		got, size := utf8.DecodeRuneInString(text[j:])
		if !foldEqual(got, want) {
			return 0, false
		}
		j += size
	}
	return j, true
}

func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		return a == b
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}
