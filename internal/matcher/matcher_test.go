package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"simple", "alpha beta", []string{"alpha", "beta"}},
		{"extra whitespace", "  alpha \t beta\n", []string{"alpha", "beta"}},
		{"keeps order", "zeta alpha zeta", []string{"zeta", "alpha", "zeta"}},
		{"keeps case", "Alpha BETA", []string{"Alpha", "BETA"}},
		{"empty", "", []string{}},
		{"all whitespace", " \t\n ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.query)
			assert.Equal(t, len(tt.want), len(got))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestParse(t *testing.T) {
	q := Parse("  alpha beta ")
	assert.Equal(t, "  alpha beta ", q.Raw())
	assert.Equal(t, []string{"alpha", "beta"}, q.Terms())
	assert.False(t, q.IsEmpty())

	assert.True(t, Parse("   ").IsEmpty())
	assert.True(t, Parse("").IsEmpty())
}

func TestFindOccurrences(t *testing.T) {
	tests := []struct {
		name          string
		term          string
		text          string
		caseSensitive bool
		want          []int
	}{
		{"single", "beta", "alpha beta", false, []int{6}},
		{"multiple", "a", "banana", false, []int{1, 3, 5}},
		{"non overlapping", "aa", "aaaa", true, []int{0, 2}},
		{"non overlapping odd", "aa", "aaa", false, []int{0}},
		{"case insensitive", "ALPHA", "an Alpha and alpha", false, []int{3, 13}},
		{"case sensitive", "ALPHA", "an Alpha and ALPHA", true, []int{13}},
		{"absent", "gamma", "alpha beta", false, nil},
		{"empty term", "", "alpha", false, nil},
		{"empty text", "alpha", "", false, nil},
		{"multibyte offsets", "é", "Éclair é", false, []int{0, 8}},
		{"byte offsets after multibyte runes", "é", "café é", true, []int{3, 6}},
		{"ascii term after multibyte runes", "beta", "αβγ beta", false, []int{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindOccurrences(tt.term, tt.text, tt.caseSensitive)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindMatches_SpansFollowText(t *testing.T) {
	// KELVIN SIGN folds to 'k' but is three bytes wide
	text := "\u212Aey key"
	matches := FindMatches("key", text, false)
	require.Len(t, matches, 2)

	assert.Equal(t, Match{Start: 0, End: 5}, matches[0])
	assert.Equal(t, "\u212Aey", text[matches[0].Start:matches[0].End])
	assert.Equal(t, Match{Start: 6, End: 9}, matches[1])
}

func TestFindMatches_TermLongerThanText(t *testing.T) {
	assert.Empty(t, FindMatches("alphabet", "alpha", false))
}

func TestFirstOccurrence(t *testing.T) {
	m, ok := FirstOccurrence("beta", "Beta alpha beta")
	require.True(t, ok)
	assert.Equal(t, Match{Start: 0, End: 4}, m)

	_, ok = FirstOccurrence("gamma", "alpha beta")
	assert.False(t, ok)

	_, ok = FirstOccurrence("", "alpha")
	assert.False(t, ok)
}

func BenchmarkFindMatches(b *testing.B) {
	text := "The quick brown fox jumps over the lazy dog. " +
		"Pack my box with five dozen liquor jugs. "
	for i := 0; i < b.N; i++ {
		_ = FindMatches("the", text, false)
	}
}
