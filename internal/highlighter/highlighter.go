package highlighter

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/hitlight/internal/matcher"
)

const (
	// DefaultMargin is the number of characters kept on each side of a match
	DefaultMargin = 15

	// Ellipsis terminates every content snippet
	Ellipsis = "... "
)

// Marker is the delimiter pair wrapped around matched text.
type Marker struct {
	Open  string
	Close string
}

// DefaultMarker is the <mark> element pair.
var DefaultMarker = Marker{Open: "<mark>", Close: "</mark>"}

// Wrap returns s enclosed in the marker pair.
func (m Marker) Wrap(s string) string {
	return m.Open + s + m.Close
}

// Window is the snippet windowing policy.
type Window struct {
	// Margin is the number of characters of context around a match
	Margin int

	// WidenByTerm extends the right edge by the term's own length so the
	// whole term plus Margin characters follow the match start. Without
	// it the window is Margin characters either side of the match start.
	WidenByTerm bool

	// AllOccurrences emits one window per occurrence not already covered
	// by a previous window of the same term, instead of only the first.
	AllOccurrences bool
}

// DefaultWindow is the policy used unless overridden.
var DefaultWindow = Window{Margin: DefaultMargin, WidenByTerm: true}

// WindowFromEnv returns DefaultWindow adjusted by HITLIGHT_SNIPPET_MARGIN
// and HITLIGHT_SNIPPET_ALL_OCCURRENCES. Invalid values are ignored.
func WindowFromEnv() Window {
	w := DefaultWindow
	if v := os.Getenv("HITLIGHT_SNIPPET_MARGIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			w.Margin = n
		}
	}
	if v := os.Getenv("HITLIGHT_SNIPPET_ALL_OCCURRENCES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			w.AllOccurrences = b
		}
	}
	return w
}

// Highlighter marks query terms in titles and cuts marked content snippets.
// A Highlighter is immutable after construction and safe for concurrent use.
type Highlighter struct {
	marker Marker
	window Window
	logger *slog.Logger

	// source is the marker backends use in precomputed highlighting
	source   Marker
	adoptRep *strings.Replacer
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithMarker sets the delimiter pair. Empty delimiters are ignored.
func WithMarker(m Marker) Option {
	return func(h *Highlighter) {
		if m.Open != "" && m.Close != "" {
			h.marker = m
		}
	}
}

// WithSourceMarker sets the delimiter pair found in precomputed backend
// highlighting. Default is DefaultMarker. Precomputed text is rewritten to
// the highlighter's own marker before it is checked and counted.
func WithSourceMarker(m Marker) Option {
	return func(h *Highlighter) {
		if m.Open != "" && m.Close != "" {
			h.source = m
		}
	}
}

// WithWindow sets the snippet windowing policy.
func WithWindow(w Window) Option {
	return func(h *Highlighter) {
		if w.Margin < 0 {
			w.Margin = 0
		}
		h.window = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Highlighter) {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
	}
}

// New creates a Highlighter with <mark> delimiters and DefaultWindow.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{
		marker: DefaultMarker,
		source: DefaultMarker,
		window: DefaultWindow,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.source != h.marker {
		h.adoptRep = strings.NewReplacer(
			h.source.Open, h.marker.Open,
			h.source.Close, h.marker.Close,
		)
	}
	h.logger = h.logger.With("component", "highlighter")
	return h
}

// Marker returns the delimiter pair in use.
func (h *Highlighter) Marker() Marker {
	return h.marker
}

// Window returns the windowing policy in use.
func (h *Highlighter) Window() Window {
	return h.window
}

// HighlightTitle wraps every case-insensitive occurrence of each term.
// Terms are applied in order, each to the output of the previous one, so a
// term found inside an earlier marked span nests a second marker pair.
// Delimiter text itself is never matched.
func (h *Highlighter) HighlightTitle(title string, terms []string) string {
	for _, term := range terms {
		title = h.markTerm(title, term)
	}
	return title
}

// markTerm wraps occurrences of term found in the text between delimiters.
// A match never spans a delimiter.
func (h *Highlighter) markTerm(s, term string) string {
	if term == "" || s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, seg := range h.segments(s) {
		if seg.delimiter {
			b.WriteString(seg.text)
			continue
		}
		last := 0
		for _, m := range matcher.FindMatches(term, seg.text, false) {
			b.WriteString(seg.text[last:m.Start])
			b.WriteString(h.marker.Wrap(seg.text[m.Start:m.End]))
			last = m.End
		}
		b.WriteString(seg.text[last:])
	}
	return b.String()
}

type segment struct {
	text      string
	delimiter bool
}

// segments splits s into runs of plain text and individual delimiters.
func (h *Highlighter) segments(s string) []segment {
	var out []segment
	start := 0
	for i := 0; i < len(s); {
		var d string
		switch {
		case strings.HasPrefix(s[i:], h.marker.Open):
			d = h.marker.Open
		case strings.HasPrefix(s[i:], h.marker.Close):
			d = h.marker.Close
		default:
			i++
			continue
		}
		if start < i {
			out = append(out, segment{text: s[start:i]})
		}
		out = append(out, segment{text: d, delimiter: true})
		i += len(d)
		start = i
	}
	if start < len(s) {
		out = append(out, segment{text: s[start:]})
	}
	return out
}
