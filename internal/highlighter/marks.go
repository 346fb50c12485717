package highlighter

import (
	"fmt"
	"strings"

	"github.com/dshills/hitlight/pkg/types"
)

// CountMarks returns the number of marker pairs in s.
func (h *Highlighter) CountMarks(s string) int {
	return strings.Count(s, h.marker.Open)
}

// StripMarks removes every delimiter from s.
func (h *Highlighter) StripMarks(s string) string {
	s = strings.ReplaceAll(s, h.marker.Open, "")
	return strings.ReplaceAll(s, h.marker.Close, "")
}

// CheckMarks verifies that delimiters in s are balanced and properly nested.
func (h *Highlighter) CheckMarks(s string) error {
	depth := 0
	for _, seg := range h.segments(s) {
		if !seg.delimiter {
			continue
		}
		if seg.text == h.marker.Open {
			depth++
			continue
		}
		depth--
		if depth < 0 {
			return fmt.Errorf("%w: unexpected %q", types.ErrUnbalancedMarkup, h.marker.Close)
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d unclosed %q", types.ErrUnbalancedMarkup, depth, h.marker.Open)
	}
	return nil
}
