package parser

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	// imageRe matches ![alt](url)
	imageRe = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)

	// linkRe matches [text](url) and [text][ref]
	linkRe = regexp.MustCompile(`\[([^\]]+)\](?:\([^)]*\)|\[[^\]]*\])`)

	// codeRe matches `inline code`
	codeRe = regexp.MustCompile("`([^`]*)`")

	// strongRe and emRe match emphasis markers around text
	strongRe = regexp.MustCompile(`(\*\*|__)(\S(?:.*?\S)?)(\*\*|__)`)
	emRe     = regexp.MustCompile(`(^|[^\w*])[*_](\S(?:[^*_]*?\S)?)[*_]`)

	// htmlTagRe matches HTML tags like <a>, </p>, <div class="foo">
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)

	// listRe matches list and quote prefixes
	listRe = regexp.MustCompile(`^(?:>\s*)*(?:[-*+]\s+|\d+[.)]\s+)?`)

	// atxRe matches "## Heading ##"
	atxRe = regexp.MustCompile(`^(#{1,6})(?:\s+(.*?))?(?:\s+#+)?\s*$`)
)

// atxHeading parses an ATX heading line
func atxHeading(line string) (level int, text string, ok bool) {
	m := atxRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	text = strings.TrimSpace(m[2])
	if text == "" {
		return 0, "", false
	}
	return len(m[1]), text, true
}

func isFence(line string) bool {
	return strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~")
}

// isRule matches thematic breaks such as --- and ***
func isRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	stripped := strings.ReplaceAll(line, " ", "")
	for _, c := range []string{"-", "*", "_"} {
		if strings.Trim(stripped, c) == "" && len(stripped) >= 3 {
			return true
		}
	}
	return false
}

// cleanLine strips block prefixes and inline syntax from one line
func (p *Parser) cleanLine(line string) string {
	line = listRe.ReplaceAllString(line, "")
	return p.cleanInline(line)
}

// cleanInline strips inline Markdown and HTML, keeping the visible text
func (p *Parser) cleanInline(s string) string {
	if !p.stripMarkdown {
		return strings.TrimSpace(s)
	}
	s = imageRe.ReplaceAllString(s, "$1")
	s = linkRe.ReplaceAllString(s, "$1")
	s = codeRe.ReplaceAllString(s, "$1")
	s = strongRe.ReplaceAllString(s, "$2")
	s = emRe.ReplaceAllString(s, "$1$2")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// Anchor returns the URL fragment for a heading: lower case, words joined
// by hyphens, punctuation dropped.
func Anchor(heading string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(heading) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = true
		}
	}
	if b.Len() == 0 {
		return "section"
	}
	return b.String()
}
