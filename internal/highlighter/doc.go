// Package highlighter marks query terms in search hits and cuts content snippets.
//
// Titles are marked in full. Content is reduced to one short window per
// query term, each window marked, trimmed and terminated by Ellipsis:
//
//	h := highlighter.New()
//	h.HighlightTitle("Alpha and beta", []string{"alpha"})
//	// "<mark>Alpha</mark> and beta"
//
//	h.BuildContentSnippets("...alpha appears here, and beta too...", []string{"alpha", "beta"})
//	// "...<mark>alpha</mark> appears here,... ears here, and <mark>beta</mark> too...... "
//
// # Windowing
//
// By default a window holds 15 characters before the first occurrence of a
// term and 15 characters after its end (Window.WidenByTerm). Setting
// WidenByTerm to false gives 15 characters either side of the match start;
// AllOccurrences emits a window for every occurrence not already covered.
// One Highlighter applies one policy to every record.
//
// # Highlight sources
//
// Resolve honours a hit's HighlightSource: backend markup (Precomputed) is
// kept as is when its delimiters balance, otherwise the hit is highlighted
// locally. Mark counts are always counted from the final text.
package highlighter
