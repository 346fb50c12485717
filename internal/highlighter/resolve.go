package highlighter

import (
	"fmt"

	"github.com/dshills/hitlight/pkg/types"
)

// Resolve turns a hit into a HighlightedRecord for the given query.
//
// Backend highlighting is rewritten from the source marker to the
// highlighter's marker, then trusted when its markup is well formed. When it is
// not, the record is highlighted locally from the raw fields, and when those
// are empty too the backend text is passed through with delimiters removed.
// Resolve never drops a record and never returns an error.
func (h *Highlighter) Resolve(hit types.Hit, q types.Query) (rec types.HighlightedRecord) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("highlighting failed, passing record through",
				"url", hit.URL, "category", hit.Category, "panic", fmt.Sprint(r))
			rec = h.plain(hit, hit.PrimaryTitle(), hit.PrimaryContent())
		}
	}()

	terms := q.Terms()

	switch src := hit.HighlightSource().(type) {
	case types.Precomputed:
		src = h.adoptMarkup(src)
		if err := h.checkPrecomputed(src); err != nil {
			h.logger.Warn("discarding backend highlighting",
				"url", hit.URL, "category", hit.Category, "error", err)
			title, content := hit.PrimaryTitle(), hit.PrimaryContent()
			if title == "" && content == "" {
				return h.plain(hit, src.Title, src.Content)
			}
			return h.compute(hit, title, content, terms)
		}
		return types.HighlightedRecord{
			ID:               hit.ID,
			Title:            src.Title,
			Content:          src.Content,
			URL:              hit.URL,
			Category:         hit.Category,
			TitleMarkCount:   h.CountMarks(src.Title),
			ContentMarkCount: h.CountMarks(src.Content),
			Source:           types.SourceBackend,
		}

	case types.NeedsComputation:
		return h.compute(hit, src.RawTitle, src.RawContent, terms)

	default:
		return h.compute(hit, hit.PrimaryTitle(), hit.PrimaryContent(), terms)
	}
}

// ResolveAll resolves every hit in order.
func (h *Highlighter) ResolveAll(hits []types.Hit, q types.Query) []types.HighlightedRecord {
	records := make([]types.HighlightedRecord, len(hits))
	for i, hit := range hits {
		records[i] = h.Resolve(hit, q)
	}
	return records
}

// adoptMarkup rewrites backend delimiters to the highlighter's marker
func (h *Highlighter) adoptMarkup(src types.Precomputed) types.Precomputed {
	if h.adoptRep == nil {
		return src
	}
	return types.Precomputed{
		Title:   h.adoptRep.Replace(src.Title),
		Content: h.adoptRep.Replace(src.Content),
	}
}

func (h *Highlighter) checkPrecomputed(src types.Precomputed) error {
	if err := h.CheckMarks(src.Title); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	if err := h.CheckMarks(src.Content); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}

func (h *Highlighter) compute(hit types.Hit, title, content string, terms []string) types.HighlightedRecord {
	markedTitle := h.HighlightTitle(title, terms)
	snippets := h.BuildContentSnippets(content, terms)

	return types.HighlightedRecord{
		ID:               hit.ID,
		Title:            markedTitle,
		Content:          snippets,
		URL:              hit.URL,
		Category:         hit.Category,
		TitleMarkCount:   h.CountMarks(markedTitle),
		ContentMarkCount: h.CountMarks(snippets),
		Source:           types.SourceComputed,
	}
}

func (h *Highlighter) plain(hit types.Hit, title, content string) types.HighlightedRecord {
	return types.HighlightedRecord{
		ID:       hit.ID,
		Title:    h.StripMarks(title),
		Content:  h.StripMarks(content),
		URL:      hit.URL,
		Category: hit.Category,
		Source:   types.SourcePlain,
	}
}
