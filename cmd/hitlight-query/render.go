package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dshills/hitlight/internal/searcher"
	"github.com/dshills/hitlight/internal/storage"
	"github.com/dshills/hitlight/pkg/types"
)

const fieldDisplaySeparator = " · "

type recordJSON struct {
	ID       string `json:"id"`
	URL      string `json:"url,omitempty"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Source   string `json:"source"`
}

type groupJSON struct {
	Category string       `json:"category"`
	Count    int          `json:"count"`
	Records  []recordJSON `json:"records"`
}

type responseJSON struct {
	Query      string       `json:"query"`
	Backend    string       `json:"backend"`
	Total      int          `json:"total"`
	Count      int          `json:"count"`
	DurationMS float64      `json:"duration_ms"`
	Groups     []groupJSON  `json:"groups,omitempty"`
	Records    []recordJSON `json:"records,omitempty"`
}

func displayContent(content string) string {
	return strings.Join(types.SplitFields(content), fieldDisplaySeparator)
}

func toRecordsJSON(records []types.HighlightedRecord) []recordJSON {
	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, recordJSON{
			ID:       r.ID,
			URL:      r.URL,
			Category: r.Category,
			Title:    r.Title,
			Content:  displayContent(r.Content),
			Source:   r.Source,
		})
	}
	return out
}

func renderJSON(w io.Writer, resp *searcher.SearchResponse) error {
	out := responseJSON{
		Query:      resp.Query,
		Backend:    resp.Backend,
		Total:      resp.Total,
		Count:      resp.Count,
		DurationMS: float64(resp.Duration) / float64(time.Millisecond),
	}
	if resp.Groups != nil {
		out.Groups = make([]groupJSON, 0, len(resp.Groups))
		for _, g := range resp.Groups {
			out.Groups = append(out.Groups, groupJSON{
				Category: g.Category,
				Count:    g.Len(),
				Records:  toRecordsJSON(g.Records),
			})
		}
	} else {
		out.Records = toRecordsJSON(resp.Records)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderText(w io.Writer, resp *searcher.SearchResponse) {
	fmt.Fprintf(w, "%d of %d results for %q (%s, %v)\n",
		resp.Count, resp.Total, resp.Query, resp.Backend, resp.Duration.Round(time.Microsecond))

	if resp.Count == 0 {
		return
	}

	if resp.Groups != nil {
		for _, g := range resp.Groups {
			fmt.Fprintf(w, "\n%s (%d)\n", g.Category, g.Len())
			for _, r := range g.Records {
				renderRecord(w, r)
			}
		}
		return
	}

	fmt.Fprintln(w)
	for _, r := range resp.Records {
		renderRecord(w, r)
	}
}

func renderRecord(w io.Writer, r types.HighlightedRecord) {
	fmt.Fprintf(w, "  %s\n", r.Title)
	if r.URL != "" {
		fmt.Fprintf(w, "    %s\n", r.URL)
	}
	if content := displayContent(r.Content); content != "" {
		fmt.Fprintf(w, "    %s\n", content)
	}
}

func renderStatus(w io.Writer, status *storage.Status) {
	fmt.Fprintf(w, "Sources:   %d\n", len(status.Sources))
	fmt.Fprintf(w, "Files:     %d\n", status.FilesCount)
	fmt.Fprintf(w, "Documents: %d\n", status.DocumentsCount)
	fmt.Fprintf(w, "Size:      %.2f MB\n", status.IndexSizeMB)
	if !status.LastIndexedAt.IsZero() {
		fmt.Fprintf(w, "Indexed:   %s\n", status.LastIndexedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Schema:    %s\n", status.Health.SchemaVersion)
	for _, src := range status.Sources {
		fmt.Fprintf(w, "Source %s: %d files, %d documents\n", src.RootPath, src.TotalFiles, src.TotalDocuments)
	}

	if len(status.Categories) == 0 {
		return
	}
	categories := make([]string, 0, len(status.Categories))
	for c := range status.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fmt.Fprintln(w, "Categories:")
	for _, c := range categories {
		fmt.Fprintf(w, "  %s: %d\n", c, status.Categories[c])
	}
}
