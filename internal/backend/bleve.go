package backend

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/dshills/hitlight/internal/highlighter"
	"github.com/dshills/hitlight/pkg/types"
)

// fragmentSeparator joins the content fragments bleve returns
const fragmentSeparator = "... "

// bleveDocument is the indexed shape of a types.Document
type bleveDocument struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	URL      string `json:"url"`
}

// BleveBackend searches a bleve index. Title and content are stemmed with
// the English analyzer and terms match fuzzily. Fragments from bleve's
// html highlighter are rewritten to the configured marker.
type BleveBackend struct {
	index     bleve.Index
	marker    highlighter.Marker
	fuzziness int
	logger    *slog.Logger
}

// NewBleveBackend opens the bleve index at path, creating it when missing.
// An empty path creates an in-memory index.
func NewBleveBackend(path string, opts ...Option) (*BleveBackend, error) {
	cfg := buildConfig(opts)
	index, err := openOrCreateIndex(path)
	if err != nil {
		return nil, err
	}
	return &BleveBackend{
		index:     index,
		marker:    cfg.marker,
		fuzziness: cfg.fuzziness,
		logger:    cfg.logger.With("component", "backend", "backend", NameBleve),
	}, nil
}

func openOrCreateIndex(path string) (bleve.Index, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(documentMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return index, nil
	}

	index, err := bleve.Open(path)
	if err == nil {
		return index, nil
	}
	if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	// bleve.New creates the index directory itself but not its parents
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	index, err = bleve.New(path, documentMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create new index: %w", err)
	}
	return index, nil
}

func documentMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	for _, field := range []string{"title", "content"} {
		f := bleve.NewTextFieldMapping()
		f.Store = true
		f.Index = true
		f.IncludeTermVectors = true
		f.Analyzer = en.AnalyzerName
		docMapping.AddFieldMappingsAt(field, f)
	}

	for _, field := range []string{"name", "category", "url"} {
		f := bleve.NewTextFieldMapping()
		f.Store = true
		f.Index = true
		f.Analyzer = keyword.Name
		docMapping.AddFieldMappingsAt(field, f)
	}

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Name returns "bleve"
func (b *BleveBackend) Name() string {
	return NameBleve
}

// Close closes the index
func (b *BleveBackend) Close() error {
	return b.index.Close()
}

// IndexDocuments adds or replaces docs, keyed by their document key
func (b *BleveBackend) IndexDocuments(ctx context.Context, docs []types.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := b.index.NewBatch()
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := batch.Index(doc.Key, bleveDocument{
			Name:     doc.Name,
			Category: doc.Category,
			Title:    doc.Title,
			Content:  doc.Content,
			URL:      doc.URL,
		})
		if err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.Key, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	b.logger.Debug("indexed documents", "count", len(docs))
	return nil
}

// DeleteDocuments removes documents by key
func (b *BleveBackend) DeleteDocuments(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	batch := b.index.NewBatch()
	for _, key := range keys {
		batch.Delete(key)
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return ctx.Err()
}

// DocCount returns the number of indexed documents
func (b *BleveBackend) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Search runs a disjunction of match queries, one per term and field
func (b *BleveBackend) Search(ctx context.Context, req Request) (*types.BackendResponse, error) {
	terms := req.Query.Terms()
	if len(terms) == 0 {
		return &types.BackendResponse{Hits: []types.Hit{}, Total: types.IntPtr(0)}, nil
	}

	clauses := make([]query.Query, 0, len(terms)*2)
	for _, term := range terms {
		for _, field := range []string{"title", "content"} {
			mq := bleve.NewMatchQuery(term)
			mq.SetField(field)
			mq.SetFuzziness(fuzzinessFor(term, b.fuzziness))
			clauses = append(clauses, mq)
		}
	}
	var q query.Query = bleve.NewDisjunctionQuery(clauses...)
	if req.Category != "" {
		cq := bleve.NewTermQuery(req.Category)
		cq.SetField("category")
		q = bleve.NewConjunctionQuery(q, cq)
	}

	searchRequest := bleve.NewSearchRequestOptions(q, req.limit(), 0, false)
	searchRequest.Fields = []string{"*"}
	if req.Highlight {
		searchRequest.Highlight = bleve.NewHighlightWithStyle("html")
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("content")
	}

	res, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]types.Hit, 0, len(res.Hits))
	for _, dm := range res.Hits {
		title := stringField(dm.Fields, "title")
		content := stringField(dm.Fields, "content")
		hit := types.Hit{
			RawHit: types.RawHit{
				Title:    []string{title},
				Content:  []string{content},
				URL:      stringField(dm.Fields, "url"),
				Category: stringField(dm.Fields, "category"),
			},
			ID:    dm.ID,
			Score: dm.Score,
		}
		if req.Highlight {
			pre := types.Precomputed{Title: title}
			if frags := dm.Fragments["title"]; len(frags) > 0 {
				pre.Title = remark(frags[0], b.marker)
			}
			if frags := dm.Fragments["content"]; len(frags) > 0 {
				for i := range frags {
					frags[i] = remark(frags[i], b.marker)
				}
				pre.Content = strings.Join(frags, fragmentSeparator)
			}
			hit.Source = pre
		}
		hits = append(hits, hit)
	}

	return &types.BackendResponse{
		Hits:     hits,
		Total:    types.IntPtr(int(res.Total)),
		Duration: types.DurationPtr(res.Took),
	}, nil
}

// fuzzinessFor returns the edit distance allowed for term: none below
// three runes, one below six, two otherwise, capped at limit.
func fuzzinessFor(term string, limit int) int {
	n := utf8.RuneCountInString(term)
	d := 2
	switch {
	case n < 3:
		d = 0
	case n < 6:
		d = 1
	}
	return min(d, limit)
}

// remark replaces the <mark> delimiters of an html fragment with m. The
// html escaping of the text is undone as well, since m is not html.
// Fragments are returned unchanged when m is the default marker.
func remark(fragment string, m highlighter.Marker) string {
	def := highlighter.DefaultMarker
	if m == def {
		return fragment
	}

	var sb strings.Builder
	for fragment != "" {
		open := strings.Index(fragment, def.Open)
		if open < 0 {
			sb.WriteString(html.UnescapeString(fragment))
			break
		}
		sb.WriteString(html.UnescapeString(fragment[:open]))
		fragment = fragment[open+len(def.Open):]

		end := strings.Index(fragment, def.Close)
		if end < 0 {
			// left unbalanced for the highlighter to reject
			sb.WriteString(m.Open)
			sb.WriteString(html.UnescapeString(fragment))
			break
		}
		sb.WriteString(m.Wrap(html.UnescapeString(fragment[:end])))
		fragment = fragment[end+len(def.Close):]
	}
	return sb.String()
}

func stringField(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
