package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/hitlight/internal/storage"
	"github.com/dshills/hitlight/pkg/types"
)

// SQLiteBackend searches the FTS5 document index in storage.
//
// All terms are tried first. When that finds nothing and the query has more
// than one term, any term may match.
type SQLiteBackend struct {
	store  storage.Storage
	cfg    config
	logger *slog.Logger
}

// NewSQLiteBackend creates a backend over store
func NewSQLiteBackend(store storage.Storage, opts ...Option) (*SQLiteBackend, error) {
	if store == nil {
		return nil, ErrStorageRequired
	}
	cfg := buildConfig(opts)
	return &SQLiteBackend{
		store:  store,
		cfg:    cfg,
		logger: cfg.logger.With("component", "backend", "backend", NameSQLite),
	}, nil
}

// Name returns "sqlite"
func (b *SQLiteBackend) Name() string {
	return NameSQLite
}

// Close is a no-op; the storage is owned by the caller
func (b *SQLiteBackend) Close() error {
	return nil
}

// Search runs req against the FTS5 index
func (b *SQLiteBackend) Search(ctx context.Context, req Request) (*types.BackendResponse, error) {
	start := time.Now()

	terms := req.Query.Terms()
	if len(terms) == 0 {
		return &types.BackendResponse{
			Hits:     []types.Hit{},
			Total:    types.IntPtr(0),
			Duration: types.DurationPtr(time.Since(start)),
		}, nil
	}

	tq := storage.TextQuery{
		Terms:     terms,
		MatchAll:  true,
		Category:  req.Category,
		Limit:     req.limit(),
		Highlight: req.Highlight,
		Open:      b.cfg.marker.Open,
		Close:     b.cfg.marker.Close,
	}

	res, err := b.store.SearchDocuments(ctx, tq)
	if err != nil {
		return nil, fmt.Errorf("sqlite search failed: %w", err)
	}

	if res.Total == 0 && len(terms) > 1 {
		b.logger.Debug("no document matches every term, retrying with any term",
			"query", req.Query.Raw(), "terms", len(terms))
		tq.MatchAll = false
		res, err = b.store.SearchDocuments(ctx, tq)
		if err != nil {
			return nil, fmt.Errorf("sqlite search failed: %w", err)
		}
	}

	hits := make([]types.Hit, 0, len(res.Matches))
	for _, m := range res.Matches {
		hits = append(hits, matchToHit(m, req.Highlight))
	}

	return &types.BackendResponse{
		Hits:     hits,
		Total:    types.IntPtr(res.Total),
		Duration: types.DurationPtr(time.Since(start)),
	}, nil
}

func matchToHit(m storage.TextMatch, highlighted bool) types.Hit {
	doc := m.Document
	hit := types.Hit{
		RawHit: types.RawHit{
			Title:    []string{doc.Title},
			Content:  []string{doc.Content},
			URL:      doc.URL,
			Category: doc.Category,
		},
		ID: doc.Key,
		// bm25() is negative, lower is better
		Score: -m.BM25Score,
	}
	if highlighted {
		hit.Source = types.Precomputed{
			Title:   m.HighlightedTitle,
			Content: m.HighlightedContent,
		}
	}
	return hit
}
