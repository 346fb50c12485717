// Package searcher turns backend hits into ranked, highlighted, grouped
// results.
//
// Process is the pipeline itself. It is pure and synchronous:
//
//	q := matcher.Parse("alpha beta")
//	res := searcher.Process(resp.Hits, q, searcher.ProcessOptions{Grouped: true})
//	for _, g := range res.Groups {
//	    fmt.Println(g.Category, g.Len())
//	}
//
// Searcher wraps a backend.Backend with request validation, an optional LRU
// response cache, and pass-through of the backend's total and timing:
//
//	s, err := searcher.NewSearcher(b, searcher.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	resp, err := s.Search(ctx, searcher.SearchRequest{
//	    Query:   "overdue invoice",
//	    Limit:   25,
//	    Grouped: true,
//	})
//
// # Highlight Modes
//
//   - auto (default): hits that carry backend highlighting keep it, the rest
//     are marked locally
//   - local: backend highlighting is ignored
//   - backend: the backend is asked to highlight
//
// Highlighting supplied by a backend is only trusted when its markers are
// balanced. Otherwise the record is marked locally.
//
// # Caching
//
// With UseCache set, whole responses are cached per request for CacheTTL
// (default 1h). The key covers every request field, so records produced for
// one query are never served for another. Call InvalidateCache after
// reindexing.
//
// An empty or all-whitespace query returns an empty response without calling
// the backend.
package searcher
