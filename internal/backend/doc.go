// Package backend adapts full-text search engines to the hit pipeline.
//
// Every adapter turns one native response shape into a
// types.BackendResponse:
//
//   - SQLiteBackend: FTS5 over the document store, highlight() and snippet()
//   - BleveBackend: a bleve index with the html highlighter
//   - DecodeJSON: the {"results", "total", "duration"} HTTP payload
//
// StaticBackend replays a decoded payload so it can be searched like a live
// backend. NewFromEnv picks the live backend from HITLIGHT_BACKEND.
//
// Backends only fetch. Highlighting of raw hits, ranking and grouping happen
// downstream in the searcher.
package backend
