// Package storage provides SQLite-based persistence for indexed documents.
//
// The storage layer manages:
//   - Source roots that have been indexed
//   - File information and content hashes
//   - Documents (the searchable records) and their FTS5 index
//
// # Database Schema
//
// Tables:
//   - sources: Indexed root directories
//   - files: File paths, categories and SHA-256 hashes
//   - documents: Title, content, URL and category per record
//   - documents_fts: FTS5 external-content index over documents(title, content)
//
// Triggers keep documents_fts in sync with documents, including deletes
// cascaded from files.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.hitlight/index/hitlight.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = tx.Rollback() }()
//
//	if err := tx.UpsertFile(ctx, file); err != nil {
//	    return err
//	}
//	if err := tx.UpsertDocument(ctx, doc); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// # Full-Text Search
//
// SearchDocuments matches every term as a quoted prefix. With Highlight set,
// FTS5 marks the title with highlight() and cuts a content excerpt with
// snippet(), using the caller's delimiters:
//
//	res, err := store.SearchDocuments(ctx, storage.TextQuery{
//	    Terms:     []string{"invoice", "overdue"},
//	    MatchAll:  true,
//	    Limit:     25,
//	    Highlight: true,
//	    Open:      "<mark>",
//	    Close:     "</mark>",
//	})
//
// res.Total counts every matching document, not just the returned page.
//
// # Build Tags
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build ./...
//
// CGO build (cgo_sqlite tag):
//
//   - Uses github.com/mattn/go-sqlite3
//
//     CGO_ENABLED=1 go build -tags "cgo_sqlite,sqlite_fts5" ./...
package storage
