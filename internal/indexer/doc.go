// Package indexer walks a directory of text and Markdown files and stores
// them as searchable documents.
//
// # Basic Usage
//
//	idx := indexer.New(store,
//	    indexer.WithMirror(bleveBackend),
//	    indexer.WithHook(func(ctx context.Context, _ *indexer.Statistics) {
//	        _ = srch.InvalidateCache(ctx)
//	    }),
//	)
//
//	stats, err := idx.IndexSource(ctx, "/path/to/notes", &indexer.Config{
//	    SplitSections: true,
//	})
//	fmt.Printf("Indexed %d files in %v\n", stats.FilesIndexed, stats.Duration)
//
// # Pipeline
//
//  1. Discovery: every .md, .markdown and .txt file below the root; hidden
//     files and directories are skipped.
//  2. Prepare: read, hash, parse and chunk each file on an ants worker pool.
//  3. Store: commit files in batches of Config.BatchSize, one transaction per
//     batch, batches running concurrently under an errgroup.
//  4. Mirror: forward committed documents to the optional Mirror.
//  5. Cleanup: files that vanished from disk are deleted with their documents.
//
// # Categories
//
// A file's category is its first directory below the root, title-cased:
// "meeting-notes/2024/jan.md" belongs to "Meeting Notes". Files directly at
// the root use Config.DefaultCategory ("Document").
//
// # Incremental Indexing
//
// File change detection uses SHA-256 content hashing. Unchanged files are
// skipped unless Config.Force is set, which is how a freshly created mirror
// gets populated from an existing database.
//
// # Error Handling
//
// Read and chunk failures are per file: they are counted in
// Statistics.FilesFailed and described in Statistics.ErrorMessages while the
// rest of the run continues. Parse problems never fail a file; the first one
// is stored on the file record. Storage failures abort the run.
//
// Only one run may be active per Indexer. Overlapping calls return
// ErrIndexInProgress.
package indexer
