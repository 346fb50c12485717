// Package chunker turns parsed text and Markdown files into indexable
// documents.
//
// By default a file becomes one document. Its paragraphs are joined with
// types.FieldSeparator so that search results can later render them as
// separate fields:
//
//	c := chunker.New()
//	docs, err := c.ChunkFile(chunker.Source{
//	    Path:     "notes/weekly.md",
//	    Category: chunker.CategoryFor("notes/weekly.md", "Document"),
//	}, parseResult)
//
// With WithSplitSections(true) every headed section becomes its own
// document. Its title is "<file title> › <heading>" and its URL carries the
// section anchor:
//
//	Key:   "Notes-notes/weekly#action-items"
//	Title: "Weekly sync › Action items"
//	URL:   "/notes/weekly#action-items"
//
// # Content Hashing
//
// Every document carries a SHA-256 hash of its title and content, which
// lets the indexer skip unchanged documents on re-index.
//
// Documents without a title and without content are dropped.
package chunker
