package storage

import (
	"context"
	"time"

	"github.com/dshills/hitlight/pkg/types"
)

// Storage defines the interface for persisting and querying indexed documents
type Storage interface {
	// Source operations
	CreateSource(ctx context.Context, source *Source) error
	GetSource(ctx context.Context, rootPath string) (*Source, error)
	UpdateSource(ctx context.Context, source *Source) error
	ListSources(ctx context.Context) ([]*Source, error)

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, sourceID int64, filePath string) (*File, error)
	GetFileByID(ctx context.Context, fileID int64) (*File, error)
	DeleteFile(ctx context.Context, fileID int64) error
	ListFiles(ctx context.Context, sourceID int64) ([]*File, error)

	// Document operations
	UpsertDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, documentID int64) (*Document, error)
	GetDocumentByKey(ctx context.Context, key string) (*Document, error)
	ListDocumentsByFile(ctx context.Context, fileID int64) ([]*Document, error)
	DeleteDocument(ctx context.Context, documentID int64) error
	DeleteDocumentsByFile(ctx context.Context, fileID int64) (deletedCount int, err error)

	// Search operations
	SearchDocuments(ctx context.Context, query TextQuery) (*TextSearchResult, error)

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Source represents an indexed document root directory
type Source struct {
	ID             int64
	RootPath       string
	TotalFiles     int
	TotalDocuments int
	IndexVersion   string
	LastIndexedAt  time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// File represents a tracked source file
type File struct {
	ID            int64
	SourceID      int64
	FilePath      string // Relative to source root
	Category      string
	ContentHash   [32]byte
	ModTime       time.Time
	SizeBytes     int64
	ParseError    *string // Nullable
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Document represents one searchable record derived from a file
type Document struct {
	ID          int64
	FileID      *int64 // Nullable - documents may be stored without a file
	Key         string
	Name        string
	Category    string
	Title       string
	Content     string
	URL         string
	SourcePath  string
	ContentHash [32]byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FromTypesDocument converts a types.Document into a storage Document
func FromTypesDocument(doc types.Document, fileID *int64) *Document {
	return &Document{
		ID:          doc.ID,
		FileID:      fileID,
		Key:         doc.Key,
		Name:        doc.Name,
		Category:    doc.Category,
		Title:       doc.Title,
		Content:     doc.Content,
		URL:         doc.URL,
		SourcePath:  doc.SourcePath,
		ContentHash: doc.ContentHash,
	}
}

// ToTypesDocument converts a storage Document into a types.Document
func (d *Document) ToTypesDocument() types.Document {
	return types.Document{
		ID:          d.ID,
		Key:         d.Key,
		Name:        d.Name,
		Category:    d.Category,
		Title:       d.Title,
		Content:     d.Content,
		URL:         d.URL,
		SourcePath:  d.SourcePath,
		ContentHash: d.ContentHash,
	}
}

// TextQuery describes a full-text search over documents
type TextQuery struct {
	Terms    []string
	MatchAll bool // every term must match; otherwise any term may match
	Category string
	Limit    int

	// Highlight asks FTS5 to mark matches in the title and cut a content
	// snippet. Open and Close are the marker delimiters.
	Highlight     bool
	Open          string
	Close         string
	SnippetTokens int // tokens per content snippet (default 16)
}

// TextMatch is one document matched by a TextQuery
type TextMatch struct {
	Document  *Document
	BM25Score float64

	// Set only when the query asked for highlighting
	HighlightedTitle   string
	HighlightedContent string
}

// TextSearchResult contains the matches of a TextQuery and the total number
// of matching documents before the limit was applied
type TextSearchResult struct {
	Matches []TextMatch
	Total   int
}

// Status contains statistics about the index
type Status struct {
	Sources        []*Source
	FilesCount     int
	DocumentsCount int
	Categories     map[string]int
	IndexSizeMB    float64
	LastIndexedAt  time.Time
	Health         HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexBuilt      bool
	SchemaVersion      string
}
