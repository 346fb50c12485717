package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/hitlight/internal/storage"
	"github.com/dshills/hitlight/pkg/types"
)

const (
	// DefaultLimit matches the number of results a search page shows
	DefaultLimit = 25

	NameSQLite = "sqlite"
	NameBleve  = "bleve"
	NameStatic = "static"
)

var (
	// ErrUnknownBackend is returned when HITLIGHT_BACKEND names no known backend
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrStorageRequired is returned when the sqlite backend is built without storage
	ErrStorageRequired = errors.New("storage is required")
)

// Request is what the searcher asks of a backend
type Request struct {
	Query types.Query

	// Limit caps the number of hits returned. Zero means DefaultLimit.
	Limit int

	// Category restricts hits to one category when set
	Category string

	// Highlight asks the backend to mark matches itself
	Highlight bool
}

func (r Request) limit() int {
	if r.Limit <= 0 {
		return DefaultLimit
	}
	return r.Limit
}

// Backend is a full-text index the search pipeline reads hits from.
// Each implementation normalizes its native response into a
// types.BackendResponse.
type Backend interface {
	Search(ctx context.Context, req Request) (*types.BackendResponse, error)
	Name() string
	Close() error
}

// DocCounter is implemented by backends that keep their own index
type DocCounter interface {
	DocCount() (uint64, error)
}

// NewFromEnv builds the backend named by HITLIGHT_BACKEND. See New.
func NewFromEnv(store storage.Storage, indexDir string, opts ...Option) (Backend, error) {
	return New(os.Getenv("HITLIGHT_BACKEND"), store, indexDir, opts...)
}

// New builds a backend by name.
//
// Supported values:
//   - "sqlite" (default): FTS5 over store
//   - "bleve": on-disk bleve index under indexDir, or in memory when indexDir is ""
func New(name string, store storage.Storage, indexDir string, opts ...Option) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	switch name {
	case "", NameSQLite:
		return NewSQLiteBackend(store, opts...)
	case NameBleve:
		path := ""
		if indexDir != "" {
			path = filepath.Join(indexDir, "bleve")
		}
		return NewBleveBackend(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s, %s)", ErrUnknownBackend, name, NameSQLite, NameBleve)
	}
}
