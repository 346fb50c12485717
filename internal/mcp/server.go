package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/hitlight/internal/backend"
	"github.com/dshills/hitlight/internal/highlighter"
	"github.com/dshills/hitlight/internal/indexer"
	"github.com/dshills/hitlight/internal/searcher"
	"github.com/dshills/hitlight/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "hitlight"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.hitlight/index"
	// DatabaseFile is the database file name inside the database directory
	DatabaseFile = "hitlight.db"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp         *server.MCPServer
	storage     storage.Storage
	backend     backend.Backend
	highlighter *highlighter.Highlighter
	indexer     *indexer.Indexer
	searcher    *searcher.Searcher
	logger      *slog.Logger
}

// NewServer creates a new MCP server instance backed by a database under
// dbPath. The search backend is chosen by HITLIGHT_BACKEND.
func NewServer(dbPath string) (*Server, error) {
	dbPath, err := ExpandDBPath(dbPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(filepath.Join(dbPath, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	logger := slog.Default()
	b, err := backend.NewFromEnv(store, dbPath, backend.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize backend: %w", err)
	}

	s, err := newServer(store, b, logger)
	if err != nil {
		_ = b.Close()
		_ = store.Close()
		return nil, err
	}
	return s, nil
}

// newServer wires the indexer and searcher around an open store and backend
func newServer(store storage.Storage, b backend.Backend, logger *slog.Logger) (*Server, error) {
	hl := highlighter.New(
		highlighter.WithWindow(highlighter.WindowFromEnv()),
		highlighter.WithLogger(logger),
	)

	srch, err := searcher.NewSearcher(b,
		searcher.WithHighlighter(hl),
		searcher.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize searcher: %w", err)
	}

	idxOpts := []indexer.Option{
		indexer.WithLogger(logger),
		indexer.WithHook(func(ctx context.Context, _ *indexer.Statistics) {
			_ = srch.InvalidateCache(ctx)
		}),
	}
	// Backends with their own index follow the database
	if mirror, ok := b.(indexer.Mirror); ok {
		idxOpts = append(idxOpts, indexer.WithMirror(mirror))
	}

	s := &Server{
		mcp:         server.NewMCPServer(ServerName, ServerVersion),
		storage:     store,
		backend:     b,
		highlighter: hl,
		indexer:     indexer.New(store, idxOpts...),
		searcher:    srch,
		logger:      logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// ExpandDBPath resolves "" and a leading "~" against the home directory
func ExpandDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if dbPath != "~" && !strings.HasPrefix(dbPath, "~/") {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(dbPath, "~")), nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the backend and the database
func (s *Server) Close() error {
	return errors.Join(s.backend.Close(), s.storage.Close())
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(indexDocumentsTool(), s.handleIndexDocuments)
	s.mcp.AddTool(searchDocumentsTool(), s.handleSearchDocuments)
	s.mcp.AddTool(processResultsTool(), s.handleProcessResults)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}
