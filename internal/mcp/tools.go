package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/hitlight/internal/backend"
	"github.com/dshills/hitlight/internal/indexer"
	"github.com/dshills/hitlight/internal/matcher"
	"github.com/dshills/hitlight/internal/parser"
	"github.com/dshills/hitlight/internal/searcher"
	"github.com/dshills/hitlight/internal/storage"
	"github.com/dshills/hitlight/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeSourceNotFound     = -32001 // Path holds no indexable files
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeMalformedResponse  = -32004 // Backend payload violates the response contract
)

// DisplaySeparator replaces types.FieldSeparator in rendered content
const DisplaySeparator = " · "

// handleIndexDocuments handles the index_documents tool invocation
func (s *Server) handleIndexDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrNoDocuments) {
			code = ErrorCodeSourceNotFound
		}
		return nil, newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	config := &indexer.Config{
		SplitSections: getBoolDefault(args, "split_sections", false),
		Force:         getBoolDefault(args, "force_reindex", false),
		BaseURL:       getStringDefault(args, "base_url", ""),
	}

	stats, err := s.indexer.IndexSource(ctx, path, config)
	if errors.Is(err, indexer.ErrIndexInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", map[string]interface{}{
			"path": path,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":           true,
		"files_indexed":     stats.FilesIndexed,
		"files_skipped":     stats.FilesSkipped,
		"files_failed":      stats.FilesFailed,
		"files_removed":     stats.FilesRemoved,
		"documents_indexed": stats.DocumentsIndexed,
		"documents_removed": stats.DocumentsRemoved,
		"duration_ms":       stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchDocuments handles the search_documents tool invocation
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	// An empty query is valid and yields no groups
	query, ok := args["query"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or not a string",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("limit must be between 1 and %d", searcher.MaxLimit), map[string]interface{}{
				"param": "limit",
				"value": limit,
			})
	}

	opts, err := parseOutputOptions(args)
	if err != nil {
		return nil, err
	}

	resp, err := s.searcher.Search(ctx, searcher.SearchRequest{
		Query:         query,
		Limit:         limit,
		Category:      getStringDefault(args, "category", ""),
		Grouped:       opts.grouped,
		TrimTarget:    opts.trimTarget,
		HighlightMode: opts.mode,
		UseCache:      true,
	})
	if err != nil {
		if errors.Is(err, types.ErrMalformedResponse) {
			return nil, newMCPError(ErrorCodeMalformedResponse, "backend returned a malformed response", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"query":       resp.Query,
		"backend":     resp.Backend,
		"total":       resp.Total,
		"count":       resp.Count,
		"duration_ms": milliseconds(resp.Duration),
		"cache_hit":   resp.CacheHit,
	}
	addResults(response, opts.grouped, resp.Groups, resp.Records)

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleProcessResults post-processes a JSON payload produced by a search
// backend elsewhere
func (s *Server) handleProcessResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or not a string",
		})
	}

	payload, ok := args["payload"].(string)
	if !ok || strings.TrimSpace(payload) == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "payload parameter is required", map[string]interface{}{
			"param":  "payload",
			"reason": "missing or empty",
		})
	}

	opts, err := parseOutputOptions(args)
	if err != nil {
		return nil, err
	}

	resp, err := backend.DecodeJSON([]byte(payload), backend.WithLogger(s.logger))
	if err != nil {
		return nil, newMCPError(ErrorCodeMalformedResponse, "malformed payload", map[string]interface{}{
			"error": err.Error(),
		})
	}

	result := searcher.Process(resp.Hits, matcher.Parse(query), searcher.ProcessOptions{
		Grouped:     opts.grouped,
		Target:      opts.trimTarget,
		LocalOnly:   opts.mode == searcher.HighlightLocal,
		Highlighter: s.highlighter,
	})

	total := len(resp.Hits)
	if resp.Total != nil {
		total = *resp.Total
	}

	response := map[string]interface{}{
		"query": query,
		"total": total,
		"count": result.Count,
	}
	if resp.Duration != nil {
		response["duration_ms"] = milliseconds(*resp.Duration)
	}
	addResults(response, opts.grouped, result.Groups, result.Records)

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	if path := getStringDefault(args, "path", ""); path != "" {
		if !filepath.IsAbs(path) {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
				"param":  "path",
				"reason": ErrPathNotAbsolute.Error(),
			})
		}

		source, err := s.storage.GetSource(ctx, filepath.Clean(path))
		if errors.Is(err, storage.ErrNotFound) {
			response := map[string]interface{}{
				"indexed": false,
				"path":    path,
				"message": "Path not indexed. Use index_documents tool to index it.",
			}
			return mcp.NewToolResultText(formatJSON(response)), nil
		}
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to get source status", map[string]interface{}{
				"error": err.Error(),
			})
		}

		response := map[string]interface{}{
			"indexed": true,
			"source":  sourceJSON(source),
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	sources := make([]map[string]interface{}, 0, len(status.Sources))
	for _, src := range status.Sources {
		sources = append(sources, sourceJSON(src))
	}

	response := map[string]interface{}{
		"indexed": status.DocumentsCount > 0,
		"backend": s.backend.Name(),
		"sources": sources,
		"statistics": map[string]interface{}{
			"files_count":     status.FilesCount,
			"documents_count": status.DocumentsCount,
			"categories":      status.Categories,
			"index_size_mb":   fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_index_built":     status.Health.FTSIndexBuilt,
			"schema_version":      status.Health.SchemaVersion,
		},
		"cache_entries": s.searcher.CacheLen(),
	}
	if !status.LastIndexedAt.IsZero() {
		response["last_indexed_at"] = status.LastIndexedAt.Format(time.RFC3339)
	}
	if counter, ok := s.backend.(backend.DocCounter); ok {
		count, err := counter.DocCount()
		if err != nil {
			s.logger.Warn("failed to count backend documents", "backend", s.backend.Name(), "error", err)
		} else {
			response["backend_documents"] = count
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// outputOptions are the result-shaping parameters shared by the search tools
type outputOptions struct {
	grouped    bool
	trimTarget int
	mode       searcher.HighlightMode
}

func parseOutputOptions(args map[string]interface{}) (outputOptions, error) {
	opts := outputOptions{
		grouped:    getBoolDefault(args, "grouped", true),
		trimTarget: getIntDefault(args, "trim_target", 0),
	}
	if opts.trimTarget < 0 {
		return opts, newMCPError(ErrorCodeInvalidParams, "trim_target must not be negative", map[string]interface{}{
			"param": "trim_target",
			"value": opts.trimTarget,
		})
	}

	mode, err := searcher.ParseHighlightMode(getStringDefault(args, "highlight_mode", ""))
	if err != nil {
		return opts, newMCPError(ErrorCodeInvalidParams, "invalid highlight_mode", map[string]interface{}{
			"param":   "highlight_mode",
			"value":   args["highlight_mode"],
			"allowed": []string{string(searcher.HighlightAuto), string(searcher.HighlightLocal), string(searcher.HighlightBackend)},
		})
	}
	opts.mode = mode
	return opts, nil
}

// addResults renders groups or records into response
func addResults(response map[string]interface{}, grouped bool, groups []types.ResultGroup, records []types.HighlightedRecord) {
	if !grouped {
		response["records"] = recordsJSON(records)
		return
	}

	out := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		out = append(out, map[string]interface{}{
			"category": g.Category,
			"count":    g.Len(),
			"records":  recordsJSON(g.Records),
		})
	}
	response["groups"] = out
}

func recordsJSON(records []types.HighlightedRecord) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		out = append(out, map[string]interface{}{
			"id":       r.ID,
			"url":      r.URL,
			"category": r.Category,
			"title":    r.Title,
			"content":  displayContent(r.Content),
			"source":   r.Source,
		})
	}
	return out
}

// displayContent renders joined document fields for reading
func displayContent(content string) string {
	return strings.ReplaceAll(content, types.FieldSeparator, DisplaySeparator)
}

func sourceJSON(src *storage.Source) map[string]interface{} {
	out := map[string]interface{}{
		"path":            src.RootPath,
		"total_files":     src.TotalFiles,
		"total_documents": src.TotalDocuments,
		"index_version":   src.IndexVersion,
	}
	if !src.LastIndexedAt.IsZero() {
		out["last_indexed_at"] = src.LastIndexedAt.Format(time.RFC3339)
	}
	return out
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is an absolute, readable directory holding
// at least one indexable file
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	found := false
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && parser.Supported(p) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})

	if !found {
		return ErrNoDocuments
	}

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoDocuments     = errors.New("directory does not contain text or Markdown files")
)
