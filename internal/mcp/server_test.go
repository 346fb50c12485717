package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hitlight/internal/backend"
	"github.com/dshills/hitlight/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupServer builds a server over an in-memory database and the FTS5 backend
func setupServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	b, err := backend.NewSQLiteBackend(store)
	require.NoError(t, err)

	s, err := newServer(store, b, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// createDocs writes a small tree of notes and returns its root
func createDocs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"notes/invoices.md": "# Invoice reminders\n\nSend the invoice to Acme.\n\nFollow up next week.\n",
		"tasks/todo.md":     "# Todo\n\nPay the invoice.\n",
		"readme.txt":        "Readme\n\nNothing here.\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(h handler, args map[string]interface{}) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return h(context.Background(), req)
}

// callJSON invokes h and decodes its text result
func callJSON(t *testing.T, h handler, args map[string]interface{}) map[string]interface{} {
	t.Helper()

	res, err := call(h, args)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func requireMCPError(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code, mcpErr.Message)
}

func indexDocs(t *testing.T, s *Server, dir string) map[string]interface{} {
	t.Helper()
	return callJSON(t, s.handleIndexDocuments, map[string]interface{}{"path": dir})
}

func TestNewServer(t *testing.T) {
	t.Setenv("HITLIGHT_BACKEND", "")

	s, err := NewServer(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	assert.NotNil(t, s.mcp, "MCP server should be initialized")
	assert.NotNil(t, s.storage, "Storage should be initialized")
	assert.NotNil(t, s.indexer, "Indexer should be initialized")
	assert.NotNil(t, s.searcher, "Searcher should be initialized")
	assert.Equal(t, backend.NameSQLite, s.backend.Name())
}

func TestNewServer_UnknownBackend(t *testing.T) {
	t.Setenv("HITLIGHT_BACKEND", "elastic")

	_, err := NewServer(t.TempDir())
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
}

func TestNewServer_BleveFollowsIndexer(t *testing.T) {
	t.Setenv("HITLIGHT_BACKEND", "bleve")

	s, err := NewServer(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, backend.NameBleve, s.backend.Name())

	indexDocs(t, s, createDocs(t))

	out := callJSON(t, s.handleSearchDocuments, map[string]interface{}{"query": "invoice"})
	assert.Equal(t, "bleve", out["backend"])
	assert.Equal(t, float64(2), out["count"])

	status := callJSON(t, s.handleGetStatus, map[string]interface{}{})
	assert.Equal(t, float64(3), status["backend_documents"])
}

func TestExpandDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := ExpandDBPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".hitlight", "index"), p)

	p, err = ExpandDBPath("~/data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), p)

	p, err = ExpandDBPath("/var/lib/hitlight")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/hitlight", p)
}

func TestHandleIndexDocuments(t *testing.T) {
	s := setupServer(t)
	dir := createDocs(t)

	t.Run("missing path", func(t *testing.T) {
		_, err := call(s.handleIndexDocuments, map[string]interface{}{})
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("relative path", func(t *testing.T) {
		_, err := call(s.handleIndexDocuments, map[string]interface{}{"path": "notes"})
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("no documents", func(t *testing.T) {
		empty := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(empty, "main.go"), []byte("package main\n"), 0644))
		_, err := call(s.handleIndexDocuments, map[string]interface{}{"path": empty})
		requireMCPError(t, err, ErrorCodeSourceNotFound)
	})

	t.Run("success", func(t *testing.T) {
		out := indexDocs(t, s, dir)
		assert.Equal(t, true, out["indexed"])
		assert.Equal(t, float64(3), out["files_indexed"])
		assert.Equal(t, float64(3), out["documents_indexed"])
		assert.NotContains(t, out, "errors")
	})

	t.Run("incremental", func(t *testing.T) {
		out := indexDocs(t, s, dir)
		assert.Equal(t, float64(0), out["files_indexed"])
		assert.Equal(t, float64(3), out["files_skipped"])
	})

	t.Run("split sections with force", func(t *testing.T) {
		out := callJSON(t, s.handleIndexDocuments, map[string]interface{}{
			"path":           dir,
			"split_sections": true,
			"force_reindex":  true,
		})
		assert.Equal(t, float64(3), out["files_indexed"])
	})
}

func TestHandleSearchDocuments(t *testing.T) {
	s := setupServer(t)
	indexDocs(t, s, createDocs(t))

	t.Run("grouped by default", func(t *testing.T) {
		out := callJSON(t, s.handleSearchDocuments, map[string]interface{}{"query": "invoice"})
		assert.Equal(t, "invoice", out["query"])
		assert.Equal(t, backend.NameSQLite, out["backend"])
		assert.Equal(t, float64(2), out["total"])
		assert.Equal(t, float64(2), out["count"])
		assert.Contains(t, out, "duration_ms")

		groups, ok := out["groups"].([]interface{})
		require.True(t, ok)
		require.Len(t, groups, 2)

		first := groups[0].(map[string]interface{})
		assert.Equal(t, "Notes", first["category"])
		records := first["records"].([]interface{})
		require.Len(t, records, 1)
		rec := records[0].(map[string]interface{})
		assert.Equal(t, "<mark>Invoice</mark> reminders", rec["title"])
		assert.Equal(t, "/notes/invoices", rec["url"])
		assert.Contains(t, rec["content"], "<mark>invoice</mark>")
		assert.Equal(t, "computed", rec["source"])
	})

	t.Run("flat", func(t *testing.T) {
		out := callJSON(t, s.handleSearchDocuments, map[string]interface{}{"query": "invoice", "grouped": false})
		assert.NotContains(t, out, "groups")
		records := out["records"].([]interface{})
		require.Len(t, records, 2)
		assert.Equal(t, "/notes/invoices", records[0].(map[string]interface{})["url"])
	})

	t.Run("backend highlighting", func(t *testing.T) {
		out := callJSON(t, s.handleSearchDocuments, map[string]interface{}{
			"query":          "invoice",
			"highlight_mode": "backend",
			"grouped":        false,
		})
		records := out["records"].([]interface{})
		require.NotEmpty(t, records)
		rec := records[0].(map[string]interface{})
		assert.Equal(t, "backend", rec["source"])
		assert.Contains(t, rec["title"], "<mark>")
	})

	t.Run("category filter", func(t *testing.T) {
		out := callJSON(t, s.handleSearchDocuments, map[string]interface{}{"query": "invoice", "category": "Tasks"})
		groups := out["groups"].([]interface{})
		require.Len(t, groups, 1)
		assert.Equal(t, "Tasks", groups[0].(map[string]interface{})["category"])
	})

	t.Run("empty query yields no groups", func(t *testing.T) {
		out := callJSON(t, s.handleSearchDocuments, map[string]interface{}{"query": "   "})
		assert.Equal(t, float64(0), out["count"])
		assert.Empty(t, out["groups"])
	})

	t.Run("missing query", func(t *testing.T) {
		_, err := call(s.handleSearchDocuments, map[string]interface{}{})
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("limit out of range", func(t *testing.T) {
		_, err := call(s.handleSearchDocuments, map[string]interface{}{"query": "x", "limit": float64(101)})
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("invalid highlight mode", func(t *testing.T) {
		_, err := call(s.handleSearchDocuments, map[string]interface{}{"query": "x", "highlight_mode": "fancy"})
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("negative trim target", func(t *testing.T) {
		_, err := call(s.handleSearchDocuments, map[string]interface{}{"query": "x", "trim_target": float64(-1)})
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := call(s.handleSearchDocuments, nil)
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})
}

func TestHandleSearchDocuments_CacheInvalidatedByIndexing(t *testing.T) {
	s := setupServer(t)
	dir := createDocs(t)
	indexDocs(t, s, dir)

	args := map[string]interface{}{"query": "payroll"}
	out := callJSON(t, s.handleSearchDocuments, map[string]interface{}{"query": "invoice"})
	assert.Equal(t, false, out["cache_hit"])
	out = callJSON(t, s.handleSearchDocuments, map[string]interface{}{"query": "invoice"})
	assert.Equal(t, true, out["cache_hit"])

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks", "payroll.md"), []byte("# Payroll\n\nRun payroll.\n"), 0644))
	indexDocs(t, s, dir)
	assert.Equal(t, 0, s.searcher.CacheLen())

	out = callJSON(t, s.handleSearchDocuments, args)
	assert.Equal(t, float64(1), out["count"])
}

func TestHandleProcessResults(t *testing.T) {
	s := setupServer(t)

	payload := `{
		"results": [
			{"name": "b", "title": "Other", "content": "alpha twice alpha", "url": "/b", "doctype": "Task"},
			{"name": "a", "title": "Alpha report", "content": "nothing here", "url": "/a", "doctype": "Note"}
		],
		"total": 7,
		"duration": 12.5
	}`

	t.Run("grouped", func(t *testing.T) {
		out := callJSON(t, s.handleProcessResults, map[string]interface{}{"query": "alpha", "payload": payload})
		assert.Equal(t, float64(7), out["total"])
		assert.Equal(t, 12.5, out["duration_ms"])
		assert.Equal(t, float64(2), out["count"])

		groups := out["groups"].([]interface{})
		require.Len(t, groups, 2)
		first := groups[0].(map[string]interface{})
		assert.Equal(t, "Note", first["category"], "title matches rank first")
		rec := first["records"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "<mark>Alpha</mark> report", rec["title"])
	})

	t.Run("trim target", func(t *testing.T) {
		out := callJSON(t, s.handleProcessResults, map[string]interface{}{
			"query":       "alpha",
			"payload":     payload,
			"grouped":     false,
			"trim_target": float64(1),
		})
		assert.Equal(t, float64(1), out["count"])
		assert.Len(t, out["records"], 1)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := call(s.handleProcessResults, map[string]interface{}{"query": "alpha", "payload": `{"results": 5}`})
		requireMCPError(t, err, ErrorCodeMalformedResponse)

		_, err = call(s.handleProcessResults, map[string]interface{}{"query": "alpha", "payload": `not json`})
		requireMCPError(t, err, ErrorCodeMalformedResponse)
	})

	t.Run("missing payload", func(t *testing.T) {
		_, err := call(s.handleProcessResults, map[string]interface{}{"query": "alpha"})
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("empty query", func(t *testing.T) {
		out := callJSON(t, s.handleProcessResults, map[string]interface{}{"query": "", "payload": payload})
		assert.Equal(t, float64(0), out["count"])
		assert.Empty(t, out["groups"])
	})
}

func TestHandleGetStatus(t *testing.T) {
	s := setupServer(t)

	out := callJSON(t, s.handleGetStatus, map[string]interface{}{})
	assert.Equal(t, false, out["indexed"])
	health := out["health"].(map[string]interface{})
	assert.Equal(t, true, health["database_accessible"])
	assert.Equal(t, storage.CurrentSchemaVersion, health["schema_version"])

	dir := createDocs(t)
	indexDocs(t, s, dir)

	out = callJSON(t, s.handleGetStatus, nil)
	assert.Equal(t, true, out["indexed"])
	stats := out["statistics"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["documents_count"])
	assert.Equal(t, float64(3), stats["files_count"])
	categories := stats["categories"].(map[string]interface{})
	assert.Equal(t, float64(1), categories["Notes"])
	assert.Len(t, out["sources"], 1)
	assert.NotContains(t, out, "backend_documents")

	out = callJSON(t, s.handleGetStatus, map[string]interface{}{"path": dir})
	assert.Equal(t, true, out["indexed"])
	source := out["source"].(map[string]interface{})
	assert.Equal(t, dir, source["path"])
	assert.Equal(t, float64(3), source["total_documents"])

	out = callJSON(t, s.handleGetStatus, map[string]interface{}{"path": t.TempDir()})
	assert.Equal(t, false, out["indexed"])

	_, err := call(s.handleGetStatus, map[string]interface{}{"path": "relative"})
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

func TestValidatePath(t *testing.T) {
	dir := createDocs(t)

	assert.NoError(t, validatePath(dir))
	assert.ErrorIs(t, validatePath(""), ErrPathRequired)
	assert.ErrorIs(t, validatePath("notes"), ErrPathNotAbsolute)
	assert.ErrorIs(t, validatePath(filepath.Join(dir, "missing")), ErrPathNotFound)
	assert.ErrorIs(t, validatePath(filepath.Join(dir, "readme.txt")), ErrNotDirectory)
	assert.ErrorIs(t, validatePath(t.TempDir()), ErrNoDocuments)
}

func TestDisplayContent(t *testing.T) {
	assert.Equal(t, "first · second · third", displayContent("first|||second|||third"))
	assert.Equal(t, "plain", displayContent("plain"))
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeIndexingInProgress, "busy", nil)
	assert.Equal(t, "MCP error -32002: busy", err.Error())
}

func TestToolDefinitions(t *testing.T) {
	tools := []mcp.Tool{indexDocumentsTool(), searchDocumentsTool(), processResultsTool(), getStatusTool()}
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
		assert.Equal(t, "object", tool.InputSchema.Type)
	}
	assert.Equal(t, []string{"index_documents", "search_documents", "process_results", "get_status"}, names)

	search := searchDocumentsTool()
	assert.Equal(t, []string{"query"}, search.InputSchema.Required)
	assert.Contains(t, search.InputSchema.Properties, "highlight_mode")
	assert.Contains(t, search.InputSchema.Properties, "trim_target")
}
