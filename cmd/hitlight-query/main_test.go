package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hitlight/pkg/types"
)

const testPayload = `{
	"results": [
		{"name": "notes/invoices", "title": "Invoice template", "content": "Send the invoice every month", "url": "/notes/invoices", "category": "Notes"},
		{"name": "notes/meetings", "title": "Meetings", "content": ["Weekly sync", "Invoice review"], "category": "Notes"},
		{"name": "tasks/todo", "title": "Todo", "content": "Pay the invoice", "category": "Tasks"}
	],
	"total": 12,
	"duration": 3.5
}`

// runApp runs the CLI with args and returns what it printed
func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)

	err := app.Run(append([]string{"hitlight-query"}, args...))
	return out.String(), err
}

func writePayload(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))
	return path
}

func TestProcessCommand(t *testing.T) {
	path := writePayload(t, testPayload)

	t.Run("grouped text", func(t *testing.T) {
		out, err := runApp(t, "", "process", "--query", "invoice", "--file", path)
		require.NoError(t, err)

		assert.Contains(t, out, "3 of 12 results for \"invoice\"")
		assert.Contains(t, out, "Notes (2)")
		assert.Contains(t, out, "Tasks (1)")
		assert.Contains(t, out, "<mark>Invoice</mark> template")
		assert.Less(t, strings.Index(out, "Notes (2)"), strings.Index(out, "Tasks (1)"))
	})

	t.Run("flat json", func(t *testing.T) {
		out, err := runApp(t, "", "process", "-q", "invoice", "-f", path, "--flat", "--json")
		require.NoError(t, err)

		var resp responseJSON
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "invoice", resp.Query)
		assert.Equal(t, "static", resp.Backend)
		assert.Equal(t, 12, resp.Total)
		assert.InDelta(t, 3.5, resp.DurationMS, 0.001)
		assert.Empty(t, resp.Groups)
		require.Len(t, resp.Records, 3)
		assert.Equal(t, "<mark>Invoice</mark> template", resp.Records[0].Title)
		assert.Equal(t, types.SourceComputed, resp.Records[0].Source)
	})

	t.Run("brackets marker", func(t *testing.T) {
		out, err := runApp(t, "", "process", "-q", "invoice", "-f", path, "--marker", "brackets")
		require.NoError(t, err)
		assert.Contains(t, out, "[Invoice] template")
		assert.NotContains(t, out, "<mark>")
	})

	t.Run("backend highlighting follows marker", func(t *testing.T) {
		highlighted := writePayload(t, `{"results": [
			{"name": "a", "title": "Invoice", "highlighted_title": "<mark>Invoice</mark>", "highlighted_content": "the <mark>invoice</mark>... ", "category": "Notes"}
		]}`)
		out, err := runApp(t, "", "process", "-q", "invoice", "-f", highlighted, "--marker", "brackets", "--flat", "--json")
		require.NoError(t, err)

		var resp responseJSON
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.Len(t, resp.Records, 1)
		assert.Equal(t, "[Invoice]", resp.Records[0].Title)
		assert.Equal(t, "the [invoice]... ", resp.Records[0].Content)
		assert.Equal(t, types.SourceBackend, resp.Records[0].Source)
	})

	t.Run("trim", func(t *testing.T) {
		out, err := runApp(t, "", "process", "-q", "invoice", "-f", path, "--trim", "2", "--json")
		require.NoError(t, err)

		var resp responseJSON
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Groups, 2)
		for _, g := range resp.Groups {
			assert.Len(t, g.Records, 1)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := runApp(t, testPayload, "process", "-q", "invoice")
		require.NoError(t, err)
		assert.Contains(t, out, "3 of 12 results")
	})

	t.Run("empty query", func(t *testing.T) {
		out, err := runApp(t, "", "process", "-q", "", "-f", path, "--json")
		require.NoError(t, err)

		var resp responseJSON
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, 0, resp.Count)
		assert.Empty(t, resp.Groups)
	})
}

func TestProcessCommandErrors(t *testing.T) {
	path := writePayload(t, testPayload)

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{
			name:    "malformed payload",
			stdin:   `{"results": "nope"}`,
			args:    []string{"process", "-q", "x"},
			wantErr: "malformed",
		},
		{
			name:    "not json",
			stdin:   `<html>`,
			args:    []string{"process", "-q", "x"},
			wantErr: "malformed",
		},
		{
			name:    "missing file",
			args:    []string{"process", "-q", "x", "-f", filepath.Join(t.TempDir(), "missing.json")},
			wantErr: "no such file",
		},
		{
			name:    "negative trim",
			args:    []string{"process", "-q", "x", "-f", path, "--trim", "-1"},
			wantErr: "--trim",
		},
		{
			name:    "unknown marker",
			args:    []string{"process", "-q", "x", "-f", path, "--marker", "neon"},
			wantErr: "neon",
		},
		{
			name:    "unknown highlight mode",
			args:    []string{"process", "-q", "x", "-f", path, "--highlight-mode", "fancy"},
			wantErr: "invalid highlight mode",
		},
		{
			name:    "bad log level",
			args:    []string{"--log-level", "loud", "process", "-q", "x", "-f", path},
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), tt.wantErr)
		})
	}
}

func TestIndexSearchStatus(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "invoices.md"),
		[]byte("# Invoices\n\nSend the invoice every month.\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"),
		[]byte("Nothing to see here.\n"), 0644))

	db := t.TempDir()

	out, err := runApp(t, "", "index", "--db", db, root)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 2 files")

	out, err = runApp(t, "", "index", "--db", db, root)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped 2")

	out, err = runApp(t, "", "search", "--db", db, "invoice")
	require.NoError(t, err)
	assert.Contains(t, out, "Notes (1)")
	assert.Contains(t, out, "<mark>Invoice</mark>s")

	out, err = runApp(t, "", "search", "--db", db, "--json", "--flat", "nothing")
	require.NoError(t, err)
	var resp responseJSON
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Document", resp.Records[0].Category)

	out, err = runApp(t, "", "status", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Files:     2")
	assert.Contains(t, out, "Notes: 1")
}

func TestIndexCommandRequiresDir(t *testing.T) {
	_, err := runApp(t, "", "index", "--db", t.TempDir())
	assert.ErrorContains(t, err, "directory argument is required")
}

func TestDisplayContent(t *testing.T) {
	assert.Equal(t, "a · b", displayContent("a|||b"))
	assert.Equal(t, "", displayContent(""))
}
