// Package mcp implements the Model Context Protocol (MCP) server for hitlight.
//
// The server exposes four tools over stdio:
//   - index_documents: Index a directory of Markdown and text files
//   - search_documents: Search the index and return highlighted, grouped results
//   - process_results: Highlight, rank and group a JSON payload from another backend
//   - get_status: Check indexing status and statistics
//
// # Tool: index_documents
//
//	Request:
//	{
//	  "name": "index_documents",
//	  "arguments": {
//	    "path": "/home/me/notes",
//	    "split_sections": false,
//	    "force_reindex": false
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "files_indexed": 42,
//	  "files_skipped": 0,
//	  "documents_indexed": 42,
//	  "duration_ms": 180
//	}
//
// # Tool: search_documents
//
//	Request:
//	{
//	  "name": "search_documents",
//	  "arguments": {
//	    "query": "invoice overdue",
//	    "limit": 25,
//	    "grouped": true,
//	    "highlight_mode": "auto"
//	  }
//	}
//
//	Response:
//	{
//	  "query": "invoice overdue",
//	  "backend": "sqlite",
//	  "total": 3,
//	  "count": 3,
//	  "duration_ms": 0.42,
//	  "groups": [
//	    {
//	      "category": "Notes",
//	      "count": 2,
//	      "records": [
//	        {
//	          "id": "Notes-notes/billing",
//	          "url": "/notes/billing",
//	          "title": "<mark>Invoice</mark> follow-ups",
//	          "content": "...nd the <mark>overdue</mark> payments ... · ..."
//	        }
//	      ]
//	    }
//	  ]
//	}
//
// Joined document fields are rendered with " · " between them. An empty
// query is not an error; it returns no groups.
//
// # Tool: process_results
//
// Takes a backend response as a JSON string in the shape
// {"results": [...], "total": n, "duration": ms} and returns the same output
// as search_documents. A payload without a results array is rejected with
// code -32004.
//
// # Tool: get_status
//
// Without arguments it reports the whole index; with "path" it reports one
// indexed directory, or "indexed": false when the path was never indexed.
//
// # Error Codes
//
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Directory holds no indexable files
//   - -32002: Indexing in progress
//   - -32004: Malformed backend response
//
// # Logging
//
// The server logs through log/slog to stderr; stdout is reserved for the
// MCP protocol. Set the level with HITLIGHT_LOG_LEVEL.
package mcp
