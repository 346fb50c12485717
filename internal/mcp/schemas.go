package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/hitlight/internal/searcher"
)

// outputProperties are shared by the tools that return grouped records
func outputProperties() map[string]interface{} {
	return map[string]interface{}{
		"grouped": map[string]interface{}{
			"type":        "boolean",
			"description": "If true, bucket results by category, largest category first",
			"default":     true,
		},
		"trim_target": map[string]interface{}{
			"type":        "integer",
			"description": "Approximate number of results to keep, spread evenly across categories (0 keeps all)",
			"default":     0,
			"minimum":     0,
		},
		"highlight_mode": map[string]interface{}{
			"type":        "string",
			"description": "auto: use highlighting supplied with the hits, mark the rest locally; local: always mark locally; backend: ask the search backend to mark matches",
			"enum": []string{
				string(searcher.HighlightAuto),
				string(searcher.HighlightLocal),
				string(searcher.HighlightBackend),
			},
			"default": string(searcher.HighlightAuto),
		},
	}
}

// indexDocumentsTool returns the tool definition for index_documents
func indexDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_documents",
		Description: "Index a directory of Markdown and text files to make it searchable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the directory to index",
				},
				"split_sections": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index every headed section as its own document",
					"default":     false,
				},
				"force_reindex": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-index all files ignoring file hashes (full rebuild)",
					"default":     false,
				},
				"base_url": map[string]interface{}{
					"type":        "string",
					"description": "Prefix for document URLs in search results",
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchDocumentsTool returns the tool definition for search_documents
func searchDocumentsTool() mcp.Tool {
	props := outputProperties()
	props["query"] = map[string]interface{}{
		"type":        "string",
		"description": "Search terms separated by spaces; an empty query returns no results",
	}
	props["limit"] = map[string]interface{}{
		"type":        "integer",
		"description": "Maximum number of hits to request from the backend (1-100)",
		"default":     searcher.DefaultLimit,
		"minimum":     1,
		"maximum":     searcher.MaxLimit,
	}
	props["category"] = map[string]interface{}{
		"type":        "string",
		"description": "Only return documents of this category",
	}

	return mcp.Tool{
		Name:        "search_documents",
		Description: "Search indexed documents and return highlighted results grouped by category",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"query"},
		},
	}
}

// processResultsTool returns the tool definition for process_results
func processResultsTool() mcp.Tool {
	props := outputProperties()
	props["query"] = map[string]interface{}{
		"type":        "string",
		"description": "The query the payload was produced for",
	}
	props["payload"] = map[string]interface{}{
		"type":        "string",
		"description": `Backend response as JSON: {"results": [{"title", "content", "url", "doctype", "highlighted_title", "highlighted_content"}], "total": n, "duration": ms}`,
	}

	return mcp.Tool{
		Name:        "process_results",
		Description: "Highlight, rank and group a search response produced by another backend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"query", "payload"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics, for the whole index or one indexed directory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of an indexed directory (optional)",
				},
			},
		},
	}
}
