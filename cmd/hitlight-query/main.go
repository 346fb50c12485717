package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dshills/hitlight/internal/backend"
	"github.com/dshills/hitlight/internal/highlighter"
	"github.com/dshills/hitlight/internal/indexer"
	"github.com/dshills/hitlight/internal/mcp"
	"github.com/dshills/hitlight/internal/searcher"
	"github.com/dshills/hitlight/internal/storage"
)

// Marker styles selectable with --marker
var markers = map[string]highlighter.Marker{
	"html":     highlighter.DefaultMarker,
	"ansi":     {Open: "\x1b[1;33m", Close: "\x1b[0m"},
	"brackets": {Open: "[", Close: "]"},
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	dbFlag := &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to the index directory",
		EnvVars: []string{"HITLIGHT_DB_PATH"},
		Value:   mcp.DefaultDBPath,
	}
	backendFlag := &cli.StringFlag{
		Name:    "backend",
		Aliases: []string{"b"},
		Usage:   "Search backend (sqlite, bleve)",
		EnvVars: []string{"HITLIGHT_BACKEND"},
		Value:   backend.NameSQLite,
	}

	return &cli.App{
		Name:  "hitlight-query",
		Usage: "Index documents and inspect highlighted, grouped search results",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				EnvVars: []string{"HITLIGHT_LOG_LEVEL"},
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index a directory of Markdown and text files",
				ArgsUsage: "DIR",
				Action:    indexCommand,
				Flags: []cli.Flag{
					dbFlag,
					backendFlag,
					&cli.BoolFlag{
						Name:  "split-sections",
						Usage: "Index every headed section as its own document",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-index files whose content did not change",
					},
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Prefix for document URLs",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of parse workers (0 = number of CPUs)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					backendFlag,
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of hits requested from the backend",
						Value: searcher.DefaultLimit,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only return documents of this category",
					},
				}, outputFlags()...),
			},
			{
				Name:   "process",
				Usage:  "Highlight, rank and group a JSON search response",
				Action: processCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "The query the response was produced for",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "JSON payload file, - for stdin",
						Value:   "-",
					},
				}, outputFlags()...),
			},
			{
				Name:   "status",
				Usage:  "Show index statistics",
				Action: statusCommand,
				Flags:  []cli.Flag{dbFlag},
			},
		},
	}
}

// outputFlags shape how results are processed and printed
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "flat",
			Usage: "Print one ranked list instead of category groups",
		},
		&cli.IntFlag{
			Name:  "trim",
			Usage: "Approximate number of results to keep across groups (0 keeps all)",
		},
		&cli.StringFlag{
			Name:  "highlight-mode",
			Usage: "auto, local or backend",
			Value: string(searcher.HighlightAuto),
		},
		&cli.StringFlag{
			Name:  "marker",
			Usage: "Highlight style: html, ansi or brackets",
			Value: "html",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print JSON instead of text",
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openIndex opens the database and the selected backend
func openIndex(c *cli.Context, marker highlighter.Marker) (storage.Storage, backend.Backend, error) {
	dbPath, err := mcp.ExpandDBPath(c.String("db"))
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(filepath.Join(dbPath, mcp.DatabaseFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	b, err := backend.New(c.String("backend"), store, dbPath,
		backend.WithLogger(slog.Default()),
		backend.WithMarker(marker),
	)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, b, nil
}

func indexCommand(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return errors.New("directory argument is required")
	}

	store, b, err := openIndex(c, highlighter.DefaultMarker)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	defer func() { _ = b.Close() }()

	opts := []indexer.Option{indexer.WithLogger(slog.Default())}
	if mirror, ok := b.(indexer.Mirror); ok {
		opts = append(opts, indexer.WithMirror(mirror))
	}

	stats, err := indexer.New(store, opts...).IndexSource(c.Context, dir, &indexer.Config{
		Workers:       c.Int("workers"),
		SplitSections: c.Bool("split-sections"),
		Force:         c.Bool("force"),
		BaseURL:       c.String("base-url"),
	})
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Indexed %d files (%d documents) in %v\n", stats.FilesIndexed, stats.DocumentsIndexed, stats.Duration)
	fmt.Fprintf(w, "Skipped %d, removed %d, failed %d\n", stats.FilesSkipped, stats.FilesRemoved, stats.FilesFailed)
	for _, msg := range stats.ErrorMessages {
		fmt.Fprintf(w, "  error: %s\n", msg)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	out, err := parseOutput(c)
	if err != nil {
		return err
	}

	store, b, err := openIndex(c, out.marker)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	defer func() { _ = b.Close() }()

	return runSearch(c.Context, c.App.Writer, b, query, c.Int("limit"), c.String("category"), out)
}

func processCommand(c *cli.Context) error {
	out, err := parseOutput(c)
	if err != nil {
		return err
	}

	payload, err := readPayload(c.String("file"), c.App.Reader)
	if err != nil {
		return err
	}

	resp, err := backend.DecodeJSON(payload, backend.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	return runSearch(c.Context, c.App.Writer, backend.NewStaticBackend(resp),
		c.String("query"), searcher.MaxLimit, "", out)
}

func statusCommand(c *cli.Context) error {
	dbPath, err := mcp.ExpandDBPath(c.String("db"))
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(filepath.Join(dbPath, mcp.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus(c.Context)
	if err != nil {
		return err
	}
	renderStatus(c.App.Writer, status)
	return nil
}

// runSearch runs one query through a Searcher over b and prints the result
func runSearch(ctx context.Context, w io.Writer, b backend.Backend, query string, limit int, category string, out outputConfig) error {
	hl := highlighter.New(
		highlighter.WithMarker(out.marker),
		highlighter.WithWindow(highlighter.WindowFromEnv()),
		highlighter.WithLogger(slog.Default()),
	)

	srch, err := searcher.NewSearcher(b, searcher.WithHighlighter(hl), searcher.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	resp, err := srch.Search(ctx, searcher.SearchRequest{
		Query:         query,
		Limit:         limit,
		Category:      category,
		Grouped:       !out.flat,
		TrimTarget:    out.trim,
		HighlightMode: out.mode,
	})
	if err != nil {
		return err
	}

	if out.json {
		return renderJSON(w, resp)
	}
	renderText(w, resp)
	return nil
}

// outputConfig holds the parsed output flags
type outputConfig struct {
	flat   bool
	trim   int
	mode   searcher.HighlightMode
	marker highlighter.Marker
	json   bool
}

func parseOutput(c *cli.Context) (outputConfig, error) {
	out := outputConfig{
		flat: c.Bool("flat"),
		trim: c.Int("trim"),
		json: c.Bool("json"),
	}
	if out.trim < 0 {
		return out, fmt.Errorf("--trim must not be negative, got %d", out.trim)
	}

	mode, err := searcher.ParseHighlightMode(c.String("highlight-mode"))
	if err != nil {
		return out, err
	}
	out.mode = mode

	marker, ok := markers[strings.ToLower(c.String("marker"))]
	if !ok {
		return out, fmt.Errorf("unknown marker style %q: must be one of html, ansi, brackets", c.String("marker"))
	}
	out.marker = marker

	return out, nil
}

// readPayload reads path, or r when path is "-"
func readPayload(path string, r io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		if r == nil {
			r = os.Stdin
		}
		return io.ReadAll(r)
	}
	return os.ReadFile(path)
}
