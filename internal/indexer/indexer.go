package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/hitlight/internal/chunker"
	"github.com/dshills/hitlight/internal/parser"
	"github.com/dshills/hitlight/internal/storage"
	"github.com/dshills/hitlight/pkg/types"
)

const (
	// DefaultBatchSize is the number of files committed per transaction
	DefaultBatchSize = 20

	// DefaultCategory is used for files at the top of the indexed root
	DefaultCategory = "Document"
)

var (
	// ErrIndexInProgress is returned when another indexing run holds the lock
	ErrIndexInProgress = errors.New("indexing already in progress")

	// ErrNotDirectory is returned when the root path is not a directory
	ErrNotDirectory = errors.New("root path is not a directory")
)

// Mirror receives every document change committed to storage. The bleve
// backend implements it to keep its own index in step with the database.
type Mirror interface {
	IndexDocuments(ctx context.Context, docs []types.Document) error
	DeleteDocuments(ctx context.Context, keys []string) error
}

// Hook runs after an indexing run that changed at least one document
type Hook func(ctx context.Context, stats *Statistics)

// Indexer coordinates the indexing pipeline: read -> parse -> chunk -> store
type Indexer struct {
	parser  *parser.Parser
	storage storage.Storage
	mirror  Mirror
	hooks   []Hook
	logger  *slog.Logger
	lock    IndexLock
}

// Option configures an Indexer
type Option func(*Indexer)

// WithMirror sets a secondary index that follows every stored change
func WithMirror(m Mirror) Option {
	return func(idx *Indexer) {
		idx.mirror = m
	}
}

// WithHook registers a function called after documents changed
func WithHook(h Hook) Option {
	return func(idx *Indexer) {
		if h != nil {
			idx.hooks = append(idx.hooks, h)
		}
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Indexer) {
		if logger != nil {
			idx.logger = logger
		}
	}
}

// WithParser replaces the default Markdown-stripping parser
func WithParser(p *parser.Parser) Option {
	return func(idx *Indexer) {
		if p != nil {
			idx.parser = p
		}
	}
}

// Config contains configuration for one indexing run
type Config struct {
	Workers         int    // Parse workers (default: runtime.NumCPU())
	BatchSize       int    // Files committed per transaction (default: 20)
	SplitSections   bool   // One document per headed section instead of per file
	Force           bool   // Re-index files whose hash did not change
	DefaultCategory string // Category for files at the root (default: "Document")
	BaseURL         string // Prefix for document URLs
	MaxContentRunes int    // Content cap per document (default: chunker default)
}

// Statistics contains statistics about the indexing operation
type Statistics struct {
	FilesIndexed     int
	FilesSkipped     int
	FilesFailed      int
	FilesRemoved     int
	DocumentsIndexed int
	DocumentsRemoved int
	Duration         time.Duration
	ErrorMessages    []string
}

// Changed reports whether the run touched any document
func (s *Statistics) Changed() bool {
	return s.DocumentsIndexed > 0 || s.DocumentsRemoved > 0 || s.FilesRemoved > 0
}

// counters are shared by concurrent batches
type counters struct {
	indexed     atomic.Int32
	skipped     atomic.Int32
	failed      atomic.Int32
	docsIndexed atomic.Int32
	docsRemoved atomic.Int32

	mu     sync.Mutex
	errors []string
}

func (c *counters) fail(path string, err error) {
	c.failed.Add(1)
	c.mu.Lock()
	c.errors = append(c.errors, fmt.Sprintf("%s: %v", path, err))
	c.mu.Unlock()
}

// fileJob is one discovered file after the read, parse and chunk stage
type fileJob struct {
	path      string // absolute
	relPath   string // slash-separated, relative to the root
	category  string
	hash      [32]byte
	modTime   time.Time
	sizeBytes int64
	parseErr  *string
	docs      []types.Document
	err       error
}

// New creates a new Indexer instance
func New(store storage.Storage, opts ...Option) *Indexer {
	idx := &Indexer{
		parser:  parser.New(),
		storage: store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexSource indexes every supported file under rootPath. Only one run
// may be active per Indexer; concurrent calls get ErrIndexInProgress.
func (idx *Indexer) IndexSource(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer idx.lock.Release()

	config = normalizeConfig(config)

	rootPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root path: %w", err)
	}
	if !info.IsDir() {
		return nil, ErrNotDirectory
	}

	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
	}

	source, err := idx.getOrCreateSource(ctx, rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create source: %w", err)
	}

	files, err := discoverFiles(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	idx.logger.Debug("discovered files", "root", rootPath, "count", len(files))

	jobs, err := idx.prepareFiles(ctx, rootPath, files, config)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare files: %w", err)
	}

	c := &counters{}
	if err := idx.indexFiles(ctx, source, jobs, config, c); err != nil {
		return nil, fmt.Errorf("failed to index files: %w", err)
	}

	removed, err := idx.removeStaleFiles(ctx, source, jobs, c)
	if err != nil {
		return nil, fmt.Errorf("failed to remove stale files: %w", err)
	}

	if err := idx.updateSourceStats(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to update source stats: %w", err)
	}

	stats.FilesIndexed = int(c.indexed.Load())
	stats.FilesSkipped = int(c.skipped.Load())
	stats.FilesFailed = int(c.failed.Load())
	stats.FilesRemoved = removed
	stats.DocumentsIndexed = int(c.docsIndexed.Load())
	stats.DocumentsRemoved = int(c.docsRemoved.Load())
	stats.ErrorMessages = append(stats.ErrorMessages, c.errors...)
	stats.Duration = time.Since(startTime)

	idx.logger.Info("indexing finished",
		"root", rootPath,
		"files_indexed", stats.FilesIndexed,
		"files_skipped", stats.FilesSkipped,
		"files_failed", stats.FilesFailed,
		"documents", stats.DocumentsIndexed,
		"duration", stats.Duration)

	if stats.Changed() {
		for _, h := range idx.hooks {
			h(ctx, stats)
		}
	}

	return stats, nil
}

func normalizeConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	cfg := *config
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = DefaultCategory
	}
	return &cfg
}

// getOrCreateSource retrieves an existing source or creates a new one
func (idx *Indexer) getOrCreateSource(ctx context.Context, rootPath string) (*storage.Source, error) {
	source, err := idx.storage.GetSource(ctx, rootPath)
	if err == nil {
		return source, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	source = &storage.Source{
		RootPath:     rootPath,
		IndexVersion: storage.CurrentSchemaVersion,
	}
	if err := idx.storage.CreateSource(ctx, source); err != nil {
		return nil, err
	}

	return source, nil
}

// discoverFiles finds all supported files, skipping hidden entries
func discoverFiles(rootPath string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		hidden := strings.HasPrefix(d.Name(), ".") && path != rootPath
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}

		if hidden || !d.Type().IsRegular() || !parser.Supported(path) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// prepareFiles reads, hashes, parses and chunks files on an ants pool.
// Per-file failures are kept on the job.
func (idx *Indexer) prepareFiles(ctx context.Context, rootPath string, files []string, config *Config) ([]*fileJob, error) {
	pool, err := ants.NewPool(config.Workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	chunkOpts := []chunker.Option{chunker.WithSplitSections(config.SplitSections)}
	if config.MaxContentRunes != 0 {
		chunkOpts = append(chunkOpts, chunker.WithMaxContentRunes(config.MaxContentRunes))
	}
	ch := chunker.New(chunkOpts...)

	jobs := make([]*fileJob, len(files))
	var wg sync.WaitGroup

	for i, path := range files {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			jobs[i] = idx.prepareFile(ctx, ch, rootPath, path, config)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (idx *Indexer) prepareFile(ctx context.Context, ch *chunker.Chunker, rootPath, path string, config *Config) *fileJob {
	job := &fileJob{path: path}
	if err := ctx.Err(); err != nil {
		job.err = err
		return job
	}

	relPath, err := filepath.Rel(rootPath, path)
	if err != nil {
		job.err = err
		return job
	}
	job.relPath = filepath.ToSlash(relPath)
	job.category = chunker.CategoryFor(job.relPath, config.DefaultCategory)

	content, modTime, sizeBytes, err := readFile(path)
	if err != nil {
		job.err = err
		return job
	}
	job.hash = sha256.Sum256(content)
	job.modTime = modTime
	job.sizeBytes = sizeBytes

	result := idx.parser.Parse(path, content)
	if result.HasErrors() {
		msg := result.Errors[0].Message
		job.parseErr = &msg
		idx.logger.Debug("parse problems", "file", job.relPath, "first", msg, "count", len(result.Errors))
	}

	job.docs, job.err = ch.ChunkFile(chunker.Source{
		Path:     job.relPath,
		Category: job.category,
		BaseURL:  config.BaseURL,
	}, result)
	return job
}

// indexFiles commits prepared files in batches, one transaction per batch
func (idx *Indexer) indexFiles(ctx context.Context, source *storage.Source, jobs []*fileJob, config *Config, c *counters) error {
	semaphore := make(chan struct{}, config.Workers)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < len(jobs); i += config.BatchSize {
		end := i + config.BatchSize
		if end > len(jobs) {
			end = len(jobs)
		}
		batch := jobs[i:end]

		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()
			return idx.indexBatch(gctx, source, batch, config, c)
		})
	}

	return g.Wait()
}

// indexBatch stores a batch of files within a transaction and mirrors the
// committed changes
func (idx *Indexer) indexBatch(ctx context.Context, source *storage.Source, jobs []*fileJob, config *Config, c *counters) error {
	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		added   []types.Document
		removed []string
		indexed int32
		docs    int32
	)

	for _, job := range jobs {
		if job.err != nil {
			c.fail(job.relPath, job.err)
			continue
		}

		stale, skip, err := idx.checkFileChanged(ctx, tx, source.ID, job, config.Force)
		if err != nil {
			c.fail(job.relPath, err)
			continue
		}
		if skip {
			c.skipped.Add(1)
			continue
		}

		file := &storage.File{
			SourceID:      source.ID,
			FilePath:      job.relPath,
			Category:      job.category,
			ContentHash:   job.hash,
			ModTime:       job.modTime,
			SizeBytes:     job.sizeBytes,
			ParseError:    job.parseErr,
			LastIndexedAt: time.Now(),
		}
		if err := tx.UpsertFile(ctx, file); err != nil {
			c.fail(job.relPath, err)
			continue
		}

		fileID := file.ID
		for _, doc := range job.docs {
			if err := tx.UpsertDocument(ctx, storage.FromTypesDocument(doc, &fileID)); err != nil {
				return fmt.Errorf("failed to store document %s: %w", doc.Key, err)
			}
		}

		removed = append(removed, stale...)
		added = append(added, job.docs...)
		indexed++
		docs += int32(len(job.docs))
		idx.logger.Debug("indexed file", "file", job.relPath, "documents", len(job.docs))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.indexed.Add(indexed)
	c.docsIndexed.Add(docs)
	c.docsRemoved.Add(int32(len(removed)))

	idx.mirrorChanges(ctx, added, removed, c)
	return nil
}

// checkFileChanged decides whether a file needs re-indexing. For a changed
// file it deletes the old documents and returns their keys.
func (idx *Indexer) checkFileChanged(ctx context.Context, store storage.Storage, sourceID int64,
	job *fileJob, force bool) (stale []string, skip bool, err error) {

	existing, err := store.GetFile(ctx, sourceID, job.relPath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if existing.ContentHash == job.hash && !force {
		return nil, true, nil
	}

	oldDocs, err := store.ListDocumentsByFile(ctx, existing.ID)
	if err != nil {
		return nil, false, err
	}
	if _, err := store.DeleteDocumentsByFile(ctx, existing.ID); err != nil {
		return nil, false, fmt.Errorf("failed to delete old documents: %w", err)
	}

	keep := make(map[string]bool, len(job.docs))
	for _, d := range job.docs {
		keep[d.Key] = true
	}
	for _, d := range oldDocs {
		if !keep[d.Key] {
			stale = append(stale, d.Key)
		}
	}
	return stale, false, nil
}

// removeStaleFiles drops files that are stored for the source but no longer
// exist on disk
func (idx *Indexer) removeStaleFiles(ctx context.Context, source *storage.Source, jobs []*fileJob, c *counters) (int, error) {
	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		seen[job.relPath] = true
	}

	files, err := idx.storage.ListFiles(ctx, source.ID)
	if err != nil {
		return 0, err
	}

	var removedKeys []string
	removed := 0
	for _, file := range files {
		if seen[file.FilePath] {
			continue
		}

		docs, err := idx.storage.ListDocumentsByFile(ctx, file.ID)
		if err != nil {
			return removed, err
		}
		if err := idx.storage.DeleteFile(ctx, file.ID); err != nil {
			return removed, err
		}
		for _, d := range docs {
			removedKeys = append(removedKeys, d.Key)
		}
		removed++
		idx.logger.Debug("removed file", "file", file.FilePath, "documents", len(docs))
	}

	c.docsRemoved.Add(int32(len(removedKeys)))
	idx.mirrorChanges(ctx, nil, removedKeys, c)
	return removed, nil
}

// mirrorChanges forwards committed changes to the mirror. Mirror failures
// are reported in the statistics but do not fail the run.
func (idx *Indexer) mirrorChanges(ctx context.Context, added []types.Document, removed []string, c *counters) {
	if idx.mirror == nil {
		return
	}

	if len(removed) > 0 {
		if err := idx.mirror.DeleteDocuments(ctx, removed); err != nil {
			idx.logger.Warn("mirror delete failed", "documents", len(removed), "error", err)
			c.mu.Lock()
			c.errors = append(c.errors, fmt.Sprintf("mirror: %v", err))
			c.mu.Unlock()
		}
	}

	if len(added) > 0 {
		if err := idx.mirror.IndexDocuments(ctx, added); err != nil {
			idx.logger.Warn("mirror index failed", "documents", len(added), "error", err)
			c.mu.Lock()
			c.errors = append(c.errors, fmt.Sprintf("mirror: %v", err))
			c.mu.Unlock()
		}
	}
}

// updateSourceStats updates the source's file and document counts
func (idx *Indexer) updateSourceStats(ctx context.Context, source *storage.Source) error {
	files, err := idx.storage.ListFiles(ctx, source.ID)
	if err != nil {
		return err
	}

	totalDocuments := 0
	for _, file := range files {
		docs, err := idx.storage.ListDocumentsByFile(ctx, file.ID)
		if err != nil {
			return err
		}
		totalDocuments += len(docs)
	}

	source.TotalFiles = len(files)
	source.TotalDocuments = totalDocuments
	source.LastIndexedAt = time.Now()

	return idx.storage.UpdateSource(ctx, source)
}

// readFile returns the file content with its modification time and size
func readFile(path string) ([]byte, time.Time, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, time.Time{}, 0, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, 0, err
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, time.Time{}, 0, err
	}

	return content, info.ModTime(), info.Size(), nil
}
