package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery is returned when a text query has no usable terms
	ErrEmptyQuery = errors.New("text query has no terms")
)

const (
	defaultSearchLimit   = 25
	defaultSnippetTokens = 16
	snippetEllipsis      = "... "
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Source operations

const sourceColumns = `id, root_path, total_files, total_documents, index_version,
	last_indexed_at, created_at, updated_at`

func scanSource(row interface{ Scan(...interface{}) error }) (*Source, error) {
	var source Source
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&source.ID, &source.RootPath, &source.TotalFiles, &source.TotalDocuments,
		&source.IndexVersion, &lastIndexedAt, &source.CreatedAt, &source.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		source.LastIndexedAt = lastIndexedAt.Time
	}
	return &source, nil
}

// createSourceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createSourceWithQuerier(ctx context.Context, q querier, source *Source) error {
	query := `
		INSERT INTO sources (root_path, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	if source.IndexVersion == "" {
		source.IndexVersion = CurrentSchemaVersion
	}
	now := time.Now()
	result, err := q.ExecContext(ctx, query, source.RootPath, source.IndexVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	source.ID = id
	source.CreatedAt = now
	source.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateSource(ctx context.Context, source *Source) error {
	return s.createSourceWithQuerier(ctx, s.querier(), source)
}

// getSourceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getSourceWithQuerier(ctx context.Context, q querier, rootPath string) (*Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE root_path = ?`
	source, err := scanSource(q.QueryRowContext(ctx, query, rootPath))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return source, err
}

func (s *SQLiteStorage) GetSource(ctx context.Context, rootPath string) (*Source, error) {
	return s.getSourceWithQuerier(ctx, s.querier(), rootPath)
}

// updateSourceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) updateSourceWithQuerier(ctx context.Context, q querier, source *Source) error {
	query := `
		UPDATE sources
		SET total_files = ?, total_documents = ?, last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		source.TotalFiles, source.TotalDocuments, source.LastIndexedAt, now, source.ID)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	source.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateSource(ctx context.Context, source *Source) error {
	return s.updateSourceWithQuerier(ctx, s.querier(), source)
}

// listSourcesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listSourcesWithQuerier(ctx context.Context, q querier) ([]*Source, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources ORDER BY root_path`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*Source, 0)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (s *SQLiteStorage) ListSources(ctx context.Context) ([]*Source, error) {
	return s.listSourcesWithQuerier(ctx, s.querier())
}

// File operations

const fileColumns = `id, source_id, file_path, category, content_hash, mod_time,
	size_bytes, parse_error, last_indexed_at, created_at, updated_at`

func scanFile(row interface{ Scan(...interface{}) error }) (*File, error) {
	var file File
	var hash []byte
	var parseError sql.NullString
	err := row.Scan(
		&file.ID, &file.SourceID, &file.FilePath, &file.Category,
		&hash, &file.ModTime, &file.SizeBytes, &parseError,
		&file.LastIndexedAt, &file.CreatedAt, &file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	copy(file.ContentHash[:], hash)
	if parseError.Valid {
		file.ParseError = &parseError.String
	}
	return &file, nil
}

// upsertFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertFileWithQuerier(ctx context.Context, q querier, file *File) error {
	query := `
		INSERT INTO files (source_id, file_path, category, content_hash, mod_time, size_bytes, parse_error, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, file_path) DO UPDATE SET
			category = excluded.category,
			content_hash = excluded.content_hash,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			parse_error = excluded.parse_error,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		file.SourceID, file.FilePath, file.Category, file.ContentHash[:],
		file.ModTime, file.SizeBytes, file.ParseError, now, now, now).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.LastIndexedAt = now
	file.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *File) error {
	return s.upsertFileWithQuerier(ctx, s.querier(), file)
}

// getFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileWithQuerier(ctx context.Context, q querier, sourceID int64, filePath string) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE source_id = ? AND file_path = ?`
	file, err := scanFile(q.QueryRowContext(ctx, query, sourceID, filePath))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return file, err
}

func (s *SQLiteStorage) GetFile(ctx context.Context, sourceID int64, filePath string) (*File, error) {
	return s.getFileWithQuerier(ctx, s.querier(), sourceID, filePath)
}

// getFileByIDWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileByIDWithQuerier(ctx context.Context, q querier, fileID int64) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = ?`
	file, err := scanFile(q.QueryRowContext(ctx, query, fileID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return file, err
}

func (s *SQLiteStorage) GetFileByID(ctx context.Context, fileID int64) (*File, error) {
	return s.getFileByIDWithQuerier(ctx, s.querier(), fileID)
}

// deleteFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM files WHERE id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteFile(ctx context.Context, fileID int64) error {
	return s.deleteFileWithQuerier(ctx, s.querier(), fileID)
}

// listFilesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listFilesWithQuerier(ctx context.Context, q querier, sourceID int64) ([]*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE source_id = ? ORDER BY file_path`
	rows, err := q.QueryContext(ctx, query, sourceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) ListFiles(ctx context.Context, sourceID int64) ([]*File, error) {
	return s.listFilesWithQuerier(ctx, s.querier(), sourceID)
}

// Document operations

const documentColumns = `d.id, d.file_id, d.doc_key, d.name, d.category, d.title, d.content,
	d.url, d.source_path, d.content_hash, d.created_at, d.updated_at`

// documentScanArgs returns the scan destinations for documentColumns.
// finish must be called after a successful Scan.
func documentScanArgs(doc *Document) (dest []interface{}, finish func()) {
	var fileID sql.NullInt64
	var sourcePath sql.NullString
	var hash []byte
	dest = []interface{}{
		&doc.ID, &fileID, &doc.Key, &doc.Name, &doc.Category, &doc.Title, &doc.Content,
		&doc.URL, &sourcePath, &hash, &doc.CreatedAt, &doc.UpdatedAt,
	}
	finish = func() {
		if fileID.Valid {
			id := fileID.Int64
			doc.FileID = &id
		}
		doc.SourcePath = sourcePath.String
		copy(doc.ContentHash[:], hash)
	}
	return dest, finish
}

func scanDocument(row interface{ Scan(...interface{}) error }) (*Document, error) {
	var doc Document
	dest, finish := documentScanArgs(&doc)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	finish()
	return &doc, nil
}

// upsertDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertDocumentWithQuerier(ctx context.Context, q querier, doc *Document) error {
	query := `
		INSERT INTO documents (file_id, doc_key, name, category, title, content, url, source_path, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_key) DO UPDATE SET
			file_id = excluded.file_id,
			name = excluded.name,
			category = excluded.category,
			title = excluded.title,
			content = excluded.content,
			url = excluded.url,
			source_path = excluded.source_path,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		doc.FileID, doc.Key, doc.Name, doc.Category, doc.Title, doc.Content,
		doc.URL, doc.SourcePath, doc.ContentHash[:], now, now).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	doc.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertDocument(ctx context.Context, doc *Document) error {
	return s.upsertDocumentWithQuerier(ctx, s.querier(), doc)
}

// getDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getDocumentWithQuerier(ctx context.Context, q querier, where string, arg interface{}) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents d WHERE ` + where
	doc, err := scanDocument(q.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return doc, err
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, documentID int64) (*Document, error) {
	return s.getDocumentWithQuerier(ctx, s.querier(), "d.id = ?", documentID)
}

func (s *SQLiteStorage) GetDocumentByKey(ctx context.Context, key string) (*Document, error) {
	return s.getDocumentWithQuerier(ctx, s.querier(), "d.doc_key = ?", key)
}

// listDocumentsByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listDocumentsByFileWithQuerier(ctx context.Context, q querier, fileID int64) ([]*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents d WHERE d.file_id = ? ORDER BY d.id`
	rows, err := q.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) ListDocumentsByFile(ctx context.Context, fileID int64) ([]*Document, error) {
	return s.listDocumentsByFileWithQuerier(ctx, s.querier(), fileID)
}

// deleteDocumentWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteDocumentWithQuerier(ctx context.Context, q querier, documentID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, documentID)
	return err
}

func (s *SQLiteStorage) DeleteDocument(ctx context.Context, documentID int64) error {
	return s.deleteDocumentWithQuerier(ctx, s.querier(), documentID)
}

// deleteDocumentsByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteDocumentsByFileWithQuerier(ctx context.Context, q querier, fileID int64) (int, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM documents WHERE file_id = ?`, fileID)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rowsAffected), nil
}

func (s *SQLiteStorage) DeleteDocumentsByFile(ctx context.Context, fileID int64) (int, error) {
	return s.deleteDocumentsByFileWithQuerier(ctx, s.querier(), fileID)
}

// Search operations

// matchExpression builds an FTS5 MATCH expression from plain terms. Each term
// is quoted so FTS5 syntax characters are taken literally, and matched as a
// prefix so partial words still hit.
func matchExpression(terms []string, matchAll bool) string {
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		parts = append(parts, `"`+strings.ReplaceAll(term, `"`, `""`)+`"*`)
	}

	op := " OR "
	if matchAll {
		op = " AND "
	}
	return strings.Join(parts, op)
}

// searchDocumentsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) searchDocumentsWithQuerier(ctx context.Context, q querier, tq TextQuery) (*TextSearchResult, error) {
	match := matchExpression(tq.Terms, tq.MatchAll)
	if match == "" {
		return nil, ErrEmptyQuery
	}

	limit := tq.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	where := `documents_fts MATCH ?`
	whereArgs := []interface{}{match}
	if tq.Category != "" {
		where += ` AND d.category = ?`
		whereArgs = append(whereArgs, tq.Category)
	}

	result := &TextSearchResult{Matches: make([]TextMatch, 0)}

	countQuery := `
		SELECT COUNT(*)
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		WHERE ` + where
	if err := q.QueryRowContext(ctx, countQuery, whereArgs...).Scan(&result.Total); err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	if result.Total == 0 {
		return result, nil
	}

	// Note: In FTS5, 'rank' is a built-in virtual column representing BM25 relevance score.
	// Lower rank values indicate better matches (negative values in FTS5).
	selectCols := documentColumns + `, bm25(documents_fts)`
	var args []interface{}
	if tq.Highlight {
		open, closing := tq.Open, tq.Close
		if open == "" || closing == "" {
			open, closing = "<mark>", "</mark>"
		}
		tokens := tq.SnippetTokens
		if tokens <= 0 {
			tokens = defaultSnippetTokens
		}
		selectCols += `, highlight(documents_fts, 0, ?, ?), snippet(documents_fts, 1, ?, ?, ?, ?)`
		args = append(args, open, closing, open, closing, snippetEllipsis, tokens)
	}
	args = append(args, whereArgs...)
	args = append(args, limit)

	sqlQuery := `
		SELECT ` + selectCols + `
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		WHERE ` + where + `
		ORDER BY rank
		LIMIT ?
	`
	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var doc Document
		var m TextMatch
		dest, finish := documentScanArgs(&doc)
		dest = append(dest, &m.BM25Score)
		if tq.Highlight {
			dest = append(dest, &m.HighlightedTitle, &m.HighlightedContent)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		finish()
		m.Document = &doc
		result.Matches = append(result.Matches, m)
	}
	return result, rows.Err()
}

func (s *SQLiteStorage) SearchDocuments(ctx context.Context, query TextQuery) (*TextSearchResult, error) {
	return s.searchDocumentsWithQuerier(ctx, s.querier(), query)
}

// Status operations

// getStatusWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier) (*Status, error) {
	sources, err := s.listSourcesWithQuerier(ctx, q)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Sources:    sources,
		Categories: make(map[string]int),
	}
	for _, src := range sources {
		if src.LastIndexedAt.After(status.LastIndexedAt) {
			status.LastIndexedAt = src.LastIndexedAt
		}
	}

	// Count files
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&status.FilesCount); err != nil {
		return nil, err
	}

	// Count documents per category
	rows, err := q.QueryContext(ctx, "SELECT category, COUNT(*) FROM documents GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		status.Categories[category] = n
		status.DocumentsCount += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	err = q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	var ftsTable string
	ftsErr := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='documents_fts'").Scan(&ftsTable)

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexBuilt:      ftsErr == nil,
		SchemaVersion:      CurrentSchemaVersion,
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	return s.getStatusWithQuerier(ctx, s.querier())
}

// Transaction implementations delegate to the storage helpers with the tx querier

func (t *sqliteTx) CreateSource(ctx context.Context, source *Source) error {
	return t.storage.createSourceWithQuerier(ctx, t.querier(), source)
}

func (t *sqliteTx) GetSource(ctx context.Context, rootPath string) (*Source, error) {
	return t.storage.getSourceWithQuerier(ctx, t.querier(), rootPath)
}

func (t *sqliteTx) UpdateSource(ctx context.Context, source *Source) error {
	return t.storage.updateSourceWithQuerier(ctx, t.querier(), source)
}

func (t *sqliteTx) ListSources(ctx context.Context) ([]*Source, error) {
	return t.storage.listSourcesWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) UpsertFile(ctx context.Context, file *File) error {
	return t.storage.upsertFileWithQuerier(ctx, t.querier(), file)
}

func (t *sqliteTx) GetFile(ctx context.Context, sourceID int64, filePath string) (*File, error) {
	return t.storage.getFileWithQuerier(ctx, t.querier(), sourceID, filePath)
}

func (t *sqliteTx) GetFileByID(ctx context.Context, fileID int64) (*File, error) {
	return t.storage.getFileByIDWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) DeleteFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) ListFiles(ctx context.Context, sourceID int64) ([]*File, error) {
	return t.storage.listFilesWithQuerier(ctx, t.querier(), sourceID)
}

func (t *sqliteTx) UpsertDocument(ctx context.Context, doc *Document) error {
	return t.storage.upsertDocumentWithQuerier(ctx, t.querier(), doc)
}

func (t *sqliteTx) GetDocument(ctx context.Context, documentID int64) (*Document, error) {
	return t.storage.getDocumentWithQuerier(ctx, t.querier(), "d.id = ?", documentID)
}

func (t *sqliteTx) GetDocumentByKey(ctx context.Context, key string) (*Document, error) {
	return t.storage.getDocumentWithQuerier(ctx, t.querier(), "d.doc_key = ?", key)
}

func (t *sqliteTx) ListDocumentsByFile(ctx context.Context, fileID int64) ([]*Document, error) {
	return t.storage.listDocumentsByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) DeleteDocument(ctx context.Context, documentID int64) error {
	return t.storage.deleteDocumentWithQuerier(ctx, t.querier(), documentID)
}

func (t *sqliteTx) DeleteDocumentsByFile(ctx context.Context, fileID int64) (int, error) {
	return t.storage.deleteDocumentsByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) SearchDocuments(ctx context.Context, query TextQuery) (*TextSearchResult, error) {
	return t.storage.searchDocumentsWithQuerier(ctx, t.querier(), query)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*Status, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
