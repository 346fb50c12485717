package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/hitlight/internal/backend"
	"github.com/dshills/hitlight/internal/highlighter"
	"github.com/dshills/hitlight/internal/matcher"
	"github.com/dshills/hitlight/pkg/types"
)

const (
	// DefaultLimit is the number of hits requested when none is given
	DefaultLimit = 25
	// MaxLimit caps the number of hits requested from the backend
	MaxLimit = 100
	// DefaultCacheSize is the number of responses kept by the cache
	DefaultCacheSize = 1000
	// DefaultCacheTTL is how long a cached response stays valid
	DefaultCacheTTL = time.Hour
)

var (
	// ErrBackendRequired is returned when a Searcher is built without a backend
	ErrBackendRequired = errors.New("backend is required")
	// ErrInvalidHighlightMode is returned for an unknown HighlightMode
	ErrInvalidHighlightMode = errors.New("invalid highlight mode")
)

// HighlightMode selects who highlights the hits
type HighlightMode string

const (
	// HighlightAuto uses highlighting the hits already carry and marks the rest locally
	HighlightAuto HighlightMode = "auto"
	// HighlightLocal ignores backend highlighting and always marks locally
	HighlightLocal HighlightMode = "local"
	// HighlightBackend asks the backend to highlight
	HighlightBackend HighlightMode = "backend"
)

// ParseHighlightMode parses s, accepting "" as HighlightAuto
func ParseHighlightMode(s string) (HighlightMode, error) {
	switch mode := HighlightMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return HighlightAuto, nil
	case HighlightAuto, HighlightLocal, HighlightBackend:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidHighlightMode, s)
	}
}

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query    string
	Limit    int
	Category string

	// Grouped buckets records by category
	Grouped bool

	// TrimTarget caps the records returned, spread across groups. Zero keeps all.
	TrimTarget int

	HighlightMode HighlightMode
	UseCache      bool // Whether to use the response cache
	CacheTTL      time.Duration
}

// SearchResponse contains the processed results and metadata
type SearchResponse struct {
	Query   string
	Groups  []types.ResultGroup       // grouped requests
	Records []types.HighlightedRecord // flat requests
	Count   int                       // records returned

	// Total is the backend's hit count, or the number of hits it returned
	// when it reports none
	Total int

	// Duration is the backend's own timing, or the measured backend call
	// when it reports none
	Duration time.Duration

	// Elapsed covers the whole search including post-processing
	Elapsed  time.Duration
	Backend  string
	CacheHit bool
}

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher runs queries against a backend and post-processes the hits
type Searcher struct {
	backend     backend.Backend
	highlighter *highlighter.Highlighter
	logger      *slog.Logger
	cache       *lru.Cache[[32]byte, *cacheEntry]
	cacheMu     sync.RWMutex
}

// Option configures a Searcher
type Option func(*Searcher) error

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithHighlighter sets the highlighter used for raw hits
func WithHighlighter(h *highlighter.Highlighter) Option {
	return func(s *Searcher) error {
		if h == nil {
			return errors.New("highlighter cannot be nil")
		}
		s.highlighter = h
		return nil
	}
}

// WithCacheSize sets the number of cached responses
func WithCacheSize(size int) Option {
	return func(s *Searcher) error {
		cache, err := lru.New[[32]byte, *cacheEntry](size)
		if err != nil {
			return fmt.Errorf("failed to create LRU cache: %w", err)
		}
		s.cache = cache
		return nil
	}
}

// NewSearcher creates a new Searcher over b
func NewSearcher(b backend.Backend, opts ...Option) (*Searcher, error) {
	if b == nil {
		return nil, ErrBackendRequired
	}

	s := &Searcher{
		backend: b,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.cache == nil {
		cache, err := lru.New[[32]byte, *cacheEntry](DefaultCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create LRU cache: %w", err)
		}
		s.cache = cache
	}
	if s.highlighter == nil {
		s.highlighter = highlighter.New(highlighter.WithLogger(s.logger))
	}
	s.logger = s.logger.With("component", "searcher", "backend", b.Name())

	return s, nil
}

// Highlighter returns the highlighter used for raw hits
func (s *Searcher) Highlighter() *highlighter.Highlighter {
	return s.highlighter
}

// Search performs a search based on the request parameters
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	// Validate request
	if err := s.validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	q := matcher.Parse(req.Query)
	if q.IsEmpty() {
		return s.emptyResponse(req, startTime), nil
	}

	// Check cache if enabled
	if req.UseCache {
		if cached, ok := s.checkCache(req); ok {
			cached.CacheHit = true
			cached.Elapsed = time.Since(startTime)
			return cached, nil
		}
	}

	callStart := time.Now()
	resp, err := s.backend.Search(ctx, backend.Request{
		Query:     q,
		Limit:     req.Limit,
		Category:  req.Category,
		Highlight: req.HighlightMode == HighlightBackend,
	})
	if err != nil {
		return nil, fmt.Errorf("%s search failed: %w", s.backend.Name(), err)
	}
	callDuration := time.Since(callStart)

	result := Process(resp.Hits, q, ProcessOptions{
		Grouped:     req.Grouped,
		Target:      req.TrimTarget,
		LocalOnly:   req.HighlightMode == HighlightLocal,
		Highlighter: s.highlighter,
	})

	response := &SearchResponse{
		Query:    req.Query,
		Groups:   result.Groups,
		Records:  result.Records,
		Count:    result.Count,
		Total:    len(resp.Hits),
		Duration: callDuration,
		Backend:  s.backend.Name(),
	}
	if resp.Total != nil {
		response.Total = *resp.Total
	}
	if resp.Duration != nil {
		response.Duration = *resp.Duration
	}
	response.Elapsed = time.Since(startTime)

	s.logger.Debug("search completed",
		"query", req.Query,
		"terms", q.Len(),
		"hits", len(resp.Hits),
		"returned", response.Count,
		"total", response.Total,
		"elapsed", response.Elapsed)

	// Store in cache if enabled
	if req.UseCache && response.Count > 0 {
		s.storeInCache(req, response)
	}

	return response, nil
}

func (s *Searcher) emptyResponse(req SearchRequest, startTime time.Time) *SearchResponse {
	resp := &SearchResponse{
		Query:   req.Query,
		Backend: s.backend.Name(),
		Elapsed: time.Since(startTime),
	}
	if req.Grouped {
		resp.Groups = []types.ResultGroup{}
	} else {
		resp.Records = []types.HighlightedRecord{}
	}
	return resp
}

// validateRequest ensures search request is valid
func (s *Searcher) validateRequest(req *SearchRequest) error {
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}

	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	if req.TrimTarget < 0 {
		req.TrimTarget = 0
	}

	mode, err := ParseHighlightMode(string(req.HighlightMode))
	if err != nil {
		return err
	}
	req.HighlightMode = mode

	if req.CacheTTL <= 0 {
		req.CacheTTL = DefaultCacheTTL
	}

	return nil
}

// checkCache looks up a cached response
func (s *Searcher) checkCache(req SearchRequest) (*SearchResponse, bool) {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil, false
	}

	// Check if entry has expired while holding read lock to avoid race condition
	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()

		// Remove expired entry - need write lock
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil, false
	}

	// Copy while still holding the read lock
	response := copySearchResponse(entry.response)
	s.cacheMu.RUnlock()

	return response, true
}

// storeInCache saves a response to the cache
func (s *Searcher) storeInCache(req SearchRequest, response *SearchResponse) {
	entry := &cacheEntry{
		response:  copySearchResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
	}

	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(req), entry)
	s.cacheMu.Unlock()
}

// copySearchResponse creates a deep copy of a SearchResponse
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}

	dst := *src
	if src.Groups != nil {
		dst.Groups = make([]types.ResultGroup, len(src.Groups))
		for i, g := range src.Groups {
			dst.Groups[i] = types.ResultGroup{
				Category: g.Category,
				Records:  append([]types.HighlightedRecord(nil), g.Records...),
			}
		}
	}
	if src.Records != nil {
		dst.Records = append([]types.HighlightedRecord{}, src.Records...)
	}
	return &dst
}

// computeQueryHash computes a unique hash for a search request.
// Every field that changes the response is part of the key.
func computeQueryHash(req SearchRequest) [32]byte {
	var data strings.Builder
	data.WriteString(req.Query)
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", req.Limit))
	data.WriteString("|")
	data.WriteString(req.Category)
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%t", req.Grouped))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", req.TrimTarget))
	data.WriteString("|")
	data.WriteString(string(req.HighlightMode))

	return sha256.Sum256([]byte(data.String()))
}

// InvalidateCache drops every cached response. The indexer calls it after
// the index changes.
func (s *Searcher) InvalidateCache(ctx context.Context) error {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
	return nil
}

// CacheLen returns the number of cached responses
func (s *Searcher) CacheLen() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache.Len()
}
