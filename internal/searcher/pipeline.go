package searcher

import (
	"github.com/dshills/hitlight/internal/highlighter"
	"github.com/dshills/hitlight/internal/ranker"
	"github.com/dshills/hitlight/pkg/types"
)

// ProcessOptions controls the post-processing pipeline
type ProcessOptions struct {
	// Grouped buckets records by category. Otherwise the result is one
	// ranked list.
	Grouped bool

	// Target caps the number of records returned. In grouped mode each
	// group keeps Target/len(groups) records, at least one. Zero keeps all.
	Target int

	// LocalOnly ignores highlighting supplied by the backend
	LocalOnly bool

	// Highlighter marks raw hits. Nil uses highlighter.New().
	Highlighter *highlighter.Highlighter
}

// Result is the output of Process
type Result struct {
	// Groups is set in grouped mode, largest group first
	Groups []types.ResultGroup

	// Records is set in flat mode, best record first
	Records []types.HighlightedRecord

	// Count is the number of records in Groups or Records
	Count int
}

// Process turns backend hits into ranked, highlighted records for q.
//
// Every hit is resolved into a HighlightedRecord, the records are ranked by
// highlight density, then grouped by category (or kept flat) and trimmed to
// opts.Target. An empty query yields an empty result.
func Process(hits []types.Hit, q types.Query, opts ProcessOptions) Result {
	if q.IsEmpty() {
		if opts.Grouped {
			return Result{Groups: []types.ResultGroup{}}
		}
		return Result{Records: []types.HighlightedRecord{}}
	}

	h := opts.Highlighter
	if h == nil {
		h = highlighter.New()
	}

	if opts.LocalOnly {
		hits = withoutPrecomputed(hits)
	}

	records := ranker.Rank(h.ResolveAll(hits, q))

	if !opts.Grouped {
		records = ranker.Limit(records, opts.Target)
		return Result{Records: records, Count: len(records)}
	}

	groups, kept := ranker.Trim(ranker.Group(records), opts.Target)
	return Result{Groups: groups, Count: kept}
}

// withoutPrecomputed returns hits whose backend highlighting is dropped so
// their raw fields are marked locally
func withoutPrecomputed(hits []types.Hit) []types.Hit {
	out := make([]types.Hit, len(hits))
	for i, hit := range hits {
		if _, ok := hit.Source.(types.Precomputed); ok {
			hit.Source = nil
		}
		out[i] = hit
	}
	return out
}
