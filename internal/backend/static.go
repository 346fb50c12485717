package backend

import (
	"context"
	"slices"

	"github.com/dshills/hitlight/pkg/types"
)

// StaticBackend serves one fixed response regardless of the query.
// It carries payloads that were searched elsewhere, such as a decoded JSON
// response, through the same pipeline as live backends.
type StaticBackend struct {
	resp types.BackendResponse
}

// NewStaticBackend serves resp. A nil resp serves no hits.
func NewStaticBackend(resp *types.BackendResponse) *StaticBackend {
	b := &StaticBackend{}
	if resp != nil {
		b.resp = *resp
	}
	return b
}

// Name returns "static"
func (b *StaticBackend) Name() string {
	return NameStatic
}

// Close is a no-op
func (b *StaticBackend) Close() error {
	return nil
}

// Search returns a copy of the fixed response, capped at req.Limit when set
func (b *StaticBackend) Search(ctx context.Context, req Request) (*types.BackendResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := slices.Clone(b.resp.Hits)
	if hits == nil {
		hits = []types.Hit{}
	}
	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}

	return &types.BackendResponse{
		Hits:     hits,
		Total:    b.resp.Total,
		Duration: b.resp.Duration,
	}, nil
}
