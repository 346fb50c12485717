package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hitlight/internal/highlighter"
	"github.com/dshills/hitlight/internal/matcher"
	"github.com/dshills/hitlight/pkg/types"
)

func setupBleveBackend(t *testing.T, opts ...Option) *BleveBackend {
	t.Helper()
	b, err := NewBleveBackend("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	require.NoError(t, b.IndexDocuments(context.Background(), testDocuments()))
	return b
}

func TestBleveBackend_Search(t *testing.T) {
	b := setupBleveBackend(t)
	ctx := context.Background()

	count, err := b.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	t.Run("any term matches", func(t *testing.T) {
		resp, err := b.Search(ctx, Request{Query: matcher.Parse("alpha gamma")})
		require.NoError(t, err)
		assert.Len(t, resp.Hits, 3)
		require.NotNil(t, resp.Total)
		assert.Equal(t, 3, *resp.Total)
		assert.NotNil(t, resp.Duration)
	})

	t.Run("stored fields", func(t *testing.T) {
		resp, err := b.Search(ctx, Request{Query: matcher.Parse("gamma")})
		require.NoError(t, err)
		require.Len(t, resp.Hits, 1)
		hit := resp.Hits[0]
		assert.Equal(t, "Task-3", hit.ID)
		assert.Equal(t, "Task", hit.Category)
		assert.Equal(t, "/app/Task/3", hit.URL)
		assert.Equal(t, "Gamma ray", hit.PrimaryTitle())
		assert.IsType(t, types.NeedsComputation{}, hit.HighlightSource())
	})

	t.Run("html highlighting", func(t *testing.T) {
		resp, err := b.Search(ctx, Request{Query: matcher.Parse("gamma"), Highlight: true})
		require.NoError(t, err)
		require.Len(t, resp.Hits, 1)
		pre, ok := resp.Hits[0].HighlightSource().(types.Precomputed)
		require.True(t, ok)
		assert.Contains(t, pre.Title, "<mark>Gamma</mark>")
		assert.Contains(t, pre.Content, "<mark>gamma</mark>")
	})

	t.Run("category filter", func(t *testing.T) {
		resp, err := b.Search(ctx, Request{Query: matcher.Parse("alpha gamma"), Category: "Note"})
		require.NoError(t, err)
		assert.Len(t, resp.Hits, 2)
	})

	t.Run("empty query", func(t *testing.T) {
		resp, err := b.Search(ctx, Request{Query: matcher.Parse("")})
		require.NoError(t, err)
		assert.Empty(t, resp.Hits)
	})
}

func TestBleveBackend_Delete(t *testing.T) {
	b := setupBleveBackend(t)
	ctx := context.Background()

	require.NoError(t, b.DeleteDocuments(ctx, []string{"Task-3"}))

	resp, err := b.Search(ctx, Request{Query: matcher.Parse("gamma")})
	require.NoError(t, err)
	assert.Empty(t, resp.Hits)
}

func TestBleveBackend_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bleve")
	ctx := context.Background()

	b, err := NewBleveBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.IndexDocuments(ctx, testDocuments()))
	require.NoError(t, b.Close())

	reopened, err := NewBleveBackend(path)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestBleveBackend_CustomMarker(t *testing.T) {
	b, err := NewBleveBackend("", WithMarker(highlighter.Marker{Open: "[", Close: "]"}))
	require.NoError(t, err)
	defer b.Close()
	ctx := context.Background()
	require.NoError(t, b.IndexDocuments(ctx, testDocuments()))

	resp, err := b.Search(ctx, Request{Query: matcher.Parse("gamma"), Highlight: true})
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1)

	pre, ok := resp.Hits[0].HighlightSource().(types.Precomputed)
	require.True(t, ok)
	assert.Contains(t, pre.Title, "[Gamma]")
	assert.Contains(t, pre.Content, "[gamma]")
	assert.NotContains(t, pre.Title+pre.Content, "<mark>")

	h := highlighter.New(highlighter.WithMarker(highlighter.Marker{Open: "[", Close: "]"}))
	rec := h.Resolve(resp.Hits[0], matcher.Parse("gamma"))
	assert.Equal(t, types.SourceBackend, rec.Source)
	assert.Equal(t, 1, rec.TitleMarkCount)
	assert.GreaterOrEqual(t, rec.ContentMarkCount, 1)
}

func TestBleveBackend_Misspelled(t *testing.T) {
	ctx := context.Background()

	t.Run("one edit away", func(t *testing.T) {
		b := setupBleveBackend(t)
		resp, err := b.Search(ctx, Request{Query: matcher.Parse("gamna"), Highlight: true})
		require.NoError(t, err)
		require.Len(t, resp.Hits, 1)
		assert.Equal(t, "Task-3", resp.Hits[0].ID)

		pre, ok := resp.Hits[0].Source.(types.Precomputed)
		require.True(t, ok)
		assert.Equal(t, "<mark>Gamma</mark> ray", pre.Title)
	})

	t.Run("two edits away in a long term", func(t *testing.T) {
		b := setupBleveBackend(t)
		resp, err := b.Search(ctx, Request{Query: matcher.Parse("togethre")})
		require.NoError(t, err)
		require.Len(t, resp.Hits, 1)
		assert.Equal(t, "Note-1", resp.Hits[0].ID)
	})

	t.Run("short terms stay exact", func(t *testing.T) {
		b := setupBleveBackend(t)
		resp, err := b.Search(ctx, Request{Query: matcher.Parse("ry")})
		require.NoError(t, err)
		assert.Empty(t, resp.Hits)
	})

	t.Run("disabled", func(t *testing.T) {
		b := setupBleveBackend(t, WithFuzziness(0))
		resp, err := b.Search(ctx, Request{Query: matcher.Parse("gamna")})
		require.NoError(t, err)
		assert.Empty(t, resp.Hits)
	})
}

func TestBleveBackend_Stemmed(t *testing.T) {
	b := setupBleveBackend(t, WithFuzziness(0))
	ctx := context.Background()

	for _, q := range []string{"bursting", "bursts", "rays"} {
		t.Run(q, func(t *testing.T) {
			resp, err := b.Search(ctx, Request{Query: matcher.Parse(q)})
			require.NoError(t, err)
			require.Len(t, resp.Hits, 1)
			assert.Equal(t, "Task-3", resp.Hits[0].ID)
		})
	}
}

func TestFuzzinessFor(t *testing.T) {
	tests := []struct {
		term  string
		limit int
		want  int
	}{
		{"ab", 2, 0},
		{"abc", 2, 1},
		{"gamma", 2, 1},
		{"burstq", 2, 2},
		{"together", 1, 1},
		{"together", 0, 0},
		{"été", 2, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fuzzinessFor(tt.term, tt.limit), "%q limit %d", tt.term, tt.limit)
	}
}

func TestRemark(t *testing.T) {
	brackets := highlighter.Marker{Open: "[", Close: "]"}
	tests := []struct {
		name string
		in   string
		m    highlighter.Marker
		want string
	}{
		{"default marker unchanged", "a &amp; <mark>b</mark>", highlighter.DefaultMarker, "a &amp; <mark>b</mark>"},
		{"rewritten and unescaped", "a &amp; <mark>b</mark> &lt;c&gt;", brackets, "a & [b] <c>"},
		{"several marks", "<mark>x</mark> y <mark>x</mark>", brackets, "[x] y [x]"},
		{"no marks", "plain", brackets, "plain"},
		{"unclosed", "<mark>x", brackets, "[x"},
		{"empty", "", brackets, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, remark(tt.in, tt.m))
		})
	}
}
