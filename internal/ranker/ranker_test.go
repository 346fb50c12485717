package ranker

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hitlight/pkg/types"
)

func rec(id, category string, title, content int) types.HighlightedRecord {
	return types.HighlightedRecord{
		ID:               id,
		Category:         category,
		TitleMarkCount:   title,
		ContentMarkCount: content,
	}
}

func ids(records []types.HighlightedRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func categories(groups []types.ResultGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Category
	}
	return out
}

func TestRank(t *testing.T) {
	t.Run("title density dominates", func(t *testing.T) {
		records := []types.HighlightedRecord{
			rec("B", "Note", 1, 5),
			rec("A", "Note", 2, 0),
		}
		assert.Equal(t, []string{"A", "B"}, ids(Rank(records)))
	})

	t.Run("content density breaks title ties", func(t *testing.T) {
		records := []types.HighlightedRecord{
			rec("low", "Note", 1, 1),
			rec("high", "Note", 1, 4),
			rec("none", "Note", 0, 9),
		}
		assert.Equal(t, []string{"high", "low", "none"}, ids(Rank(records)))
	})

	t.Run("equal records keep input order", func(t *testing.T) {
		records := []types.HighlightedRecord{
			rec("1", "Note", 1, 1),
			rec("2", "Task", 1, 1),
			rec("3", "Note", 1, 1),
		}
		assert.Equal(t, []string{"1", "2", "3"}, ids(Rank(records)))
	})

	t.Run("input untouched", func(t *testing.T) {
		records := []types.HighlightedRecord{rec("a", "", 0, 0), rec("b", "", 3, 0)}
		_ = Rank(records)
		assert.Equal(t, []string{"a", "b"}, ids(records))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Rank(nil))
	})
}

func TestRank_Stability(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	records := make([]types.HighlightedRecord, 200)
	for i := range records {
		records[i] = rec(fmt.Sprintf("%03d", i), "Note", rng.Intn(3), rng.Intn(4))
	}

	ranked := Rank(records)
	require.Len(t, ranked, len(records))

	for i := 1; i < len(ranked); i++ {
		prev, cur := ranked[i-1], ranked[i]
		require.GreaterOrEqual(t, prev.TitleMarkCount, cur.TitleMarkCount)
		if prev.TitleMarkCount == cur.TitleMarkCount {
			require.GreaterOrEqual(t, prev.ContentMarkCount, cur.ContentMarkCount)
			if prev.ContentMarkCount == cur.ContentMarkCount {
				assert.Less(t, prev.ID, cur.ID, "tied records must keep input order")
			}
		}
	}
}

func TestGroup(t *testing.T) {
	t.Run("largest group first", func(t *testing.T) {
		records := []types.HighlightedRecord{
			rec("t1", "Task", 0, 0),
			rec("n1", "Note", 0, 0),
			rec("n2", "Note", 0, 0),
			rec("n3", "Note", 0, 0),
		}
		groups := Group(records)
		require.Len(t, groups, 2)
		assert.Equal(t, []string{"Note", "Task"}, categories(groups))
		assert.Equal(t, 3, groups[0].Len())
		assert.Equal(t, []string{"n1", "n2", "n3"}, ids(groups[0].Records))
		assert.Equal(t, 1, groups[1].Len())
	})

	t.Run("ties keep first seen order", func(t *testing.T) {
		records := []types.HighlightedRecord{
			rec("1", "Task", 0, 0),
			rec("2", "Note", 0, 0),
			rec("3", "Event", 0, 0),
			rec("4", "Note", 0, 0),
			rec("5", "Task", 0, 0),
		}
		assert.Equal(t, []string{"Task", "Note", "Event"}, categories(Group(records)))
	})

	t.Run("empty category is a category", func(t *testing.T) {
		groups := Group([]types.HighlightedRecord{rec("1", "", 0, 0)})
		require.Len(t, groups, 1)
		assert.Equal(t, "", groups[0].Category)
	})

	t.Run("no records", func(t *testing.T) {
		assert.Empty(t, Group(nil))
	})
}

func TestGroup_NoRecordLost(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cats := []string{"Note", "Task", "Event", "Contact", "Invoice"}

	for round := 0; round < 20; round++ {
		records := make([]types.HighlightedRecord, rng.Intn(60))
		for i := range records {
			records[i] = rec(fmt.Sprintf("%d-%d", round, i), cats[rng.Intn(len(cats))], 0, 0)
		}

		groups := Group(records)
		assert.Equal(t, len(records), types.CountRecords(groups))

		seen := make(map[string]int)
		for gi, g := range groups {
			if gi > 0 {
				assert.GreaterOrEqual(t, groups[gi-1].Len(), g.Len(), "group sizes must not increase")
			}
			for _, r := range g.Records {
				assert.Equal(t, g.Category, r.Category)
				seen[r.ID]++
			}
		}
		for _, r := range records {
			assert.Equal(t, 1, seen[r.ID], "record %s must appear exactly once", r.ID)
		}
	}
}

func TestTrim(t *testing.T) {
	records := []types.HighlightedRecord{
		rec("n1", "Note", 0, 0),
		rec("n2", "Note", 0, 0),
		rec("n3", "Note", 0, 0),
		rec("n4", "Note", 0, 0),
		rec("t1", "Task", 0, 0),
	}
	groups := Group(records)

	t.Run("caps each group", func(t *testing.T) {
		trimmed, kept := Trim(groups, 4)
		assert.Equal(t, 3, kept)
		require.Len(t, trimmed, 2)
		assert.Equal(t, []string{"n1", "n2"}, ids(trimmed[0].Records))
		assert.Equal(t, []string{"t1"}, ids(trimmed[1].Records))
	})

	t.Run("keeps at least one per group", func(t *testing.T) {
		trimmed, kept := Trim(groups, 1)
		assert.Equal(t, 2, kept)
		assert.Equal(t, []string{"Note", "Task"}, categories(trimmed))
	})

	t.Run("disabled", func(t *testing.T) {
		trimmed, kept := Trim(groups, 0)
		assert.Equal(t, 5, kept)
		assert.Equal(t, groups, trimmed)
	})

	t.Run("does not modify input", func(t *testing.T) {
		_, _ = Trim(groups, 2)
		assert.Equal(t, 4, groups[0].Len())
	})

	t.Run("re-sorts by trimmed size", func(t *testing.T) {
		g := []types.ResultGroup{
			{Category: "Big", Records: []types.HighlightedRecord{rec("b1", "Big", 0, 0), rec("b2", "Big", 0, 0), rec("b3", "Big", 0, 0)}},
			{Category: "Mid", Records: []types.HighlightedRecord{rec("m1", "Mid", 0, 0), rec("m2", "Mid", 0, 0)}},
		}
		trimmed, kept := Trim(g, 4)
		assert.Equal(t, 4, kept)
		assert.Equal(t, []string{"Big", "Mid"}, categories(trimmed))
	})
}

func TestLimit(t *testing.T) {
	records := []types.HighlightedRecord{rec("1", "", 0, 0), rec("2", "", 0, 0), rec("3", "", 0, 0)}

	assert.Equal(t, []string{"1", "2"}, ids(Limit(records, 2)))
	assert.Len(t, Limit(records, 0), 3)
	assert.Len(t, Limit(records, 10), 3)
}
