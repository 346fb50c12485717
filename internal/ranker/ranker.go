package ranker

import (
	"cmp"
	"slices"

	"github.com/dshills/hitlight/pkg/types"
)

// Rank orders records by highlight density and returns a new slice.
//
// Two stable sorts are applied: by content mark count descending, then by
// title mark count descending. The second sort keeps the first one's order
// among records with equal title counts, so title density dominates and
// content density breaks ties. Records equal on both keep their input order.
func Rank(records []types.HighlightedRecord) []types.HighlightedRecord {
	ranked := slices.Clone(records)

	slices.SortStableFunc(ranked, func(a, b types.HighlightedRecord) int {
		return cmp.Compare(b.ContentMarkCount, a.ContentMarkCount)
	})
	slices.SortStableFunc(ranked, func(a, b types.HighlightedRecord) int {
		return cmp.Compare(b.TitleMarkCount, a.TitleMarkCount)
	})

	return ranked
}

// Group buckets records by category. Records keep their relative order
// inside a group. Groups are ordered by size descending, and groups of equal
// size keep the order in which their category was first seen.
func Group(records []types.HighlightedRecord) []types.ResultGroup {
	index := make(map[string]int)
	groups := make([]types.ResultGroup, 0)

	for _, rec := range records {
		i, ok := index[rec.Category]
		if !ok {
			i = len(groups)
			index[rec.Category] = i
			groups = append(groups, types.ResultGroup{Category: rec.Category})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}

	sortGroups(groups)
	return groups
}

// Trim caps every group at target/len(groups) records, at least one, and
// re-sorts the groups by size. It returns the trimmed groups and the number
// of records kept. A target <= 0 leaves the groups untouched.
func Trim(groups []types.ResultGroup, target int) ([]types.ResultGroup, int) {
	if target <= 0 || len(groups) == 0 {
		return groups, types.CountRecords(groups)
	}

	perGroup := max(target/len(groups), 1)

	trimmed := make([]types.ResultGroup, len(groups))
	kept := 0
	for i, g := range groups {
		n := min(len(g.Records), perGroup)
		trimmed[i] = types.ResultGroup{
			Category: g.Category,
			Records:  slices.Clone(g.Records[:n]),
		}
		kept += n
	}

	sortGroups(trimmed)
	return trimmed, kept
}

// Limit keeps the first n records. n <= 0 keeps everything.
func Limit(records []types.HighlightedRecord, n int) []types.HighlightedRecord {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[:n]
}

func sortGroups(groups []types.ResultGroup) {
	slices.SortStableFunc(groups, func(a, b types.ResultGroup) int {
		return cmp.Compare(len(b.Records), len(a.Records))
	})
}
