package types

// Highlight origins recorded on a HighlightedRecord
const (
	SourceBackend  = "backend"
	SourceComputed = "computed"
	SourcePlain    = "plain" // highlighting failed, text passed through unmarked
)

// HighlightedRecord is a hit after highlighting, ready for ranking and grouping.
// It is derived from exactly one Hit and one Query and must not be mixed
// with records derived from another Query.
type HighlightedRecord struct {
	ID       string
	Title    string
	Content  string
	URL      string
	Category string

	// Number of highlight marker pairs in Title and Content
	TitleMarkCount   int
	ContentMarkCount int

	// Source is one of SourceBackend, SourceComputed or SourcePlain
	Source string
}

// ResultGroup is a category bucket of ranked records.
type ResultGroup struct {
	Category string
	Records  []HighlightedRecord
}

// Len returns the number of records in the group.
func (g ResultGroup) Len() int {
	return len(g.Records)
}

// CountRecords returns the number of records across all groups.
func CountRecords(groups []ResultGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Records)
	}
	return n
}
