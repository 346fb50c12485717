package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/hitlight/pkg/types"
)

// jsonEnvelope is the search endpoint payload:
//
//	{"results": [...], "total": 12, "duration": 3.5}
//
// duration is in milliseconds.
type jsonEnvelope struct {
	Results  json.RawMessage `json:"results"`
	Total    *float64        `json:"total"`
	Duration *float64        `json:"duration"`
}

// jsonResult holds the fields read from one result object
type jsonResult struct {
	Name               textField
	Title              textField
	Content            textField
	URL                textField
	Doctype            textField
	Category           textField
	HighlightedTitle   textField
	HighlightedContent textField
}

// textField accepts a string, an array of strings, or null
type textField struct {
	values []string
	set    bool
}

func (f *textField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var items []*string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		f.values = make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				f.values = append(f.values, "")
				continue
			}
			f.values = append(f.values, *item)
		}
		f.set = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	f.values = []string{s}
	f.set = true
	return nil
}

func (f textField) first() string {
	if len(f.values) == 0 {
		return ""
	}
	return f.values[0]
}

// DecodeJSON normalizes a search endpoint payload into a BackendResponse.
//
// A payload without a "results" array is rejected with
// types.ErrMalformedResponse. Problems inside one result never fail the
// batch: a result that is not an object, or a field of the wrong type, is
// logged at warn level through the backend logger and the affected fields
// read as "". Missing fields read as "" too. A result carrying
// highlighted_title or highlighted_content becomes a Precomputed hit, with
// the raw title standing in for an empty highlighted title.
func DecodeJSON(data []byte, opts ...Option) (*types.BackendResponse, error) {
	cfg := buildConfig(opts)

	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
	}

	raw := bytes.TrimSpace(env.Results)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing results", types.ErrMalformedResponse)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: results is not an array", types.ErrMalformedResponse)
	}

	resp := &types.BackendResponse{Hits: make([]types.Hit, 0, len(items))}
	for i, item := range items {
		r, err := decodeResult(item)
		if err != nil {
			cfg.logger.Warn("search result partly unreadable, bad fields left empty",
				"index", i, "error", err)
		}
		resp.Hits = append(resp.Hits, r.toHit())
	}

	if env.Total != nil {
		resp.Total = types.IntPtr(int(*env.Total))
	}
	if env.Duration != nil {
		resp.Duration = types.DurationPtr(time.Duration(*env.Duration * float64(time.Millisecond)))
	}
	return resp, nil
}

// decodeResult reads each known field of one result on its own, so a bad
// field only blanks itself. The returned result is usable even with an error.
func decodeResult(item json.RawMessage) (jsonResult, error) {
	var r jsonResult

	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] != '{' {
		return r, errors.New("result is not an object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return r, fmt.Errorf("result is not an object: %w", err)
	}

	targets := []struct {
		name string
		dst  *textField
	}{
		{"name", &r.Name},
		{"title", &r.Title},
		{"content", &r.Content},
		{"url", &r.URL},
		{"doctype", &r.Doctype},
		{"category", &r.Category},
		{"highlighted_title", &r.HighlightedTitle},
		{"highlighted_content", &r.HighlightedContent},
	}

	var errs []error
	for _, t := range targets {
		value, ok := fields[t.name]
		if !ok {
			continue
		}
		if err := t.dst.UnmarshalJSON(value); err != nil {
			*t.dst = textField{}
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		}
	}
	return r, errors.Join(errs...)
}

func (r jsonResult) toHit() types.Hit {
	category := r.Doctype.first()
	if category == "" {
		category = r.Category.first()
	}

	hit := types.Hit{
		RawHit: types.RawHit{
			Title:    r.Title.values,
			Content:  r.Content.values,
			URL:      r.URL.first(),
			Category: category,
		},
		ID: r.Name.first(),
	}

	if r.HighlightedTitle.set || r.HighlightedContent.set {
		pre := types.Precomputed{
			Title:   r.HighlightedTitle.first(),
			Content: r.HighlightedContent.first(),
		}
		if pre.Title == "" {
			pre.Title = hit.PrimaryTitle()
		}
		if !r.HighlightedContent.set {
			pre.Content = hit.PrimaryContent()
		}
		hit.Source = pre
	}
	return hit
}
