package backend

import (
	"log/slog"

	"github.com/dshills/hitlight/internal/highlighter"
)

// DefaultFuzziness is the largest edit distance a fuzzy term match allows
const DefaultFuzziness = 2

type config struct {
	logger    *slog.Logger
	marker    highlighter.Marker
	fuzziness int
}

func defaultConfig() config {
	return config{
		logger:    slog.Default(),
		marker:    highlighter.DefaultMarker,
		fuzziness: DefaultFuzziness,
	}
}

// Option configures a backend
type Option func(*config)

// WithLogger sets the logger used by the backend
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMarker sets the delimiters used when the backend highlights.
func WithMarker(m highlighter.Marker) Option {
	return func(c *config) {
		if m.Open != "" && m.Close != "" {
			c.marker = m
		}
	}
}

// WithFuzziness caps the edit distance of fuzzy term matches. Zero
// disables fuzzy matching. Only the bleve backend matches fuzzily.
func WithFuzziness(limit int) Option {
	return func(c *config) {
		if limit >= 0 {
			c.fuzziness = min(limit, DefaultFuzziness)
		}
	}
}

func buildConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
