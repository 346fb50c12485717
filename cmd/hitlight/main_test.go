package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := parseLogLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}

	_, err := parseLogLevel("verbose")
	assert.ErrorContains(t, err, "verbose")
}

func TestBackendName(t *testing.T) {
	t.Setenv("HITLIGHT_BACKEND", "")
	assert.Equal(t, "sqlite", backendName())

	t.Setenv("HITLIGHT_BACKEND", "bleve")
	assert.Equal(t, "bleve", backendName())
}
