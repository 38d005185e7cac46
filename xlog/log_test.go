package xlog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.h4codec.dev/h4/xlog"
)

func TestGetLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		expected    slog.Level
		expectError bool
	}{
		"error level":   {input: "error", expected: slog.LevelError},
		"warn level":    {input: "warn", expected: slog.LevelWarn},
		"warning level": {input: "warning", expected: slog.LevelWarn},
		"info level":    {input: "info", expected: slog.LevelInfo},
		"debug level":   {input: "debug", expected: slog.LevelDebug},
		"case insensitive": {
			input:    "INFO",
			expected: slog.LevelInfo,
		},
		"unknown level": {
			input:       "trace",
			expectError: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := xlog.GetLevel(tc.input)
			if tc.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, xlog.ErrUnknownLevel)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestGetFormat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		expected    xlog.Format
		expectError bool
	}{
		"json":          {input: "json", expected: xlog.FormatJSON},
		"logfmt":        {input: "logfmt", expected: xlog.FormatLogfmt},
		"unknown format": {input: "xml", expectError: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := xlog.GetFormat(tc.input)
			if tc.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, xlog.ErrUnknownFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestNewHandlerFromStrings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	h, err := xlog.NewHandlerFromStrings(&buf, "debug", "json")
	require.NoError(t, err)
	assert.NotNil(t, h)

	_, err = xlog.NewHandlerFromStrings(&buf, "nope", "json")
	require.Error(t, err)
}

func TestOrDefault(t *testing.T) {
	t.Parallel()

	assert.Same(t, slog.Default(), xlog.OrDefault(nil))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, logger, xlog.OrDefault(logger))
}
