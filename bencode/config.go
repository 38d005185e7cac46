package bencode

import "log/slog"

// config holds decode/encode settings for the bencode codec.
//
// Create instances implicitly via [Option] arguments to [Decode] and
// [Encode]; there is no exported zero-value constructor because the
// defaults (lenient key order, tolerant trailing bytes) are always valid.
type config struct {
	logger         *slog.Logger
	strictOrder    bool
	strictTrailing bool
}

// Option configures a [Decode] or [Encode] call.
type Option func(*config)

func newConfig(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithStrictOrder rejects dictionaries whose keys are not already in
// strict byte-lexicographic order, instead of silently accepting and
// re-sorting them on re-encode. Default: false (lenient).
func WithStrictOrder(strict bool) Option {
	return func(c *config) { c.strictOrder = strict }
}

// WithStrictTrailing rejects trailing bytes following the single top-level
// value. Default: false (trailing bytes tolerated).
func WithStrictTrailing(strict bool) Option {
	return func(c *config) { c.strictTrailing = strict }
}

// WithLogger sets the diagnostic logger used during decode; [Encode]
// emits no log records. A nil logger (the default) falls back to
// [slog.Default] lazily.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}
