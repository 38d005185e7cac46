package json

import "log/slog"

// config holds parse/stringify settings for the JSON codec.
type config struct {
	logger    *slog.Logger
	indent    int
	asciiOnly bool
}

// Option configures a [Parse] or [Stringify] call.
type Option func(*config)

func newConfig(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithIndent sets the number of spaces used for pretty-printing. 0 (the
// default) produces compact output with no inserted whitespace.
func WithIndent(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}

		c.indent = n
	}
}

// WithASCIIEscape controls whether non-ASCII runes are escaped to
// `\uXXXX` (true) or emitted as raw UTF-8 (false, the default) when
// stringifying strings.
func WithASCIIEscape(ascii bool) Option {
	return func(c *config) { c.asciiOnly = ascii }
}

// WithLogger sets the diagnostic logger. A nil logger falls back to
// [slog.Default] lazily.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}
