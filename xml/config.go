package xml

import "log/slog"

// ExternalEntityResolver fetches the external DTD subset named by
// publicID/systemID, returning a source over its content. A nil resolver
// causes any external-subset load to fail with [ErrNoExternalResolver]
// rather than attempting an implicit filesystem or network fetch.
// External general entities are not fetched through it: a reference to
// one fails with [ErrNoExternalResolver] whether or not a resolver is set.
type ExternalEntityResolver func(publicID, systemID string) (ISource, error)

type config struct {
	validate bool
	failFast bool
	logger   *slog.Logger
	resolver ExternalEntityResolver
}

// Option configures [Parse] and [Validate].
type Option func(*config)

// WithValidation runs DTD validation automatically after parsing when the
// document declares a DOCTYPE. Off by default: parsing a well-formed but
// invalid document otherwise succeeds, matching XML's well-formedness/
// validity distinction.
func WithValidation(v bool) Option {
	return func(c *config) { c.validate = v }
}

// WithFailFast stops validation at the first [ValidationError] instead of
// accumulating every violation across the tree.
func WithFailFast(v bool) Option {
	return func(c *config) { c.failFast = v }
}

// WithLogger attaches a logger for parse/validation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithExternalEntityResolver supplies the callback used to fetch the
// external DTD subset. It is not used for external general entities.
func WithExternalEntityResolver(r ExternalEntityResolver) Option {
	return func(c *config) { c.resolver = r }
}

func newConfig(opts []Option) *config {
	c := &config{logger: slog.Default()}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
