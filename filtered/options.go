package filtered

import "log/slog"

// Option configures a filtered [List].
type Option func(*config)

type config struct {
	provider Predicate
	logger   *slog.Logger
}

// WithFilterProvider sets the predicate used by ApplyFilter.
//
// Default: DefaultPredicate (case-insensitive prefix).
func WithFilterProvider(p Predicate) Option {
	return func(c *config) {
		c.provider = p
	}
}

// WithLogger sets the logger for index repairs and invariant faults.
//
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
