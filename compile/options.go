package compile

import (
	"errors"
	"fmt"
	"log/slog"
)

type config struct {
	memoize    bool
	logHandler slog.Handler
	logger     *slog.Logger
}

// Option configures a pipeline.
type Option func(*config) error

func applyOptions(opts []Option) (*config, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadOption, err)
		}
	}
	return cfg, nil
}

// WithMemoize keeps compiled output in memory, keyed by module name and
// source digest. Only OnDemand uses it.
func WithMemoize(enabled bool) Option {
	return func(c *config) error {
		c.memoize = enabled
		return nil
	}
}

func WithLogHandler(handler slog.Handler) Option {
	return func(c *config) error {
		if handler == nil {
			return errors.New("log handler cannot be nil")
		}
		c.logHandler = handler
		c.logger = nil
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		c.logHandler = nil
		return nil
	}
}
