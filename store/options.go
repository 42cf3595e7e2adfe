package store

import (
	"errors"
	"log/slog"

	"github.com/spf13/afero"
)

type config struct {
	fs         afero.Fs
	logHandler slog.Handler
	logger     *slog.Logger
}

// Option configures a Lazy store.
type Option func(*config) error

// WithFs sets the file system modules are read from. Defaults to the OS file
// system.
func WithFs(fs afero.Fs) Option {
	return func(c *config) error {
		if fs == nil {
			return errors.New("file system cannot be nil")
		}
		c.fs = fs
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
