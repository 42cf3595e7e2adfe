package fennel

import (
	"errors"
	"log/slog"
)

// FunctionalOption configures a Fennel host.
type FunctionalOption func(*Fennel) error

// WithModuleName sets the name the compiler is required under. Defaults to
// "fennel".
func WithModuleName(name string) FunctionalOption {
	return func(f *Fennel) error {
		if name == "" {
			return errors.New("module name cannot be empty")
		}
		f.module = name
		return nil
	}
}

// WithLogHandler sets the log handler. Clears any logger set earlier.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(f *Fennel) error {
		if handler == nil {
			return errors.New("log handler cannot be nil")
		}
		f.logHandler = handler
		f.logger = nil
		return nil
	}
}

// WithLogger sets a specific logger. Clears any handler set earlier.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(f *Fennel) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		f.logger = logger
		f.logHandler = nil
		return nil
	}
}
