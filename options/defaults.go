package options

import (
	"log/slog"
	"os"

	"github.com/spf13/afero"
)

// DefaultConfig initializes a Config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.SetHandler(DefaultHandler())
	cfg.SetFs(DefaultFs())
	return cfg
}

// DefaultHandler returns the default logging handler
func DefaultHandler() slog.Handler {
	return slog.NewTextHandler(os.Stderr, nil)
}

// DefaultFs returns the file system module sources are read from
func DefaultFs() afero.Fs {
	return afero.NewOsFs()
}

// WithDefaults applies default values to any config properties that are nil
func WithDefaults() Option {
	return func(c *Config) error {
		if c.handler == nil {
			c.handler = DefaultHandler()
		}

		if c.fs == nil {
			c.fs = DefaultFs()
		}

		return nil
	}
}
