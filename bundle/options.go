package bundle

import (
	"errors"
	"log/slog"

	"github.com/robbyt/go-luamount/searcher"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
)

// Option configures Build.
type Option func(*buildConfig) error

// WithFs sets where module files are read from.
func WithFs(fs afero.Fs) Option {
	return func(c *buildConfig) error {
		if fs == nil {
			return errors.New("file system cannot be nil")
		}
		c.fs = fs
		return nil
	}
}

// WithMacroHost is required when the manifest holds macro modules.
func WithMacroHost(h searcher.MacroHost) Option {
	return func(c *buildConfig) error {
		if h == nil {
			return errors.New("macro host cannot be nil")
		}
		c.macros = h
		return nil
	}
}

// WithStateSetup runs fn on the build state before the manifest is
// attached, for instance to mount a compiler the manifest does not carry.
func WithStateSetup(fn func(*lua.LState) error) Option {
	return func(c *buildConfig) error {
		if fn == nil {
			return errors.New("setup function cannot be nil")
		}
		c.setup = append(c.setup, fn)
		return nil
	}
}

// WithCompilerVersion records the compiler version in the bundle. Without
// it the compiler is asked, when it can report one.
func WithCompilerVersion(v string) Option {
	return func(c *buildConfig) error {
		c.compiler = v
		return nil
	}
}

func WithLogHandler(handler slog.Handler) Option {
	return func(c *buildConfig) error {
		if handler == nil {
			return errors.New("log handler cannot be nil")
		}
		c.logHandler = handler
		c.logger = nil
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *buildConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		c.logHandler = nil
		return nil
	}
}
