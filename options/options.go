// Package options configures how the root package turns a manifest, a
// bundle, or a project configuration into a searcher.
package options

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/robbyt/go-luamount/compile"
	"github.com/robbyt/go-luamount/loader"
	"github.com/robbyt/go-luamount/searcher"
	"github.com/spf13/afero"
)

// Compiler is what Fennel support needs from an engine: compiling modules
// and hosting the macro chain. engines/fennel provides one.
type Compiler interface {
	compile.Compiler
	searcher.MacroHost
}

// Config holds all configuration for mounting a manifest
type Config struct {
	// Logger for every component
	handler slog.Handler
	// Where on-demand mode reads module sources and configuration
	fs afero.Fs
	// Compiles Fennel modules in on-demand mode
	compiler compile.Compiler
	// Expands macro modules
	macroHost searcher.MacroHost
	// Go openers for loader modules, by symbol
	openers map[string]searcher.Opener
	// Loader symbols available to a project's static table
	catalog map[string]loader.Func
	// Loaders registered by id, ahead of the static table
	loaders map[string]loader.Func
	// Remember compiled output between requires
	memoize bool
}

// Option is a function that modifies Config
type Option func(*Config) error

// WithLogHandler sets the log handler for every component
func WithLogHandler(handler slog.Handler) Option {
	return func(c *Config) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.handler = handler
		return nil
	}
}

// WithFs sets the file system used in on-demand mode
func WithFs(fs afero.Fs) Option {
	return func(c *Config) error {
		if fs == nil {
			return fmt.Errorf("file system cannot be nil")
		}
		c.fs = fs
		return nil
	}
}

// WithFennel uses one engine as both the compiler and the macro host
func WithFennel(f Compiler) Option {
	return func(c *Config) error {
		if f == nil {
			return fmt.Errorf("fennel engine cannot be nil")
		}
		c.compiler = f
		c.macroHost = f
		return nil
	}
}

// WithCompiler sets the compiler used in on-demand mode
func WithCompiler(compiler compile.Compiler) Option {
	return func(c *Config) error {
		if compiler == nil {
			return fmt.Errorf("compiler cannot be nil")
		}
		c.compiler = compiler
		return nil
	}
}

// WithMacroHost sets the macro host for manifests with macro modules
func WithMacroHost(h searcher.MacroHost) Option {
	return func(c *Config) error {
		if h == nil {
			return fmt.Errorf("macro host cannot be nil")
		}
		c.macroHost = h
		return nil
	}
}

// WithOpener binds a Go opener to a symbol named by loader modules
func WithOpener(symbol string, fn searcher.Opener) Option {
	return func(c *Config) error {
		if symbol == "" || fn == nil {
			return fmt.Errorf("opener needs a symbol and a function")
		}
		if c.openers == nil {
			c.openers = make(map[string]searcher.Opener)
		}
		c.openers[symbol] = fn
		return nil
	}
}

// WithCatalog supplies the symbols a project's [loaders] table may name
func WithCatalog(catalog map[string]loader.Func) Option {
	return func(c *Config) error {
		if c.catalog == nil {
			c.catalog = make(map[string]loader.Func, len(catalog))
		}
		maps.Copy(c.catalog, catalog)
		return nil
	}
}

// WithLoader registers a loader by id, taking precedence over the
// project's static table
func WithLoader(id string, fn loader.Func) Option {
	return func(c *Config) error {
		if id == "" || fn == nil {
			return fmt.Errorf("loader needs an id and a function")
		}
		if c.loaders == nil {
			c.loaders = make(map[string]loader.Func)
		}
		c.loaders[id] = fn
		return nil
	}
}

// WithMemoize keeps compiled output for unchanged sources in on-demand mode
func WithMemoize(enabled bool) Option {
	return func(c *Config) error {
		c.memoize = enabled
		return nil
	}
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.handler == nil {
		return fmt.Errorf("no log handler specified")
	}
	if c.fs == nil {
		return fmt.Errorf("no file system specified")
	}
	return nil
}

// GetHandler returns the configured log handler
func (c *Config) GetHandler() slog.Handler {
	return c.handler
}

// SetHandler sets the log handler
func (c *Config) SetHandler(handler slog.Handler) {
	c.handler = handler
}

// GetFs returns the configured file system
func (c *Config) GetFs() afero.Fs {
	return c.fs
}

// SetFs sets the file system
func (c *Config) SetFs(fs afero.Fs) {
	c.fs = fs
}

// GetCompiler returns the on-demand compiler, or nil
func (c *Config) GetCompiler() compile.Compiler {
	return c.compiler
}

// GetMacroHost returns the macro host, or nil
func (c *Config) GetMacroHost() searcher.MacroHost {
	return c.macroHost
}

// GetMemoize reports whether on-demand output is memoized
func (c *Config) GetMemoize() bool {
	return c.memoize
}

// SearcherOptions translates the config into searcher options
func (c *Config) SearcherOptions() []searcher.Option {
	opts := []searcher.Option{
		searcher.WithLogHandler(c.handler),
		searcher.WithOpeners(c.openers),
	}
	if c.macroHost != nil {
		opts = append(opts, searcher.WithMacroHost(c.macroHost))
	}
	return opts
}

// RegistryOptions translates the config into loader registry options
func (c *Config) RegistryOptions() []loader.Option {
	opts := []loader.Option{loader.WithLogHandler(c.handler)}
	for id, fn := range c.loaders {
		opts = append(opts, loader.WithLoader(id, fn))
	}
	return opts
}

// GetCatalog returns the loader symbol catalog
func (c *Config) GetCatalog() map[string]loader.Func {
	return c.catalog
}
