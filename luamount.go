// Package luamount makes a manifest of Lua and Fennel modules importable from
// a gopher-lua state. Modules are either read and compiled on demand, or
// served from a bundle built ahead of time and embedded in the binary.
package luamount

import (
	"context"
	"fmt"

	"github.com/robbyt/go-luamount/bundle"
	"github.com/robbyt/go-luamount/compile"
	"github.com/robbyt/go-luamount/config"
	"github.com/robbyt/go-luamount/manifest"
	"github.com/robbyt/go-luamount/options"
	"github.com/robbyt/go-luamount/searcher"
	"github.com/robbyt/go-luamount/store"
	lua "github.com/yuin/gopher-lua"
)

// newConfig applies opts on top of the defaults and validates the result
func newConfig(opts []options.Option) (*options.Config, error) {
	cfg := options.DefaultConfig()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}

	// Apply defaults option as final step to fill in any missing values
	if err := options.WithDefaults()(cfg); err != nil {
		return nil, fmt.Errorf("error applying defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromManifest returns an on-demand searcher: module files are read on every
// require and Fennel modules are compiled as they are imported.
func FromManifest(m *manifest.Manifest, opts ...options.Option) (*searcher.Searcher, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return fromManifest(m, cfg)
}

func fromManifest(m *manifest.Manifest, cfg *options.Config) (*searcher.Searcher, error) {
	st, err := store.NewLazy(m, store.WithFs(cfg.GetFs()), store.WithLogHandler(cfg.GetHandler()))
	if err != nil {
		return nil, err
	}

	var p compile.Pipeline
	if c := cfg.GetCompiler(); c != nil {
		p, err = compile.NewOnDemand(c,
			compile.WithMemoize(cfg.GetMemoize()),
			compile.WithLogHandler(cfg.GetHandler()))
		if err != nil {
			return nil, err
		}
	}
	return searcher.New(st, p, cfg.SearcherOptions()...)
}

// FromBundle returns an ahead-of-time searcher over an encoded bundle. It
// never touches the file system; a bundle whose compiled output does not
// match its modules is rejected here rather than at import.
func FromBundle(data []byte, opts ...options.Option) (*searcher.Searcher, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	b, err := bundle.Open(data)
	if err != nil {
		return nil, err
	}
	st, err := b.Store()
	if err != nil {
		return nil, err
	}
	p, err := compile.NewAhead(b.Cache(), compile.WithLogHandler(cfg.GetHandler()))
	if err != nil {
		return nil, err
	}
	return searcher.New(st, p, cfg.SearcherOptions()...)
}

// FromConfig loads the project configuration at path, resolves manifest id
// (empty when the project defines only one) and returns an on-demand
// searcher for it.
func FromConfig(ctx context.Context, path, id string, opts ...options.Option) (*searcher.Searcher, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	project, err := config.Load(ctx, cfg.GetFs(), path, config.WithLogHandler(cfg.GetHandler()))
	if err != nil {
		return nil, err
	}
	reg, err := project.Registry(cfg.GetCatalog(), cfg.RegistryOptions()...)
	if err != nil {
		return nil, err
	}
	scope, err := project.Build(reg, cfg.GetFs())
	if err != nil {
		return nil, err
	}
	m, err := scope.Resolve(id)
	if err != nil {
		return nil, err
	}
	return fromManifest(m, cfg)
}

// Mount attaches s to L. With isolate set, the state's own package.path and
// package.cpath are cleared first so only attached searchers find modules.
func Mount(L *lua.LState, s *searcher.Searcher, isolate bool) error {
	if isolate {
		if err := searcher.Isolate(L); err != nil {
			return err
		}
	}
	return searcher.Attach(L, s)
}
