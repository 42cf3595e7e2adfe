package bundle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-luamount/compile"
	"github.com/robbyt/go-luamount/internal/helpers"
	"github.com/robbyt/go-luamount/manifest"
	"github.com/robbyt/go-luamount/searcher"
	"github.com/robbyt/go-luamount/store"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
)

// versioner is implemented by compilers that can report their version from
// inside the build state.
type versioner interface {
	Version(L *lua.LState) (string, error)
}

type buildConfig struct {
	fs         afero.Fs
	macros     searcher.MacroHost
	setup      []func(*lua.LState) error
	compiler   string
	logHandler slog.Handler
	logger     *slog.Logger
}

// Build reads every module of m and compiles the Fennel ones. Compilation
// runs in a scratch Lua state with the manifest's Lua and macro modules
// attached, so the compiler and macros resolve exactly as they would at run
// time. Loader modules are recorded by opener only. All compile errors are
// reported together.
func Build(ctx context.Context, m *manifest.Manifest, c compile.Compiler, opts ...Option) (*Bundle, error) {
	cfg := &buildConfig{fs: afero.NewOsFs()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadOption, err)
		}
	}
	_, logger := helpers.ResolveLogger(cfg.logHandler, cfg.logger, "bundle", "Build")
	handler := logger.Handler()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if m.HasKind(manifest.KindCompile) && c == nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, compile.ErrNoCompiler)
	}

	var runnable []manifest.Entry
	for _, e := range m.Entries() {
		if e.Kind != manifest.KindLoader {
			runnable = append(runnable, e)
		}
	}
	buildManifest, err := manifest.New(runnable...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	st, err := store.NewLazy(buildManifest, store.WithFs(cfg.fs), store.WithLogHandler(handler))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	var pipeline compile.Pipeline
	if c != nil {
		if pipeline, err = compile.NewOnDemand(c, compile.WithLogHandler(handler)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuild, err)
		}
	}
	sopts := []searcher.Option{searcher.WithLogHandler(handler)}
	if cfg.macros != nil {
		sopts = append(sopts, searcher.WithMacroHost(cfg.macros))
	}
	s, err := searcher.New(st, pipeline, sopts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	for _, setup := range cfg.setup {
		if err := setup(L); err != nil {
			return nil, fmt.Errorf("%w: state setup: %w", ErrBuild, err)
		}
	}
	if err := searcher.Attach(L, s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	if cfg.compiler == "" && pipeline != nil {
		if v, ok := c.(versioner); ok {
			if ver, err := v.Version(L); err == nil {
				cfg.compiler = ver
			} else {
				logger.Warn("Compiler version unavailable", "error", err)
			}
		}
	}

	b := &Bundle{
		Format:     FormatVersion,
		ManifestID: m.ID(),
		Doc:        m.Doc(),
		Compiler:   cfg.compiler,
		Compiled:   make(map[string]string),
	}

	var errs []error
	for _, e := range m.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mod := store.Module{Name: e.Name, Kind: e.Kind, Opener: e.Opener}
		if e.Kind == manifest.KindLoader {
			b.Modules = append(b.Modules, mod)
			continue
		}

		get := st.Get
		if e.Kind == manifest.KindMacro {
			get = st.GetMacro
		}
		content, _, err := get(e.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if e.Kind == manifest.KindCompile {
			out, err := pipeline.Compile(L, content)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			b.Compiled[e.Name] = out
		} else {
			mod.Data = content.Data
		}
		b.Modules = append(b.Modules, mod)
		logger.Debug("Module bundled", "module", e.Name, "kind", e.Kind)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrBuild, errors.Join(errs...))
	}

	logger.Info("Bundle built", "manifest", b.ManifestID, "modules", len(b.Modules), "compiled", len(b.Compiled))
	return b, nil
}
