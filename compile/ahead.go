package compile

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-luamount/internal/helpers"
	"github.com/robbyt/go-luamount/store"
	lua "github.com/yuin/gopher-lua"
)

// Ahead serves compiled modules from the build-time cache. It never compiles.
// A miss means the cache and the store were built from different manifests,
// which is reported as ErrInconsistent rather than as a missing module. Inside
// Lua the miss is raised as an ordinary error, so pcall(require, ...) can
// still recover from it.
type Ahead struct {
	cache *Cache

	logHandler slog.Handler
	logger     *slog.Logger
}

func NewAhead(cache *Cache, opts ...Option) (*Ahead, error) {
	if cache == nil {
		return nil, fmt.Errorf("%w: no cache", ErrInconsistent)
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	a := &Ahead{cache: cache}
	a.logHandler, a.logger = helpers.ResolveLogger(cfg.logHandler, cfg.logger, "compile", "Ahead")
	return a, nil
}

func (a *Ahead) String() string {
	return fmt.Sprintf("compile.Ahead{Modules: %d}", a.cache.Len())
}

func (a *Ahead) Compile(_ *lua.LState, c store.Content) (string, error) {
	out, ok := a.cache.Get(c.Name)
	if !ok {
		a.logger.Error("Compiled module missing from cache", "module", c.Name)
		return "", fmt.Errorf("%w: no compiled output for %q", ErrInconsistent, c.Name)
	}
	return out, nil
}
