package compile

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robbyt/go-luamount/internal/helpers"
	"github.com/robbyt/go-luamount/store"
	lua "github.com/yuin/gopher-lua"
)

type memoKey struct {
	name   string
	digest string
}

// OnDemand compiles module source each time it is asked. With memoization
// enabled, output is reused while the module name and source digest match.
type OnDemand struct {
	compiler Compiler
	memoize  bool

	mu   sync.Mutex
	memo map[memoKey]string

	logHandler slog.Handler
	logger     *slog.Logger
}

func NewOnDemand(c Compiler, opts ...Option) (*OnDemand, error) {
	if c == nil {
		return nil, ErrNoCompiler
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	p := &OnDemand{
		compiler: c,
		memoize:  cfg.memoize,
		memo:     make(map[memoKey]string),
	}
	p.logHandler, p.logger = helpers.ResolveLogger(cfg.logHandler, cfg.logger, "compile", "OnDemand")
	return p, nil
}

func (p *OnDemand) String() string {
	return fmt.Sprintf("compile.OnDemand{Memoize: %t}", p.memoize)
}

// Compile returns the Lua for c. Compiler diagnostics come back as *Error.
func (p *OnDemand) Compile(L *lua.LState, c store.Content) (string, error) {
	logger := p.logger.WithGroup("compile")

	var key memoKey
	if p.memoize {
		key = memoKey{name: c.Name, digest: helpers.SHA256Bytes(c.Data)}
		p.mu.Lock()
		out, ok := p.memo[key]
		p.mu.Unlock()
		if ok {
			logger.Debug("Memoized output reused", "module", c.Name)
			return out, nil
		}
	}

	out, err := p.compiler.Compile(L, c.Data, c.Name)
	if err != nil {
		var cerr *Error
		if !errors.As(err, &cerr) {
			cerr = &Error{Module: c.Name, Message: err.Error(), Location: Location{File: c.Origin}}
		}
		logger.Warn("Compilation failed", "module", c.Name, "origin", c.Origin, "error", cerr)
		return "", cerr
	}
	logger.Debug("Compilation successful", "module", c.Name, "bytes", len(out))

	if p.memoize {
		p.mu.Lock()
		p.memo[key] = out
		p.mu.Unlock()
	}
	return out, nil
}
