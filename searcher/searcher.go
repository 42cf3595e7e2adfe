// Package searcher resolves module names against a store and plugs the result
// into a Lua state's require machinery.
package searcher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robbyt/go-luamount/compile"
	"github.com/robbyt/go-luamount/internal/helpers"
	"github.com/robbyt/go-luamount/manifest"
	"github.com/robbyt/go-luamount/store"
	lua "github.com/yuin/gopher-lua"
)

// Opener returns the loader function for a KindLoader module.
type Opener func(L *lua.LState, name string) (*lua.LFunction, error)

// MacroHost connects the searcher to the compiler's macro expansion. It is
// how macro modules reach the compiler without being importable at run time.
type MacroHost interface {
	// InstallMacroSearcher adds searcher to the compiler's macro search chain.
	InstallMacroSearcher(L *lua.LState, searcher *lua.LFunction) error
	// EvalMacroModule evaluates macro source in the compiler environment and
	// returns the module value.
	EvalMacroModule(L *lua.LState, source []byte, name string) (lua.LValue, error)
}

// Searcher answers "can you provide this module" for two chains: the
// ordinary one behind require, and the macro chain used by the compiler.
type Searcher struct {
	store    store.Store
	pipeline compile.Pipeline
	openers  map[string]Opener
	macros   MacroHost

	logHandler slog.Handler
	logger     *slog.Logger
}

// New builds a searcher over st. The pipeline may be nil when st holds no
// compiled modules; a macro host is required when it holds macro modules.
func New(st store.Store, p compile.Pipeline, opts ...Option) (*Searcher, error) {
	if st == nil {
		return nil, ErrNoStore
	}
	s := &Searcher{
		store:    st,
		pipeline: p,
		openers:  make(map[string]Opener),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadOption, err)
		}
	}
	s.logHandler, s.logger = helpers.ResolveLogger(s.logHandler, s.logger, "searcher", "Searcher")

	if p == nil && st.HasKind(manifest.KindCompile) {
		return nil, ErrNoPipeline
	}
	if s.macros == nil && st.HasKind(manifest.KindMacro) {
		return nil, ErrNoMacroHost
	}
	if err := s.checkOpeners(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Searcher) checkOpeners() error {
	for _, name := range s.store.Names() {
		if k, _ := s.store.Kind(name); k != manifest.KindLoader {
			continue
		}
		c, _, err := s.store.Get(name)
		if err != nil {
			return err
		}
		if _, ok := s.openers[c.Opener]; !ok {
			return fmt.Errorf("%w: module %q wants opener %q", ErrNoOpener, name, c.Opener)
		}
	}
	return nil
}

func (s *Searcher) String() string {
	return fmt.Sprintf("searcher.Searcher{Store: %s}", s.store)
}

// ID identifies the manifest behind the searcher. Attaching two searchers
// with the same ID to one state attaches only the first.
func (s *Searcher) ID() string {
	return s.store.ID()
}

// Names lists the modules the searcher knows about, macros included.
func (s *Searcher) Names() []string {
	return s.store.Names()
}

func stateContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Find resolves name on the ordinary chain. A nil function and nil error
// mean the name is not handled here. Macro modules are never found.
func (s *Searcher) Find(L *lua.LState, name string) (*lua.LFunction, error) {
	ctx := stateContext(L)
	kind, ok := s.store.Kind(name)
	if !ok {
		s.logger.DebugContext(ctx, "Module not in manifest", "module", name)
		return nil, nil
	}

	c, ok, err := s.store.Get(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var fn *lua.LFunction
	switch kind {
	case manifest.KindNative:
		fn, err = L.Load(bytes.NewReader(c.Data), c.Origin)
	case manifest.KindCompile:
		var out string
		if out, err = s.pipeline.Compile(L, c); err != nil {
			return nil, err
		}
		fn, err = L.Load(strings.NewReader(out), c.Origin)
	case manifest.KindLoader:
		fn, err = s.openers[c.Opener](L, name)
		if err == nil && fn == nil {
			err = fmt.Errorf("opener %q returned no function", c.Opener)
		}
	default:
		err = fmt.Errorf("%w: %s", manifest.ErrUnknownModuleKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q (%s): %w", ErrLoad, name, c.Origin, err)
	}
	s.logger.DebugContext(ctx, "Module found", "module", name, "kind", kind)
	return fn, nil
}

// FindMacro resolves name on the macro chain. Only macro modules are found;
// the returned loader evaluates the macro source through the macro host.
func (s *Searcher) FindMacro(L *lua.LState, name string) (*lua.LFunction, error) {
	c, ok, err := s.store.GetMacro(name)
	if err != nil || !ok {
		return nil, err
	}

	s.logger.DebugContext(stateContext(L), "Macro module found", "module", name)
	return L.NewFunction(func(L *lua.LState) int {
		v, err := s.macros.EvalMacroModule(L, c.Data, name)
		if err != nil {
			L.RaiseError("%s", fmt.Errorf("%w: macro %q (%s): %w", ErrLoad, name, c.Origin, err))
		}
		L.Push(v)
		return 1
	}), nil
}

func (s *Searcher) missMessage(name string) lua.LString {
	return lua.LString(fmt.Sprintf("no module '%s' in manifest %s", name, s.ID()))
}

// loaderFunction adapts Find to the package.loaders protocol: a hit returns
// a function, a miss returns a message string, and failures raise.
func (s *Searcher) loaderFunction(L *lua.LState) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		fn, err := s.Find(L, name)
		if err != nil {
			s.logger.WarnContext(stateContext(L), "Module failed to load", "module", name, "error", err)
			L.RaiseError("%s", err.Error())
		}
		if fn == nil {
			L.Push(s.missMessage(name))
			return 1
		}
		L.Push(fn)
		return 1
	})
}

// macroSearcherFunction adapts FindMacro to the compiler's macro-searchers
// protocol: a hit returns the loader and a file name, a miss returns nil.
func (s *Searcher) macroSearcherFunction(L *lua.LState) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		fn, err := s.FindMacro(L, name)
		if err != nil {
			L.RaiseError("%s", err.Error())
		}
		if fn == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(fn)
		L.Push(lua.LString(name))
		return 2
	})
}
