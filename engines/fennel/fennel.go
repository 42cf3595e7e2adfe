// Package fennel drives the Fennel compiler living inside a Lua state. The
// host compiles Fennel modules, evaluates macro modules in the compiler
// environment, and installs searchers into fennel["macro-searchers"].
package fennel

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-luamount/internal/helpers"
	lua "github.com/yuin/gopher-lua"
)

const defaultModule = "fennel"

// Fennel talks to whatever module is importable as "fennel" in the state it
// is handed. It holds no Lua state of its own.
type Fennel struct {
	module string

	logHandler slog.Handler
	logger     *slog.Logger
}

func New(opts ...FunctionalOption) (*Fennel, error) {
	f := &Fennel{module: defaultModule}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, fmt.Errorf("error applying fennel option: %w", err)
		}
	}
	f.logHandler, f.logger = helpers.ResolveLogger(f.logHandler, f.logger, "fennel", "Fennel")
	return f, nil
}

func (f *Fennel) String() string {
	return "fennel.Fennel"
}

// errorMessage extracts the raised Lua value, leaving out the traceback.
func errorMessage(err error) string {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return apiErr.Object.String()
	}
	return err.Error()
}

// call runs fn protected and returns its single result.
func call(L *lua.LState, fn lua.LValue, args ...lua.LValue) (lua.LValue, error) {
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return nil, err
	}
	v := L.Get(-1)
	L.Pop(1)
	return v, nil
}

// require loads the compiler module through the state's own require.
func (f *Fennel) require(L *lua.LState) (*lua.LTable, error) {
	req, ok := L.GetGlobal("require").(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w: state has no require", ErrUnavailable)
	}
	v, err := call(L, req, lua.LString(f.module))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, errorMessage(err))
	}
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: %q returned %s, not a table", ErrProtocol, f.module, v.Type())
	}
	return t, nil
}

func (f *Fennel) function(t *lua.LTable, name string) (*lua.LFunction, error) {
	fn, ok := t.RawGetString(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is not a function", ErrProtocol, f.module, name)
	}
	return fn, nil
}

func options(L *lua.LState, name string, extra map[string]string) *lua.LTable {
	opts := L.NewTable()
	opts.RawSetString("filename", lua.LString(name))
	opts.RawSetString("module-name", lua.LString(name))
	for k, v := range extra {
		opts.RawSetString(k, lua.LString(v))
	}
	return opts
}

// Version reports the compiler's version string.
func (f *Fennel) Version(L *lua.LState) (string, error) {
	t, err := f.require(L)
	if err != nil {
		return "", err
	}
	v, ok := t.RawGetString("version").(lua.LString)
	if !ok {
		return "", fmt.Errorf("%w: %s.version is not a string", ErrProtocol, f.module)
	}
	return string(v), nil
}
