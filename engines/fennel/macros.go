package fennel

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// InstallMacroSearcher appends fn to fennel["macro-searchers"]. Requiring
// the compiler here is what makes it a precondition of attaching macros.
func (f *Fennel) InstallMacroSearcher(L *lua.LState, fn *lua.LFunction) error {
	t, err := f.require(L)
	if err != nil {
		return err
	}
	searchers, ok := t.RawGetString("macro-searchers").(*lua.LTable)
	if !ok {
		return fmt.Errorf("%w: %s[\"macro-searchers\"] is not a table", ErrProtocol, f.module)
	}
	searchers.Append(fn)
	f.logger.Debug("Macro searcher installed", "position", searchers.Len())
	return nil
}

// EvalMacroModule evaluates macro source with fennel.eval in the compiler
// environment and returns the macro table.
func (f *Fennel) EvalMacroModule(L *lua.LState, source []byte, name string) (lua.LValue, error) {
	t, err := f.require(L)
	if err != nil {
		return nil, err
	}
	eval, err := f.function(t, "eval")
	if err != nil {
		return nil, err
	}
	v, err := call(L, eval, lua.LString(source), options(L, name, map[string]string{"env": "_COMPILER"}))
	if err != nil {
		return nil, fmt.Errorf("%w: macro module %q: %s", ErrEval, name, errorMessage(err))
	}
	return v, nil
}
