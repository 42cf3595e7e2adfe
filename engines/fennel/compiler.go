package fennel

import (
	"fmt"

	"github.com/robbyt/go-luamount/compile"
	lua "github.com/yuin/gopher-lua"
)

// Compile turns Fennel source into Lua with fennel.compileString. Macro
// modules attached to L are visible to the compiler while it runs.
func (f *Fennel) Compile(L *lua.LState, source []byte, moduleName string) (string, error) {
	logger := f.logger.WithGroup("compile")

	t, err := f.require(L)
	if err != nil {
		return "", err
	}
	compileString, err := f.function(t, "compileString")
	if err != nil {
		return "", err
	}

	logger.Debug("Starting compilation", "module", moduleName, "bytes", len(source))
	v, err := call(L, compileString, lua.LString(source), options(L, moduleName, nil))
	if err != nil {
		cerr := compile.ParseError(moduleName, errorMessage(err))
		logger.Warn("Compilation failed", "module", moduleName, "error", cerr)
		return "", cerr
	}

	out, ok := v.(lua.LString)
	if !ok {
		return "", fmt.Errorf("%w: compileString returned %s", ErrProtocol, v.Type())
	}
	logger.Debug("Compilation successful", "module", moduleName, "bytes", len(out))
	return string(out), nil
}
