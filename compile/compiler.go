// Package compile turns compile-to-Lua module sources into Lua, either from a
// cache filled at build time or on demand.
package compile

import (
	"github.com/robbyt/go-luamount/store"
	lua "github.com/yuin/gopher-lua"
)

// Compiler translates one module's source into Lua source. It runs inside L
// so the compiler can reach modules, including macros, already attached to
// that state.
type Compiler interface {
	Compile(L *lua.LState, source []byte, moduleName string) (string, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(L *lua.LState, source []byte, moduleName string) (string, error)

func (f CompilerFunc) Compile(L *lua.LState, source []byte, moduleName string) (string, error) {
	return f(L, source, moduleName)
}

// Pipeline produces the Lua text for a compile-kind module. The two
// implementations are Ahead, backed by the build-time cache, and OnDemand.
type Pipeline interface {
	Compile(L *lua.LState, c store.Content) (string, error)
}
