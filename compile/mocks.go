package compile

import (
	"github.com/stretchr/testify/mock"
	lua "github.com/yuin/gopher-lua"
)

// MockCompiler is a testify mock of Compiler.
type MockCompiler struct {
	mock.Mock
}

func (m *MockCompiler) Compile(L *lua.LState, source []byte, moduleName string) (string, error) {
	args := m.Called(L, source, moduleName)
	return args.String(0), args.Error(1)
}
