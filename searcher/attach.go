package searcher

import (
	"errors"
	"fmt"

	"github.com/robbyt/go-luamount/manifest"
	lua "github.com/yuin/gopher-lua"
)

const attachedKey = "_LUAMOUNT_ATTACHED"

func loadersTable(L *lua.LState) (*lua.LTable, error) {
	if t, ok := L.GetField(L.Get(lua.RegistryIndex), "_LOADERS").(*lua.LTable); ok {
		return t, nil
	}
	pkg, ok := L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return nil, errors.New("state has no package library")
	}
	if t, ok := pkg.RawGetString("loaders").(*lua.LTable); ok {
		return t, nil
	}
	if t, ok := pkg.RawGetString("searchers").(*lua.LTable); ok {
		return t, nil
	}
	return nil, errors.New("state has neither package.loaders nor package.searchers")
}

func attachedSet(L *lua.LState) *lua.LTable {
	reg := L.Get(lua.RegistryIndex).(*lua.LTable)
	if t, ok := reg.RawGetString(attachedKey).(*lua.LTable); ok {
		return t
	}
	t := L.NewTable()
	reg.RawSetString(attachedKey, t)
	return t
}

// Attach appends the searcher to L's loader chain and, when the store holds
// macro modules, to the compiler's macro chain. Attaching a searcher whose
// ID is already attached is a no-op. Searchers are consulted in the order
// they were attached, after the state's built-in loaders.
//
// Macro modules are expanded by the compiler, which must be importable
// through a searcher attached to L by then.
func Attach(L *lua.LState, s *Searcher) error {
	loaders, err := loadersTable(L)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAttach, err)
	}

	attached := attachedSet(L)
	if attached.RawGetString(s.ID()) == lua.LTrue {
		s.logger.Debug("Searcher already attached", "id", s.ID())
		return nil
	}

	loaders.Append(s.loaderFunction(L))
	pos := loaders.Len()

	if s.store.HasKind(manifest.KindMacro) {
		if err := s.macros.InstallMacroSearcher(L, s.macroSearcherFunction(L)); err != nil {
			loaders.Remove(pos)
			return fmt.Errorf("%w: macro chain: %w", ErrAttach, err)
		}
	}

	attached.RawSetString(s.ID(), lua.LTrue)
	s.logger.Debug("Searcher attached", "id", s.ID(), "position", pos)
	return nil
}

// Isolate empties package.path and package.cpath so that only attached
// searchers and preloaded modules can satisfy require.
func Isolate(L *lua.LState) error {
	pkg, ok := L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return fmt.Errorf("%w: state has no package library", ErrAttach)
	}
	pkg.RawSetString("path", lua.LString(""))
	pkg.RawSetString("cpath", lua.LString(""))
	return nil
}

// Reload forgets a loaded module so the next require runs the searchers
// again. Combined with a lazy store this picks up edited sources.
func Reload(L *lua.LState, name string) {
	if loaded, ok := L.GetField(L.Get(lua.RegistryIndex), "_LOADED").(*lua.LTable); ok {
		loaded.RawSetString(name, lua.LNil)
	}
}
