package fennel

import (
	"bytes"
	"fmt"

	"github.com/robbyt/go-luamount/loader"
	"github.com/robbyt/go-luamount/manifest"
	lua "github.com/yuin/gopher-lua"
)

// Source returns a loader contribution that makes the Fennel compiler
// importable. src is the text of fennel.lua and version the release it
// comes from. The "as" argument renames the module; a "version" argument
// must match version when both are set.
func Source(src []byte, version string) loader.Func {
	return func(args loader.Args) ([]manifest.Entry, error) {
		if len(src) == 0 {
			return nil, fmt.Errorf("%w: no compiler source supplied", ErrUnavailable)
		}
		if want := args.Get("version", ""); want != "" && version != "" && want != version {
			return nil, fmt.Errorf("%w: manifest wants %s, have %s", ErrVersionMismatch, want, version)
		}
		return []manifest.Entry{{
			Name:   args.Get("as", defaultModule),
			Kind:   manifest.KindNative,
			Inline: src,
		}}, nil
	}
}

// Mount makes src importable under the host's module name unless that
// module can already be required. It uses package.preload, so attached
// searchers are left alone.
func (f *Fennel) Mount(L *lua.LState, src []byte) error {
	if _, err := f.require(L); err == nil {
		f.logger.Debug("Compiler already importable", "module", f.module)
		return nil
	}
	if len(src) == 0 {
		return fmt.Errorf("%w: no compiler source supplied", ErrUnavailable)
	}
	chunk, err := L.Load(bytes.NewReader(src), f.module+".lua")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, errorMessage(err))
	}
	L.PreloadModule(f.module, func(L *lua.LState) int {
		L.Push(chunk)
		L.Push(lua.LString(f.module))
		L.Call(1, 1)
		return 1
	})
	f.logger.Debug("Compiler mounted", "module", f.module)
	return nil
}
