package config

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// DefaultManifestID names the manifest when a configuration returns just one.
const DefaultManifestID = "default"

const (
	luaItemType     = "luamount.item"
	luaManifestType = "luamount.manifest"
)

var moduleFields = []string{"name", "path", "text", "type", "opener"}

// luaFront evaluates luamount.lua. The file requires "luamount" and returns
// either one manifest or a table of manifests keyed by id:
//
//	local m = require("luamount")
//	m.loaders { fennel = "fennel.Source" }
//	return m.manifest("kiwi modules",
//	  m.loader("fennel"),
//	  m.walk("kiwi", { exclude = "**_test.fnl" }),
//	  { name = "kiwi.native", opener = "kiwi.Native" })
type luaFront struct {
	project *Project
	logger  *slog.Logger
}

func evalLua(ctx context.Context, logger *slog.Logger, path string, data []byte, p *Project) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	f := &luaFront{project: p, logger: logger.WithGroup("lua")}
	L.PreloadModule("luamount", f.open)
	L.SetGlobal("print", L.NewFunction(f.print))

	fn, err := L.Load(bytes.NewReader(data), path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return f.collect(ret)
}

func (f *luaFront) open(L *lua.LState) int {
	for _, name := range []string{luaItemType, luaManifestType} {
		mt := L.NewTypeMetatable(name)
		L.SetField(mt, "__tostring", L.NewFunction(tostring))
	}
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"manifest": f.manifest,
		"module":   f.module,
		"loader":   f.loader,
		"walk":     f.walk,
		"loaders":  f.loaders,
	})
	L.Push(mod)
	return 1
}

func tostring(L *lua.LState) int {
	ud := L.CheckUserData(1)
	L.Push(lua.LString(fmt.Sprint(ud.Value)))
	return 1
}

func (f *luaFront) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	f.logger.Info(strings.Join(parts, "\t"))
	return 0
}

func (f *luaFront) push(L *lua.LState, typ string, v any) int {
	ud := L.NewUserData()
	ud.Value = v
	L.SetMetatable(ud, L.GetTypeMetatable(typ))
	L.Push(ud)
	return 1
}

func (f *luaFront) module(L *lua.LState) int {
	return f.push(L, luaItemType, moduleItem(L, L.CheckTable(1)))
}

func (f *luaFront) loader(L *lua.LState) int {
	it := Item{Loader: L.CheckString(1)}
	if L.GetTop() >= 2 {
		it.Args = stringMap(L, L.CheckTable(2), "loader args")
	}
	return f.push(L, luaItemType, it)
}

func (f *luaFront) walk(L *lua.LState) int {
	it := Item{Walk: L.CheckString(1)}
	if opts := L.OptTable(2, nil); opts != nil {
		checkKeys(L, opts, "walk options", []string{"include", "exclude"})
		it.Include = stringList(L, opts.RawGetString("include"), "include")
		it.Exclude = stringList(L, opts.RawGetString("exclude"), "exclude")
	}
	return f.push(L, luaItemType, it)
}

func (f *luaFront) loaders(L *lua.LState) int {
	f.project.addLoaders(stringMap(L, L.CheckTable(1), "loaders"))
	return 0
}

// manifest takes an optional docstring followed by items. Plain tables are
// read as module declarations.
func (f *luaFront) manifest(L *lua.LState) int {
	spec := &ManifestSpec{}
	for i := 1; i <= L.GetTop(); i++ {
		switch v := L.Get(i).(type) {
		case lua.LString:
			if i != 1 {
				L.ArgError(i, "only the first argument may be a docstring")
			}
			spec.Doc = string(v)
		case *lua.LUserData:
			it, ok := v.Value.(Item)
			if !ok {
				L.ArgError(i, "expected a module, loader, or walk")
			}
			spec.Items = append(spec.Items, it)
		case *lua.LTable:
			spec.Items = append(spec.Items, moduleItem(L, v))
		default:
			L.ArgError(i, "expected a module, loader, or walk, got "+v.Type().String())
		}
	}
	return f.push(L, luaManifestType, spec)
}

func (f *luaFront) collect(ret lua.LValue) error {
	switch v := ret.(type) {
	case *lua.LUserData:
		spec, ok := v.Value.(*ManifestSpec)
		if !ok {
			return fmt.Errorf("%w: configuration returned %v, want a manifest", ErrInvalid, v.Value)
		}
		spec.ID = DefaultManifestID
		return f.project.addManifest(*spec)
	case *lua.LTable:
		specs := make(map[string]*ManifestSpec)
		var bad []string
		v.ForEach(func(k, val lua.LValue) {
			id, kok := k.(lua.LString)
			ud, vok := val.(*lua.LUserData)
			if !kok || !vok {
				bad = append(bad, k.String())
				return
			}
			spec, ok := ud.Value.(*ManifestSpec)
			if !ok {
				bad = append(bad, k.String())
				return
			}
			specs[string(id)] = spec
		})
		if len(bad) > 0 {
			slices.Sort(bad)
			return fmt.Errorf("%w: entries %s are not manifests", ErrInvalid, strings.Join(bad, ", "))
		}
		ids := make([]string, 0, len(specs))
		for id := range specs {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			spec := *specs[id]
			spec.ID = id
			if err := f.project.addManifest(spec); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: configuration returned %s, want a manifest or a table of manifests", ErrInvalid, ret.Type())
	}
}

func moduleItem(L *lua.LState, t *lua.LTable) Item {
	checkKeys(L, t, "module", moduleFields)
	return Item{
		Name:   stringField(L, t, "name"),
		Path:   stringField(L, t, "path"),
		Text:   stringField(L, t, "text"),
		Type:   stringField(L, t, "type"),
		Opener: stringField(L, t, "opener"),
	}
}

func checkKeys(L *lua.LState, t *lua.LTable, what string, allowed []string) {
	var unknown []string
	t.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); !ok || !slices.Contains(allowed, string(s)) {
			unknown = append(unknown, k.String())
		}
	})
	if len(unknown) > 0 {
		slices.Sort(unknown)
		L.RaiseError("%s: unknown fields %s", what, strings.Join(unknown, ", "))
	}
}

func stringField(L *lua.LState, t *lua.LTable, key string) string {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return ""
	}
	s, ok := v.(lua.LString)
	if !ok {
		L.RaiseError("%s must be a string, got %s", key, v.Type())
	}
	return string(s)
}

func stringMap(L *lua.LState, t *lua.LTable, what string) map[string]string {
	out := make(map[string]string)
	t.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			L.RaiseError("%s: key %s is not a string", what, k.String())
		}
		switch v.(type) {
		case lua.LString, lua.LNumber, lua.LBool:
			out[string(ks)] = v.String()
		default:
			L.RaiseError("%s: value of %s must be a string, got %s", what, ks, v.Type())
		}
	})
	return out
}

func stringList(L *lua.LState, v lua.LValue, what string) []string {
	switch v := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		out := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				L.RaiseError("%s[%d] must be a string", what, i)
			}
			out = append(out, string(s))
		}
		return out
	default:
		L.RaiseError("%s must be a string or a list of strings, got %s", what, v.Type())
		return nil
	}
}
