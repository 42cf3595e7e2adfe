package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// starItem carries an Item through Starlark values.
type starItem struct {
	item Item
}

func (v starItem) String() string          { return v.item.String() }
func (v starItem) Type() string            { return "luamount.item" }
func (v starItem) Freeze()                 {}
func (v starItem) Truth() starlarkLib.Bool { return starlarkLib.True }
func (v starItem) Hash() (uint32, error)   { return 0, fmt.Errorf("unhashable type: %s", v.Type()) }

// starFront executes luamount.star. Manifests are declared by calling
// manifest() at top level:
//
//	loaders(fennel = "fennel.Source")
//	manifest("kiwi", doc = "kiwi modules", modules = [
//	    loader("fennel"),
//	    walk("kiwi", exclude = ["**_test.fnl"]),
//	    module(name = "kiwi.native", opener = "kiwi.Native"),
//	])
type starFront struct {
	project *Project
}

func execStarlark(ctx context.Context, logger *slog.Logger, path string, data []byte, p *Project) error {
	logger = logger.WithGroup("starlark")
	f := &starFront{project: p}

	thread := &starlarkLib.Thread{
		Name: "config",
		Print: func(thread *starlarkLib.Thread, msg string) {
			logger.InfoContext(ctx, msg, "starlark-thread", thread.Name)
		},
	}
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(ctx.Err().Error())
	})
	defer stop()

	predeclared := starlarkLib.StringDict{
		"manifest": starlarkLib.NewBuiltin("manifest", f.manifest),
		"module":   starlarkLib.NewBuiltin("module", f.module),
		"loader":   starlarkLib.NewBuiltin("loader", f.loader),
		"walk":     starlarkLib.NewBuiltin("walk", f.walk),
		"loaders":  starlarkLib.NewBuiltin("loaders", f.loaders),
	}
	if _, err := starlarkLib.ExecFileOptions(&syntax.FileOptions{}, thread, path, data, predeclared); err != nil {
		var evalErr *starlarkLib.EvalError
		if errors.As(err, &evalErr) {
			logger.DebugContext(ctx, "Configuration failed", "backtrace", evalErr.Backtrace())
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}

func (f *starFront) manifest(
	_ *starlarkLib.Thread,
	b *starlarkLib.Builtin,
	args starlarkLib.Tuple,
	kwargs []starlarkLib.Tuple,
) (starlarkLib.Value, error) {
	var id, doc string
	var modules *starlarkLib.List
	if err := starlarkLib.UnpackArgs(b.Name(), args, kwargs,
		"id", &id, "doc?", &doc, "modules?", &modules); err != nil {
		return nil, err
	}

	spec := ManifestSpec{ID: id, Doc: doc}
	if modules != nil {
		for i := range modules.Len() {
			v, ok := modules.Index(i).(starItem)
			if !ok {
				return nil, fmt.Errorf("%s: modules[%d] is %s, want a module, loader, or walk",
					b.Name(), i, modules.Index(i).Type())
			}
			spec.Items = append(spec.Items, v.item)
		}
	}
	if err := f.project.addManifest(spec); err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlarkLib.None, nil
}

func (f *starFront) module(
	_ *starlarkLib.Thread,
	b *starlarkLib.Builtin,
	args starlarkLib.Tuple,
	kwargs []starlarkLib.Tuple,
) (starlarkLib.Value, error) {
	var it Item
	if err := starlarkLib.UnpackArgs(b.Name(), args, kwargs,
		"name?", &it.Name, "path?", &it.Path, "text?", &it.Text,
		"type?", &it.Type, "opener?", &it.Opener); err != nil {
		return nil, err
	}
	return starItem{item: it}, nil
}

func (f *starFront) loader(
	_ *starlarkLib.Thread,
	b *starlarkLib.Builtin,
	args starlarkLib.Tuple,
	kwargs []starlarkLib.Tuple,
) (starlarkLib.Value, error) {
	var id string
	if err := starlarkLib.UnpackPositionalArgs(b.Name(), args, nil, 1, &id); err != nil {
		return nil, err
	}
	table, err := stringKwargs(b.Name(), kwargs)
	if err != nil {
		return nil, err
	}
	it := Item{Loader: id}
	if len(table) > 0 {
		it.Args = table
	}
	return starItem{item: it}, nil
}

func (f *starFront) walk(
	_ *starlarkLib.Thread,
	b *starlarkLib.Builtin,
	args starlarkLib.Tuple,
	kwargs []starlarkLib.Tuple,
) (starlarkLib.Value, error) {
	var dir string
	var include, exclude starlarkLib.Value = starlarkLib.None, starlarkLib.None
	if err := starlarkLib.UnpackArgs(b.Name(), args, kwargs,
		"dir", &dir, "include?", &include, "exclude?", &exclude); err != nil {
		return nil, err
	}
	it := Item{Walk: dir}
	var err error
	if it.Include, err = stringValues(b.Name(), "include", include); err != nil {
		return nil, err
	}
	if it.Exclude, err = stringValues(b.Name(), "exclude", exclude); err != nil {
		return nil, err
	}
	return starItem{item: it}, nil
}

func (f *starFront) loaders(
	_ *starlarkLib.Thread,
	b *starlarkLib.Builtin,
	args starlarkLib.Tuple,
	kwargs []starlarkLib.Tuple,
) (starlarkLib.Value, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("%s: takes keyword arguments only", b.Name())
	}
	table, err := stringKwargs(b.Name(), kwargs)
	if err != nil {
		return nil, err
	}
	f.project.addLoaders(table)
	return starlarkLib.None, nil
}

func stringKwargs(fn string, kwargs []starlarkLib.Tuple) (map[string]string, error) {
	out := make(map[string]string, len(kwargs))
	for _, kv := range kwargs {
		key, _ := starlarkLib.AsString(kv[0])
		val, ok := starlarkLib.AsString(kv[1])
		if !ok {
			return nil, fmt.Errorf("%s: %s must be a string, got %s", fn, key, kv[1].Type())
		}
		out[key] = val
	}
	return out, nil
}

func stringValues(fn, what string, v starlarkLib.Value) ([]string, error) {
	switch v := v.(type) {
	case starlarkLib.NoneType:
		return nil, nil
	case starlarkLib.String:
		return []string{string(v)}, nil
	case *starlarkLib.List:
		out := make([]string, 0, v.Len())
		for i := range v.Len() {
			s, ok := starlarkLib.AsString(v.Index(i))
			if !ok {
				return nil, fmt.Errorf("%s: %s[%d] must be a string", fn, what, i)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: %s must be a string or a list of strings, got %s", fn, what, v.Type())
	}
}
