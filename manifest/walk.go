package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// WalkOptions filter the files Walk picks up. Patterns match root-relative,
// slash-separated paths; "**" crosses directories.
type WalkOptions struct {
	Include []string
	Exclude []string
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: bad pattern %q: %w", ErrConfig, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// Walk declares every module file below dir, which is relative to the table
// root. Hidden directories are skipped, as are files without a recognized
// extension or without a usable module name, such as "init.fnl" at the root
// or a bare ".fnl". Results come back in lexical order.
func Walk(fsys afero.Fs, table *PathTable, dir string, opts WalkOptions) ([]Declaration, error) {
	include, err := compileGlobs(opts.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileGlobs(opts.Exclude)
	if err != nil {
		return nil, err
	}

	start := table.root
	if dir != "" && dir != "." {
		if start, _, err = table.locate(dir); err != nil {
			return nil, fmt.Errorf("%w: walk %q: %w", ErrConfig, dir, err)
		}
	}

	var decls []Declaration
	err = afero.Walk(fsys, start, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != start && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(table.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !Recognized(rel) {
			return nil
		}
		if _, err := DeriveName(rel); err != nil {
			return nil
		}
		if len(include) > 0 && !matchAny(include, rel) {
			return nil
		}
		if matchAny(exclude, rel) {
			return nil
		}
		decls = append(decls, Declaration{Path: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %q: %w", ErrConfig, dir, err)
	}
	return decls, nil
}
