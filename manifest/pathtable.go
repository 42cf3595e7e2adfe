package manifest

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Declaration is a module as written in configuration, before names and
// kinds are derived.
type Declaration struct {
	// Name is the logical module name. Derived from Path when empty.
	Name string
	// Path is relative to the root, or absolute but inside it.
	Path string
	// Text is inline module content. Requires Name and Type.
	Text string
	// Type overrides kind inference.
	Type Kind
	// Opener names a Go opener. Implies KindLoader.
	Opener string
}

// PathTable maps declarations onto files under a single root directory. It
// only works on path strings and never touches the file system.
type PathTable struct {
	root string
}

func NewPathTable(root string) (*PathTable, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: root is empty", ErrInvalidPath)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	return &PathTable{root: abs}, nil
}

func (pt *PathTable) String() string {
	return fmt.Sprintf("manifest.PathTable{Root: %s}", pt.root)
}

func (pt *PathTable) Root() string {
	return pt.root
}

// Resolve turns declarations into entries. Every invalid declaration is
// reported, not just the first one.
func (pt *PathTable) Resolve(decls ...Declaration) ([]Entry, error) {
	entries := make([]Entry, 0, len(decls))
	var errs []error
	for i, d := range decls {
		e, err := pt.resolve(d)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: declaration %d (name=%q path=%q): %w",
				ErrConfig, i, d.Name, d.Path, err))
			continue
		}
		entries = append(entries, e)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return entries, nil
}

func (pt *PathTable) resolve(d Declaration) (Entry, error) {
	if d.Opener != "" && d.Type == KindUnknown {
		d.Type = KindLoader
	}

	switch {
	case d.Path != "" && d.Text != "":
		return Entry{}, fmt.Errorf("%w: path and text are mutually exclusive", ErrInvalidDeclaration)
	case d.Type == KindLoader:
		if d.Name == "" || d.Opener == "" {
			return Entry{}, fmt.Errorf("%w: loader modules need a name and an opener", ErrInvalidDeclaration)
		}
		if d.Path != "" || d.Text != "" {
			return Entry{}, fmt.Errorf("%w: loader modules take no path or text", ErrInvalidDeclaration)
		}
		return Entry{Name: d.Name, Kind: KindLoader, Opener: d.Opener}, nil
	case d.Opener != "":
		return Entry{}, fmt.Errorf("%w: opener given for a %s module", ErrInvalidDeclaration, d.Type)
	case d.Text != "":
		if d.Name == "" || d.Type == KindUnknown {
			return Entry{}, fmt.Errorf("%w: inline modules need a name and a type", ErrInvalidDeclaration)
		}
		return Entry{Name: d.Name, Kind: d.Type, Inline: []byte(d.Text)}, nil
	case d.Path == "":
		return Entry{}, fmt.Errorf("%w: a path or text is required", ErrInvalidDeclaration)
	}

	abs, rel, err := pt.locate(d.Path)
	if err != nil {
		return Entry{}, err
	}

	// an explicit type wins over whatever the extension says
	kind := d.Type
	if kind == KindUnknown {
		if kind, err = InferKind(rel); err != nil {
			return Entry{}, err
		}
	}

	name := d.Name
	if name == "" {
		if name, err = DeriveName(rel); err != nil {
			return Entry{}, err
		}
	}

	return Entry{Name: name, Kind: kind, Path: abs}, nil
}

// locate returns the absolute path and the slash-separated path relative to
// the root, rejecting anything that leaves the root.
func (pt *PathTable) locate(p string) (string, string, error) {
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(pt.root, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(pt.root, p)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %q is outside %s", ErrInvalidPath, p, pt.root)
	}
	return p, filepath.ToSlash(rel), nil
}

// DeriveName maps a root-relative path to a module name: the extension is
// dropped, separators become dots, and init/init-macros files take the name
// of their directory.
func DeriveName(rel string) (string, error) {
	rel = filepath.ToSlash(rel)
	stem := strings.TrimSuffix(rel, path.Ext(rel))

	parts := strings.Split(stem, "/")
	if last := parts[len(parts)-1]; last == initStem || last == initMacroStem {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: %q at the root has no module name", ErrInvalidPath, rel)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("%w: cannot derive a module name from %q", ErrInvalidPath, rel)
		}
	}
	return strings.Join(parts, "."), nil
}
