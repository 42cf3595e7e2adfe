// Package config reads a project's manifest declarations from luamount.toml,
// luamount.lua or luamount.star. Every front-end produces the same Project.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robbyt/go-luamount/loader"
	"github.com/robbyt/go-luamount/manifest"
	"github.com/spf13/afero"
)

// Item is one element of a manifest's module list. Exactly one of three
// shapes is used: a module declaration (Name, Path, Text, Type, Opener), a
// loader reference (Loader, Args), or a directory walk (Walk, Include,
// Exclude).
type Item struct {
	Name   string `toml:"name,omitempty"`
	Path   string `toml:"path,omitempty"`
	Text   string `toml:"text,omitempty"`
	Type   string `toml:"type,omitempty"`
	Opener string `toml:"opener,omitempty"`

	Loader string            `toml:"loader,omitempty"`
	Args   map[string]string `toml:"args,omitempty"`

	Walk    string   `toml:"walk,omitempty"`
	Include []string `toml:"include,omitempty"`
	Exclude []string `toml:"exclude,omitempty"`
}

func (it Item) isLoader() bool { return it.Loader != "" }
func (it Item) isWalk() bool   { return it.Walk != "" }

func (it Item) isModule() bool {
	return it.Name != "" || it.Path != "" || it.Text != "" || it.Type != "" || it.Opener != ""
}

func (it Item) String() string {
	switch {
	case it.isLoader():
		return fmt.Sprintf("loader %q", it.Loader)
	case it.isWalk():
		return fmt.Sprintf("walk %q", it.Walk)
	default:
		return fmt.Sprintf("module (name=%q path=%q)", it.Name, it.Path)
	}
}

func (it Item) validate() error {
	shapes := 0
	for _, ok := range []bool{it.isModule(), it.isLoader(), it.isWalk()} {
		if ok {
			shapes++
		}
	}
	switch {
	case shapes == 0:
		return errors.New("empty item")
	case shapes > 1:
		return errors.New("an item is either a module, a loader, or a walk")
	case !it.isLoader() && len(it.Args) > 0:
		return errors.New("args are only valid on loader items")
	case !it.isWalk() && (len(it.Include) > 0 || len(it.Exclude) > 0):
		return errors.New("include and exclude are only valid on walk items")
	}
	return nil
}

func (it Item) declaration() (manifest.Declaration, error) {
	d := manifest.Declaration{Name: it.Name, Path: it.Path, Text: it.Text, Opener: it.Opener}
	if it.Type != "" {
		k, err := manifest.ParseKind(it.Type)
		if err != nil {
			return d, err
		}
		d.Type = k
	}
	return d, nil
}

// ManifestSpec is a manifest as declared, before it is resolved.
type ManifestSpec struct {
	ID    string
	Doc   string
	Items []Item
}

func (s ManifestSpec) String() string {
	return fmt.Sprintf("config.ManifestSpec{ID: %s, Items: %d}", s.ID, len(s.Items))
}

func (s ManifestSpec) build(table *manifest.PathTable, c manifest.Contributor, fs afero.Fs) (*manifest.Manifest, error) {
	b := manifest.NewBuilder(table, c).Doc(s.Doc)
	var errs []error
	for i, it := range s.Items {
		if err := it.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: item %d: %w", ErrInvalid, i, err))
			continue
		}
		switch {
		case it.isLoader():
			b.Contribute(it.Loader, it.Args)
		case it.isWalk():
			decls, err := manifest.Walk(fs, table, it.Walk, manifest.WalkOptions{
				Include: it.Include,
				Exclude: it.Exclude,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("item %d: %w", i, err))
				continue
			}
			b.Declare(decls...)
		default:
			d, err := it.declaration()
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: item %d: %w", manifest.ErrConfig, i, err))
				continue
			}
			b.Declare(d)
		}
	}
	m, err := b.Build()
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// Project is a parsed configuration file. Root is the directory module
// paths are resolved against; Loaders is the static loader table.
type Project struct {
	Root      string
	Loaders   map[string]string
	Manifests []ManifestSpec
}

func (p *Project) String() string {
	ids := make([]string, len(p.Manifests))
	for i, m := range p.Manifests {
		ids[i] = m.ID
	}
	return fmt.Sprintf("config.Project{Root: %s, Manifests: [%s]}", p.Root, strings.Join(ids, ", "))
}

func (p *Project) addManifest(spec ManifestSpec) error {
	if spec.ID == "" {
		return fmt.Errorf("%w: manifest without an id", ErrInvalid)
	}
	for _, m := range p.Manifests {
		if m.ID == spec.ID {
			return fmt.Errorf("%w: %q", manifest.ErrDuplicateManifest, spec.ID)
		}
	}
	p.Manifests = append(p.Manifests, spec)
	return nil
}

func (p *Project) addLoaders(table map[string]string) {
	if p.Loaders == nil {
		p.Loaders = make(map[string]string, len(table))
	}
	for id, sym := range table {
		p.Loaders[id] = sym
	}
}

// Registry builds a loader registry from the project's static table,
// resolving symbols against catalog. Further registry options, such as
// explicit loaders, are applied after the table.
func (p *Project) Registry(catalog map[string]loader.Func, opts ...loader.Option) (*loader.Registry, error) {
	all := []loader.Option{loader.WithStaticTable(p.Loaders), loader.WithCatalog(catalog)}
	return loader.NewRegistry(append(all, opts...)...)
}

// Build resolves every manifest in the project. Walk items read directory
// listings from fs. All errors are collected, prefixed with the manifest id.
func (p *Project) Build(c manifest.Contributor, fs afero.Fs) (*manifest.Scope, error) {
	table, err := manifest.NewPathTable(p.Root)
	if err != nil {
		return nil, err
	}
	scope := manifest.NewScope()
	var errs []error
	for _, spec := range p.Manifests {
		m, err := spec.build(table, c, fs)
		if err != nil {
			errs = append(errs, fmt.Errorf("manifest %q: %w", spec.ID, err))
			continue
		}
		if err := scope.Define(spec.ID, m); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return scope, nil
}
