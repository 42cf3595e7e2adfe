package manifest

import (
	"errors"
	"fmt"
)

// Contributor produces the entries behind a loader reference. The loader
// registry is the usual implementation.
type Contributor interface {
	Contribute(id string, args map[string]string) ([]Entry, error)
}

// Builder assembles a manifest from declarations, loader contributions, and
// other manifests, keeping the order in which they were added. Contributions
// run immediately, so later declarations can override the names they add.
type Builder struct {
	table       *PathTable
	contributor Contributor
	doc         string
	entries     []Entry
	errs        []error
}

// NewBuilder returns a builder resolving paths against table. Either argument
// may be nil when the manifest uses no declarations or no loaders.
func NewBuilder(table *PathTable, contributor Contributor) *Builder {
	return &Builder{table: table, contributor: contributor}
}

func (b *Builder) Doc(doc string) *Builder {
	b.doc = doc
	return b
}

func (b *Builder) Declare(decls ...Declaration) *Builder {
	if len(decls) == 0 {
		return b
	}
	if b.table == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: declarations need a path table", ErrConfig))
		return b
	}
	entries, err := b.table.Resolve(decls...)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.entries = append(b.entries, entries...)
	return b
}

func (b *Builder) Contribute(id string, args map[string]string) *Builder {
	if b.contributor == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: loader %q referenced without a loader registry", ErrConfig, id))
		return b
	}
	entries, err := b.contributor.Contribute(id, args)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("loader %q: %w", id, err))
		return b
	}
	b.entries = append(b.entries, entries...)
	return b
}

func (b *Builder) Include(m *Manifest) *Builder {
	if m != nil {
		b.entries = append(b.entries, m.entries...)
	}
	return b
}

// Build returns the manifest, or every error collected along the way.
func (b *Builder) Build() (*Manifest, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	m, err := New(b.entries...)
	if err != nil {
		return nil, err
	}
	m.doc = b.doc
	return m, nil
}
