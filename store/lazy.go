package store

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-luamount/internal/helpers"
	"github.com/robbyt/go-luamount/manifest"
	"github.com/robbyt/go-luamount/store/source"
	"github.com/spf13/afero"
)

// Lazy reads file-backed modules on every Get. Nothing is cached, so an
// edited file is picked up the next time the module is requested.
type Lazy struct {
	manifest *manifest.Manifest
	sources  map[string]source.Source
	macros   map[string]source.Source

	fs         afero.Fs
	logHandler slog.Handler
	logger     *slog.Logger
}

func NewLazy(m *manifest.Manifest, opts ...Option) (*Lazy, error) {
	if m == nil {
		return nil, ErrNoManifest
	}
	cfg := &config{fs: afero.NewOsFs()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadOption, err)
		}
	}

	l := &Lazy{
		manifest: m,
		sources:  make(map[string]source.Source, m.Len()),
		macros:   make(map[string]source.Source),
		fs:       cfg.fs,
	}
	l.logHandler, l.logger = helpers.ResolveLogger(cfg.logHandler, cfg.logger, "store", "Lazy")

	for _, e := range m.Entries() {
		if e.Kind == manifest.KindLoader {
			continue
		}
		src, err := source.ForEntry(l.fs, e)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", e.Name, err)
		}
		if e.Kind == manifest.KindMacro {
			l.macros[e.Name] = src
		} else {
			l.sources[e.Name] = src
		}
	}
	return l, nil
}

func (l *Lazy) String() string {
	return fmt.Sprintf("store.Lazy{Manifest: %s, Modules: %d}", l.manifest.ID(), l.manifest.Len())
}

func (l *Lazy) ID() string {
	return l.manifest.ID()
}

func (l *Lazy) Get(name string) (Content, bool, error) {
	e, ok := l.manifest.Get(name)
	if !ok {
		return Content{}, false, nil
	}
	return l.read(e, l.sources[name])
}

func (l *Lazy) GetMacro(name string) (Content, bool, error) {
	e, ok := l.manifest.GetMacro(name)
	if !ok {
		return Content{}, false, nil
	}
	return l.read(e, l.macros[name])
}

func (l *Lazy) read(e manifest.Entry, src source.Source) (Content, bool, error) {
	name := e.Name
	c := Content{Name: e.Name, Kind: e.Kind, Origin: e.Origin(), Opener: e.Opener}
	if e.Kind == manifest.KindLoader {
		return c, true, nil
	}

	data, err := source.ReadAll(src)
	if err != nil {
		l.logger.Warn("Module read failed", "module", name, "origin", c.Origin, "error", err)
		return Content{}, false, fmt.Errorf("%w: module %q (%s): %w", ErrRead, name, c.Origin, err)
	}
	l.logger.Debug("Module read", "module", name, "origin", c.Origin, "bytes", len(data))
	c.Data = data
	return c, true, nil
}

func (l *Lazy) Kind(name string) (manifest.Kind, bool) {
	e, ok := l.manifest.Get(name)
	return e.Kind, ok
}

func (l *Lazy) Names() []string {
	return l.manifest.Names()
}

func (l *Lazy) HasKind(k manifest.Kind) bool {
	return l.manifest.HasKind(k)
}
