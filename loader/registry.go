package loader

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/robbyt/go-luamount/internal/helpers"
	"github.com/robbyt/go-luamount/manifest"
)

// Args are the string parameters a manifest passes to a loader reference.
type Args map[string]string

// Get returns the argument or def when it is missing or empty.
func (a Args) Get(key, def string) string {
	if v, ok := a[key]; ok && v != "" {
		return v
	}
	return def
}

// Func contributes manifest entries for a loader reference. It runs once,
// while the manifest is being built.
type Func func(args Args) ([]manifest.Entry, error)

// Registry resolves loader identifiers in two tiers. Loaders registered with
// WithLoader always win; otherwise the static table maps the identifier to a
// symbol, which is looked up in the catalog the host provides.
type Registry struct {
	explicit map[string]Func
	static   map[string]string
	catalog  map[string]Func

	logHandler slog.Handler
	logger     *slog.Logger
}

// NewRegistry builds a registry. Static table entries whose symbol is not in
// the catalog are logged and only fail when something references them.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		explicit: make(map[string]Func),
		static:   make(map[string]string),
		catalog:  make(map[string]Func),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadOption, err)
		}
	}
	r.logHandler, r.logger = helpers.ResolveLogger(r.logHandler, r.logger, "loader", "Registry")

	for _, id := range slices.Sorted(maps.Keys(r.static)) {
		sym := r.static[id]
		if _, ok := r.catalog[sym]; !ok {
			r.logger.Warn("Static loader symbol not in catalog", "id", id, "symbol", sym)
		}
	}
	return r, nil
}

func (r *Registry) String() string {
	return fmt.Sprintf("loader.Registry{Explicit: %d, Static: %d}", len(r.explicit), len(r.static))
}

// Resolve finds the contribution for id.
func (r *Registry) Resolve(id string) (Func, error) {
	if fn, ok := r.explicit[id]; ok {
		return fn, nil
	}
	sym, ok := r.static[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLoader, id)
	}
	fn, ok := r.catalog[sym]
	if !ok {
		return nil, fmt.Errorf("%w: %q maps to symbol %q which is not available", ErrUnknownLoader, id, sym)
	}
	return fn, nil
}

// Contribute resolves id and runs its contribution.
func (r *Registry) Contribute(id string, args map[string]string) ([]manifest.Entry, error) {
	fn, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}
	entries, err := fn(Args(args))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrLoaderFailed, id, err)
	}
	r.logger.Debug("Loader contributed modules", "id", id, "count", len(entries))
	return entries, nil
}

// Identifiers lists every id the registry can resolve, sorted.
func (r *Registry) Identifiers() []string {
	ids := make(map[string]struct{}, len(r.explicit)+len(r.static))
	for id := range r.explicit {
		ids[id] = struct{}{}
	}
	for id, sym := range r.static {
		if _, ok := r.catalog[sym]; ok {
			ids[id] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(ids))
}
