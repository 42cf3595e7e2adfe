package loader

import (
	"errors"
	"log/slog"
)

// Option configures a Registry.
type Option func(*Registry) error

// WithLoader registers an explicit loader. Explicit loaders take precedence
// over the static table.
func WithLoader(id string, fn Func) Option {
	return func(r *Registry) error {
		if id == "" || fn == nil {
			return errors.New("loader id and function are required")
		}
		r.explicit[id] = fn
		return nil
	}
}

// WithStaticTable adds identifier to symbol mappings, usually read from the
// project configuration.
func WithStaticTable(table map[string]string) Option {
	return func(r *Registry) error {
		for id, sym := range table {
			if id == "" || sym == "" {
				return errors.New("static loader table entries need an id and a symbol")
			}
			r.static[id] = sym
		}
		return nil
	}
}

// WithCatalog supplies the symbols static table entries may point at.
func WithCatalog(catalog map[string]Func) Option {
	return func(r *Registry) error {
		for sym, fn := range catalog {
			if fn == nil {
				return errors.New("catalog symbol " + sym + " has no function")
			}
			r.catalog[sym] = fn
		}
		return nil
	}
}

func WithLogHandler(handler slog.Handler) Option {
	return func(r *Registry) error {
		if handler == nil {
			return errors.New("log handler cannot be nil")
		}
		r.logHandler = handler
		r.logger = nil
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		r.logger = logger
		r.logHandler = nil
		return nil
	}
}
