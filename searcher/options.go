package searcher

import (
	"errors"
	"log/slog"
)

// Option configures a Searcher.
type Option func(*Searcher) error

// WithOpener binds the Go opener a KindLoader module refers to by symbol.
func WithOpener(symbol string, fn Opener) Option {
	return func(s *Searcher) error {
		if symbol == "" || fn == nil {
			return errors.New("opener symbol and function are required")
		}
		s.openers[symbol] = fn
		return nil
	}
}

// WithOpeners binds several openers at once.
func WithOpeners(openers map[string]Opener) Option {
	return func(s *Searcher) error {
		for sym, fn := range openers {
			if err := WithOpener(sym, fn)(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithMacroHost sets the capability used to install and evaluate macro
// modules.
func WithMacroHost(h MacroHost) Option {
	return func(s *Searcher) error {
		if h == nil {
			return errors.New("macro host cannot be nil")
		}
		s.macros = h
		return nil
	}
}

func WithLogHandler(handler slog.Handler) Option {
	return func(s *Searcher) error {
		if handler == nil {
			return errors.New("log handler cannot be nil")
		}
		s.logHandler = handler
		s.logger = nil
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		s.logHandler = nil
		return nil
	}
}
