package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/robbyt/go-luamount/internal/helpers"
	"github.com/spf13/afero"
)

// FileNames are the configuration files Find looks for, in order.
var FileNames = []string{"luamount.toml", "luamount.lua", "luamount.star"}

// Find returns the first configuration file present in dir.
func Find(fs afero.Fs, dir string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		ok, err := afero.Exists(fs, p)
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", p, err)
		}
		if ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNotFound, dir, strings.Join(FileNames, ", "))
}

type loadConfig struct {
	logHandler slog.Handler
	logger     *slog.Logger
}

// Option configures Load.
type Option func(*loadConfig) error

func WithLogHandler(handler slog.Handler) Option {
	return func(c *loadConfig) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.logHandler = handler
		c.logger = nil
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *loadConfig) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		c.logHandler = nil
		return nil
	}
}

// Load reads the configuration file at path, choosing the front-end by
// extension. The project root is the file's directory.
func Load(ctx context.Context, fs afero.Fs, path string, opts ...Option) (*Project, error) {
	cfg := &loadConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadOption, err)
		}
	}
	_, logger := helpers.ResolveLogger(cfg.logHandler, cfg.logger, "config", "Load")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	data, err := afero.ReadFile(fs, abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	p := &Project{Root: filepath.Dir(abs)}
	switch ext := filepath.Ext(abs); ext {
	case ".toml":
		err = decodeTOML(data, p)
	case ".lua":
		err = evalLua(ctx, logger, abs, data, p)
	case ".star":
		err = execStarlark(ctx, logger, abs, data, p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	logger.DebugContext(ctx, "Configuration loaded", "path", abs, "manifests", len(p.Manifests))
	return p, nil
}
