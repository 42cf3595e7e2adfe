// Package cli implements the luamount build tool.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/robbyt/go-luamount/config"
	"github.com/robbyt/go-luamount/engines/fennel"
	"github.com/robbyt/go-luamount/loader"
	"github.com/robbyt/go-luamount/manifest"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// FennelSymbol is the catalog symbol a project's [loaders] table uses for
// the compiler passed with --fennel.
const FennelSymbol = "fennel.Source"

// app carries the state shared by every command.
type app struct {
	fs  afero.Fs
	cwd string

	verbose    bool
	cfgFile    string
	manifestID string
	fennelFile string
}

// NewRootCmd builds the command tree over fs. Relative paths are resolved
// against cwd.
func NewRootCmd(fs afero.Fs, cwd string) *cobra.Command {
	a := &app{fs: fs, cwd: cwd}

	root := &cobra.Command{
		Use:   "luamount",
		Short: "Build and inspect Lua module bundles",
		Long: `luamount resolves the manifests declared in luamount.toml, luamount.lua or
luamount.star, compiles their Fennel modules, and writes a bundle that a Go
program embeds to serve the modules without touching the file system.

Examples:
  luamount list
  luamount list --manifest kiwi
  luamount build --fennel vendor/fennel.lua -o dist/kiwi.bundle
  luamount list --bundle dist/kiwi.bundle`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "project configuration (default: first of "+fmt.Sprint(config.FileNames)+" in the working directory)")
	root.PersistentFlags().StringVarP(&a.manifestID, "manifest", "m", "", "manifest id (may be omitted when the project defines one)")
	root.PersistentFlags().StringVar(&a.fennelFile, "fennel", "", "fennel.lua to compile with, available to [loaders] as "+FennelSymbol)

	root.AddCommand(a.newBuildCmd())
	root.AddCommand(a.newListCmd())
	return root
}

// Execute runs the build tool with fang's styling and signal handling.
func Execute(ctx context.Context, version string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return fang.Execute(
		ctx,
		NewRootCmd(afero.NewOsFs(), cwd),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	)
}

func (a *app) handler(cmd *cobra.Command) slog.Handler {
	level := log.InfoLevel
	if a.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: "luamount",
		Level:  level,
	})
}

func (a *app) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.cwd, p)
}

func (a *app) fennelSource() ([]byte, error) {
	if a.fennelFile == "" {
		return nil, nil
	}
	src, err := afero.ReadFile(a.fs, a.abs(a.fennelFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read compiler: %w", err)
	}
	return src, nil
}

// resolve loads the project and returns the selected manifest.
func (a *app) resolve(cmd *cobra.Command, h slog.Handler, fennelSrc []byte) (*manifest.Manifest, error) {
	path := a.abs(a.cfgFile)
	if path == "" {
		var err error
		if path, err = config.Find(a.fs, a.cwd); err != nil {
			return nil, err
		}
	}

	project, err := config.Load(cmd.Context(), a.fs, path, config.WithLogHandler(h))
	if err != nil {
		return nil, err
	}

	catalog := map[string]loader.Func{}
	if fennelSrc != nil {
		catalog[FennelSymbol] = fennel.Source(fennelSrc, "")
	}
	reg, err := project.Registry(catalog, loader.WithLogHandler(h))
	if err != nil {
		return nil, err
	}
	scope, err := project.Build(reg, a.fs)
	if err != nil {
		return nil, err
	}
	return scope.Resolve(a.manifestID)
}
