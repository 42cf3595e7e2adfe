package cli

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-luamount/bundle"
	"github.com/robbyt/go-luamount/engines/fennel"
	"github.com/spf13/cobra"
	lua "github.com/yuin/gopher-lua"
)

func (a *app) newBuildCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile a manifest into a bundle",
		Long: `Compile every Fennel module of a manifest and write the result, together
with the Lua and macro sources, to a bundle file.

The compiler is taken from the manifest when it carries a "fennel" module,
otherwise from --fennel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "bundle file to write")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, output string) error {
	h := a.handler(cmd)
	logger := slog.New(h)

	src, err := a.fennelSource()
	if err != nil {
		return err
	}
	m, err := a.resolve(cmd, h, src)
	if err != nil {
		return err
	}

	engine, err := fennel.New(fennel.WithLogHandler(h))
	if err != nil {
		return err
	}
	opts := []bundle.Option{
		bundle.WithFs(a.fs),
		bundle.WithMacroHost(engine),
		bundle.WithLogHandler(h),
	}
	if _, ok := m.Get("fennel"); !ok && src != nil {
		opts = append(opts, bundle.WithStateSetup(func(L *lua.LState) error {
			return engine.Mount(L, src)
		}))
	}

	b, err := bundle.Build(cmd.Context(), m, engine, opts...)
	if err != nil {
		return err
	}
	out := a.abs(output)
	if err := bundle.Write(a.fs, out, b); err != nil {
		return err
	}

	size := int64(0)
	if info, err := a.fs.Stat(out); err == nil {
		size = info.Size()
	}
	logger.Debug("Bundle written", "path", out, "bytes", size)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: manifest %s, %d modules, %d compiled, %d bytes\n",
		out, b.ManifestID, len(b.Modules), len(b.Compiled), size)
	return nil
}
