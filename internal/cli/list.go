package cli

import (
	"fmt"
	"io"

	"github.com/robbyt/go-luamount/bundle"
	"github.com/robbyt/go-luamount/manifest"
	"github.com/spf13/cobra"
)

func (a *app) newListCmd() *cobra.Command {
	var bundlePath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the modules of a manifest or a bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bundlePath != "" {
				return a.listBundle(cmd.OutOrStdout(), bundlePath)
			}
			return a.listManifest(cmd)
		},
	}
	cmd.Flags().StringVar(&bundlePath, "bundle", "", "list a bundle file instead of the project")
	return cmd
}

func (a *app) listManifest(cmd *cobra.Command) error {
	src, err := a.fennelSource()
	if err != nil {
		return err
	}
	m, err := a.resolve(cmd, a.handler(cmd), src)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)
	title := "# manifest " + m.ID()
	if doc := m.Doc(); doc != "" {
		title += ": " + doc
	}
	fmt.Fprintln(out, st.title.Render(title))

	t := st.table("NAME", "KIND", "ORIGIN")
	for _, e := range m.Entries() {
		t.Row(e.Name, e.Kind.String(), e.Origin())
	}
	_, err = fmt.Fprintln(out, t.Render())
	return err
}

func (a *app) listBundle(out io.Writer, path string) error {
	b, err := bundle.Read(a.fs, a.abs(path))
	if err != nil {
		return err
	}

	st := newStyles(out)
	title := fmt.Sprintf("# bundle %s, manifest %s", path, b.ManifestID)
	if b.Compiler != "" {
		title += ", compiler " + b.Compiler
	}
	fmt.Fprintln(out, st.title.Render(title))

	t := st.table("NAME", "KIND", "CONTENT")
	for _, mod := range b.Modules {
		var content string
		switch mod.Kind {
		case manifest.KindCompile:
			content = fmt.Sprintf("%d bytes compiled", len(b.Compiled[mod.Name]))
		case manifest.KindLoader:
			content = "opener " + mod.Opener
		default:
			content = fmt.Sprintf("%d bytes", len(mod.Data))
		}
		t.Row(mod.Name, mod.Kind.String(), content)
	}
	_, err = fmt.Fprintln(out, t.Render())
	return err
}
