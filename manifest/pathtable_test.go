package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T) *PathTable {
	t.Helper()
	pt, err := NewPathTable("/proj")
	require.NoError(t, err)
	return pt
}

func TestNewPathTable(t *testing.T) {
	t.Parallel()

	_, err := NewPathTable("  ")
	require.ErrorIs(t, err, ErrInvalidPath)

	pt, err := NewPathTable("/proj/./src/..")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/proj"), pt.Root())
}

func TestPathTableResolve(t *testing.T) {
	t.Parallel()
	pt := newTable(t)

	cases := []struct {
		name string
		decl Declaration
		want Entry
	}{
		{
			name: "name derived from path",
			decl: Declaration{Path: "kiwi/utils.fnl"},
			want: Entry{Name: "kiwi.utils", Kind: KindCompile, Path: "/proj/kiwi/utils.fnl"},
		},
		{
			name: "init collapses to directory",
			decl: Declaration{Path: "kiwi/dine/init.fnl"},
			want: Entry{Name: "kiwi.dine", Kind: KindCompile, Path: "/proj/kiwi/dine/init.fnl"},
		},
		{
			name: "init-macros collapses to directory",
			decl: Declaration{Path: "kiwi/init-macros.fnl"},
			want: Entry{Name: "kiwi", Kind: KindMacro, Path: "/proj/kiwi/init-macros.fnl"},
		},
		{
			name: "explicit name",
			decl: Declaration{Name: "kiwi.helpers", Path: "lib/helpers.lua"},
			want: Entry{Name: "kiwi.helpers", Kind: KindNative, Path: "/proj/lib/helpers.lua"},
		},
		{
			name: "absolute path inside root",
			decl: Declaration{Path: "/proj/kiwi/macros.fnlm"},
			want: Entry{Name: "kiwi.macros", Kind: KindMacro, Path: "/proj/kiwi/macros.fnlm"},
		},
		{
			name: "explicit type wins over extension",
			decl: Declaration{Path: "kiwi/macros.fnl", Type: KindMacro},
			want: Entry{Name: "kiwi.macros", Kind: KindMacro, Path: "/proj/kiwi/macros.fnl"},
		},
		{
			name: "explicit type makes unknown extension usable",
			decl: Declaration{Path: "kiwi/view.tmpl", Type: KindNative},
			want: Entry{Name: "kiwi.view", Kind: KindNative, Path: "/proj/kiwi/view.tmpl"},
		},
		{
			name: "inline text",
			decl: Declaration{Name: "kiwi.version", Text: "return '1.0'", Type: KindNative},
			want: Entry{Name: "kiwi.version", Kind: KindNative, Inline: []byte("return '1.0'")},
		},
		{
			name: "opener implies loader",
			decl: Declaration{Name: "kiwi.native", Opener: "kiwi.Native"},
			want: Entry{Name: "kiwi.native", Kind: KindLoader, Opener: "kiwi.Native"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := pt.Resolve(tc.decl)
			require.NoError(t, err)
			require.Len(t, got, 1)
			want := tc.want
			if want.Path != "" {
				want.Path = filepath.FromSlash(want.Path)
			}
			assert.Equal(t, want, got[0])
		})
	}
}

func TestPathTableResolveErrors(t *testing.T) {
	t.Parallel()
	pt := newTable(t)

	cases := []struct {
		name    string
		decl    Declaration
		wantErr error
	}{
		{"parent traversal", Declaration{Path: "../etc/passwd.lua"}, ErrInvalidPath},
		{"nested traversal", Declaration{Path: "kiwi/../../x.fnl"}, ErrInvalidPath},
		{"absolute outside root", Declaration{Path: "/other/x.fnl"}, ErrInvalidPath},
		{"root itself", Declaration{Path: "."}, ErrInvalidPath},
		{"root init has no name", Declaration{Path: "init.fnl"}, ErrInvalidPath},
		{"unknown extension", Declaration{Path: "kiwi/readme.md"}, ErrUnknownModuleKind},
		{"no extension", Declaration{Path: "kiwi/utils"}, ErrUnknownModuleKind},
		{"nothing declared", Declaration{Name: "x"}, ErrInvalidDeclaration},
		{"path and text", Declaration{Name: "x", Path: "x.lua", Text: "return 1", Type: KindNative}, ErrInvalidDeclaration},
		{"text without type", Declaration{Name: "x", Text: "return 1"}, ErrInvalidDeclaration},
		{"text without name", Declaration{Text: "return 1", Type: KindNative}, ErrInvalidDeclaration},
		{"loader without opener", Declaration{Name: "x", Type: KindLoader}, ErrInvalidDeclaration},
		{"opener on lua module", Declaration{Name: "x", Opener: "sym", Type: KindNative}, ErrInvalidDeclaration},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pt.Resolve(tc.decl)
			require.ErrorIs(t, err, tc.wantErr)
			require.ErrorIs(t, err, ErrConfig)
		})
	}

	t.Run("collects every failure", func(t *testing.T) {
		_, err := pt.Resolve(
			Declaration{Path: "../a.lua"},
			Declaration{Path: "ok.lua"},
			Declaration{Path: "b.md"},
		)
		require.ErrorIs(t, err, ErrInvalidPath)
		require.ErrorIs(t, err, ErrUnknownModuleKind)
		assert.Contains(t, err.Error(), "declaration 0")
		assert.Contains(t, err.Error(), "declaration 2")
		assert.NotContains(t, err.Error(), "declaration 1")
	})
}

func TestDeriveName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"utils.lua":                 "utils",
		"kiwi/utils.fnl":            "kiwi.utils",
		"kiwi/dine/init.fnl":        "kiwi.dine",
		"kiwi/dine/init-macros.fnl": "kiwi.dine",
		"kiwi/a.b.fnl":              "kiwi.a.b",
	}
	for in, want := range cases {
		got, err := DeriveName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := DeriveName("init-macros.fnl")
	require.ErrorIs(t, err, ErrInvalidPath)
}
