package manifest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContributor map[string][]Entry

func (f fakeContributor) Contribute(id string, _ map[string]string) ([]Entry, error) {
	entries, ok := f[id]
	if !ok {
		return nil, errors.New("unknown loader")
	}
	return entries, nil
}

func native(name, path string) Entry {
	return Entry{Name: name, Kind: KindNative, Path: path}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("last write wins at first position", func(t *testing.T) {
		m, err := New(
			native("a", "/p/a1.lua"),
			native("b", "/p/b.lua"),
			native("a", "/p/a2.lua"),
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, m.Names())

		a, ok := m.Get("a")
		require.True(t, ok)
		assert.Equal(t, "/p/a2.lua", a.Path)
	})

	t.Run("empty manifest", func(t *testing.T) {
		m, err := New()
		require.NoError(t, err)
		assert.Equal(t, 0, m.Len())
		_, ok := m.Get("anything")
		assert.False(t, ok)
		assert.NotEmpty(t, m.ID())
	})

	t.Run("rejects invalid entries", func(t *testing.T) {
		_, err := New(Entry{Name: "x", Kind: KindNative})
		require.ErrorIs(t, err, ErrConfig)
		require.ErrorIs(t, err, ErrInvalidDeclaration)

		_, err = New(Entry{Name: "x", Path: "/p/x"})
		require.ErrorIs(t, err, ErrUnknownModuleKind)
	})

	t.Run("id follows content", func(t *testing.T) {
		m1, err := New(native("a", "/p/a.lua"))
		require.NoError(t, err)
		m2, err := New(native("a", "/p/a.lua"))
		require.NoError(t, err)
		m3, err := New(native("a", "/p/other.lua"))
		require.NoError(t, err)

		assert.Equal(t, m1.ID(), m2.ID())
		assert.NotEqual(t, m1.ID(), m3.ID())
		assert.Equal(t, m1.ID(), m1.WithDoc("docs").ID())
	})

	t.Run("entries are a copy", func(t *testing.T) {
		m, err := New(native("a", "/p/a.lua"))
		require.NoError(t, err)
		entries := m.Entries()
		entries[0].Name = "changed"
		assert.Equal(t, []string{"a"}, m.Names())
	})
}

func TestMerge(t *testing.T) {
	t.Parallel()

	left, err := New(native("a", "/l/a.lua"), native("b", "/l/b.lua"))
	require.NoError(t, err)
	right, err := New(native("c", "/r/c.lua"), native("a", "/r/a.lua"))
	require.NoError(t, err)

	merged := left.Merge(right)
	assert.Equal(t, []string{"a", "b", "c"}, merged.Names())
	a, _ := merged.Get("a")
	assert.Equal(t, "/r/a.lua", a.Path)

	// inputs are untouched
	a, _ = left.Get("a")
	assert.Equal(t, "/l/a.lua", a.Path)
	assert.Equal(t, 2, right.Len())
}

func TestBuilder(t *testing.T) {
	t.Parallel()
	pt := newTable(t)

	contrib := fakeContributor{
		"fennel": {{Name: "fennel", Kind: KindNative, Inline: []byte("return {}")}},
	}

	t.Run("contributions splice in order", func(t *testing.T) {
		m, err := NewBuilder(pt, contrib).
			Doc("kiwi modules").
			Declare(Declaration{Path: "kiwi/utils.fnl"}).
			Contribute("fennel", nil).
			Declare(Declaration{Path: "kiwi/dine/init.fnl"}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"kiwi.utils", "fennel", "kiwi.dine"}, m.Names())
		assert.Equal(t, "kiwi modules", m.Doc())
	})

	t.Run("later declaration overrides a contribution", func(t *testing.T) {
		m, err := NewBuilder(pt, contrib).
			Contribute("fennel", nil).
			Declare(Declaration{Name: "fennel", Path: "vendor/fennel.lua"}).
			Build()
		require.NoError(t, err)
		e, ok := m.Get("fennel")
		require.True(t, ok)
		assert.False(t, e.IsInline())
		assert.Contains(t, e.Path, "vendor")
	})

	t.Run("include merges another manifest", func(t *testing.T) {
		other, err := New(native("extra", "/proj/extra.lua"))
		require.NoError(t, err)
		m, err := NewBuilder(pt, nil).Include(other).Declare(Declaration{Path: "a.lua"}).Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"extra", "a"}, m.Names())
	})

	t.Run("errors are collected", func(t *testing.T) {
		_, err := NewBuilder(pt, contrib).
			Declare(Declaration{Path: "../x.lua"}).
			Contribute("missing", nil).
			Build()
		require.ErrorIs(t, err, ErrInvalidPath)
		assert.Contains(t, err.Error(), `loader "missing"`)
	})

	t.Run("loader without registry", func(t *testing.T) {
		_, err := NewBuilder(pt, nil).Contribute("fennel", nil).Build()
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("declarations without table", func(t *testing.T) {
		_, err := NewBuilder(nil, nil).Declare(Declaration{Path: "a.lua"}).Build()
		require.ErrorIs(t, err, ErrConfig)
	})
}

func TestScope(t *testing.T) {
	t.Parallel()

	m1, err := New(native("a", "/p/a.lua"))
	require.NoError(t, err)
	m2, err := New(native("b", "/p/b.lua"))
	require.NoError(t, err)

	t.Run("single manifest resolves without id", func(t *testing.T) {
		s := NewScope()
		require.NoError(t, s.Define("", m1))
		got, err := s.Resolve("")
		require.NoError(t, err)
		assert.Same(t, m1, got)
	})

	t.Run("several manifests need an id", func(t *testing.T) {
		s := NewScope()
		require.NoError(t, s.Define("app", m1))
		require.NoError(t, s.Define("tools", m2))

		_, err := s.Resolve("")
		require.ErrorIs(t, err, ErrAmbiguousManifest)
		assert.Contains(t, err.Error(), "app, tools")

		got, err := s.Resolve("tools")
		require.NoError(t, err)
		assert.Same(t, m2, got)
		assert.Equal(t, []string{"app", "tools"}, s.IDs())
	})

	t.Run("missing and duplicate ids", func(t *testing.T) {
		s := NewScope()
		_, err := s.Resolve("")
		require.ErrorIs(t, err, ErrManifestNotFound)

		require.NoError(t, s.Define("app", m1))
		_, err = s.Resolve("web")
		require.ErrorIs(t, err, ErrManifestNotFound)
		require.ErrorIs(t, s.Define("app", m2), ErrDuplicateManifest)
		require.ErrorIs(t, s.Define("nil", nil), ErrConfig)
	})
}
