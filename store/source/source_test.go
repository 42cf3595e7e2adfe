package source

import (
	"errors"
	"io"
	"testing"

	"github.com/robbyt/go-luamount/manifest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }
func (failingReader) Close() error             { return nil }

func TestNewFromDisk(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/a.lua", []byte("return 1"), 0o644))

	t.Run("valid paths", func(t *testing.T) {
		for _, p := range []string{"/proj/a.lua", "file:///proj/a.lua", "/proj/./a.lua"} {
			src, err := NewFromDisk(fs, p)
			require.NoError(t, err, p)
			assert.Equal(t, "/proj/a.lua", src.Path())
			assert.Equal(t, "file", src.GetSourceURL().Scheme)
		}
	})

	t.Run("rejected paths", func(t *testing.T) {
		cases := []struct {
			path    string
			wantErr error
		}{
			{"https://example.com/a.lua", ErrSchemeUnsupported},
			{"a.lua", ErrNotAvailable},
			{"../a.lua", ErrNotAvailable},
			{"/", ErrNotAvailable},
		}
		for _, tc := range cases {
			_, err := NewFromDisk(fs, tc.path)
			require.ErrorIs(t, err, tc.wantErr, tc.path)
		}

		_, err := NewFromDisk(nil, "/proj/a.lua")
		require.ErrorIs(t, err, ErrNotAvailable)
	})

	t.Run("reads current content", func(t *testing.T) {
		src, err := NewFromDisk(fs, "/proj/a.lua")
		require.NoError(t, err)

		data, err := ReadAll(src)
		require.NoError(t, err)
		assert.Equal(t, "return 1", string(data))

		require.NoError(t, afero.WriteFile(fs, "/proj/a.lua", []byte("return 2"), 0o644))
		data, err = ReadAll(src)
		require.NoError(t, err)
		assert.Equal(t, "return 2", string(data))
		assert.Contains(t, src.String(), "SHA256")
	})

	t.Run("missing file", func(t *testing.T) {
		src, err := NewFromDisk(fs, "/proj/gone.lua")
		require.NoError(t, err)
		_, err = ReadAll(src)
		require.ErrorIs(t, err, ErrNotAvailable)
		assert.NotContains(t, src.String(), "SHA256")
	})
}

func TestNewFromBytes(t *testing.T) {
	t.Parallel()

	src, err := NewFromBytes("kiwi.version", []byte("return '1.0'"))
	require.NoError(t, err)
	assert.Equal(t, "bytes", src.GetSourceURL().Scheme)
	assert.Contains(t, src.GetSourceURL().Path, "kiwi.version@")

	data, err := ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "return '1.0'", string(data))

	empty, err := NewFromBytes("empty", []byte{})
	require.NoError(t, err)
	data, err = ReadAll(empty)
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = NewFromBytes("", []byte("x"))
	require.ErrorIs(t, err, ErrNotAvailable)
	_, err = NewFromBytes("nil", nil)
	require.ErrorIs(t, err, ErrNotAvailable)
}

func TestForEntry(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()

	src, err := ForEntry(fs, manifest.Entry{Name: "a", Kind: manifest.KindNative, Path: "/proj/a.lua"})
	require.NoError(t, err)
	assert.IsType(t, &FromDisk{}, src)

	src, err = ForEntry(fs, manifest.Entry{Name: "b", Kind: manifest.KindNative, Inline: []byte("return 1")})
	require.NoError(t, err)
	assert.IsType(t, &FromBytes{}, src)

	_, err = ForEntry(fs, manifest.Entry{Name: "c", Kind: manifest.KindLoader, Opener: "sym"})
	require.ErrorIs(t, err, ErrNotAvailable)
}

func TestReadAllErrors(t *testing.T) {
	t.Parallel()

	t.Run("reader error", func(t *testing.T) {
		m := new(MockSource)
		m.On("GetReader").Return(nil, ErrNotAvailable)
		_, err := ReadAll(m)
		require.ErrorIs(t, err, ErrNotAvailable)
		m.AssertExpectations(t)
	})

	t.Run("read error", func(t *testing.T) {
		m := new(MockSource)
		m.On("GetReader").Return(io.ReadCloser(failingReader{}), nil)
		m.On("GetSourceURL").Return(nil)
		_, err := ReadAll(m)
		require.ErrorContains(t, err, "disk on fire")
	})

	t.Run("content helper", func(t *testing.T) {
		m := NewMockSourceWithContent([]byte("return 3"))
		data, err := ReadAll(m)
		require.NoError(t, err)
		assert.Equal(t, "return 3", string(data))
		m.AssertCalled(t, "GetReader")
		m.AssertNotCalled(t, "GetSourceURL")
	})
}
