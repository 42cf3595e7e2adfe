package compile

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/robbyt/go-luamount/manifest"
	"github.com/robbyt/go-luamount/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func quiet() Option {
	return WithLogHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func content(name, data string) store.Content {
	return store.Content{Name: name, Kind: manifest.KindCompile, Data: []byte(data), Origin: "/proj/" + name + ".fnl"}
}

func TestParseError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		msg  string
		want *Error
	}{
		{
			name: "full location",
			msg:  "kiwi/utils.fnl:3:5: Parse error: unexpected closing delimiter )",
			want: &Error{
				Module:   "kiwi.utils",
				Message:  "Parse error: unexpected closing delimiter )",
				Location: Location{File: "kiwi/utils.fnl", Line: 3, Column: 5},
			},
		},
		{
			name: "unknown column",
			msg:  "kiwi/utils.fnl:7:? Compile error: unknown identifier: frob\n\n* Try looking for a typo.",
			want: &Error{
				Module:   "kiwi.utils",
				Message:  "Compile error: unknown identifier: frob\n\n* Try looking for a typo.",
				Location: Location{File: "kiwi/utils.fnl", Line: 7},
			},
		},
		{
			name: "no location",
			msg:  "compiler exploded",
			want: &Error{Module: "kiwi.utils", Message: "compiler exploded"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseError("kiwi.utils", tc.msg)
			assert.Equal(t, tc.want, got)
			assert.ErrorIs(t, got, ErrCompile)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	e := &Error{Module: "kiwi.utils", Message: "boom", Location: Location{File: "u.fnl", Line: 2, Column: 4}}
	assert.Equal(t, "compile kiwi.utils: u.fnl:2:4: boom", e.Error())

	e.Location.Column = 0
	assert.Equal(t, "compile kiwi.utils: u.fnl:2: boom", e.Error())

	e.Location = Location{}
	assert.Equal(t, "compile kiwi.utils: boom", e.Error())
}

func TestOnDemand(t *testing.T) {
	t.Parallel()

	t.Run("compiles on every request without memoization", func(t *testing.T) {
		mc := new(MockCompiler)
		mc.On("Compile", mock.Anything, []byte("(+ 1 2)"), "kiwi.utils").Return("return 1 + 2", nil).Twice()

		p, err := NewOnDemand(mc, quiet())
		require.NoError(t, err)

		for range 2 {
			out, err := p.Compile(nil, content("kiwi.utils", "(+ 1 2)"))
			require.NoError(t, err)
			assert.Equal(t, "return 1 + 2", out)
		}
		mc.AssertExpectations(t)
	})

	t.Run("memoizes by name and source digest", func(t *testing.T) {
		mc := new(MockCompiler)
		mc.On("Compile", mock.Anything, []byte("(+ 1 2)"), "kiwi.utils").Return("return 1 + 2", nil).Once()
		mc.On("Compile", mock.Anything, []byte("(+ 1 3)"), "kiwi.utils").Return("return 1 + 3", nil).Once()
		mc.On("Compile", mock.Anything, []byte("(+ 1 2)"), "kiwi.other").Return("return 1 + 2 -- other", nil).Once()

		p, err := NewOnDemand(mc, WithMemoize(true), quiet())
		require.NoError(t, err)

		for range 3 {
			out, err := p.Compile(nil, content("kiwi.utils", "(+ 1 2)"))
			require.NoError(t, err)
			assert.Equal(t, "return 1 + 2", out)
		}

		out, err := p.Compile(nil, content("kiwi.utils", "(+ 1 3)"))
		require.NoError(t, err)
		assert.Equal(t, "return 1 + 3", out)

		out, err = p.Compile(nil, content("kiwi.other", "(+ 1 2)"))
		require.NoError(t, err)
		assert.Equal(t, "return 1 + 2 -- other", out)

		mc.AssertExpectations(t)
	})

	t.Run("compile errors pass through", func(t *testing.T) {
		diag := &Error{Module: "kiwi.utils", Message: "Parse error", Location: Location{File: "u.fnl", Line: 1}}
		mc := new(MockCompiler)
		mc.On("Compile", mock.Anything, mock.Anything, "kiwi.utils").Return("", diag)

		p, err := NewOnDemand(mc, WithMemoize(true), quiet())
		require.NoError(t, err)

		_, err = p.Compile(nil, content("kiwi.utils", "(("))
		require.ErrorIs(t, err, ErrCompile)
		var got *Error
		require.ErrorAs(t, err, &got)
		assert.Same(t, diag, got)
	})

	t.Run("other errors become compile errors", func(t *testing.T) {
		mc := new(MockCompiler)
		mc.On("Compile", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("fennel not found"))

		p, err := NewOnDemand(mc, quiet())
		require.NoError(t, err)

		_, err = p.Compile(nil, content("kiwi.utils", "(fn [])"))
		require.ErrorIs(t, err, ErrCompile)
		var got *Error
		require.ErrorAs(t, err, &got)
		assert.Equal(t, "/proj/kiwi.utils.fnl", got.Location.File)
		assert.Contains(t, got.Message, "fennel not found")
	})

	t.Run("compiler func adapter", func(t *testing.T) {
		var seen string
		p, err := NewOnDemand(CompilerFunc(func(_ *lua.LState, src []byte, name string) (string, error) {
			seen = name
			return "return " + string(src), nil
		}), quiet())
		require.NoError(t, err)

		out, err := p.Compile(nil, content("answer", "42"))
		require.NoError(t, err)
		assert.Equal(t, "return 42", out)
		assert.Equal(t, "answer", seen)
	})

	t.Run("requires a compiler", func(t *testing.T) {
		_, err := NewOnDemand(nil)
		require.ErrorIs(t, err, ErrNoCompiler)

		_, err = NewOnDemand(new(MockCompiler), WithLogHandler(nil))
		require.ErrorIs(t, err, ErrBadOption)
	})
}

func TestAhead(t *testing.T) {
	t.Parallel()

	cache := NewCache(map[string]string{"kiwi.utils": "return {}"})
	p, err := NewAhead(cache, quiet())
	require.NoError(t, err)

	out, err := p.Compile(nil, store.Content{Name: "kiwi.utils", Kind: manifest.KindCompile})
	require.NoError(t, err)
	assert.Equal(t, "return {}", out)

	_, err = p.Compile(nil, store.Content{Name: "kiwi.dine", Kind: manifest.KindCompile})
	require.ErrorIs(t, err, ErrInconsistent)
	require.NotErrorIs(t, err, ErrCompile)

	_, err = NewAhead(nil)
	require.ErrorIs(t, err, ErrInconsistent)
}

func TestCache(t *testing.T) {
	t.Parallel()

	src := map[string]string{"b": "return 2", "a": "return 1"}
	c := NewCache(src)
	src["c"] = "return 3"

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Names())

	entries := c.Entries()
	entries["a"] = "changed"
	out, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "return 1", out)
}
