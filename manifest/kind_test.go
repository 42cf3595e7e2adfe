package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want Kind
	}{
		{"kiwi/utils.fnl", KindCompile},
		{"kiwi/utils.lua", KindNative},
		{"kiwi/macros.fnlm", KindMacro},
		{"kiwi/init-macros.fnl", KindMacro},
		{"kiwi/init-macros.lua", KindMacro},
		{"kiwi/init.fnl", KindCompile},
		{"init-macros-extra.fnl", KindCompile},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := InferKind(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("unknown extension", func(t *testing.T) {
		for _, p := range []string{"kiwi/readme.md", "kiwi/Makefile", "kiwi/utils.FNL"} {
			_, err := InferKind(p)
			require.ErrorIs(t, err, ErrUnknownModuleKind, p)
		}
	})
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindNative, KindCompile, KindMacro, KindLoader} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("Fennel-Macros")
	require.NoError(t, err)
	assert.Equal(t, KindMacro, got)

	_, err = ParseKind("python")
	require.ErrorIs(t, err, ErrUnknownModuleKind)
}

func TestKindText(t *testing.T) {
	t.Parallel()

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("lua")))
	assert.Equal(t, KindNative, k)

	text, err := KindMacro.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "fennel-macros", string(text))

	_, err = KindUnknown.MarshalText()
	require.ErrorIs(t, err, ErrUnknownModuleKind)
	assert.Equal(t, "Kind(0)", KindUnknown.String())
}
