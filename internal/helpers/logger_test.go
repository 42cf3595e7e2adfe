package helpers

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("uses provided handler and group", func(t *testing.T) {
		var buf bytes.Buffer
		h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

		handler, logger := SetupLogger(h, "searcher", "Attach")
		require.Equal(t, h, handler)
		logger.Info("attached", "id", "abc")

		assert.Contains(t, buf.String(), "Attach.id=abc")
	})

	t.Run("nil handler gets a default", func(t *testing.T) {
		handler, logger := SetupLogger(nil, "searcher", "")
		require.NotNil(t, handler)
		require.NotNil(t, logger)
	})
}

func TestResolveLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	explicit := slog.New(slog.NewTextHandler(&buf, nil))

	handler, logger := ResolveLogger(nil, explicit, "store", "Lazy")
	require.Same(t, explicit, logger)
	require.Equal(t, explicit.Handler(), handler)
}
