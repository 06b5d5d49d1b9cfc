package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithLogger(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	assert.Nil(t, FromContext(context.Background()))
	assert.Equal(t, context.Background(), ContextWithLogger(context.Background(), nil))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, slog.LevelWarn, "json")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "train_name", "tomo")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"train_name":"tomo"`)

	buf.Reset()
	logger, err = New(&buf, slog.LevelInfo, "text")
	require.NoError(t, err)
	logger.Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")

	_, err = New(&buf, slog.LevelInfo, "xml")
	assert.Error(t, err)
}
