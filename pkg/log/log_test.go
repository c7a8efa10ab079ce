package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxReturnsStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	Ctx(ctx).Info().Str(FieldRoom, "room1").Msg("stored logger used")

	out := buf.String()
	assert.Contains(t, out, "stored logger used")
	assert.Contains(t, out, "room1")
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	l := Ctx(context.Background())
	require.NotNil(t, l)
	// Level methods chain directly off the returned pointer.
	l.Debug().Str(FieldClientID, "c-1").Msg("fallback logger is usable")
}

func TestLChainsLevelMethods(t *testing.T) {
	require.NotNil(t, L())
	L().Debug().Msg("global logger chains")
}

func TestNewAppliesLevel(t *testing.T) {
	logger := New(Config{Level: "warn", ServiceName: "svc"})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}
