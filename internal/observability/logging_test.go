package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestFromContext_Empty(t *testing.T) {
	assert.Equal(t, LogContext{}, FromContext(context.Background()))
	assert.Empty(t, Attrs(context.Background()))
}

func TestWithValues_Accumulate(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b-1")
	ctx = WithStage(ctx, "scan")
	ctx = WithRequestID(ctx, "r-9")

	assert.Equal(t, LogContext{BuildID: "b-1", Stage: "scan", RequestID: "r-9"}, FromContext(ctx))

	ctx = WithStage(ctx, "search")
	assert.Equal(t, "search", FromContext(ctx).Stage)
	assert.Equal(t, "b-1", FromContext(ctx).BuildID)
}

func TestInfoContext_EmitsContextAttributes(t *testing.T) {
	buf := captureLogs(t)
	ctx := WithStage(WithBuildID(context.Background(), "b-2"), "routes")

	InfoContext(ctx, "stage finished", slog.Int("count", 3))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "stage finished", line["msg"])
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "b-2", line["build.id"])
	assert.Equal(t, "routes", line["stage"])
	assert.InDelta(t, 3, line["count"], 0)
	assert.NotContains(t, line, "request.id")
}

func TestLevels(t *testing.T) {
	buf := captureLogs(t)
	ctx := context.Background()
	DebugContext(ctx, "d")
	WarnContext(ctx, "w")
	ErrorContext(ctx, "e")

	dec := json.NewDecoder(buf)
	var levels []string
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		levels = append(levels, line["level"].(string))
	}
	assert.Equal(t, []string{"DEBUG", "WARN", "ERROR"}, levels)
}
