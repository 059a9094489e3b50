package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json", Component: ComponentHTTP, Output: &buf})
	l.Debug("hello", FieldUserID, 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, ComponentHTTP, rec[FieldComponent])
	assert.EqualValues(t, 7, rec[FieldUserID])
}

func TestWithComponentReplacesTag(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf}).
		With(FieldRequestID, "abc").
		WithComponent(ComponentHTTP).
		With(FieldUserID, 3)
	l.Info("hello")

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, `"component":`), line)
	assert.Contains(t, line, `"component":"http"`)
	assert.Contains(t, line, `"request_id":"abc"`)
	assert.Equal(t, ComponentHTTP, l.Component())
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})
	l.Info("dropped")
	assert.Zero(t, buf.Len())
	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestContextRoundTrip(t *testing.T) {
	l := New(Config{Output: &bytes.Buffer{}}).WithComponent(ComponentAuth)
	ctx := IntoContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Equal(t, ComponentAuth, FromContext(ctx).Component())
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}
