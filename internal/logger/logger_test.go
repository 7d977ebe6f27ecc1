package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level, format string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	InitializeWithWriter(&buf, level, format)
	t.Cleanup(func() { Initialize("info", "text") })
	return &buf
}

func TestEvent(t *testing.T) {
	buf := capture(t, "info", "json")

	Event(context.Background(), "booking.completed", "booking_id", "bk-1", "total", 7000)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "domain event", line["msg"])
	assert.Equal(t, "booking.completed", line["event"])
	assert.Equal(t, "bk-1", line["booking_id"])
	assert.Equal(t, float64(7000), line["total"])
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "warn", "text")

	Debug("hidden")
	Info("hidden too")
	EnterMethod("svc.Do")
	Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "svc.Do")
	assert.Contains(t, out, "shown")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestResultHelpersLogErrors(t *testing.T) {
	buf := capture(t, "error", "text")

	DatabaseResult("UpdateBooking", 0, nil)
	assert.Empty(t, buf.String())

	DatabaseResult("UpdateBooking", 0, errors.New("connection reset"))
	ExternalServiceResult("amqp", "publish", errors.New("channel closed"))
	assert.Contains(t, buf.String(), "connection reset")
	assert.Contains(t, buf.String(), "channel closed")
}

func TestWithBooking(t *testing.T) {
	buf := capture(t, "debug", "text")
	WithBooking("bk-9").Info("settled")
	assert.Contains(t, buf.String(), "booking_id=bk-9")
}

func TestContextHelpersRespectLevel(t *testing.T) {
	buf := capture(t, "warn", "text")
	ctx := context.Background()

	DebugContext(ctx, "noise")
	WarnContext(ctx, "conflict", "kind", "concurrent_modification")
	ErrorContext(ctx, "boom")

	out := buf.String()
	assert.NotContains(t, out, "noise")
	assert.Contains(t, out, "kind=concurrent_modification")
	assert.Contains(t, out, "level=ERROR")
}
