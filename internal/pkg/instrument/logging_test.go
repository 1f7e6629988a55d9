package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging_MasksConfiguredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "otp-companion", nil, []string{"code", "Phone_Number"}, slog.LevelDebug))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "verify requested",
		"code", "123456",
		"phone_number", "+966500000000",
		"body", `{"phone_number":"+966500000000","channel":"sms"}`,
	)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "***", line["code"])
	assert.Equal(t, "***", line["phone_number"])
	assert.JSONEq(t, `{"phone_number":"***","channel":"sms"}`, line["body"].(string))
	assert.Equal(t, "cid-1", line["_cID"])
	assert.Equal(t, "otp-companion", line["service"])
	assert.Equal(t, "INFO", line["severity"])
}

func TestLogging_WithAttrsKeepsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "svc", nil, nil, slog.LevelInfo)).With("module", "verification")

	logger.InfoContext(SetCorrelationID(context.Background(), "abc"), "hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc", line["_cID"])
	assert.Equal(t, "verification", line["module"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "x", GetCorrelationID(SetCorrelationID(context.Background(), "x")))
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "otpterm", []string{"code"}, "warn")

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept", "code", "123456")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "***", line["code"])
}
