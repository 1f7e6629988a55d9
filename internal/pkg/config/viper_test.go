package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
verification:
  defaults:
    code_length: 6
    resend_cooldown_seconds: 90
    channel: sms
  timing:
    reset_delay_ms: 300
instrument:
  log_mask_fields: code,phone_number
app:
  server:
    cors:
      - http://localhost:3000
      - https://app.example.com
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.GetInt("verification.defaults.code_length"))
	assert.Equal(t, 90*time.Second, cfg.GetSecond("verification.defaults.resend_cooldown_seconds"))
	assert.Equal(t, 300*time.Millisecond, cfg.GetMillisecond("verification.timing.reset_delay_ms"))
	assert.Equal(t, "sms", cfg.GetString("verification.defaults.channel"))
	assert.Equal(t, []string{"code", "phone_number"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.GetArray("app.server.cors"))
	assert.NoError(t, cfg.Close())
}

func TestNewViperFromBytes_EmptyType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sampleYAML))
	assert.Error(t, err)
}

func TestNewViper_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	t.Setenv("OTP_VERIFICATION_DEFAULTS_CHANNEL", "whatsapp")

	cfg, err := NewViper(path)
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", cfg.GetString("verification.defaults.channel"))
	assert.Equal(t, 6, cfg.GetInt("verification.defaults.code_length"))
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
