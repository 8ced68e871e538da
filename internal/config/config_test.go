package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 60*time.Second, cfg.PongWait)
	assert.Equal(t, "drop", cfg.Backpressure)
	assert.Equal(t, "rooms", cfg.NATS.SubjectPrefix)
	assert.Zero(t, cfg.RateLimit.Messages)
}

func TestLoadFile_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
port: 9000
backpressure: kick
rate_limit:
  messages: 5
  interval: 2s
rooms:
  strict_game_type: true
`)
	t.Setenv("ROOMS_NATS_URL", "nats://localhost:4222")
	t.Setenv("ROOMS_PORT", "9100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "kick", cfg.Backpressure)
	assert.Equal(t, 5, cfg.RateLimit.Messages)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.Interval)
	assert.True(t, cfg.Rooms.StrictGameType)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := map[string]string{
		"ping not shorter than pong": "ping_period: 90s\npong_wait: 60s\n",
		"bad port":                   "port: 70000\n",
		"zero send buffer":           "send_buffer: 0\n",
		"malformed yaml":             "port: [\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
