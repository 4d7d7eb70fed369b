package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "littleAI-face", cfg.DeviceName)
	assert.Equal(t, 5, cfg.RenderTickMs)
	assert.Equal(t, 50*time.Millisecond, cfg.CommandLockTimeout)
	assert.Equal(t, 10*time.Millisecond, cfg.RenderLockTimeout)
	assert.Equal(t, 16384, cfg.MaxPayloadBytes)
	assert.Equal(t, 8, cfg.MaxFeedClients)
	assert.Equal(t, 16000, cfg.AudioSampleRate)
	assert.Equal(t, 75, cfg.AudioVolumePercent)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RENDER_TICK_MS", "16")
	t.Setenv("COMMAND_LOCK_TIMEOUT_MS", "100")
	t.Setenv("AUDIO_VOLUME", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 16, cfg.RenderTickMs)
	assert.Equal(t, 100*time.Millisecond, cfg.CommandLockTimeout)
	assert.Equal(t, 30, cfg.AudioVolumePercent)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"tick too small", "RENDER_TICK_MS", "0"},
		{"tick too large", "RENDER_TICK_MS", "5000"},
		{"tick not a number", "RENDER_TICK_MS", "fast"},
		{"command lock zero", "COMMAND_LOCK_TIMEOUT_MS", "0"},
		{"render lock zero", "RENDER_LOCK_TIMEOUT_MS", "0"},
		{"payload cap tiny", "MAX_PAYLOAD_BYTES", "8"},
		{"no feed clients", "MAX_FEED_CLIENTS", "0"},
		{"sample rate low", "AUDIO_SAMPLE_RATE", "4000"},
		{"volume over", "AUDIO_VOLUME", "150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
