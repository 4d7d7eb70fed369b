package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable of the face service. The per-role lock timeouts
// are explicit here rather than buried as constants: they encode the
// frame-smoothness vs. command-reliability trade-off.
type Config struct {
	AppEnv     string
	Port       string
	LogLevel   string
	LogFormat  string
	DeviceName string

	RenderTickMs       int
	CommandLockTimeout time.Duration
	RenderLockTimeout  time.Duration

	MaxPayloadBytes int
	MaxFeedClients  int

	AudioSampleRate    int
	AudioVolumePercent int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		Port:       getEnv("PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		DeviceName: getEnv("DEVICE_NAME", "littleAI-face"),
	}

	var err error
	if cfg.RenderTickMs, err = getEnvInt("RENDER_TICK_MS", 5); err != nil {
		return nil, err
	}
	if cfg.RenderTickMs < 1 || cfg.RenderTickMs > 1000 {
		return nil, fmt.Errorf("RENDER_TICK_MS must be between 1 and 1000, got %d", cfg.RenderTickMs)
	}

	commandLockMs, err := getEnvInt("COMMAND_LOCK_TIMEOUT_MS", 50)
	if err != nil {
		return nil, err
	}
	if commandLockMs < 1 {
		return nil, fmt.Errorf("COMMAND_LOCK_TIMEOUT_MS must be positive, got %d", commandLockMs)
	}
	cfg.CommandLockTimeout = time.Duration(commandLockMs) * time.Millisecond

	renderLockMs, err := getEnvInt("RENDER_LOCK_TIMEOUT_MS", 10)
	if err != nil {
		return nil, err
	}
	if renderLockMs < 1 {
		return nil, fmt.Errorf("RENDER_LOCK_TIMEOUT_MS must be positive, got %d", renderLockMs)
	}
	cfg.RenderLockTimeout = time.Duration(renderLockMs) * time.Millisecond

	if cfg.MaxPayloadBytes, err = getEnvInt("MAX_PAYLOAD_BYTES", 16384); err != nil {
		return nil, err
	}
	if cfg.MaxPayloadBytes < 64 {
		return nil, fmt.Errorf("MAX_PAYLOAD_BYTES must be at least 64, got %d", cfg.MaxPayloadBytes)
	}

	if cfg.MaxFeedClients, err = getEnvInt("MAX_FEED_CLIENTS", 8); err != nil {
		return nil, err
	}
	if cfg.MaxFeedClients < 1 {
		return nil, fmt.Errorf("MAX_FEED_CLIENTS must be positive, got %d", cfg.MaxFeedClients)
	}

	if cfg.AudioSampleRate, err = getEnvInt("AUDIO_SAMPLE_RATE", 16000); err != nil {
		return nil, err
	}
	if cfg.AudioSampleRate < 8000 || cfg.AudioSampleRate > 48000 {
		return nil, fmt.Errorf("AUDIO_SAMPLE_RATE must be between 8000 and 48000, got %d", cfg.AudioSampleRate)
	}

	if cfg.AudioVolumePercent, err = getEnvInt("AUDIO_VOLUME", 75); err != nil {
		return nil, err
	}
	if cfg.AudioVolumePercent < 0 || cfg.AudioVolumePercent > 100 {
		return nil, fmt.Errorf("AUDIO_VOLUME must be between 0 and 100, got %d", cfg.AudioVolumePercent)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
