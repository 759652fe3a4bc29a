package config

import (
	"fmt"

	"github.com/sweeney/gauge-display/internal/logger"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Serial.Device == "" {
		return fmt.Errorf("serial.device must be set")
	}
	if cfg.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", cfg.Serial.Baud)
	}

	// timeouts of zero would hide or blank on the first tick
	if cfg.Timeouts.MeterHideMs == 0 {
		return fmt.Errorf("timeouts.meter_hide_ms must be positive")
	}
	if cfg.Timeouts.DisplayBlankMs == 0 {
		return fmt.Errorf("timeouts.display_blank_ms must be positive")
	}

	if cfg.Loop.PollMs <= 0 {
		return fmt.Errorf("loop.poll_ms must be positive, got %d", cfg.Loop.PollMs)
	}

	if cfg.Backlight.Chip == "" {
		return fmt.Errorf("backlight.chip must be set")
	}
	if cfg.Backlight.Pin < 0 {
		return fmt.Errorf("backlight.pin must not be negative, got %d", cfg.Backlight.Pin)
	}

	if cfg.MQTT.HeartbeatMs < 0 {
		return fmt.Errorf("mqtt.heartbeat_ms must not be negative, got %d", cfg.MQTT.HeartbeatMs)
	}

	if _, ok := logger.Levels[cfg.Log.Level]; !ok {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}

	return nil
}
