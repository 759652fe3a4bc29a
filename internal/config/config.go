// Package config loads the daemon's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/gauge-display/internal/backlight"
	"github.com/sweeney/gauge-display/internal/coordinator"
	"github.com/sweeney/gauge-display/internal/sample"
)

type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts"`
	Loop      LoopConfig      `yaml:"loop"`
	Backlight BacklightConfig `yaml:"backlight"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
}

type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type TimeoutsConfig struct {
	MeterHideMs    uint32 `yaml:"meter_hide_ms"`
	DisplayBlankMs uint32 `yaml:"display_blank_ms"`
}

type LoopConfig struct {
	PollMs int `yaml:"poll_ms"`
}

type BacklightConfig struct {
	Chip string `yaml:"chip"`
	Pin  int    `yaml:"pin"`
}

// MQTTConfig selects the broker. An empty broker disables publishing.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	HeartbeatMs int    `yaml:"heartbeat_ms"`
}

// HTTPConfig selects the status server address. Empty disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Serial: SerialConfig{Device: sample.DefaultDevice, Baud: sample.DefaultBaud},
		Timeouts: TimeoutsConfig{
			MeterHideMs:    coordinator.DefaultHideTimeoutMs,
			DisplayBlankMs: coordinator.DefaultBlankTimeoutMs,
		},
		Loop:      LoopConfig{PollMs: 5},
		Backlight: BacklightConfig{Chip: backlight.DefaultChip, Pin: backlight.DefaultPin},
		MQTT:      MQTTConfig{HeartbeatMs: 900000},
		HTTP:      HTTPConfig{Addr: ":8080"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
