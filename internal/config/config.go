package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"pinctl/driver"
	"pinctl/host/serial"
)

// Link modes
const (
	ModeFrames  = "frames"
	ModeConsole = "console"
)

// StdioDevice selects stdin/stdout instead of a serial port
const StdioDevice = "-"

// Config is the daemon configuration
type Config struct {
	Driver  driver.Config `yaml:"driver"`
	Strict  bool          `yaml:"strict"`
	Link    LinkConfig    `yaml:"link"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logger  LoggerConfig  `yaml:"logger"`
}

// LinkConfig selects how callers reach the daemon
type LinkConfig struct {
	// Mode is "frames" for the binary link protocol or "console" for text commands
	Mode   string        `yaml:"mode"`
	Serial serial.Config `yaml:"serial"`
}

// MetricsConfig holds the Prometheus exporter settings
type MetricsConfig struct {
	// Listen is the [host]:port for /metrics; empty disables the exporter
	Listen string `yaml:"listen"`
}

// LoggerConfig holds logging settings
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Defaults returns a configuration that runs the simulator on stdio
func Defaults() *Config {
	return &Config{
		Driver: driver.Config{
			Backend: driver.BackendSim,
		},
		Link: LinkConfig{
			Mode:   ModeConsole,
			Serial: *serial.DefaultConfig(StdioDevice),
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads a YAML config file over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies PINCTL_* environment variables on top of cfg
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PINCTL_DRIVER"); v != "" {
		cfg.Driver.Backend = v
	}
	if v := os.Getenv("PINCTL_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Strict = b
		}
	}
	if v := os.Getenv("PINCTL_LINK_MODE"); v != "" {
		cfg.Link.Mode = v
	}
	if v := os.Getenv("PINCTL_SERIAL_DEVICE"); v != "" {
		cfg.Link.Serial.Device = v
	}
	if v := os.Getenv("PINCTL_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}
	if v := os.Getenv("PINCTL_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
}
