package config

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"pinctl/driver"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg and returns a *ValidationError listing every problem
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateDriver(cfg, ve)
	validateLink(cfg, ve)
	validateMetrics(cfg, ve)
	validateLogger(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateDriver(cfg *Config, ve *ValidationError) {
	if !slices.Contains(driver.Backends(), cfg.Driver.Backend) {
		ve.Add("driver.backend %q is not one of %v", cfg.Driver.Backend, driver.Backends())
	}
	if cfg.Driver.Pins < 0 {
		ve.Add("driver.pins must be >= 0")
	}
}

func validateLink(cfg *Config, ve *ValidationError) {
	switch cfg.Link.Mode {
	case ModeFrames, ModeConsole:
	default:
		ve.Add("link.mode must be %q or %q, got %q", ModeFrames, ModeConsole, cfg.Link.Mode)
	}
	s := cfg.Link.Serial
	if s.Device == "" {
		ve.Add("link.serial.device is required (use %q for stdio)", StdioDevice)
	}
	if s.Device != StdioDevice && s.Baud <= 0 {
		ve.Add("link.serial.baud must be > 0")
	}
	if s.ReadTimeout < 0 {
		ve.Add("link.serial.read_timeout_ms must be >= 0")
	}
}

func validateMetrics(cfg *Config, ve *ValidationError) {
	if cfg.Metrics.Listen == "" {
		return
	}
	if _, _, err := net.SplitHostPort(cfg.Metrics.Listen); err != nil {
		ve.Add("metrics.listen %q: %v", cfg.Metrics.Listen, err)
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		ve.Add("logger.level %q is not one of debug, info, warn, error", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "", "text", "json":
	default:
		ve.Add("logger.format must be text or json, got %q", cfg.Logger.Format)
	}
}
