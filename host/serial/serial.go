package serial

import (
	"errors"
	"fmt"
	"io"
)

// Port is a byte stream carrying link frames. The daemon and the client both
// use it:
// - Native serial (github.com/tarm/serial)
// - in-memory pipes in tests
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyAMA0", "/dev/ttyUSB0")
	Device string `yaml:"device"`

	// Baud rate
	Baud int `yaml:"baud"`

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int `yaml:"read_timeout_ms"`
}

// DefaultBaud is the rate both ends assume when none is configured
const DefaultBaud = 115200

// DefaultConfig returns the default configuration for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}

// Validate reports every problem with the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.Device == "" {
		errs = append(errs, errors.New("serial device is required"))
	}
	if c.Baud <= 0 {
		errs = append(errs, fmt.Errorf("serial baud must be positive, got %d", c.Baud))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("serial read timeout must not be negative, got %d", c.ReadTimeout))
	}
	return errors.Join(errs...)
}
