//go:build !linux

package cdev

import (
	"errors"

	"pinctl/core"
)

const (
	// DefaultChip is the chip name used when none is configured
	DefaultChip = "gpiochip0"
	// Consumer labels requested lines
	Consumer = "pinctl"
	// SetupFailed is what Setup returns on every platform but linux
	SetupFailed = -1
)

var (
	// ErrPWMUnsupported is returned by SetMode for PWM_OUTPUT on linux
	ErrPWMUnsupported = errors.New("cdev: PWM output not supported by the character device")
	errNotLinux       = errors.New("cdev: GPIO character device requires linux")
)

// Driver is a stand-in whose Setup always fails off linux
type Driver struct{}

// New returns the stand-in driver; chip is ignored
func New(chip string) *Driver { return &Driver{} }

// Setup always fails
func (d *Driver) Setup() int { return SetupFailed }

// Err explains why Setup failed
func (d *Driver) Err() error { return errNotLinux }

// PinCount is always 0
func (d *Driver) PinCount() int { return 0 }

// SetMode always fails
func (d *Driver) SetMode(pin int, mode core.Mode) error { return errNotLinux }

// Write always fails
func (d *Driver) Write(pin int, level core.Level) error { return errNotLinux }

// Read always fails
func (d *Driver) Read(pin int) (core.Level, error) { return core.LevelLow, errNotLinux }

// DelayMicroseconds busy-waits on the monotonic clock
func (d *Driver) DelayMicroseconds(us int) { core.BusyWait(us) }

// Close is a no-op
func (d *Driver) Close() error { return nil }
