// Package rpio adapts the memory-mapped BCM283x register driver from
// github.com/stianeikeland/go-rpio to core.Driver. Pins are BCM GPIO numbers.
package rpio

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"

	"pinctl/core"
)

// DefaultPinCount covers BCM GPIO 0..27, the lines routed to the 40-pin header
const DefaultPinCount = 28

// SetupFailed is returned by Setup when the register block cannot be mapped,
// mirroring wiringPiSetup's -1
const SetupFailed = -1

// Driver is a core.Driver backed by go-rpio
type Driver struct {
	pins int

	mu      sync.Mutex
	opened  bool
	openErr error
}

// New returns a driver exposing pins BCM lines; pins <= 0 means DefaultPinCount
func New(pins int) *Driver {
	if pins <= 0 {
		pins = DefaultPinCount
	}
	return &Driver{pins: pins}
}

// Setup maps the GPIO registers. Needs /dev/gpiomem or root.
func (d *Driver) Setup() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := rpio.Open(); err != nil {
		d.openErr = err
		return SetupFailed
	}
	d.opened = true
	return 0
}

// Err returns the error behind a failed Setup
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openErr
}

// PinCount returns the number of BCM lines exposed
func (d *Driver) PinCount() int { return d.pins }

// SetMode sets the pin function register for INPUT, OUTPUT or PWM_OUTPUT
func (d *Driver) SetMode(pin int, mode core.Mode) error {
	var m rpio.Mode
	switch mode {
	case core.ModeInput:
		m = rpio.Input
	case core.ModeOutput:
		m = rpio.Output
	case core.ModePWMOutput:
		m = rpio.Pwm
	default:
		return fmt.Errorf("rpio: unsupported mode %d", int(mode))
	}
	rpio.PinMode(rpio.Pin(pin), m)
	return nil
}

// Write sets the pin high for any non-zero level, as the register interface does
func (d *Driver) Write(pin int, level core.Level) error {
	state := rpio.High
	if level == core.LevelLow {
		state = rpio.Low
	}
	rpio.WritePin(rpio.Pin(pin), state)
	return nil
}

// Read samples the pin level register
func (d *Driver) Read(pin int) (core.Level, error) {
	if rpio.ReadPin(rpio.Pin(pin)) == rpio.High {
		return core.LevelHigh, nil
	}
	return core.LevelLow, nil
}

// DelayMicroseconds busy-waits on the monotonic clock
func (d *Driver) DelayMicroseconds(us int) { core.BusyWait(us) }

// Close unmaps the register block
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return nil
	}
	d.opened = false
	return rpio.Close()
}
