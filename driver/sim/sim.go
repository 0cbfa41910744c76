// Package sim provides a loopback GPIO driver for tests and for running the
// daemon on machines without GPIO hardware. A level written to a pin is what
// a later read of that pin returns. Every call is counted so tests can assert
// that rejected requests never reached the driver.
package sim

import (
	"sync"

	"pinctl/core"
)

// DefaultPinCount matches the 17 pins wiringPi exposes on a first-generation Pi header
const DefaultPinCount = 17

// Calls counts driver invocations per capability
type Calls struct {
	Setup   int
	SetMode int
	Write   int
	Read    int
	Delay   int
}

// Total is the number of register-touching calls (Setup, SetMode, Write, Read)
func (c Calls) Total() int {
	return c.Setup + c.SetMode + c.Write + c.Read
}

// Driver is a loopback core.Driver
type Driver struct {
	mu        sync.Mutex
	pins      int
	setupCode int
	modes     map[int]core.Mode
	levels    map[int]core.Level
	calls     Calls
	failWith  error

	// Delay replaces the busy wait when set; tests use it to avoid real delays
	Delay func(us int)
}

// New creates a loopback driver exposing pins pins
func New(pins int) *Driver {
	return &Driver{
		pins:   pins,
		modes:  make(map[int]core.Mode),
		levels: make(map[int]core.Level),
	}
}

// SetSetupCode sets the status code Setup will return
func (d *Driver) SetSetupCode(code int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setupCode = code
}

// SetPinCount changes the reported pin count
func (d *Driver) SetPinCount(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pins = n
}

// FailWith makes every later SetMode, Write and Read return err (nil clears it)
func (d *Driver) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failWith = err
}

// Drive sets the level an input pin will read, as external hardware would
func (d *Driver) Drive(pin int, level core.Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.levels[pin] = level
}

// Mode returns the last mode set on pin
func (d *Driver) Mode(pin int) (core.Mode, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.modes[pin]
	return m, ok
}

// Calls returns a snapshot of the call counters
func (d *Driver) Calls() Calls {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Setup counts the call and returns the configured status code
func (d *Driver) Setup() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.Setup++
	return d.setupCode
}

// PinCount returns the current pin count
func (d *Driver) PinCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pins
}

// SetMode records mode for pin
func (d *Driver) SetMode(pin int, mode core.Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.SetMode++
	if d.failWith != nil {
		return d.failWith
	}
	d.modes[pin] = mode
	return nil
}

// Write stores level unchanged, including values outside LOW and HIGH
func (d *Driver) Write(pin int, level core.Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.Write++
	if d.failWith != nil {
		return d.failWith
	}
	d.levels[pin] = level
	return nil
}

// Read returns the last level written or driven on pin, LOW if none
func (d *Driver) Read(pin int) (core.Level, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.Read++
	if d.failWith != nil {
		return core.LevelLow, d.failWith
	}
	return d.levels[pin], nil
}

// DelayMicroseconds calls the Delay hook if set and busy-waits otherwise
func (d *Driver) DelayMicroseconds(us int) {
	d.mu.Lock()
	d.calls.Delay++
	delay := d.Delay
	d.mu.Unlock()
	if delay != nil {
		delay(us)
		return
	}
	core.BusyWait(us)
}
