//go:build linux

// Package cdev adapts the Linux GPIO character device, through
// github.com/warthog618/go-gpiocdev, to core.Driver. Pins are line offsets on
// a single chip. PWM output is not available on this interface.
package cdev

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"pinctl/core"
)

// DefaultChip is the first GPIO controller, which carries the header lines on a Pi
const DefaultChip = "gpiochip0"

// Consumer is the label shown for requested lines in gpioinfo
const Consumer = "pinctl"

// SetupFailed is returned by Setup when the chip cannot be opened
const SetupFailed = -1

// ErrPWMUnsupported is returned by SetMode for PWM_OUTPUT
var ErrPWMUnsupported = errors.New("cdev: PWM output not supported by the character device")

// Driver is a core.Driver backed by one gpiochip
type Driver struct {
	name string

	mu      sync.Mutex
	chip    *gpiocdev.Chip
	lines   map[int]*gpiocdev.Line
	openErr error
}

// New returns a driver for the named chip; "" means DefaultChip
func New(chip string) *Driver {
	if chip == "" {
		chip = DefaultChip
	}
	return &Driver{name: chip, lines: make(map[int]*gpiocdev.Line)}
}

// Setup opens the chip, returning SetupFailed if it cannot
func (d *Driver) Setup() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, err := gpiocdev.NewChip(d.name, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		d.openErr = err
		return SetupFailed
	}
	d.chip = c
	return 0
}

// Err returns the error behind a failed Setup
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openErr
}

// PinCount is the chip's line count, or 0 before a successful Setup
func (d *Driver) PinCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.chip == nil {
		return 0
	}
	return d.chip.Lines()
}

// SetMode requests the line as input or output, or reconfigures it if already held
func (d *Driver) SetMode(pin int, mode core.Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var (
		req gpiocdev.LineReqOption
		cfg gpiocdev.LineConfigOption
	)
	switch mode {
	case core.ModeInput:
		req, cfg = gpiocdev.AsInput, gpiocdev.AsInput
	case core.ModeOutput:
		out := gpiocdev.AsOutput(0)
		req, cfg = out, out
	case core.ModePWMOutput:
		return ErrPWMUnsupported
	default:
		return fmt.Errorf("cdev: unsupported mode %d", int(mode))
	}
	if l, ok := d.lines[pin]; ok {
		return l.Reconfigure(cfg)
	}
	l, err := d.request(pin, req)
	if err != nil {
		return err
	}
	d.lines[pin] = l
	return nil
}

// Write sets an output line, requesting it as an output first if needed
func (d *Driver) Write(pin int, level core.Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := 1
	if level == core.LevelLow {
		v = 0
	}
	l, ok := d.lines[pin]
	if !ok {
		var err error
		if l, err = d.request(pin, gpiocdev.AsOutput(v)); err != nil {
			return err
		}
		d.lines[pin] = l
		return nil
	}
	return l.SetValue(v)
}

// Read returns a line's value, requesting it as an input first if needed
func (d *Driver) Read(pin int) (core.Level, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.lines[pin]
	if !ok {
		var err error
		if l, err = d.request(pin, gpiocdev.AsInput); err != nil {
			return core.LevelLow, err
		}
		d.lines[pin] = l
	}
	v, err := l.Value()
	if err != nil {
		return core.LevelLow, err
	}
	return core.Level(v), nil
}

// DelayMicroseconds busy-waits on the monotonic clock
func (d *Driver) DelayMicroseconds(us int) { core.BusyWait(us) }

// request must be called with d.mu held
func (d *Driver) request(pin int, opt gpiocdev.LineReqOption) (*gpiocdev.Line, error) {
	if d.chip == nil {
		return nil, errors.New("cdev: chip not open")
	}
	return d.chip.RequestLine(pin, opt)
}

// Close releases every requested line and the chip
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for pin, l := range d.lines {
		errs = append(errs, l.Close())
		delete(d.lines, pin)
	}
	if d.chip != nil {
		errs = append(errs, d.chip.Close())
		d.chip = nil
	}
	return errors.Join(errs...)
}
