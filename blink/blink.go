// Package blink toggles an output pin on a fixed interval, the classic
// first program on a new board.
package blink

import (
	"context"
	"fmt"
	"time"

	"pinctl/core"
)

// Pins is the part of the GPIO surface a blinker needs. It is satisfied by
// *client.Client and, through Local, by a *core.Dispatcher.
type Pins interface {
	Setup(ctx context.Context) (int, error)
	PinMode(ctx context.Context, pin int, mode core.Mode) error
	DigitalWrite(ctx context.Context, pin int, level core.Level) error
}

// Blink sets pin up as an output and toggles it every interval, starting
// HIGH. It stops after count writes, or only on cancellation when count is
// zero or negative. The pin is left LOW on return. It reports the number of
// toggles performed.
func Blink(ctx context.Context, p Pins, pin int, interval time.Duration, count int) (int, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("blink interval must be positive, got %v", interval)
	}
	code, err := p.Setup(ctx)
	if err != nil {
		return 0, err
	}
	if code != 0 {
		return 0, fmt.Errorf("gpio setup failed with code %d", code)
	}
	if err := p.PinMode(ctx, pin, core.ModeOutput); err != nil {
		return 0, err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	level := core.LevelLow
	toggles := 0
	for count <= 0 || toggles < count {
		if level == core.LevelLow {
			level = core.LevelHigh
		} else {
			level = core.LevelLow
		}
		if err := p.DigitalWrite(ctx, pin, level); err != nil {
			return toggles, err
		}
		toggles++

		select {
		case <-ctx.Done():
			return toggles, leaveLow(p, pin, level)
		case <-ticker.C:
		}
	}
	return toggles, leaveLow(p, pin, level)
}

func leaveLow(p Pins, pin int, level core.Level) error {
	if level == core.LevelLow {
		return nil
	}
	// the caller's context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return p.DigitalWrite(ctx, pin, core.LevelLow)
}

// Local adapts a dispatcher in the same process to Pins
func Local(d *core.Dispatcher) Pins {
	return local{d}
}

type local struct {
	d *core.Dispatcher
}

func (l local) Setup(context.Context) (int, error) {
	return l.d.Setup(), nil
}

func (l local) PinMode(_ context.Context, pin int, mode core.Mode) error {
	return l.d.PinMode(pin, mode)
}

func (l local) DigitalWrite(_ context.Context, pin int, level core.Level) error {
	return l.d.DigitalWrite(pin, level)
}
