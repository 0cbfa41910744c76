package core

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// Caller-facing operation names
const (
	OpNumPins           = "numPins"
	OpSetup             = "wiringPiSetup"
	OpSetupAlias        = "setup"
	OpPinMode           = "pinMode"
	OpDigitalWrite      = "digitalWrite"
	OpDigitalRead       = "digitalRead"
	OpDelayMicroseconds = "delayMicroseconds"
)

// Observer receives one notification per dispatched operation.
// Implementations must not block.
type Observer interface {
	ObserveCall(op string, code Code, elapsed time.Duration)
	ObserveSetup(status SetupStatus, code int)
}

// Options tunes a Dispatcher. The zero value is the permissive surface.
type Options struct {
	// Strict rejects non-integral numbers with TypeError and modes or levels
	// outside the known enumerations with RangeError.
	Strict bool

	Logger   *slog.Logger
	Observer Observer
}

// Dispatcher validates caller requests and forwards the valid ones to a
// Driver. It owns the driver handle: every register access goes through its
// mutex, and pin operations are refused until Setup has succeeded.
type Dispatcher struct {
	mu       sync.Mutex
	drv      Driver
	setup    *SetupManager
	strict   bool
	log      *slog.Logger
	observer Observer
	registry *CommandRegistry
}

// NewDispatcher wraps drv. drv must not be shared with another Dispatcher.
func NewDispatcher(drv Driver, opts Options) *Dispatcher {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d := &Dispatcher{
		drv:      drv,
		setup:    NewSetupManager(),
		strict:   opts.Strict,
		log:      log,
		observer: opts.Observer,
		registry: NewCommandRegistry(),
	}
	d.registerCommands()
	return d
}

func (d *Dispatcher) registerCommands() {
	r := d.registry
	r.Register(OpNumPins, "", func(args []any) (any, error) {
		return d.NumPins(), nil
	})
	setup := func(args []any) (any, error) {
		return d.Setup(), nil
	}
	r.Register(OpSetup, "", setup)
	r.Register(OpPinMode, "pin=%i mode=%i", func(args []any) (any, error) {
		return nil, d.PinMode(args...)
	})
	r.Register(OpDigitalWrite, "pin=%i level=%i", func(args []any) (any, error) {
		return nil, d.DigitalWrite(args...)
	})
	r.Register(OpDigitalRead, "pin=%i", func(args []any) (any, error) {
		v, err := d.DigitalRead(args...)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	r.Register(OpDelayMicroseconds, "us=%i", func(args []any) (any, error) {
		return nil, d.DelayMicroseconds(args...)
	})
	r.Register(OpSetupAlias, "", setup)
}

// Registry exposes the dispatcher's command table
func (d *Dispatcher) Registry() *CommandRegistry { return d.registry }

// SetupStatus returns the current setup state
func (d *Dispatcher) SetupStatus() SetupStatus { return d.setup.Status() }

// Call dispatches a caller-facing operation by name
func (d *Dispatcher) Call(name string, args ...any) (any, error) {
	return d.registry.DispatchName(name, args)
}

// CallID dispatches a caller-facing operation by command ID
func (d *Dispatcher) CallID(id uint16, args ...any) (any, error) {
	return d.registry.Dispatch(id, args)
}

// NumPins returns the driver's live pin count
func (d *Dispatcher) NumPins() int {
	start := time.Now()
	d.mu.Lock()
	n := d.drv.PinCount()
	d.mu.Unlock()
	d.observe(OpNumPins, start, nil)
	return n
}

// Setup runs the driver's one-shot initialization and returns its status
// code (0 on success). The driver is only ever initialized once; later calls
// return the first call's code without touching the hardware.
func (d *Dispatcher) Setup() int {
	start := time.Now()
	d.mu.Lock()
	code, done := d.setup.Code()
	if !done {
		code = d.drv.Setup()
		d.setup.Mark(code)
	}
	status := d.setup.Status()
	pins := d.drv.PinCount()
	d.mu.Unlock()

	if !done {
		if status == StatusReady {
			d.log.Info("gpio setup complete", "pins", pins)
		} else {
			d.log.Warn("gpio setup failed", "code", code)
		}
		if d.observer != nil {
			d.observer.ObserveSetup(status, code)
		}
	}
	d.observe(OpSetup, start, nil)
	return code
}

// PinMode sets the mode of a pin: PinMode(pin, mode).
func (d *Dispatcher) PinMode(args ...any) (err error) {
	const op = OpPinMode
	defer d.observeErr(op, time.Now(), &err)

	if err := checkArity(op, args, 2); err != nil {
		return d.reject(err)
	}
	if _, ok := Number(args[0], d.strict); !ok {
		return d.reject(&TypeError{Op: op, Arg: "pin", Value: args[0]})
	}
	raw, ok := Number(args[1], d.strict)
	if !ok {
		return d.reject(&TypeError{Op: op, Arg: "mode", Value: args[1]})
	}
	mode, known := ParseMode(raw)
	if !known {
		if d.strict {
			return d.reject(&RangeError{Op: op, Arg: "mode", Value: raw, Min: int(ModeInput), Max: int(ModePWMOutput) + 1})
		}
		d.log.Debug("forwarding unrecognized mode", "op", op, "mode", raw)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pin, err := d.checkPin(op, args[0])
	if err != nil {
		return d.reject(err)
	}
	if err := d.drv.SetMode(pin, mode); err != nil {
		return d.driverFault(op, pin, err)
	}
	return nil
}

// DigitalWrite drives a pin to a level: DigitalWrite(pin, level).
// Levels other than LOW and HIGH are forwarded to the driver unchanged
// unless the dispatcher is strict.
func (d *Dispatcher) DigitalWrite(args ...any) (err error) {
	const op = OpDigitalWrite
	defer d.observeErr(op, time.Now(), &err)

	if err := checkArity(op, args, 2); err != nil {
		return d.reject(err)
	}
	if _, ok := Number(args[0], d.strict); !ok {
		return d.reject(&TypeError{Op: op, Arg: "pin", Value: args[0]})
	}
	raw, ok := Number(args[1], d.strict)
	if !ok {
		return d.reject(&TypeError{Op: op, Arg: "level", Value: args[1]})
	}
	level, known := ParseLevel(raw)
	if !known {
		if d.strict {
			return d.reject(&RangeError{Op: op, Arg: "level", Value: raw, Min: int(LevelLow), Max: int(LevelHigh) + 1})
		}
		d.log.Debug("forwarding unrecognized level", "op", op, "level", raw)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pin, err := d.checkPin(op, args[0])
	if err != nil {
		return d.reject(err)
	}
	if err := d.drv.Write(pin, level); err != nil {
		return d.driverFault(op, pin, err)
	}
	return nil
}

// DigitalRead samples a pin: DigitalRead(pin).
// The pin range is checked here exactly as for PinMode and DigitalWrite.
func (d *Dispatcher) DigitalRead(args ...any) (v int, err error) {
	const op = OpDigitalRead
	defer d.observeErr(op, time.Now(), &err)

	if err := checkArity(op, args, 1); err != nil {
		return 0, d.reject(err)
	}
	if _, ok := Number(args[0], d.strict); !ok {
		return 0, d.reject(&TypeError{Op: op, Arg: "pin", Value: args[0]})
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pin, err := d.checkPin(op, args[0])
	if err != nil {
		return 0, d.reject(err)
	}
	level, err := d.drv.Read(pin)
	if err != nil {
		return 0, d.driverFault(op, pin, err)
	}
	return int(level), nil
}

// DelayMicroseconds blocks the calling goroutine for about the given number
// of microseconds: DelayMicroseconds(us). It needs no prior setup and does
// not hold the driver lock while waiting.
func (d *Dispatcher) DelayMicroseconds(args ...any) (err error) {
	const op = OpDelayMicroseconds
	defer d.observeErr(op, time.Now(), &err)

	if err := checkArity(op, args, 1); err != nil {
		return d.reject(err)
	}
	us, ok := Number(args[0], d.strict)
	if !ok {
		return d.reject(&TypeError{Op: op, Arg: "us", Value: args[0]})
	}
	if us < 0 {
		return d.reject(&RangeError{Op: op, Arg: "us", Value: us, Min: 0})
	}
	d.drv.DelayMicroseconds(us)
	return nil
}

// checkPin gates on setup and validates the pin against the live pin count.
// Must be called with d.mu held.
func (d *Dispatcher) checkPin(op string, v any) (int, error) {
	if status := d.setup.Status(); status != StatusReady {
		return 0, &NotInitializedError{Op: op, Status: status}
	}
	return ValidatePin(op, v, d.drv.PinCount(), d.strict)
}

func (d *Dispatcher) reject(err error) error {
	d.log.Debug("request rejected", "err", err, "code", CodeOf(err))
	return err
}

func (d *Dispatcher) driverFault(op string, pin int, err error) error {
	d.log.Warn("driver call failed", "op", op, "pin", pin, "err", err)
	return &DriverError{Op: op, Err: err}
}

func (d *Dispatcher) observeErr(op string, start time.Time, err *error) {
	d.observe(op, start, *err)
}

func (d *Dispatcher) observe(op string, start time.Time, err error) {
	if d.observer == nil {
		return
	}
	d.observer.ObserveCall(op, CodeOf(err), time.Since(start))
}
