// Package driver selects a core.Driver backend by name.
package driver

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"pinctl/core"
	"pinctl/driver/cdev"
	"pinctl/driver/rpio"
	"pinctl/driver/sim"
)

// Backend names
const (
	BackendSim  = "sim"
	BackendRPIO = "rpio"
	BackendCdev = "cdev"
)

// Config carries the backend-specific knobs. Unused fields are ignored.
type Config struct {
	Backend string `yaml:"backend"`
	Pins    int    `yaml:"pins"`     // sim, rpio
	Chip    string `yaml:"chip"`     // cdev
	SetupRC int    `yaml:"setup_rc"` // sim: status code returned by setup
}

// Factory builds a driver from its configuration
type Factory func(cfg Config) (core.Driver, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under name. Registering a name twice panics.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		panic("driver: Register called twice for backend " + name)
	}
	factories[name] = f
}

// Backends returns the registered backend names, sorted
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the backend named by cfg.Backend
func New(cfg Config) (core.Driver, error) {
	mu.RLock()
	f, ok := factories[cfg.Backend]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown driver backend %q (have %v)", cfg.Backend, Backends())
	}
	return f(cfg)
}

// Close releases the driver's resources if it holds any
func Close(d core.Driver) error {
	if c, ok := d.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SetupError returns the backend's explanation for a failed setup, if it keeps one
func SetupError(d core.Driver) error {
	type errer interface{ Err() error }
	if e, ok := d.(errer); ok {
		return e.Err()
	}
	return nil
}

func init() {
	Register(BackendSim, func(cfg Config) (core.Driver, error) {
		pins := cfg.Pins
		if pins <= 0 {
			pins = sim.DefaultPinCount
		}
		d := sim.New(pins)
		d.SetSetupCode(cfg.SetupRC)
		return d, nil
	})
	Register(BackendRPIO, func(cfg Config) (core.Driver, error) {
		return rpio.New(cfg.Pins), nil
	})
	Register(BackendCdev, func(cfg Config) (core.Driver, error) {
		return cdev.New(cfg.Chip), nil
	})
}
