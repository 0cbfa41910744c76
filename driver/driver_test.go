package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinctl/core"
	"pinctl/driver/rpio"
	"pinctl/driver/sim"
)

func TestBackends(t *testing.T) {
	assert.Equal(t, []string{BackendCdev, BackendRPIO, BackendSim}, Backends())
}

func TestNewSim(t *testing.T) {
	d, err := New(Config{Backend: BackendSim, Pins: 8, SetupRC: -1})
	require.NoError(t, err)
	require.IsType(t, &sim.Driver{}, d)
	assert.Equal(t, 8, d.PinCount())
	assert.Equal(t, -1, d.Setup())
	assert.NoError(t, Close(d))
	assert.NoError(t, SetupError(d))
}

func TestNewSimDefaultPins(t *testing.T) {
	d, err := New(Config{Backend: BackendSim})
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultPinCount, d.PinCount())
}

func TestNewRPIO(t *testing.T) {
	d, err := New(Config{Backend: BackendRPIO})
	require.NoError(t, err)
	assert.Equal(t, rpio.DefaultPinCount, d.PinCount())
	assert.NoError(t, SetupError(d), "nothing to report before setup")
	assert.NoError(t, Close(d), "closing an unopened driver is a no-op")
}

func TestNewUnknown(t *testing.T) {
	_, err := New(Config{Backend: "wiringpi"})
	assert.ErrorContains(t, err, `unknown driver backend "wiringpi"`)
}

func TestRegisterTwicePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(BackendSim, func(Config) (core.Driver, error) { return nil, nil })
	})
}
