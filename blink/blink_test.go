package blink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinctl/core"
	"pinctl/driver/sim"
)

// recorder wraps Local and keeps every level written
type recorder struct {
	Pins
	mu     sync.Mutex
	levels []core.Level
}

func (r *recorder) DigitalWrite(ctx context.Context, pin int, level core.Level) error {
	r.mu.Lock()
	r.levels = append(r.levels, level)
	r.mu.Unlock()
	return r.Pins.DigitalWrite(ctx, pin, level)
}

func TestBlinkCount(t *testing.T) {
	drv := sim.New(sim.DefaultPinCount)
	rec := &recorder{Pins: Local(core.NewDispatcher(drv, core.Options{}))}

	n, err := Blink(context.Background(), rec, 8, time.Millisecond, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// five toggles starting HIGH, then forced LOW
	assert.Equal(t, []core.Level{1, 0, 1, 0, 1, 0}, rec.levels)
	mode, _ := drv.Mode(8)
	assert.Equal(t, core.ModeOutput, mode)
	v, err := drv.Read(8)
	require.NoError(t, err)
	assert.Equal(t, core.LevelLow, v)
}

func TestBlinkUntilCancelled(t *testing.T) {
	drv := sim.New(sim.DefaultPinCount)
	d := core.NewDispatcher(drv, core.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	n, err := Blink(ctx, Local(d), 3, 2*time.Millisecond, 0)
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	v, _ := drv.Read(3)
	assert.Equal(t, core.LevelLow, v)
}

func TestBlinkRejectsBadPin(t *testing.T) {
	d := core.NewDispatcher(sim.New(8), core.Options{})
	_, err := Blink(context.Background(), Local(d), 8, time.Millisecond, 1)
	assert.ErrorIs(t, err, core.ErrRange)
}

func TestBlinkSetupFailure(t *testing.T) {
	drv := sim.New(8)
	drv.SetSetupCode(-1)
	_, err := Blink(context.Background(), Local(core.NewDispatcher(drv, core.Options{})), 1, time.Millisecond, 1)
	assert.ErrorContains(t, err, "code -1")
	assert.Zero(t, drv.Calls().SetMode)
}

func TestBlinkBadInterval(t *testing.T) {
	d := core.NewDispatcher(sim.New(8), core.Options{})
	_, err := Blink(context.Background(), Local(d), 1, 0, 1)
	assert.Error(t, err)
}
