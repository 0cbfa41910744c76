//go:build linux

package cdev

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pinctl/core"
)

var _ core.Driver = (*Driver)(nil)

func TestDefaultChip(t *testing.T) {
	assert.Equal(t, DefaultChip, New("").name)
	assert.Equal(t, "gpiochip4", New("gpiochip4").name)
}

func TestSetupMissingChip(t *testing.T) {
	d := New("gpiochip-does-not-exist")
	assert.Equal(t, SetupFailed, d.Setup())
	assert.Error(t, d.Err())
	assert.Zero(t, d.PinCount())
	assert.NoError(t, d.Close())
}

func TestPWMUnsupported(t *testing.T) {
	d := New("")
	assert.ErrorIs(t, d.SetMode(0, core.ModePWMOutput), ErrPWMUnsupported)
	assert.ErrorContains(t, d.SetMode(0, core.Mode(9)), "unsupported mode 9")
}

func TestLinesNeedOpenChip(t *testing.T) {
	d := New("")
	assert.ErrorContains(t, d.Write(0, core.LevelHigh), "chip not open")
	_, err := d.Read(0)
	assert.ErrorContains(t, err, "chip not open")
}
