package rpio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pinctl/core"
)

var _ core.Driver = (*Driver)(nil)

func TestNewPinCount(t *testing.T) {
	assert.Equal(t, DefaultPinCount, New(0).PinCount())
	assert.Equal(t, DefaultPinCount, New(-4).PinCount())
	assert.Equal(t, 54, New(54).PinCount())
}

func TestUnsupportedMode(t *testing.T) {
	// rejected before any register access, so safe without hardware
	err := New(0).SetMode(4, core.Mode(7))
	assert.ErrorContains(t, err, "unsupported mode 7")
}

func TestCloseUnopened(t *testing.T) {
	d := New(0)
	assert.NoError(t, d.Close())
	assert.NoError(t, d.Err())
}
