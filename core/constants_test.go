package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantValues(t *testing.T) {
	consts := Constants()
	require.Len(t, consts, 2)

	assert.Equal(t, map[string]int{"INPUT": 0, "OUTPUT": 1, "PWM_OUTPUT": 2}, consts[GroupPinMode])
	assert.Equal(t, map[string]int{"LOW": 0, "HIGH": 1}, consts[GroupWrite])
}

func TestConstantsAreCopies(t *testing.T) {
	consts := Constants()
	consts[GroupWrite]["HIGH"] = 42
	delete(consts, GroupPinMode)

	v, ok := Lookup("WRITE.HIGH")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = Lookup("PIN_MODE.OUTPUT")
	assert.True(t, ok)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"PIN_MODE.INPUT", 0, true},
		{"PIN_MODE.PWM_OUTPUT", 2, true},
		{"OUTPUT", 1, true},
		{"WRITE.LOW", 0, true},
		{"HIGH", 1, true},
		{"high", 0, false},
		{"WRITE.OUTPUT", 0, false},
		{"NOPE.HIGH", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConstantNames(t *testing.T) {
	assert.Equal(t, []string{
		"PIN_MODE.INPUT",
		"PIN_MODE.OUTPUT",
		"PIN_MODE.PWM_OUTPUT",
		"WRITE.HIGH",
		"WRITE.LOW",
	}, ConstantNames())
}

func TestParseModeAndLevel(t *testing.T) {
	m, ok := ParseMode(2)
	assert.True(t, ok)
	assert.Equal(t, ModePWMOutput, m)
	assert.Equal(t, "PWM_OUTPUT", m.String())

	m, ok = ParseMode(9)
	assert.False(t, ok)
	assert.Equal(t, Mode(9), m, "unknown values keep their raw number")
	assert.Equal(t, "Mode(9)", m.String())

	l, ok := ParseLevel(1)
	assert.True(t, ok)
	assert.Equal(t, "HIGH", l.String())

	l, ok = ParseLevel(-1)
	assert.False(t, ok)
	assert.Equal(t, Level(-1), l)
	assert.Equal(t, "Level(-1)", l.String())
}
