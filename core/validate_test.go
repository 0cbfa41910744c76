package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		strict bool
		want   int
		ok     bool
	}{
		{"int", 7, false, 7, true},
		{"negative int", -3, false, -3, true},
		{"int8", int8(-8), false, -8, true},
		{"uint16", uint16(300), false, 300, true},
		{"uint64 overflow", uint64(math.MaxUint64), false, 0, false},
		{"float truncates", 7.9, false, 7, true},
		{"negative float truncates toward zero", -0.5, false, 0, true},
		{"integral float strict", 7.0, true, 7, true},
		{"fractional float strict", 7.5, true, 0, false},
		{"float32", float32(3), false, 3, true},
		{"NaN", math.NaN(), false, 0, false},
		{"+Inf", math.Inf(1), false, 0, false},
		{"huge float", 1e300, false, 0, false},
		{"json int", json.Number("12"), false, 12, true},
		{"json float", json.Number("1.5"), false, 1, true},
		{"json float strict", json.Number("1.5"), true, 0, false},
		{"json garbage", json.Number("x"), false, 0, false},
		{"string", "7", false, 0, false},
		{"nil", nil, false, 0, false},
		{"bool", true, false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Number(tt.in, tt.strict)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePin(t *testing.T) {
	pin, err := ValidatePin("pinMode", 16, 17, false)
	require.NoError(t, err)
	assert.Equal(t, 16, pin)

	pin, err = ValidatePin("pinMode", 0, 17, false)
	require.NoError(t, err)
	assert.Equal(t, 0, pin)

	_, err = ValidatePin("pinMode", 17, 17, false)
	var rng *RangeError
	require.ErrorAs(t, err, &rng)
	assert.Equal(t, RangeError{Op: "pinMode", Arg: "pin", Value: 17, Min: 0, Max: 17}, *rng)

	_, err = ValidatePin("pinMode", -1, 17, false)
	assert.ErrorIs(t, err, ErrRange)

	_, err = ValidatePin("pinMode", "7", 17, false)
	var typ *TypeError
	require.ErrorAs(t, err, &typ)
	assert.Equal(t, "pin", typ.Arg)
	assert.Equal(t, "7", typ.Value)

	_, err = ValidatePin("pinMode", 2.5, 17, true)
	assert.ErrorIs(t, err, ErrType)
}

func TestValidatePinEmptyBoard(t *testing.T) {
	_, err := ValidatePin("digitalRead", 0, 0, false)
	assert.ErrorIs(t, err, ErrRange)
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		code     Code
	}{
		{&ArityError{Op: "pinMode", Want: 2, Got: 0}, ErrArity, CodeArity},
		{&TypeError{Op: "pinMode", Arg: "pin", Value: "x"}, ErrType, CodeType},
		{&RangeError{Op: "pinMode", Arg: "pin", Value: 99, Max: 17}, ErrRange, CodeRange},
		{&NotInitializedError{Op: "pinMode"}, ErrNotInitialized, CodeNotInitialized},
		{&DriverError{Op: "pinMode", Err: errors.New("boom")}, ErrDriver, CodeDriver},
		{&UnknownCommandError{Name: "analogWrite"}, ErrUnknownCommand, CodeUnknownCommand},
	}
	all := []error{ErrArity, ErrType, ErrRange, ErrNotInitialized, ErrDriver, ErrUnknownCommand}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code, CodeOf(tt.err))
			for _, s := range all {
				assert.Equal(t, s == tt.sentinel, errors.Is(tt.err, s), "errors.Is(%v, %v)", tt.err, s)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeOK, CodeOf(nil))
	assert.Equal(t, CodeError, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeRange, CodeOf(ErrRange))

	wrapped := errors.Join(errors.New("context"), &ArityError{Op: "digitalRead", Want: 1, Got: 2})
	assert.Equal(t, CodeArity, CodeOf(wrapped))
}

func TestRangeErrorMessage(t *testing.T) {
	bounded := &RangeError{Op: "digitalWrite", Arg: "pin", Value: 20, Min: 0, Max: 17}
	assert.Equal(t, "digitalWrite: pin 20 out of range [0, 17)", bounded.Error())

	open := &RangeError{Op: "delayMicroseconds", Arg: "us", Value: -5}
	assert.Equal(t, "delayMicroseconds: us -5 out of range (must be >= 0)", open.Error())
}
