package core

import (
	"errors"
	"fmt"
)

// Code is a stable, wire-facing error identifier.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes
const (
	CodeOK             Code = "ok"
	CodeArity          Code = "arity"
	CodeType           Code = "type"
	CodeRange          Code = "range"
	CodeNotInitialized Code = "not_initialized"
	CodeDriver         Code = "driver"
	CodeUnknownCommand Code = "unknown_command"

	CodeError Code = "error" // generic fallback
)

// Sentinels for errors.Is matching. Every typed error below matches exactly one.
var (
	ErrArity          error = CodeArity
	ErrType           error = CodeType
	ErrRange          error = CodeRange
	ErrNotInitialized error = CodeNotInitialized
	ErrDriver         error = CodeDriver
	ErrUnknownCommand error = CodeUnknownCommand
)

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Op   string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: wrong number of arguments: want %d, got %d", e.Op, e.Want, e.Got)
}

func (e *ArityError) Is(target error) bool { return target == ErrArity }
func (e *ArityError) Code() Code           { return CodeArity }

// TypeError reports an argument that is not a usable number.
type TypeError struct {
	Op    string
	Arg   string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: bad argument type for %s: %v (%T)", e.Op, e.Arg, e.Value, e.Value)
}

func (e *TypeError) Is(target error) bool { return target == ErrType }
func (e *TypeError) Code() Code           { return CodeType }

// RangeError reports an integer argument outside [Min, Max).
// Max is zero when the argument has no upper bound.
type RangeError struct {
	Op    string
	Arg   string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	if e.Max > e.Min {
		return fmt.Sprintf("%s: %s %d out of range [%d, %d)", e.Op, e.Arg, e.Value, e.Min, e.Max)
	}
	return fmt.Sprintf("%s: %s %d out of range (must be >= %d)", e.Op, e.Arg, e.Value, e.Min)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }
func (e *RangeError) Code() Code           { return CodeRange }

// NotInitializedError reports a pin operation issued before a successful setup.
type NotInitializedError struct {
	Op     string
	Status SetupStatus
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("%s: gpio not initialized (setup status %s)", e.Op, e.Status)
}

func (e *NotInitializedError) Is(target error) bool { return target == ErrNotInitialized }
func (e *NotInitializedError) Code() Code           { return CodeNotInitialized }

// DriverError wraps a failure reported by the driver backend itself.
type DriverError struct {
	Op  string
	Err error
}

func (e *DriverError) Error() string        { return e.Op + ": driver: " + e.Err.Error() }
func (e *DriverError) Unwrap() error        { return e.Err }
func (e *DriverError) Is(target error) bool { return target == ErrDriver }
func (e *DriverError) Code() Code           { return CodeDriver }

// UnknownCommandError reports a dispatch by a name or ID nobody registered.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string        { return "unknown command: " + e.Name }
func (e *UnknownCommandError) Is(target error) bool { return target == ErrUnknownCommand }
func (e *UnknownCommandError) Code() Code           { return CodeUnknownCommand }

// CodeOf extracts a Code from an error, defaulting to CodeError.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	type coder interface{ Code() Code }
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	var code Code
	if errors.As(err, &code) {
		return code
	}
	return CodeError
}
