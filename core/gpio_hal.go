package core

// Driver is the register-level GPIO capability set the dispatcher forwards to.
// Backends live under driver/; none of them validate their arguments, which
// is the dispatcher's job.
//
// Implementations need not be safe for concurrent use: the dispatcher
// serializes every call except DelayMicroseconds.
type Driver interface {
	// Setup performs one-time hardware initialization.
	// Returns 0 on success, a backend-specific non-zero code on failure.
	Setup() int

	// PinCount returns the number of addressable pins
	PinCount() int

	// SetMode configures the pin's function
	SetMode(pin int, mode Mode) error

	// Write drives an output pin to level
	Write(pin int, level Level) error

	// Read samples the pin's current level
	Read(pin int) (Level, error)

	// DelayMicroseconds blocks the calling goroutine for about us microseconds
	DelayMicroseconds(us int)
}
