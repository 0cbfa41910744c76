package core

import "sync"

// SetupStatus is the process-wide hardware initialization state.
type SetupStatus uint8

const (
	StatusUninitialized SetupStatus = iota
	StatusReady
	StatusFailed
)

func (s SetupStatus) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SetupManager tracks the outcome of the driver's one-shot setup.
// The state moves from Uninitialized to Ready or Failed exactly once.
type SetupManager struct {
	mu     sync.Mutex
	status SetupStatus
	code   int
}

// NewSetupManager returns a manager in the Uninitialized state
func NewSetupManager() *SetupManager {
	return &SetupManager{}
}

// Status returns the current setup state
func (m *SetupManager) Status() SetupStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Code returns the status code recorded by the first Mark, and whether one was recorded.
func (m *SetupManager) Code() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.code, m.status != StatusUninitialized
}

// Mark records the driver's setup status code: 0 means Ready, anything else
// Failed. Only the first call has an effect; it reports whether it did.
func (m *SetupManager) Mark(code int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusUninitialized {
		return false
	}
	m.code = code
	if code == 0 {
		m.status = StatusReady
	} else {
		m.status = StatusFailed
	}
	return true
}
