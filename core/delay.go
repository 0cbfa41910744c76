package core

import (
	"runtime"
	"time"
)

// Delays shorter than this are pure busy waits; longer ones sleep first and
// spin for the remainder, as wiringPi's delayMicroseconds does.
const busyWaitThreshold = 100 * time.Microsecond

// spinTail is how much of a long delay is left for the busy loop after sleeping
const spinTail = 50 * time.Microsecond

// BusyWait blocks the calling goroutine for at least us microseconds,
// measured on the monotonic clock. It has no cancellation.
func BusyWait(us int) {
	if us <= 0 {
		return
	}
	d := time.Duration(us) * time.Microsecond
	deadline := time.Now().Add(d)
	if d >= busyWaitThreshold {
		time.Sleep(d - spinTail)
	}
	for time.Now().Before(deadline) {
		runtime.Gosched()
	}
}
