//go:build unix

package hosttime

import (
	"math"
	"time"
)

// Sleep blocks for at least ns nanoseconds, rounded up to whole microseconds.
func (b *Bridge) Sleep(ns uint64) {
	if ns == 0 {
		return
	}
	time.Sleep(sleepDuration(ns))
}

// SleepUntil blocks until the virtual deadline. Deadlines that are not more
// than the sleep guard ahead of now return without sleeping.
func (b *Bridge) SleepUntil(deadline uint64) {
	now := b.Now(Monotonic)
	if deadline <= now || deadline-now <= b.guard {
		return
	}
	b.Sleep(deadline - now)
}

func roundUpMicros(ns uint64) uint64 {
	us := ns / 1000
	if ns%1000 != 0 {
		us++
	}
	return us
}

func sleepDuration(ns uint64) time.Duration {
	us := roundUpMicros(ns)
	if us > math.MaxInt64/uint64(time.Microsecond) {
		return math.MaxInt64
	}
	return time.Duration(us) * time.Microsecond
}
