//go:build unix

package hosttime

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func readClock(id int32) (uint64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(id, &ts); err != nil {
		return 0, err
	}
	return uint64(unix.TimespecToNsec(ts)), nil
}

// mustReadClock is used where a clock failure means the host is unusable.
func mustReadClock(id int32) uint64 {
	ns, err := readClock(id)
	if err != nil {
		panic(errors.Wrapf(err, "hosttime: clock_gettime(%d)", id))
	}
	return ns
}

// Now samples the clock selected by mode and returns nanoseconds.
//
// Monotonic values are relative to the epoch captured by New and never
// decrease. Wall values are the raw host calendar time with no correction.
func (b *Bridge) Now(mode Mode) uint64 {
	if mode == Wall {
		return mustReadClock(unix.CLOCK_REALTIME)
	}
	return mustReadClock(unix.CLOCK_MONOTONIC) - b.epoch
}

// Epoch returns the host monotonic time, in nanoseconds, that virtual time
// zero corresponds to.
func (b *Bridge) Epoch() uint64 {
	return b.epoch
}
