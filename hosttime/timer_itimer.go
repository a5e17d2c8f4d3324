//go:build darwin || (linux && hosttime_itimer)

package hosttime

import (
	"sync/atomic"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const timerStrategy = "itimer-relative"

const (
	// minInterval keeps a past deadline armed; a zero itimer value disarms.
	minInterval = 1000
	maxInterval = 1 << 62
)

type timerSource struct {
	epoch  uint64
	closed atomic.Bool
}

func newTimerSource(epoch uint64, sig syscall.Signal) (*timerSource, error) {
	if sig != unix.SIGALRM {
		return nil, errors.Wrapf(ErrSignal, "ITIMER_REAL raises SIGALRM, not signal %d", int(sig))
	}
	return &timerSource{epoch: epoch}, nil
}

// arm measures the distance from now to the deadline and requests a relative
// one-shot expiry, rounded up to the microsecond resolution of itimerval.
func (t *timerSource) arm(deadline uint64) error {
	if t.closed.Load() {
		return ErrClosed
	}
	now, err := readClock(unix.CLOCK_MONOTONIC)
	if err != nil {
		return errors.Wrap(err, "hosttime: reading monotonic clock")
	}

	rel := uint64(minInterval)
	if now -= t.epoch; deadline > now {
		rel = min(deadline-now, maxInterval)
		rel = roundUpMicros(rel) * 1000
	}

	it := unix.Itimerval{Value: unix.NsecToTimeval(int64(rel))}
	if _, err := unix.Setitimer(unix.ItimerReal, it); err != nil {
		return errors.Wrapf(err, "hosttime: setitimer(%d)", deadline)
	}
	return nil
}

func (t *timerSource) close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	if _, err := unix.Setitimer(unix.ItimerReal, unix.Itimerval{}); err != nil {
		return errors.Wrap(err, "hosttime: setitimer disarm")
	}
	return nil
}
