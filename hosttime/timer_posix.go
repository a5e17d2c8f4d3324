//go:build linux && !hosttime_itimer

package hosttime

import (
	"math"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const timerStrategy = "posix-abstime"

const (
	sigeventSize = 64
	sigevSignal  = 0
	timerAbstime = 1
)

// sigevent matches the kernel struct sigevent for SIGEV_SIGNAL.
type sigevent struct {
	value  uintptr
	signo  int32
	notify int32
	_      [sigeventSize - unsafe.Sizeof(uintptr(0)) - 8]byte
}

type itimerspec struct {
	interval unix.Timespec
	value    unix.Timespec
}

type timerSource struct {
	id     int32
	epoch  uint64
	closed atomic.Bool
}

func newTimerSource(epoch uint64, sig syscall.Signal) (*timerSource, error) {
	sev := sigevent{signo: int32(sig), notify: sigevSignal}
	var id int32
	_, _, errno := unix.Syscall(unix.SYS_TIMER_CREATE,
		uintptr(unix.CLOCK_MONOTONIC),
		uintptr(unsafe.Pointer(&sev)),
		uintptr(unsafe.Pointer(&id)))
	if errno != 0 {
		return nil, errors.Wrap(errno, "hosttime: timer_create")
	}
	return &timerSource{id: id, epoch: epoch}, nil
}

// arm converts the virtual deadline to host monotonic time and sets it as an
// absolute expiry, so no second clock read is needed.
func (t *timerSource) arm(deadline uint64) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if deadline > math.MaxInt64-t.epoch {
		return errors.Wrapf(unix.EINVAL, "hosttime: deadline %d out of range", deadline)
	}

	spec := itimerspec{value: unix.NsecToTimespec(int64(t.epoch + deadline))}
	_, _, errno := unix.Syscall6(unix.SYS_TIMER_SETTIME,
		uintptr(t.id),
		timerAbstime,
		uintptr(unsafe.Pointer(&spec)),
		0, 0, 0)
	if errno != 0 {
		return errors.Wrapf(errno, "hosttime: timer_settime(%d)", deadline)
	}
	return nil
}

func (t *timerSource) close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	if _, _, errno := unix.Syscall(unix.SYS_TIMER_DELETE, uintptr(t.id), 0, 0); errno != 0 {
		return errors.Wrap(errno, "hosttime: timer_delete")
	}
	return nil
}
