//go:build linux && !hosttime_itimer

package hosttime

import (
	"errors"
	"math"
	"testing"
	"time"

	"golang.org/x/sys/unix"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestPosixTimerCustomSignal(t *testing.T) {
	b := newTestBridge(t, Config{Signal: unix.SIGUSR2})
	assert.Check(t, is.Equal(b.IRQ(), unix.SIGUSR2))

	ch := notifyIRQ(t, b)
	assert.NilError(t, b.Arm(b.Now(Monotonic)+uint64(10*time.Millisecond)))
	assert.Check(t, waitIRQ(t, ch, time.Second), "custom signal never delivered")
}

func TestPosixTimerInvalidSignal(t *testing.T) {
	_, err := New(Config{Signal: 4096, Logger: quietLogger()})
	assert.Check(t, errors.Is(err, unix.EINVAL), "got %v", err)
}

func TestPosixTimerDeadlineOutOfRange(t *testing.T) {
	b := newTestBridge(t, Config{})
	err := b.Arm(math.MaxUint64)
	assert.Check(t, errors.Is(err, unix.EINVAL), "got %v", err)
}
