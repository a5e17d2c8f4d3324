//go:build unix

package hosttime

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/skip"
	"pgregory.net/rapid"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestBridge(t *testing.T, cfg Config) *Bridge {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	b, err := New(cfg)
	skip.If(t, errors.Is(err, ErrUnsupported), "no host timer on this platform")
	assert.NilError(t, err)
	t.Cleanup(func() { assert.Check(t, b.Close()) })
	return b
}

func TestNewDefaults(t *testing.T) {
	b := newTestBridge(t, Config{})
	assert.Check(t, is.Equal(b.guard, uint64(DefaultSleepGuard)))
	assert.Check(t, is.Equal(b.IRQ(), DefaultSignal))
	assert.Check(t, b.Epoch() > 0)
}

func TestNewRejectsNegativeGuard(t *testing.T) {
	_, err := New(Config{SleepGuard: -time.Millisecond, Logger: quietLogger()})
	assert.ErrorContains(t, err, "negative sleep guard")
}

func TestNoSleepGuard(t *testing.T) {
	b := newTestBridge(t, Config{SleepGuard: NoSleepGuard})
	assert.Check(t, is.Equal(b.SleepGuard(), time.Duration(0)))

	d := newTestBridge(t, Config{})
	assert.Check(t, is.Equal(d.SleepGuard(), DefaultSleepGuard))
}

func TestMonotonicStartsNearZero(t *testing.T) {
	b := newTestBridge(t, Config{})
	v := b.Now(Monotonic)
	assert.Check(t, v < uint64(50*time.Millisecond), "elapsed right after New: %d", v)
}

func TestMonotonicNeverDecreases(t *testing.T) {
	b := newTestBridge(t, Config{})
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 200).Draw(rt, "reads")
		prev := b.Now(Monotonic)
		for i := 0; i < n; i++ {
			cur := b.Now(Monotonic)
			if cur < prev {
				rt.Fatalf("read %d went backwards: %d < %d", i, cur, prev)
			}
			prev = cur
		}
	})
}

func TestIndependentBridgesHaveOwnEpochs(t *testing.T) {
	a := newTestBridge(t, Config{})
	time.Sleep(5 * time.Millisecond)
	b := newTestBridge(t, Config{})

	assert.Check(t, b.Epoch() > a.Epoch())
	assert.Check(t, a.Now(Monotonic) > b.Now(Monotonic))
}

func TestWallMatchesHostOffset(t *testing.T) {
	b := newTestBridge(t, Config{})

	wall := b.Now(Wall)
	host := uint64(time.Now().UnixNano())
	diff := int64(host - wall)
	if diff < 0 {
		diff = -diff
	}
	assert.Check(t, diff < int64(time.Second), "wall clock %d vs time.Now %d", wall, host)

	// wall - monotonic is the realtime of the epoch; it stays put unless the
	// host clock is stepped between samples.
	off1 := b.Now(Wall) - b.Now(Monotonic)
	time.Sleep(10 * time.Millisecond)
	off2 := b.Now(Wall) - b.Now(Monotonic)
	drift := int64(off2 - off1)
	if drift < 0 {
		drift = -drift
	}
	assert.Check(t, drift < int64(5*time.Millisecond), "offset drifted by %d", drift)
}

func TestIRQStable(t *testing.T) {
	b := newTestBridge(t, Config{})
	first := b.IRQ()
	for i := 0; i < 10; i++ {
		assert.Check(t, is.Equal(b.IRQ(), first))
	}
}

func TestModeString(t *testing.T) {
	assert.Check(t, is.Equal(Monotonic.String(), "monotonic"))
	assert.Check(t, is.Equal(Wall.String(), "wall"))
	assert.Check(t, is.Equal(Mode(7).String(), "unknown"))
}
