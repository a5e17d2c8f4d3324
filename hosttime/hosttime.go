//go:build unix

package hosttime

import (
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	// DefaultSleepGuard is how far in the future a SleepUntil deadline must be
	// before a host sleep is issued.
	DefaultSleepGuard = time.Microsecond

	// NoSleepGuard disables the guard: SleepUntil sleeps for any deadline
	// still in the future.
	NoSleepGuard time.Duration = -1

	// DefaultSignal is raised when the timer expires.
	DefaultSignal = unix.SIGALRM
)

// Config holds the bridge settings. Zero values select the defaults; set
// SleepGuard to NoSleepGuard for a zero guard.
type Config struct {
	SleepGuard time.Duration
	Signal     syscall.Signal
	Logger     *logrus.Entry
}

func applyDefaults(cfg *Config) {
	if cfg.SleepGuard == 0 {
		cfg.SleepGuard = DefaultSleepGuard
	}
	if cfg.Signal == 0 {
		cfg.Signal = DefaultSignal
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
}

// Bridge is the host time context for one simulated machine. All fields are
// fixed once New returns.
type Bridge struct {
	epoch uint64
	guard uint64
	sig   syscall.Signal
	timer *timerSource
	log   *logrus.Entry
}

// New captures the monotonic epoch and creates the host timer, unarmed.
// Host failures are returned wrapped; the underlying errno still matches
// with errors.Is.
func New(cfg Config) (*Bridge, error) {
	applyDefaults(&cfg)
	switch {
	case cfg.SleepGuard == NoSleepGuard:
		cfg.SleepGuard = 0
	case cfg.SleepGuard < 0:
		return nil, errors.Errorf("hosttime: negative sleep guard %s", cfg.SleepGuard)
	}

	epoch, err := readClock(unix.CLOCK_MONOTONIC)
	if err != nil {
		return nil, errors.Wrap(err, "hosttime: reading monotonic clock")
	}

	ts, err := newTimerSource(epoch, cfg.Signal)
	if err != nil {
		return nil, err
	}

	b := &Bridge{
		epoch: epoch,
		guard: uint64(cfg.SleepGuard),
		sig:   cfg.Signal,
		timer: ts,
		log:   cfg.Logger.WithField("component", "hosttime"),
	}
	b.log.WithFields(logrus.Fields{
		"epoch":    epoch,
		"irq":      int(cfg.Signal),
		"strategy": timerStrategy,
	}).Debug("host timer initialized")
	return b, nil
}

// Arm programs the timer to fire once at the virtual deadline. A pending
// deadline is replaced. Deadlines already past fire as soon as possible.
func (b *Bridge) Arm(deadline uint64) error {
	if err := b.timer.arm(deadline); err != nil {
		b.log.WithError(err).WithField("deadline", deadline).Warn("arming host timer failed")
		return err
	}
	if b.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		b.log.WithField("deadline", deadline).Trace("host timer armed")
	}
	return nil
}

// SleepGuard returns the guard SleepUntil applies.
func (b *Bridge) SleepGuard() time.Duration {
	return time.Duration(b.guard)
}

// IRQ returns the signal raised on timer expiry. It is the simulated timer
// interrupt number and does not change for the life of the bridge.
func (b *Bridge) IRQ() syscall.Signal {
	return b.sig
}

// Close releases the host timer. A pending expiry is cancelled.
func (b *Bridge) Close() error {
	return b.timer.close()
}
