package core

import (
	"io"

	"gopper-sim/hosttime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint64 // Uptime in ticks
	Handler  func(*Timer) uint8
	next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// SchedulerConfig holds optional collaborators for a Scheduler
type SchedulerConfig struct {
	Trace   *Trace
	Metrics *Metrics
	Logger  *logrus.Entry
}

// Scheduler keeps timers sorted by wake time and keeps the host timer armed
// for the earliest one.
//
// Handlers run with interrupts disabled and must not call Add or Remove;
// to run again they update WakeTime and return SF_RESCHEDULE.
type Scheduler struct {
	irqGate
	clock   *Clock
	list    *Timer
	armedAt uint64 // Virtual deadline of the last successful arm
	armed   bool
	trace   *Trace
	metrics *Metrics
	log     *logrus.Entry
}

// NewScheduler creates a scheduler driving the host timer behind clock
func NewScheduler(clock *Clock, cfg SchedulerConfig) *Scheduler {
	if cfg.Trace == nil {
		cfg.Trace = &Trace{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Logger = logrus.NewEntry(l)
	}
	return &Scheduler{
		clock:   clock,
		trace:   cfg.Trace,
		metrics: cfg.Metrics,
		log:     cfg.Logger.WithField("component", "scheduler"),
	}
}

// Trace returns the scheduler's event ring
func (s *Scheduler) Trace() *Trace {
	return s.trace
}

// Add inserts a timer and re-arms the host timer if it is now the earliest
func (s *Scheduler) Add(t *Timer) error {
	state := s.disableInterrupts()
	defer s.restoreInterrupts(state)

	now := s.clock.Uptime()
	if t.WakeTime < now {
		s.trace.Record(EvtTimerPast, now, t.WakeTime)
	}
	s.trace.Record(EvtTimerSchedule, now, t.WakeTime)

	s.insertTimer(t)
	if s.list != t {
		return nil
	}
	return s.rearm(now)
}

// Remove unlinks a pending timer and reports whether it was found
func (s *Scheduler) Remove(t *Timer) bool {
	state := s.disableInterrupts()
	defer s.restoreInterrupts(state)

	for p := &s.list; *p != nil; p = &(*p).next {
		if *p == t {
			*p = t.next
			t.next = nil
			return true
		}
	}
	return false
}

// Pending returns the number of scheduled timers
func (s *Scheduler) Pending() int {
	state := s.disableInterrupts()
	defer s.restoreInterrupts(state)

	n := 0
	for t := s.list; t != nil; t = t.next {
		n++
	}
	return n
}

// Next returns the earliest wake time
func (s *Scheduler) Next() (uint64, bool) {
	state := s.disableInterrupts()
	defer s.restoreInterrupts(state)

	if s.list == nil {
		return 0, false
	}
	return s.list.WakeTime, true
}

// insertTimer inserts a timer in sorted order by WakeTime. Equal wake times
// keep insertion order.
func (s *Scheduler) insertTimer(t *Timer) {
	if s.list == nil || t.WakeTime < s.list.WakeTime {
		t.next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.next != nil && current.next.WakeTime <= t.WakeTime {
		current = current.next
	}

	t.next = current.next
	current.next = t
}

// HandleIRQ is called for each timer IRQ delivery
func (s *Scheduler) HandleIRQ() error {
	state := s.disableInterrupts()
	defer s.restoreInterrupts(state)

	s.metrics.IRQs.Inc()
	var late uint64
	if s.armed {
		if now := s.clock.src.Now(hosttime.Monotonic); now > s.armedAt {
			late = now - s.armedAt
		}
		s.metrics.Lateness.Observe(float64(late) / nsPerSec)
		s.armed = false
	}
	s.trace.Record(EvtIRQ, s.clock.Uptime(), late)
	return s.dispatch()
}

// Dispatch runs every timer whose wake time has passed and re-arms the host
// timer for the next one
func (s *Scheduler) Dispatch() error {
	state := s.disableInterrupts()
	defer s.restoreInterrupts(state)
	return s.dispatch()
}

func (s *Scheduler) dispatch() error {
	now := s.clock.Uptime()

	// Timers rescheduled into the past run on the next IRQ, not in this pass
	var again []*Timer
	for s.list != nil && s.list.WakeTime <= now {
		timer := s.list
		s.list = timer.next
		timer.next = nil

		s.trace.Record(EvtTimerFire, now, timer.WakeTime)
		s.metrics.Dispatched.Inc()
		if timer.Handler(timer) == SF_RESCHEDULE {
			again = append(again, timer)
		}
	}
	for _, t := range again {
		s.insertTimer(t)
	}
	return s.rearm(now)
}

// rearm programs the host timer for the head of the list
func (s *Scheduler) rearm(now uint64) error {
	if s.list == nil {
		return nil
	}
	deadline := s.clock.TicksToNanos(s.list.WakeTime)
	if err := s.clock.src.Arm(deadline); err != nil {
		s.trace.Record(EvtArmError, now, deadline)
		s.metrics.ArmErrors.Inc()
		s.log.WithError(err).WithField("wake", s.list.WakeTime).Error("failed to arm host timer")
		return errors.Wrapf(err, "arming timer for tick %d", s.list.WakeTime)
	}
	s.armedAt, s.armed = deadline, true
	s.trace.Record(EvtArm, now, deadline)
	return nil
}
