package core

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// 1MHz keeps one tick at exactly 1000ns
const testFreq = 1000000

func newTestScheduler() (*Scheduler, *fakeSource) {
	src := &fakeSource{}
	return NewScheduler(NewClock(src, testFreq), SchedulerConfig{}), src
}

func recorder(fired *[]uint64) func(*Timer) uint8 {
	return func(t *Timer) uint8 {
		*fired = append(*fired, t.WakeTime)
		return SF_DONE
	}
}

func TestSchedulerOrder(t *testing.T) {
	s, src := newTestScheduler()
	var fired []uint64

	assert.NilError(t, s.Add(&Timer{WakeTime: 30, Handler: recorder(&fired)}))
	assert.NilError(t, s.Add(&Timer{WakeTime: 10, Handler: recorder(&fired)}))
	assert.NilError(t, s.Add(&Timer{WakeTime: 20, Handler: recorder(&fired)}))

	next, ok := s.Next()
	assert.Check(t, ok)
	assert.Check(t, is.Equal(next, uint64(10)))
	assert.Check(t, is.Equal(s.Pending(), 3))

	// Only a new earliest timer re-arms the host
	assert.Check(t, is.DeepEqual(src.armCalls(), []uint64{30000, 10000}))
}

func TestSchedulerDispatchDue(t *testing.T) {
	s, src := newTestScheduler()
	var fired []uint64

	for _, wake := range []uint64{10, 20, 30} {
		assert.NilError(t, s.Add(&Timer{WakeTime: wake, Handler: recorder(&fired)}))
	}

	src.set(15000)
	assert.NilError(t, s.Dispatch())
	assert.Check(t, is.DeepEqual(fired, []uint64{10}))
	calls := src.armCalls()
	assert.Check(t, is.Equal(calls[len(calls)-1], uint64(20000)))

	src.set(30000)
	assert.NilError(t, s.Dispatch())
	assert.Check(t, is.DeepEqual(fired, []uint64{10, 20, 30}))
	assert.Check(t, is.Equal(s.Pending(), 0))

	_, ok := s.Next()
	assert.Check(t, !ok)
}

func TestSchedulerReschedule(t *testing.T) {
	s, src := newTestScheduler()
	count := 0
	periodic := &Timer{WakeTime: 5, Handler: func(t *Timer) uint8 {
		count++
		t.WakeTime += 5
		return SF_RESCHEDULE
	}}
	assert.NilError(t, s.Add(periodic))

	src.set(5000)
	assert.NilError(t, s.Dispatch())
	assert.Check(t, is.Equal(count, 1))

	next, _ := s.Next()
	assert.Check(t, is.Equal(next, uint64(10)))
	calls := src.armCalls()
	assert.Check(t, is.Equal(calls[len(calls)-1], uint64(10000)))
}

func TestSchedulerRescheduleIntoPastRunsOncePerDispatch(t *testing.T) {
	s, src := newTestScheduler()
	count := 0
	assert.NilError(t, s.Add(&Timer{WakeTime: 1, Handler: func(t *Timer) uint8 {
		count++
		return SF_RESCHEDULE
	}}))

	src.set(10000)
	assert.NilError(t, s.Dispatch())
	assert.NilError(t, s.Dispatch())
	assert.Check(t, is.Equal(count, 2))
	assert.Check(t, is.Equal(s.Pending(), 1))
}

func TestSchedulerRemove(t *testing.T) {
	s, _ := newTestScheduler()
	var fired []uint64
	a := &Timer{WakeTime: 10, Handler: recorder(&fired)}
	b := &Timer{WakeTime: 20, Handler: recorder(&fired)}
	assert.NilError(t, s.Add(a))
	assert.NilError(t, s.Add(b))

	assert.Check(t, s.Remove(a))
	assert.Check(t, !s.Remove(a))
	assert.Check(t, is.Equal(s.Pending(), 1))

	next, _ := s.Next()
	assert.Check(t, is.Equal(next, uint64(20)))
}

func TestSchedulerArmError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	metrics := NewMetrics(nil)
	s := NewScheduler(NewClock(src, testFreq), SchedulerConfig{Metrics: metrics})

	err := s.Add(&Timer{WakeTime: 10, Handler: func(*Timer) uint8 { return SF_DONE }})
	assert.ErrorContains(t, err, "arming timer for tick 10: boom")
	assert.Check(t, is.Equal(testutil.ToFloat64(metrics.ArmErrors), 1.0))

	events := s.Trace().Events()
	assert.Check(t, is.Equal(events[len(events)-1].EventType, uint8(EvtArmError)))
}

func TestSchedulerPastTimerTraced(t *testing.T) {
	s, src := newTestScheduler()
	src.set(50000)

	assert.NilError(t, s.Add(&Timer{WakeTime: 10, Handler: func(*Timer) uint8 { return SF_DONE }}))
	events := s.Trace().Events()
	assert.Check(t, is.Equal(events[0].EventType, uint8(EvtTimerPast)))
	assert.Check(t, is.Equal(events[0].Value, uint64(10)))
}

func TestHandleIRQ(t *testing.T) {
	src := &fakeSource{}
	metrics := NewMetrics(nil)
	s := NewScheduler(NewClock(src, testFreq), SchedulerConfig{Metrics: metrics})
	var fired []uint64
	assert.NilError(t, s.Add(&Timer{WakeTime: 10, Handler: recorder(&fired)}))

	src.set(12000)
	assert.NilError(t, s.HandleIRQ())
	assert.Check(t, is.DeepEqual(fired, []uint64{10}))
	assert.Check(t, is.Equal(testutil.ToFloat64(metrics.IRQs), 1.0))
	assert.Check(t, is.Equal(testutil.ToFloat64(metrics.Dispatched), 1.0))

	var irq *TimingEvent
	for _, e := range s.Trace().Events() {
		e := e
		if e.EventType == EvtIRQ {
			irq = &e
		}
	}
	assert.Assert(t, irq != nil)
	assert.Check(t, is.Equal(irq.Value, uint64(2000)))
}
