package core

import (
	"fmt"
	"sync"
)

// TimingEvent captures a timing-critical event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Clock     uint64 // Uptime in ticks when the event was recorded
	Value     uint64 // Context-dependent value
}

// Event type codes
const (
	EvtTimerSchedule = 1 // Timer added, Value = wake time
	EvtTimerFire     = 2 // Timer handler ran, Value = wake time
	EvtTimerPast     = 3 // Timer added with a wake time already past
	EvtIRQ           = 4 // Timer IRQ delivered, Value = lateness in ns
	EvtArm           = 5 // Host timer armed, Value = virtual deadline
	EvtArmError      = 6 // Host timer arm failed, Value = virtual deadline
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var eventNames = map[uint8]string{
	EvtTimerSchedule: "schedule",
	EvtTimerFire:     "fire",
	EvtTimerPast:     "past",
	EvtIRQ:           "irq",
	EvtArm:           "arm",
	EvtArmError:      "arm-error",
}

func (e TimingEvent) String() string {
	name, ok := eventNames[e.EventType]
	if !ok {
		name = fmt.Sprintf("evt%d", e.EventType)
	}
	return fmt.Sprintf("%-9s clock=%d value=%d", name, e.Clock, e.Value)
}

// Trace is a fixed-size ring of the most recent timing events
type Trace struct {
	mu    sync.Mutex
	ring  [TimingRingSize]TimingEvent
	head  uint8 // Next write position
	count int
}

// Record appends an event, overwriting the oldest when full
func (t *Trace) Record(evt uint8, clock, value uint64) {
	t.mu.Lock()
	t.ring[t.head] = TimingEvent{EventType: evt, Clock: clock, Value: value}
	t.head = (t.head + 1) % TimingRingSize
	if t.count < TimingRingSize {
		t.count++
	}
	t.mu.Unlock()
}

// Events returns the recorded events, oldest first
func (t *Trace) Events() []TimingEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TimingEvent, 0, t.count)
	start := (int(t.head) - t.count + TimingRingSize) % TimingRingSize
	for i := 0; i < t.count; i++ {
		out = append(out, t.ring[(start+i)%TimingRingSize])
	}
	return out
}
