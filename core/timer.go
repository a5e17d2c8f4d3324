package core

import "gopper-sim/hosttime"

// TimerFreq is the default simulated timer frequency
const TimerFreq = 12000000 // 12MHz, same as the RP2040 reference clock

const nsPerSec = 1000000000

// TimeSource is the part of the host time bridge the timer runtime uses
type TimeSource interface {
	Now(mode hosttime.Mode) uint64
	Arm(deadline uint64) error
}

// Clock presents host virtual time as MCU timer ticks
type Clock struct {
	src  TimeSource
	freq uint64
}

// NewClock creates a tick clock over src. A zero freq selects TimerFreq.
func NewClock(src TimeSource, freq uint32) *Clock {
	if freq == 0 {
		freq = TimerFreq
	}
	return &Clock{src: src, freq: uint64(freq)}
}

// Freq returns the tick frequency in Hz
func (c *Clock) Freq() uint32 {
	return uint32(c.freq)
}

// Uptime returns 64-bit ticks since the bridge epoch
func (c *Clock) Uptime() uint64 {
	return c.NanosToTicks(c.src.Now(hosttime.Monotonic))
}

// Now returns the low 32 bits of Uptime, like a free-running MCU counter
func (c *Clock) Now() uint32 {
	return uint32(c.Uptime())
}

// NanosToTicks converts virtual nanoseconds to ticks, rounding down
func (c *Clock) NanosToTicks(ns uint64) uint64 {
	return ns/nsPerSec*c.freq + ns%nsPerSec*c.freq/nsPerSec
}

// TicksToNanos converts ticks to virtual nanoseconds, rounding up so that a
// timer armed for the result never fires before the tick
func (c *Clock) TicksToNanos(ticks uint64) uint64 {
	rem := ticks % c.freq * nsPerSec
	ns := ticks / c.freq * nsPerSec
	ns += rem / c.freq
	if rem%c.freq != 0 {
		ns++
	}
	return ns
}

// FromUS converts microseconds to ticks
func (c *Clock) FromUS(us uint64) uint64 {
	return c.NanosToTicks(us * 1000)
}

// ToUS converts ticks to microseconds
func (c *Clock) ToUS(ticks uint64) uint64 {
	return ticks * 1000000 / c.freq
}
