package core

import "sync"

// State is the interrupt state saved by disableInterrupts
type State uintptr

// irqGate stands in for the MCU interrupt enable flag. While it is held the
// IRQ goroutine cannot dispatch timers.
type irqGate struct {
	mu sync.Mutex
}

// disableInterrupts blocks timer dispatch and returns the previous state
func (g *irqGate) disableInterrupts() State {
	g.mu.Lock()
	return 1
}

// restoreInterrupts re-enables timer dispatch
func (g *irqGate) restoreInterrupts(state State) {
	g.mu.Unlock()
}
