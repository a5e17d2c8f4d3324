package core

import (
	"context"
	"os"
	"os/signal"
)

// IRQLine receives the host timer signal and hands each delivery to a
// handler, the way an interrupt controller hands a line to its vector
type IRQLine struct {
	sig os.Signal
	ch  chan os.Signal
}

// ListenIRQ starts capturing sig immediately, so expiries raised before Run
// is called are not lost
func ListenIRQ(sig os.Signal) *IRQLine {
	l := &IRQLine{sig: sig, ch: make(chan os.Signal, 1)}
	signal.Notify(l.ch, sig)
	return l
}

// Run calls handler once per delivery until ctx is done, then stops
// capturing the signal
func (l *IRQLine) Run(ctx context.Context, handler func()) error {
	defer signal.Stop(l.ch)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.ch:
			handler()
		}
	}
}
