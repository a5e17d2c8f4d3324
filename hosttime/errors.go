//go:build unix

package hosttime

import "github.com/pkg/errors"

var (
	// ErrClosed is returned when arming a timer after Close.
	ErrClosed = errors.New("hosttime: timer closed")

	// ErrSignal is returned by New when the timer strategy cannot raise the
	// requested signal.
	ErrSignal = errors.New("hosttime: signal not supported by timer strategy")

	// ErrUnsupported is returned by New on hosts without a timer strategy.
	ErrUnsupported = errors.New("hosttime: no timer source for this platform")
)
