//go:build unix && !linux && !darwin

package hosttime

import "syscall"

const timerStrategy = "unsupported"

type timerSource struct{}

func newTimerSource(uint64, syscall.Signal) (*timerSource, error) {
	return nil, ErrUnsupported
}

func (t *timerSource) arm(uint64) error { return ErrUnsupported }

func (t *timerSource) close() error { return nil }
