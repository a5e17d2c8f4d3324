//go:build unix

package config

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reservedSignals cannot carry the timer IRQ: the process dies, crashes, stops
// or shuts down when they arrive, or the Go runtime uses them itself
var reservedSignals = map[syscall.Signal]string{
	unix.SIGKILL: "cannot be caught",
	unix.SIGSTOP: "cannot be caught",
	unix.SIGSEGV: "fault signal",
	unix.SIGBUS:  "fault signal",
	unix.SIGFPE:  "fault signal",
	unix.SIGILL:  "fault signal",
	unix.SIGTRAP: "fault signal",
	unix.SIGABRT: "aborts the process",
	unix.SIGQUIT: "dumps goroutines and exits",
	unix.SIGINT:  "stops the simulator",
	unix.SIGTERM: "stops the simulator",
	unix.SIGURG:  "used by the Go scheduler",
	unix.SIGPROF: "used by the Go profiler",
}
