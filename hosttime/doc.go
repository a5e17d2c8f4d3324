// Package hosttime bridges a simulated machine onto host time.
//
// A Bridge captures a monotonic epoch when it is created and from then on
// exposes a virtual timeline of nanoseconds elapsed since that epoch. It can
// sleep for a duration or until a virtual deadline, and it owns a single
// one-shot host timer that raises a signal when a virtual deadline is reached.
// That signal stands in for the simulated machine's timer interrupt line; the
// caller decides how the signal is received and what the interrupt does.
//
// Two timer strategies exist and exactly one is compiled in:
//
//   - linux: a POSIX timer created on CLOCK_MONOTONIC and armed with an
//     absolute expiry (timer_create/timer_settime with TIMER_ABSTIME).
//   - darwin, or linux built with the hosttime_itimer tag: the process
//     interval timer (setitimer ITIMER_REAL) armed with a relative expiry.
//
// Both are one-shot. Arming again before expiry replaces the pending deadline.
package hosttime
