package hosttime

// Mode selects which host clock Now samples.
type Mode int

const (
	// Monotonic reads nanoseconds elapsed since the bridge epoch.
	Monotonic Mode = iota
	// Wall reads the host realtime clock, nanoseconds since the Unix epoch.
	Wall
)

func (m Mode) String() string {
	switch m {
	case Monotonic:
		return "monotonic"
	case Wall:
		return "wall"
	default:
		return "unknown"
	}
}
