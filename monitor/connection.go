package monitor

// ConnectionState tracks whether the last fetch reached the remote feed.
type ConnectionState int

const (
	Online ConnectionState = iota // initial state
	Offline
)

func (s ConnectionState) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// Transition moves the state to next and reports whether that was a change. Calls
// that keep the current state return false, so callers emit one event per edge.
func (s *ConnectionState) Transition(next ConnectionState) bool {
	if *s == next {
		return false
	}
	*s = next
	return true
}
