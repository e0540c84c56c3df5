package monitor

import "time"

// EventKind classifies the facts a tick reports.
type EventKind int

const (
	EventConnectionLost EventKind = iota + 1
	EventReconnected
	EventCacheWriteFailed
	EventCacheReadFailed
	EventNoMatch
	EventStaleData
)

func (k EventKind) String() string {
	switch k {
	case EventConnectionLost:
		return "connection_lost"
	case EventReconnected:
		return "reconnected"
	case EventCacheWriteFailed:
		return "cache_write_failed"
	case EventCacheReadFailed:
		return "cache_read_failed"
	case EventNoMatch:
		return "no_match"
	case EventStaleData:
		return "stale_data"
	default:
		return "unknown"
	}
}

// Event is one fact emitted during a tick.
type Event struct {
	Kind      EventKind
	StopID    string
	TickID    string
	At        time.Time
	Err       error
	Age       time.Duration // EventNoMatch, EventStaleData
	Threshold time.Duration // EventNoMatch, EventStaleData
}

// Observer receives events. Implementations must not block the tick for long.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Observers fans an event out to several observers in order.
type Observers []Observer

func (o Observers) Observe(e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(e)
		}
	}
}

type discard struct{}

func (discard) Observe(Event) {}
