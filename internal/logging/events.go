package logging

import (
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
)

// EventLogger writes one log line per sensor event.
type EventLogger struct {
	log  *zap.SugaredLogger
	name string
}

// NewEventLogger logs events for the sensor called name. A nil logger selects the
// shared one.
func NewEventLogger(log *zap.SugaredLogger, name string) *EventLogger {
	if log == nil {
		log = Logger()
	}
	return &EventLogger{log: log, name: name}
}

// Observe implements monitor.Observer.
func (l *EventLogger) Observe(e monitor.Event) {
	kv := []interface{}{
		"sensor", l.name,
		"stop", e.StopID,
		"tick", e.TickID,
		"event", e.Kind.String(),
	}
	if e.Err != nil {
		kv = append(kv, "error", e.Err)
	}

	switch e.Kind {
	case monitor.EventConnectionLost:
		l.log.Warnw("Connection to departures feed lost, using cached data", kv...)
	case monitor.EventReconnected:
		l.log.Infow("Connection to departures feed re-established", kv...)
	case monitor.EventCacheWriteFailed:
		l.log.Errorw("Could not write departures snapshot", kv...)
	case monitor.EventCacheReadFailed:
		l.log.Errorw("Could not read departures snapshot, no data available", kv...)
	case monitor.EventNoMatch:
		l.log.Debugw("No departure matches the query", append(kv, "age", e.Age)...)
	case monitor.EventStaleData:
		l.log.Warnw("Departure data is older than the freshness threshold",
			append(kv, "age", e.Age, "threshold", e.Threshold)...)
	default:
		l.log.Infow("Sensor event", kv...)
	}
}
