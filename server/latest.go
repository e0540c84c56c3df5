package server

import (
	"sync"

	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
)

// Latest holds the most recent reading. The poll loop writes it; handlers read it.
type Latest struct {
	mu      sync.RWMutex
	reading monitor.Reading
	set     bool
}

// Set replaces the held reading.
func (l *Latest) Set(r monitor.Reading) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reading = r
	l.set = true
}

// Get returns the held reading and whether any was set.
func (l *Latest) Get() (monitor.Reading, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reading, l.set
}
