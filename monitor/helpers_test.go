package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/cache"
	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

var errUnreachable = errors.New("dial tcp: connection refused")

func ptr[T any](v T) *T { return &v }

func dep(direction string, when *time.Time, delay *int) feed.Departure {
	return feed.Departure{
		Direction: direction,
		When:      when,
		Delay:     delay,
		TripID:    "1|" + direction,
		StopName:  "S+U Alexanderplatz",
		Product:   ptr(feed.ProductTram),
		LineName:  "M4",
	}
}

func at(base time.Time, d time.Duration) *time.Time {
	t := base.Add(d)
	return &t
}

// scriptedSource replays a sequence of results, repeating the last one.
type scriptedSource struct {
	mu      sync.Mutex
	results []sourceResult
	calls   int
}

type sourceResult struct {
	feed feed.RawFeed
	err  error
}

func (s *scriptedSource) Departures(ctx context.Context, stopID string, horizon time.Duration) (feed.RawFeed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	r := s.results[i]
	return r.feed, r.err
}

type recorder struct {
	events []Event
}

func (r *recorder) Observe(e Event) { r.events = append(r.events, e) }

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// failingStore wraps a store and fails its writes.
type failingStore struct {
	cache.Store
	err error
}

func (s failingStore) Persist(context.Context, string, feed.RawFeed, time.Time) error {
	return s.err
}
