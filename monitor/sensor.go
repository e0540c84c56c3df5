package monitor

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/departure-sensor/cache"
	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

// Unavailable marks readings and attributes without a value.
const Unavailable = "n/a"

// Attribute keys of a reading.
const (
	AttrStopID        = "stop_id"
	AttrStopName      = "stop_name"
	AttrDelay         = "delay"
	AttrDepartureTime = "departure_time"
	AttrDirection     = "direction"
	AttrType          = "type"
	AttrLineName      = "line_name"
)

// Reading is the outcome of one tick.
type Reading struct {
	TickID     string
	StopID     string
	At         time.Time
	Departure  *feed.Departure // nil when nothing was selected
	DueIn      int             // minutes; meaningful only with a departure
	Delay      int             // minutes
	Source     Source
	Connection ConnectionState
	Diagnostic Diagnostic
	Age        time.Duration // age of the data used; 0 for live data
}

// Available reports whether the reading carries a departure.
func (r Reading) Available() bool { return r.Departure != nil }

// State returns the due-in minutes or Unavailable.
func (r Reading) State() string {
	if r.Departure == nil {
		return Unavailable
	}
	return strconv.Itoa(r.DueIn)
}

// Attributes returns the reading's attributes. Every value is Unavailable when no
// departure was selected.
func (r Reading) Attributes() map[string]string {
	if r.Departure == nil {
		return map[string]string{
			AttrStopID:        Unavailable,
			AttrStopName:      Unavailable,
			AttrDelay:         Unavailable,
			AttrDepartureTime: Unavailable,
			AttrDirection:     Unavailable,
			AttrType:          Unavailable,
			AttrLineName:      Unavailable,
		}
	}
	d := r.Departure
	product := d.ProductName()
	if product == "" {
		product = Unavailable
	}
	when := Unavailable
	if d.When != nil {
		loc := r.At.Location()
		when = d.When.In(loc).Format(time.RFC3339)
	}
	return map[string]string{
		AttrStopID:        r.StopID,
		AttrStopName:      d.StopName,
		AttrDelay:         strconv.Itoa(r.Delay),
		AttrDepartureTime: when,
		AttrDirection:     d.Direction,
		AttrType:          product,
		AttrLineName:      d.LineName,
	}
}

// Sensor reports the next qualifying departure of one stop. It owns the poller
// state and is not safe for concurrent Poll calls.
type Sensor struct {
	settings Settings
	query    Query
	fetcher  *Fetcher
	store    cache.Store
	observer Observer
	state    State
	newID    func() string
}

// NewSensor wires a sensor. A nil observer discards events.
func NewSensor(settings Settings, q Query, source FeedSource, store cache.Store, observer Observer) *Sensor {
	if observer == nil {
		observer = discard{}
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &Sensor{
		settings: settings,
		query:    q,
		fetcher:  NewFetcher(source, store, observer),
		store:    store,
		observer: observer,
		state:    State{Connection: Online},
		newID:    uuid.NewString,
	}
}

// State returns a copy of the poller state.
func (s *Sensor) State() State { return s.state }

// Settings returns the sensor's settings.
func (s *Sensor) Settings() Settings { return s.settings }

// Poll runs one tick at now. Fetch and cache failures degrade to an unavailable
// reading; the error is non-nil only when ctx is already done.
func (s *Sensor) Poll(ctx context.Context, now time.Time) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}
	now = now.In(s.settings.Location)
	id := s.newID()
	ctx = WithTickID(ctx, id)

	r := Reading{TickID: id, StopID: s.settings.StopID, At: now}

	f, src, err := s.fetcher.Fetch(ctx, s.settings, &s.state, now)
	r.Source = src
	r.Connection = s.state.Connection
	if err != nil {
		r.Diagnostic = DiagnosticNoData
		return r, nil
	}

	if src == SourceCache {
		age, ageErr := cache.Age(ctx, s.store, s.settings.StopID, s.state.SnapshotAt, now)
		if ageErr != nil {
			// Unknown age counts as stale.
			age = s.settings.Threshold() + time.Nanosecond
		}
		r.Age = age
	}

	d, ok := Select(f, s.query, now)
	if ok {
		r.Departure = &d
		r.DueIn = DueIn(d, now)
		r.Delay = DelayMinutes(d)
		return r, nil
	}

	threshold := s.settings.Threshold()
	r.Diagnostic = Diagnose(r.Age, threshold)
	kind := EventNoMatch
	if r.Diagnostic == DiagnosticStale {
		kind = EventStaleData
	}
	s.observer.Observe(Event{Kind: kind, StopID: s.settings.StopID, TickID: id, At: now, Age: r.Age, Threshold: threshold})
	return r, nil
}

// IsNoData reports whether err means neither feed nor cache produced data.
func IsNoData(err error) bool { return errors.Is(err, ErrNoDataAvailable) }
