package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/cache"
	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

// ErrNoDataAvailable is returned when the live fetch failed and no snapshot could be
// loaded either.
var ErrNoDataAvailable = errors.New("no departure data available")

// Source tells where the feed of a tick came from.
type Source int

const (
	SourceNone Source = iota
	SourceLive
	SourceCache
)

func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceCache:
		return "cache"
	default:
		return "none"
	}
}

// FeedSource performs one live retrieval of a stop's departures.
type FeedSource interface {
	Departures(ctx context.Context, stopID string, horizon time.Duration) (feed.RawFeed, error)
}

// Settings is the immutable per-call configuration of a sensor.
type Settings struct {
	StopID     string
	Horizon    time.Duration  // window requested from the feed
	Location   *time.Location // zone of "now"
	StaleAfter time.Duration  // 0 means Horizon
}

// Threshold returns the age above which data counts as stale.
func (s Settings) Threshold() time.Duration {
	if s.StaleAfter > 0 {
		return s.StaleAfter
	}
	return s.Horizon
}

// State is the mutable state a poller carries from tick to tick.
type State struct {
	Connection ConnectionState
	SnapshotAt time.Time // creation time of the snapshot written by this process; zero if none
}

type tickKey struct{}

// WithTickID attaches a tick id to ctx; events emitted during the tick carry it.
func WithTickID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tickKey{}, id)
}

func tickID(ctx context.Context) string {
	id, _ := ctx.Value(tickKey{}).(string)
	return id
}

// Fetcher runs the live fetch with cache fallback.
type Fetcher struct {
	source   FeedSource
	store    cache.Store
	observer Observer
}

// NewFetcher creates a fetcher. A nil observer discards events.
func NewFetcher(source FeedSource, store cache.Store, observer Observer) *Fetcher {
	if observer == nil {
		observer = discard{}
	}
	return &Fetcher{source: source, store: store, observer: observer}
}

// Fetch returns the stop's feed at now. A live result is persisted and returned as
// SourceLive even when persisting fails. A failed live fetch leaves the cache
// untouched and returns the last snapshot as SourceCache. Connection edges are
// recorded in st and reported once per change.
func (f *Fetcher) Fetch(ctx context.Context, s Settings, st *State, now time.Time) (feed.RawFeed, Source, error) {
	live, liveErr := f.source.Departures(ctx, s.StopID, s.Horizon)
	if liveErr == nil {
		if err := f.store.Persist(ctx, s.StopID, live, now); err != nil {
			f.emit(ctx, Event{Kind: EventCacheWriteFailed, StopID: s.StopID, At: now, Err: err})
		} else {
			st.SnapshotAt = now
		}
		if st.Connection.Transition(Online) {
			f.emit(ctx, Event{Kind: EventReconnected, StopID: s.StopID, At: now})
		}
		return live, SourceLive, nil
	}

	if st.Connection.Transition(Offline) {
		f.emit(ctx, Event{Kind: EventConnectionLost, StopID: s.StopID, At: now, Err: liveErr})
	}

	snap, err := f.store.Load(ctx, s.StopID)
	if err != nil {
		f.emit(ctx, Event{Kind: EventCacheReadFailed, StopID: s.StopID, At: now, Err: err})
		return nil, SourceNone, fmt.Errorf("%w: live: %v; cache: %w", ErrNoDataAvailable, liveErr, err)
	}
	return snap.Feed, SourceCache, nil
}

func (f *Fetcher) emit(ctx context.Context, e Event) {
	e.TickID = tickID(ctx)
	f.observer.Observe(e)
}
