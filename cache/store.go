package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

// ErrNoSnapshot is wrapped by LoadError when nothing was ever persisted for a stop.
var ErrNoSnapshot = errors.New("no snapshot persisted")

// Snapshot is the point-in-time copy of one successful fetch.
type Snapshot struct {
	Feed      feed.RawFeed
	CreatedAt time.Time
}

// Store is the persistence contract for snapshots. Implementations keep at most one
// snapshot per stop id.
type Store interface {
	// Persist atomically replaces the snapshot of stopID.
	Persist(ctx context.Context, stopID string, f feed.RawFeed, at time.Time) error
	// Load returns the snapshot of stopID or a *LoadError.
	Load(ctx context.Context, stopID string) (Snapshot, error)
	// ModTime returns the storage medium's last modification time of the snapshot.
	ModTime(ctx context.Context, stopID string) (time.Time, error)
}

// LoadError is returned when a snapshot is missing, unreadable or corrupt.
type LoadError struct {
	StopID string
	Cause  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cache: load snapshot for stop %s: %v", e.StopID, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Age returns how old the snapshot of stopID is at now. known is the creation time
// remembered by the caller; when it is zero (nothing persisted since the process
// started) the store's modification time is used instead.
func Age(ctx context.Context, s Store, stopID string, known, now time.Time) (time.Duration, error) {
	if !known.IsZero() {
		return now.Sub(known), nil
	}
	mt, err := s.ModTime(ctx, stopID)
	if err != nil {
		return 0, err
	}
	return now.Sub(mt), nil
}
