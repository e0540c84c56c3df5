package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

// DefaultRedisPrefix namespaces snapshot keys.
const DefaultRedisPrefix = "departures:snapshot:"

// RedisStore keeps one hash per stop with the fields feed and created_at. Both are
// written by a single HSET, so a reader never sees a feed paired with another
// snapshot's timestamp.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore creates a store on rdb. An empty prefix selects DefaultRedisPrefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(stopID string) string { return s.prefix + stopID }

// Persist replaces the snapshot hash of stopID.
func (s *RedisStore) Persist(ctx context.Context, stopID string, f feed.RawFeed, at time.Time) error {
	data, err := feed.EncodeJSON(f)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	if err := s.rdb.HSet(ctx, s.key(stopID), "feed", data, "created_at", at.UnixMilli()).Err(); err != nil {
		return fmt.Errorf("persist snapshot stop=%q: %w", stopID, err)
	}
	return nil
}

// Load reads the snapshot hash of stopID.
func (s *RedisStore) Load(ctx context.Context, stopID string) (Snapshot, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(stopID)).Result()
	if err != nil {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: err}
	}
	if len(fields) == 0 {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: ErrNoSnapshot}
	}

	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: fmt.Errorf("created_at: %w", err)}
	}
	f, err := feed.DecodeJSON([]byte(fields["feed"]), time.UTC)
	if err != nil {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: err}
	}
	return Snapshot{Feed: f, CreatedAt: time.UnixMilli(createdAt)}, nil
}

// ModTime returns the created_at field of the snapshot hash.
func (s *RedisStore) ModTime(ctx context.Context, stopID string) (time.Time, error) {
	ms, err := s.rdb.HGet(ctx, s.key(stopID), "created_at").Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, &LoadError{StopID: stopID, Cause: ErrNoSnapshot}
	}
	if err != nil {
		return time.Time{}, &LoadError{StopID: stopID, Cause: err}
	}
	return time.UnixMilli(ms), nil
}
