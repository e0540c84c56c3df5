// Package cache persists the last successfully fetched departures feed of a stop so
// that it can be served when the remote feed is unreachable.
//
// Three backends implement Store:
//   - FileStore: one JSON document per stop, replaced by atomic rename
//   - SQLStore: one row per stop in SQLite or PostgreSQL
//   - RedisStore: one hash per stop
//
// A snapshot is immutable once written; Persist replaces it as a whole and Load never
// observes a partially written snapshot.
package cache
