package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

// Database drivers understood by SQLStore. Callers register them with blank imports
// (modernc.org/sqlite, github.com/jackc/pgx/v5/stdlib).
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS departure_snapshots (
	stop_id    TEXT PRIMARY KEY,
	feed       TEXT NOT NULL,
	created_at BIGINT NOT NULL
);
`

// SQLStore keeps one row per stop. Replacing a snapshot is a single upsert, so a
// reader sees either the previous row or the new one.
type SQLStore struct {
	DB     *sql.DB
	driver string
}

// NewSQLStore wraps an open database. driver selects the placeholder dialect.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{DB: db, driver: driver}
}

// OpenDB opens and pings a database for the given driver.
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("openDB: open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One writer at a time; WAL lets the HTTP readers proceed during a write.
		db.SetMaxOpenConns(1)
		for _, p := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 10000"} {
			if _, err := db.ExecContext(ctx, p); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("openDB: %s: %w", p, err)
			}
		}
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openDB: verify %s connection: %w", driver, err)
	}
	return db, nil
}

// InitSchema creates the snapshots table.
func (s *SQLStore) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("init schema: db is nil")
	}
	if _, err := s.DB.ExecContext(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("init schema: create departure_snapshots: %w", err)
	}
	return nil
}

// Persist upserts the snapshot row of stopID.
func (s *SQLStore) Persist(ctx context.Context, stopID string, f feed.RawFeed, at time.Time) error {
	if s.DB == nil {
		return errors.New("snapshot store: db is nil")
	}
	data, err := feed.EncodeJSON(f)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	q := s.rebind(`
	INSERT INTO departure_snapshots (stop_id, feed, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (stop_id) DO UPDATE
	SET feed = excluded.feed,
		created_at = excluded.created_at;
	`)
	if _, err := s.DB.ExecContext(ctx, q, stopID, string(data), at.UnixMilli()); err != nil {
		return fmt.Errorf("persist snapshot stop=%q: %w", stopID, err)
	}
	return nil
}

// Load reads the snapshot row of stopID.
func (s *SQLStore) Load(ctx context.Context, stopID string) (Snapshot, error) {
	if s.DB == nil {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: errors.New("db is nil")}
	}

	var data string
	var createdAt int64
	q := s.rebind(`SELECT feed, created_at FROM departure_snapshots WHERE stop_id = $1;`)
	err := s.DB.QueryRowContext(ctx, q, stopID).Scan(&data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: ErrNoSnapshot}
	}
	if err != nil {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: fmt.Errorf("query departure_snapshots: %w", err)}
	}

	f, err := feed.DecodeJSON([]byte(data), time.UTC)
	if err != nil {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: err}
	}
	return Snapshot{Feed: f, CreatedAt: time.UnixMilli(createdAt)}, nil
}

// ModTime returns the stored creation time of the snapshot row.
func (s *SQLStore) ModTime(ctx context.Context, stopID string) (time.Time, error) {
	if s.DB == nil {
		return time.Time{}, &LoadError{StopID: stopID, Cause: errors.New("db is nil")}
	}

	var createdAt int64
	q := s.rebind(`SELECT created_at FROM departure_snapshots WHERE stop_id = $1;`)
	err := s.DB.QueryRowContext(ctx, q, stopID).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, &LoadError{StopID: stopID, Cause: ErrNoSnapshot}
	}
	if err != nil {
		return time.Time{}, &LoadError{StopID: stopID, Cause: err}
	}
	return time.UnixMilli(createdAt), nil
}

// rebind rewrites $N placeholders for SQLite, which binds positional ? markers.
func (s *SQLStore) rebind(q string) string {
	if s.driver != DriverSQLite {
		return q
	}
	for i := 9; i >= 1; i-- {
		q = strings.ReplaceAll(q, "$"+strconv.Itoa(i), "?")
	}
	return q
}
