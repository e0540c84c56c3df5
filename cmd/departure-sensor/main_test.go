package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/theoremus-urban-solutions/departure-sensor/cache"
	"github.com/theoremus-urban-solutions/departure-sensor/config"
	"github.com/theoremus-urban-solutions/departure-sensor/feed"
	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
)

const captured = `[
  {"when": "2024-05-17T10:05:00+02:00", "delay": 120, "direction": "S Hackescher Markt",
   "trip": "1|100", "stop": {"name": "S+U Alexanderplatz"},
   "line": {"name": "M4", "product": "tram"}}
]`

func TestOpenStore_Backends(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.CacheConfig
	}{
		{"file", config.CacheConfig{Backend: config.BackendFile, Dir: t.TempDir(), Prefix: "bvg_"}},
		{"sqlite", config.CacheConfig{Backend: config.BackendSQLite, DSN: filepath.Join(t.TempDir(), "snap.db")}},
		{"redis", config.CacheConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeStore, err := openStore(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			defer closeStore()

			when := time.Date(2024, 5, 17, 8, 5, 0, 0, time.UTC)
			f := feed.RawFeed{{Direction: "A", When: &when}}
			if err := store.Persist(ctx, "1", f, when); err != nil {
				t.Fatalf("Persist: %v", err)
			}
			snap, err := store.Load(ctx, "1")
			if err != nil || !snap.Feed.Equal(f) {
				t.Errorf("Load = %v, %v", snap.Feed, err)
			}
		})
	}

	if _, _, err := openStore(ctx, config.CacheConfig{Backend: "memcached"}); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "departures.json")
	if err := os.WriteFile(path, []byte(captured), 0o644); err != nil {
		t.Fatal(err)
	}
	src := newSource(path, feed.FormatJSON, time.Second, time.UTC)
	if describeSource(src) != "file "+path {
		t.Errorf("describeSource = %q", describeSource(src))
	}

	f, err := src.Departures(context.Background(), "900000100003", time.Hour)
	if err != nil {
		t.Fatalf("Departures: %v", err)
	}
	if len(f) != 1 || f[0].LineName != "M4" {
		t.Errorf("feed = %+v", f)
	}

	missing := newSource(filepath.Join(t.TempDir(), "nope.json"), feed.FormatJSON, time.Second, time.UTC)
	if _, err := missing.Departures(context.Background(), "1", time.Hour); err == nil {
		t.Error("missing file should fail")
	}

	if describeSource(newSource("https://example.org/{stop}", feed.FormatJSON, time.Second, time.UTC)) != "http" {
		t.Error("http URL should select the HTTP client")
	}
}

type countingPoller struct {
	mu    sync.Mutex
	polls int
}

func (p *countingPoller) Poll(ctx context.Context, now time.Time) (monitor.Reading, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls++
	return monitor.Reading{TickID: "t", At: now}, nil
}

func TestRunLoop_PollsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &countingPoller{}

	var mu sync.Mutex
	var seen int
	sink := func(_ context.Context, r monitor.Reading) {
		mu.Lock()
		defer mu.Unlock()
		seen++
		if seen == 3 {
			cancel()
		}
	}

	done := make(chan struct{})
	go func() {
		runLoop(ctx, p, 5*time.Millisecond, time.Now, sink)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	mu.Lock()
	defer mu.Unlock()
	if seen < 3 {
		t.Errorf("sink saw %d readings, want at least 3", seen)
	}
}

func TestSensorWithFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "departures.json")
	if err := os.WriteFile(path, []byte(captured), 0o644); err != nil {
		t.Fatal(err)
	}
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}

	s := monitor.NewSensor(
		monitor.Settings{StopID: "900000100003", Horizon: time.Hour, Location: berlin},
		monitor.Query{Destinations: []string{"Hackescher"}},
		newSource(path, feed.FormatJSON, time.Second, berlin),
		cache.NewFileStore(dir, "bvg_"),
		nil,
	)
	r, err := s.Poll(context.Background(), time.Date(2024, 5, 17, 10, 0, 0, 0, berlin))
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if r.State() != "5" || r.Delay != 2 {
		t.Errorf("state %s delay %d, want 5 and 2", r.State(), r.Delay)
	}
	if _, err := os.Stat(filepath.Join(dir, "bvg_900000100003.json")); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}
