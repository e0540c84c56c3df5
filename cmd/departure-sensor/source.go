package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
)

// fileSource serves a departures document from a local file. It lets the CLI replay
// a captured response without network access.
type fileSource struct {
	path   string
	format string
	loc    *time.Location
}

// Departures reads and decodes the file on every call. Read failures are reported as
// network errors so the sensor falls back to its cache as it would for a remote feed.
func (s *fileSource) Departures(ctx context.Context, stopID string, _ time.Duration) (feed.RawFeed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &feed.NetworkError{URL: s.path, Cause: err}
	}
	return feed.Decode(s.format, body, stopID, s.loc)
}

// newSource picks an HTTP client for http(s) URLs and a file source otherwise.
func newSource(urlOrPath, format string, timeout time.Duration, loc *time.Location) monitor.FeedSource {
	if !strings.HasPrefix(urlOrPath, "http://") && !strings.HasPrefix(urlOrPath, "https://") {
		return &fileSource{path: urlOrPath, format: format, loc: loc}
	}
	return feed.NewClient(urlOrPath,
		feed.WithFormat(format),
		feed.WithLocation(loc),
		feed.WithTimeout(timeout),
	)
}

func describeSource(src monitor.FeedSource) string {
	switch s := src.(type) {
	case *fileSource:
		return "file " + s.path
	case *feed.Client:
		return "http"
	default:
		return fmt.Sprintf("%T", src)
	}
}
