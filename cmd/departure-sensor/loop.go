package main

import (
	"context"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
)

// poller is the part of *monitor.Sensor the loop drives.
type poller interface {
	Poll(ctx context.Context, now time.Time) (monitor.Reading, error)
}

// runLoop polls once immediately and then on every interval until ctx is done. Each
// reading is handed to the sinks in order.
func runLoop(ctx context.Context, p poller, interval time.Duration, now func() time.Time, sinks ...func(context.Context, monitor.Reading)) {
	tick := func() {
		r, err := p.Poll(ctx, now())
		if err != nil {
			return
		}
		for _, sink := range sinks {
			sink(ctx, r)
		}
	}

	tick()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
