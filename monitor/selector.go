package monitor

import (
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

// Query describes which departure a sensor reports.
type Query struct {
	Destinations []string // matched against the departure's direction, in this order
	MinLead      int      // minutes; departures leaving sooner are skipped
	Index        int      // zero-based position among the qualifying departures
}

// Select returns the departure at q.Index among the qualifying ones.
//
// Qualifying departures are collected destination by destination: all matches of
// the first destination in feed order, then all matches of the second, and so on.
// The result is not sorted by time. An entry matching several destinations is
// collected once per destination.
func Select(f feed.RawFeed, q Query, now time.Time) (feed.Departure, bool) {
	if q.Index < 0 {
		return feed.Departure{}, false
	}
	var acc []feed.Departure
	for _, dest := range q.Destinations {
		for _, d := range f {
			if d.When == nil {
				continue
			}
			if !strings.Contains(d.Direction, dest) {
				continue
			}
			lead := d.When.Sub(now)
			if lead <= 0 || int(lead/time.Minute) < q.MinLead {
				continue
			}
			acc = append(acc, d)
			if len(acc) > q.Index {
				return acc[q.Index], true
			}
		}
	}
	return feed.Departure{}, false
}

// DueIn returns the whole minutes until d leaves, rounded down.
func DueIn(d feed.Departure, now time.Time) int {
	if d.When == nil {
		return 0
	}
	return int(d.When.Sub(now) / time.Minute)
}

// DelayMinutes returns the delay in whole minutes, rounded down; 0 when the feed
// reported none.
func DelayMinutes(d feed.Departure) int {
	if d.Delay == nil {
		return 0
	}
	return floorDiv(*d.Delay, 60)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
