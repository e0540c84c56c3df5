package monitor

import (
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

var now = time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)

// Scenario: the entry without a time is skipped and the timed one is chosen.
func TestSelect_SkipsMissingTime(t *testing.T) {
	f := feed.RawFeed{
		dep("A", nil, nil),
		dep("A", at(now, 5*time.Minute), ptr(60)),
	}
	d, ok := Select(f, Query{Destinations: []string{"A"}}, now)
	if !ok {
		t.Fatal("expected a departure")
	}
	if !d.Equal(f[1]) {
		t.Errorf("selected %+v, want second entry", d)
	}
	if got := DueIn(d, now); got != 5 {
		t.Errorf("DueIn = %d, want 5", got)
	}
	if got := DelayMinutes(d); got != 1 {
		t.Errorf("DelayMinutes = %d, want 1", got)
	}
	t.Logf("✓ Selected %s due in %d min", d.Direction, DueIn(d, now))
}

func TestSelect_MinLeadExcludes(t *testing.T) {
	f := feed.RawFeed{
		dep("A", nil, nil),
		dep("A", at(now, 5*time.Minute), ptr(60)),
	}
	if d, ok := Select(f, Query{Destinations: []string{"A"}, MinLead: 10}, now); ok {
		t.Errorf("expected no departure, got %+v", d)
	}
}

func TestSelect_Cases(t *testing.T) {
	f := feed.RawFeed{
		dep("S Hackescher Markt", at(now, 12*time.Minute), nil),
		dep("U Rosa-Luxemburg-Platz", at(now, 3*time.Minute), nil),
		dep("S Hackescher Markt", at(now, 2*time.Minute), nil),
		dep("S Hackescher Markt", at(now, -1*time.Minute), nil),
		dep("S+U Pankow", at(now, 0), nil),
		dep("Hackescher Markt via Pankow", at(now, 20*time.Minute), nil),
	}

	tests := []struct {
		name     string
		query    Query
		wantOK   bool
		wantDir  string
		wantLead time.Duration
	}{
		{"first match", Query{Destinations: []string{"Hackescher"}}, true, "S Hackescher Markt", 12 * time.Minute},
		{"second match in feed order", Query{Destinations: []string{"Hackescher"}, Index: 1}, true, "S Hackescher Markt", 2 * time.Minute},
		{"substring match", Query{Destinations: []string{"Hackescher"}, Index: 2}, true, "Hackescher Markt via Pankow", 20 * time.Minute},
		{"index past matches", Query{Destinations: []string{"Hackescher"}, Index: 3}, false, "", 0},
		{"negative index", Query{Destinations: []string{"Hackescher"}, Index: -1}, false, "", 0},
		{"destination major", Query{Destinations: []string{"Rosa", "Hackescher"}, Index: 1}, true, "S Hackescher Markt", 12 * time.Minute},
		{"min lead", Query{Destinations: []string{"Hackescher"}, MinLead: 13}, true, "Hackescher Markt via Pankow", 20 * time.Minute},
		{"departing now is excluded", Query{Destinations: []string{"Pankow"}}, true, "Hackescher Markt via Pankow", 20 * time.Minute},
		{"no destinations", Query{}, false, "", 0},
		{"case sensitive", Query{Destinations: []string{"hackescher"}}, false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Select(f, tt.query, now)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if d.Direction != tt.wantDir || d.When.Sub(now) != tt.wantLead {
				t.Errorf("got %s +%s, want %s +%s", d.Direction, d.When.Sub(now), tt.wantDir, tt.wantLead)
			}
		})
	}
}

func TestSelect_DuplicatePerDestination(t *testing.T) {
	f := feed.RawFeed{dep("S+U Pankow", at(now, 4*time.Minute), nil)}
	q := Query{Destinations: []string{"Pankow", "S+U"}, Index: 1}
	d, ok := Select(f, q, now)
	if !ok || !d.Equal(f[0]) {
		t.Errorf("entry matching two destinations should be collected twice, got ok=%v", ok)
	}
}

func TestSelect_NeverReturnsPastOrUntimed(t *testing.T) {
	var f feed.RawFeed
	for i := -30; i <= 30; i += 3 {
		f = append(f, dep("A", at(now, time.Duration(i)*time.Minute+17*time.Second), nil))
		f = append(f, dep("A", nil, nil))
	}
	for idx := 0; idx < len(f); idx++ {
		d, ok := Select(f, Query{Destinations: []string{"A"}, Index: idx}, now)
		if !ok {
			continue
		}
		if d.When == nil {
			t.Fatalf("index %d: untimed departure selected", idx)
		}
		if !d.When.After(now) {
			t.Fatalf("index %d: departure at %s is not after now", idx, d.When)
		}
	}
}

func TestDueIn_Floors(t *testing.T) {
	d := dep("A", at(now, 4*time.Minute+59*time.Second), nil)
	if got := DueIn(d, now); got != 4 {
		t.Errorf("DueIn = %d, want 4", got)
	}
}

func TestDelayMinutes(t *testing.T) {
	tests := []struct {
		delay *int
		want  int
	}{
		{nil, 0},
		{ptr(0), 0},
		{ptr(59), 0},
		{ptr(60), 1},
		{ptr(150), 2},
		{ptr(-30), -1},
		{ptr(-120), -2},
	}
	for _, tt := range tests {
		if got := DelayMinutes(dep("A", nil, tt.delay)); got != tt.want {
			t.Errorf("DelayMinutes(%v) = %d, want %d", tt.delay, got, tt.want)
		}
	}
}
