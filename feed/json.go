package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FormatJSON and FormatGTFSRT name the supported wire formats.
const (
	FormatJSON   = "json"
	FormatGTFSRT = "gtfsrt"
)

// localLayout is used for timestamps that carry no UTC offset.
const localLayout = "2006-01-02T15:04:05"

type wireStop struct {
	Name string `json:"name"`
}

type wireLine struct {
	Product *string `json:"product"`
	Name    string  `json:"name"`
}

type wireDeparture struct {
	When      *string    `json:"when"`
	Delay     *int       `json:"delay"`
	Direction *string    `json:"direction"`
	Trip      tripString `json:"trip"`
	Stop      wireStop   `json:"stop"`
	Line      wireLine   `json:"line"`
}

// tripString accepts trip identifiers sent either as JSON strings or numbers.
type tripString string

func (t *tripString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = tripString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("trip: %w", err)
	}
	*t = tripString(n.String())
	return nil
}

// DecodeJSON parses a departures array. Timestamps without a UTC offset are read in
// loc; a nil loc means UTC.
func DecodeJSON(body []byte, loc *time.Location) (RawFeed, error) {
	if loc == nil {
		loc = time.UTC
	}
	var wire []wireDeparture
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ParseError{Format: FormatJSON, Cause: err}
	}
	if wire == nil {
		return nil, &ParseError{Format: FormatJSON, Cause: fmt.Errorf("expected array, got %q", truncate(body, 32))}
	}

	out := make(RawFeed, 0, len(wire))
	for i, w := range wire {
		d := Departure{
			Delay:    w.Delay,
			TripID:   string(w.Trip),
			StopName: w.Stop.Name,
			Product:  w.Line.Product,
			LineName: w.Line.Name,
		}
		if w.Direction != nil {
			d.Direction = *w.Direction
		}
		if w.When != nil {
			ts, err := ParseTimestamp(*w.When, loc)
			if err != nil {
				return nil, &ParseError{Format: FormatJSON, Cause: fmt.Errorf("entry %d: %w", i, err)}
			}
			d.When = &ts
		}
		out = append(out, d)
	}
	return out, nil
}

// EncodeJSON writes f in the same shape DecodeJSON reads.
func EncodeJSON(f RawFeed) ([]byte, error) {
	wire := make([]wireDeparture, 0, len(f))
	for _, d := range f {
		dir := d.Direction
		w := wireDeparture{
			Delay:     d.Delay,
			Direction: &dir,
			Trip:      tripString(d.TripID),
			Stop:      wireStop{Name: d.StopName},
			Line:      wireLine{Product: d.Product, Name: d.LineName},
		}
		if d.When != nil {
			s := d.When.Format(time.RFC3339Nano)
			w.When = &s
		}
		wire = append(wire, w)
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	return b, nil
}

func (t tripString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// ParseTimestamp reads an ISO-8601 timestamp. Values with an offset keep it; values
// without one are interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(localLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %s", strconv.Quote(s))
	}
	return ts, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
