package feed

import "time"

// Transport kinds reported in line.product by the departures feed.
const (
	ProductSuburban = "suburban"
	ProductSubway   = "subway"
	ProductTram     = "tram"
	ProductBus      = "bus"
	ProductRegional = "regional"
	ProductFerry    = "ferry"
	ProductExpress  = "express"
)

// Departure is one feed entry exactly as received.
type Departure struct {
	Direction string
	When      *time.Time // absent for cancelled or unscheduled entries
	Delay     *int       // seconds
	TripID    string
	StopName  string
	Product   *string
	LineName  string
}

// RawFeed is the ordered list of departures of one response.
type RawFeed []Departure

// Equal reports whether d and o carry the same values. Timestamps are compared as
// instants.
func (d Departure) Equal(o Departure) bool {
	if d.Direction != o.Direction || d.TripID != o.TripID || d.StopName != o.StopName || d.LineName != o.LineName {
		return false
	}
	if (d.When == nil) != (o.When == nil) {
		return false
	}
	if d.When != nil && !d.When.Equal(*o.When) {
		return false
	}
	if (d.Delay == nil) != (o.Delay == nil) {
		return false
	}
	if d.Delay != nil && *d.Delay != *o.Delay {
		return false
	}
	if (d.Product == nil) != (o.Product == nil) {
		return false
	}
	return d.Product == nil || *d.Product == *o.Product
}

// Equal reports whether both feeds hold equal departures in the same order.
func (f RawFeed) Equal(o RawFeed) bool {
	if len(f) != len(o) {
		return false
	}
	for i := range f {
		if !f[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// ProductName returns the transport kind or "" when the feed did not report one.
func (d Departure) ProductName() string {
	if d.Product == nil {
		return ""
	}
	return *d.Product
}
