package feed

import (
	"fmt"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// DecodeGTFSRT turns a TripUpdates FeedMessage into the departures of one stop.
//
// GTFS-RT has no headsign, so the route id stands in for both the direction and the
// line name, and the stop id for the stop name. The departure event is preferred over
// the arrival event; updates with neither keep an absent time.
func DecodeGTFSRT(body []byte, stopID string) (RawFeed, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(body, &fm); err != nil {
		return nil, &ParseError{Format: FormatGTFSRT, Cause: err}
	}

	out := RawFeed{}
	for _, e := range fm.GetEntity() {
		tu := e.GetTripUpdate()
		if tu == nil {
			continue
		}
		trip := tu.GetTrip()
		routeID := trip.GetRouteId()
		for _, stu := range tu.GetStopTimeUpdate() {
			if stu.GetStopId() != stopID {
				continue
			}
			// Skipped stops are not served.
			if stu.GetScheduleRelationship() == gtfsrtpb.TripUpdate_StopTimeUpdate_SKIPPED {
				continue
			}
			d := Departure{
				Direction: routeID,
				TripID:    trip.GetTripId(),
				StopName:  stopID,
				LineName:  routeID,
			}
			ev := stu.GetDeparture()
			if ev == nil || ev.Time == nil {
				ev = stu.GetArrival()
			}
			if ev != nil {
				if ev.Time != nil {
					ts := time.Unix(ev.GetTime(), 0).UTC()
					d.When = &ts
				}
				if ev.Delay != nil {
					delay := int(ev.GetDelay())
					d.Delay = &delay
				}
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// Decode parses body in the given wire format. stopID is used by GTFS-RT only; loc
// applies to JSON timestamps without an offset.
func Decode(format string, body []byte, stopID string, loc *time.Location) (RawFeed, error) {
	switch format {
	case FormatJSON, "":
		return DecodeJSON(body, loc)
	case FormatGTFSRT:
		return DecodeGTFSRT(body, stopID)
	default:
		return nil, fmt.Errorf("unknown feed format %q", format)
	}
}
