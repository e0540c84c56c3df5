// Package feed models a stop's departure board and handles retrieving it.
//
// It supports two wire formats:
//   - json: the transport.rest departures array (when, delay, direction, trip, stop, line)
//   - gtfsrt: a GTFS-Realtime TripUpdates protobuf message
//
// The main types are Departure, RawFeed and Client. RawFeed preserves the order in
// which the remote feed listed its entries.
package feed
