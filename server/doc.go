// Package server exposes the latest sensor reading over HTTP.
//
// Routes:
//
//	GET /api/health      liveness, connection state and last tick time
//	GET /api/departure   the latest reading with state, unit, icon and attributes
//	GET /api/attributes  the attribute map of the latest reading
package server
