// Package monitor implements the per-tick departure sensor.
//
// A tick fetches the stop's feed (falling back to the cached snapshot when the remote
// feed fails), selects the n-th qualifying departure for the configured destinations
// and, when nothing qualifies, decides whether the data was fresh or stale.
//
// The package never formats log text. State changes and failures are reported as
// Event values to an injected Observer.
package monitor
