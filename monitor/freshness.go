package monitor

import "time"

// IsFresh reports whether data of the given age is still within threshold.
func IsFresh(age, threshold time.Duration) bool {
	return age <= threshold
}

// Diagnostic explains a reading without a departure.
type Diagnostic int

const (
	DiagnosticNone    Diagnostic = iota // a departure was selected
	DiagnosticNoMatch                   // data is fresh but nothing qualifies
	DiagnosticStale                     // data is older than the threshold
	DiagnosticNoData                    // neither the feed nor the cache produced data
)

func (d Diagnostic) String() string {
	switch d {
	case DiagnosticNone:
		return "ok"
	case DiagnosticNoMatch:
		return "no_match"
	case DiagnosticStale:
		return "stale"
	case DiagnosticNoData:
		return "no_data"
	default:
		return "unknown"
	}
}

// Diagnose picks the diagnostic for an empty selection.
func Diagnose(age, threshold time.Duration) Diagnostic {
	if IsFresh(age, threshold) {
		return DiagnosticNoMatch
	}
	return DiagnosticStale
}
