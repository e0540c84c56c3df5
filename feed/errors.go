package feed

import "fmt"

// NetworkError is returned when the feed endpoint cannot be reached, times out or
// answers with a non-200 status.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Cause      error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed: HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("feed: failed to fetch %s: %v", e.URL, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// ParseError is returned when a response body is not a valid feed.
type ParseError struct {
	Format string
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("feed: malformed %s response: %v", e.Format, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }
