package openfda

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the source confirms zero matching records.
var ErrNotFound = errors.New("drug not found")

// SourceError reports that openFDA was reachable but answered with an
// unexpected status or an undecodable body. StatusCode is the source's
// HTTP status.
type SourceError struct {
	StatusCode int
	Err        error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("openFDA error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("openFDA error (status %d)", e.StatusCode)
}

func (e *SourceError) Unwrap() error { return e.Err }

// UnavailableError reports that openFDA could not be reached at all:
// network failure, timeout, or an open circuit breaker.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("openFDA unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// errNoMatches signals a source-side 404, which openFDA uses for "zero
// matches". Each operation decides whether that means an empty result set
// or ErrNotFound.
var errNoMatches = errors.New("source reported no matches")
