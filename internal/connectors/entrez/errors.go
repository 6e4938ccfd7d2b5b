package entrez

import "fmt"

// FetchError is returned when an outbound call fails after exhausting its
// retry budget. It identifies the call kind so callers can decide the
// degradation policy per operation; it is always distinct from the
// no-evidence outcome.
type FetchError struct {
	// Kind is the failed call kind ("esearch", "efetch.pmc", ...).
	Kind string

	// StatusCode is the last non-success HTTP status, 0 for transport errors.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("entrez %s: status %d: %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("entrez %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}
