package domain

import "fmt"

// ErrorKind classifies why a search did not produce a match.
type ErrorKind string

const (
	ErrorKindUnavailable ErrorKind = "unavailable"  // no response obtained
	ErrorKindBusy        ErrorKind = "busy"         // 502, 503, 504
	ErrorKindRateLimited ErrorKind = "rate_limited" // 402, 429
	ErrorKindBadStatus   ErrorKind = "bad_status"   // any other status >= 400
	ErrorKindMalformed   ErrorKind = "malformed"    // body could not be decoded
	ErrorKindUpstream    ErrorKind = "upstream"     // payload carried an error string
	ErrorKindNoResults   ErrorKind = "no_results"
)

// SearchError is returned by the recognition backend adapter. Message holds
// the upstream error string for ErrorKindUpstream and is empty otherwise.
type SearchError struct {
	Kind     ErrorKind
	Status   int
	Attempts int
	Message  string
	Cause    error
}

func (e *SearchError) Error() string {
	msg := fmt.Sprintf("search failed (%s", e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(", status %d", e.Status)
	}
	msg += fmt.Sprintf(", %d attempts)", e.Attempts)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// MetadataError is returned when the metadata service answers with an error status.
type MetadataError struct {
	Status int
	Cause  error
}

func (e *MetadataError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("metadata service error (status %d): %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("metadata service error (status %d)", e.Status)
}

func (e *MetadataError) Unwrap() error {
	return e.Cause
}
