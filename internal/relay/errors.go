package relay

import (
	"errors"
	"strconv"
	"syscall"
)

// unavailableError signals that the upstream could not be reached at all
// (connection refused, host or network unreachable) so the HTTP layer can
// return 503 Service Unavailable instead of 500.
type unavailableError struct{ err error }

func (e unavailableError) Error() string { return "upstream unavailable: " + e.err.Error() }
func (e unavailableError) Unwrap() error { return e.err }

// ErrUnavailable wraps err as an upstream-unreachable error.
func ErrUnavailable(err error) error { return unavailableError{err: err} }

// IsUnavailable reports whether err indicates an unreachable upstream.
func IsUnavailable(err error) bool {
	var u unavailableError
	return errors.As(err, &u)
}

// upstreamStatusError is returned when the upstream answers with a non-2xx status.
type upstreamStatusError struct {
	code int
	body string
}

func (e upstreamStatusError) Error() string {
	msg := "upstream http error: " + strconv.Itoa(e.code)
	if e.body != "" {
		msg += ": " + e.body
	}
	return msg
}

// ErrUpstreamStatus constructs an upstreamStatusError. body should already be truncated.
func ErrUpstreamStatus(code int, body string) error {
	return upstreamStatusError{code: code, body: body}
}

// IsUpstreamStatus reports whether err came from a non-2xx upstream response.
func IsUpstreamStatus(err error) bool {
	var s upstreamStatusError
	return errors.As(err, &s)
}

// UpstreamStatusCode returns the upstream status carried by err, or 0.
func UpstreamStatusCode(err error) int {
	var s upstreamStatusError
	if errors.As(err, &s) {
		return s.code
	}
	return 0
}

// invalidResponseError is returned when a 2xx upstream body is not valid JSON.
type invalidResponseError struct{ reason string }

func (e invalidResponseError) Error() string { return "invalid upstream response: " + e.reason }

// ErrInvalidResponse constructs an invalidResponseError.
func ErrInvalidResponse(reason string) error { return invalidResponseError{reason: reason} }

// IsInvalidResponse reports whether err indicates a malformed upstream body.
func IsInvalidResponse(err error) bool {
	var i invalidResponseError
	return errors.As(err, &i)
}

// isUnreachable reports whether a transport error means the upstream never accepted the connection.
// Timeouts and DNS failures are not included; they surface as generic errors.
func isUnreachable(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}
