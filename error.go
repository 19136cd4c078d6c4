package fetcher

import (
	"errors"
)

// ErrEmptyRedisClient is returned when attempting to create a redis backed component without providing a Redis client.
// The Redis client is mandatory for all inbox and view operations — construction fails if it is missing.
var ErrEmptyRedisClient = errors.New("redis client is empty")

// ErrEmptyExecutor is returned when a Task is constructed without a home executor.
// Results are always redelivered on the home executor, so a task cannot exist without one.
var ErrEmptyExecutor = errors.New("home executor is empty")

// ErrInvalidRequest is the sentinel behind every InvalidRequest failure.
// It is reported before any network I/O takes place.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNetwork is the sentinel behind every NetworkError failure: connection, timeout and stream errors.
var ErrNetwork = errors.New("network error")

// ErrHTTPStatus is wrapped by the NetworkError reported for a response status of 400 or above.
var ErrHTTPStatus = errors.New("unexpected http status")

// ErrBodyTooLarge is wrapped by the NetworkError reported when a body exceeds the configured cap.
var ErrBodyTooLarge = errors.New("response body too large")

// ErrLoopClosed is returned when work is handed to an EventLoop that has been closed.
var ErrLoopClosed = errors.New("event loop is closed")

// ErrSessionClosed is returned by a Session once its owner has been torn down.
var ErrSessionClosed = errors.New("session is closed")

// ErrorKind classifies a failure delivered through FetchResult.
type ErrorKind int

const (
	// KindInvalidRequest marks bad input rejected before any I/O.
	KindInvalidRequest ErrorKind = iota + 1
	// KindNetwork marks a connection, timeout, status or stream failure.
	KindNetwork
)

// String returns the name of the kind as shown in logs and records.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindNetwork:
		return "NetworkError"
	default:
		return "Unknown"
	}
}

// ErrorInfo carries the captured failure of a fetch. Message is the text a consumer displays verbatim,
// Err is the underlying cause when one exists. ErrorInfo unwraps to both the sentinel of its kind
// and the cause, so callers can use errors.Is against ErrNetwork or, say, context.DeadlineExceeded.
type ErrorInfo struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface and returns the message unchanged.
func (e *ErrorInfo) Error() string {
	return e.Message
}

// Unwrap exposes the kind sentinel and the underlying cause to errors.Is and errors.As.
func (e *ErrorInfo) Unwrap() []error {
	errs := make([]error, 0, 2)

	switch e.Kind {
	case KindInvalidRequest:
		errs = append(errs, ErrInvalidRequest)
	case KindNetwork:
		errs = append(errs, ErrNetwork)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// invalidRequest builds the ErrorInfo for a request rejected by validation.
func invalidRequest(cause error) *ErrorInfo {
	return &ErrorInfo{Kind: KindInvalidRequest, Message: cause.Error(), Err: cause}
}

// networkError builds the ErrorInfo for a failed network operation, keeping the cause message verbatim.
func networkError(cause error) *ErrorInfo {
	return &ErrorInfo{Kind: KindNetwork, Message: cause.Error(), Err: cause}
}
