package fetcher

// FetchResult is the outcome of a fetch: exactly one of Success(payload) or Failure(error).
// The zero value is not a valid result; results are built with Success and Failure only.
type FetchResult struct {
	payload string
	err     *ErrorInfo
}

// Success builds the result of a completed fetch carrying the full response body.
func Success(payload string) FetchResult {
	return FetchResult{payload: payload}
}

// Failure builds the result of a failed fetch.
func Failure(info *ErrorInfo) FetchResult {
	return FetchResult{err: info}
}

// OK reports whether the result is a Success.
func (r FetchResult) OK() bool {
	return r.err == nil
}

// Payload returns the fetched body. It is empty for failures.
func (r FetchResult) Payload() string {
	return r.payload
}

// Error returns the captured failure, or nil for a Success.
func (r FetchResult) Error() *ErrorInfo {
	return r.err
}

// Text returns what a consumer displays: the payload on success, the error message verbatim on failure.
func (r FetchResult) Text() string {
	if r.err != nil {
		return r.err.Message
	}

	return r.payload
}
