package fetcher

import (
	"fmt"
	"net/url"
	"strings"
)

// FetchRequest is an immutable value describing a single fetch. It is created once per invocation of
// Task.Start and never reused. The json tags allow requests to travel through the redis inbox.
type FetchRequest struct {
	URL string `json:"url"`
}

// NewFetchRequest returns a request for the given target URL. It performs no validation:
// Task.Start validates the request and reports problems through the callback.
func NewFetchRequest(target string) FetchRequest {
	return FetchRequest{URL: target}
}

// Validate checks that the request targets a non-empty, absolute http or https URL.
// Every returned error wraps ErrInvalidRequest.
func (r FetchRequest) Validate() error {
	raw := strings.TrimSpace(r.URL)
	if raw == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalidRequest)
	}

	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRequest, parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: url %q has no host", ErrInvalidRequest, raw)
	}

	return nil
}
