package fetcher

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// deliveryTimeout bounds how long a test waits for an expected callback.
const deliveryTimeout = 2 * time.Second

// quietPeriod is how long a test watches for a callback that must never come.
const quietPeriod = 200 * time.Millisecond

// startLoop runs an EventLoop on its own goroutine for the duration of the test.
func startLoop(t *testing.T) *EventLoop {
	t.Helper()

	loop := NewEventLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		loop.Close()
		<-done
	})

	return loop
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// countingTransport wraps http.DefaultTransport and counts the requests it sees.
func countingTransport(calls *atomic.Int32) http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return http.DefaultTransport.RoundTrip(req)
	})
}

// collect returns a callback pushing results into a buffered channel.
func collect() (func(FetchResult), chan FetchResult) {
	results := make(chan FetchResult, 8)

	return func(res FetchResult) { results <- res }, results
}

// awaitResult waits for exactly one result on results.
func awaitResult(t *testing.T, results <-chan FetchResult) FetchResult {
	t.Helper()

	select {
	case res := <-results:
		return res
	case <-time.After(deliveryTimeout):
		t.Fatal("timed out waiting for the result")
		return FetchResult{}
	}
}

// assertNoResult fails the test if anything arrives on results during the quiet period.
func assertNoResult(t *testing.T, results <-chan FetchResult) {
	t.Helper()

	select {
	case res := <-results:
		t.Fatalf("unexpected delivery: ok=%v text=%q", res.OK(), res.Text())
	case <-time.After(quietPeriod):
	}
}
