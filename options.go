package fetcher

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Option type defines the functional options pattern used to configure a Task instance.
type Option func(t *Task)

// WithExecutor option assigns the home execution context that results are redelivered on.
// Providing an executor is required: NewTask fails with ErrEmptyExecutor without one.
func WithExecutor(home Executor) Option {
	return func(t *Task) {
		t.home = home
	}
}

// WithHTTPClient option replaces the HTTP client used for the GET. The client keeps its own
// redirect policy and transport; WithTracing has no effect on a client supplied this way.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Task) {
		t.client = client
	}
}

// WithLogger option sets the logger that reports fetch lifecycle events.
// Without it the task logs nothing.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Task) {
		t.logger = logger
	}
}

// WithTimeout option bounds a single fetch, from connect to the last byte of the body.
// A zero or negative duration leaves the fetch unbounded, like the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(t *Task) {
		t.timeout = timeout
	}
}

// WithUserAgent option sets the User-Agent header sent with each request.
func WithUserAgent(userAgent string) Option {
	return func(t *Task) {
		t.userAgent = userAgent
	}
}

// WithMaxBodySize option caps the number of body bytes a fetch may read.
// A body larger than the cap fails the fetch with a NetworkError. Zero means no cap.
func WithMaxBodySize(size int64) Option {
	return func(t *Task) {
		t.maxBodySize = size
	}
}

// WithTracing option wraps the default transport with OpenTelemetry instrumentation,
// so every fetch produces a client span through the globally registered tracer provider.
func WithTracing(enabled bool) Option {
	return func(t *Task) {
		t.tracing = enabled
	}
}

// inboxOption type defines the functional options pattern used to configure a RedisInbox instance.
type inboxOption func(i *RedisInbox)

// WithClient option assigns the redis client used by the RedisInbox to communicate with redis.
// This client is responsible for executing commands and Lua scripts against the redis instance.
func WithClient(rdb redis.UniversalClient) inboxOption {
	return func(i *RedisInbox) {
		i.rdb = rdb
	}
}

// WithTranscoder option configures the transcoder used to encode and decode queued requests.
// Providing a custom transcoder allows callers to control the wire format of the inbox.
func WithTranscoder(t Transcoder[FetchRequest]) inboxOption {
	return func(i *RedisInbox) {
		i.transcoder = t
	}
}

// WithScript option specifies the Lua script used to pop requests from redis.
// If no script is provided through this option, the RedisInbox falls back to its default script.
func WithScript(src *redis.Script) inboxOption {
	return func(i *RedisInbox) {
		i.popCommand = src
	}
}

// WithBatchSize option configures the maximum number of requests popped from redis in a single Pull.
// If this option is not provided, the RedisInbox pops a single request per Pull.
func WithBatchSize(size int) inboxOption {
	return func(i *RedisInbox) {
		i.size = size
	}
}

// WithInboxLogger option sets the logger that reports skipped, undecodable entries.
func WithInboxLogger(logger zerolog.Logger) inboxOption {
	return func(i *RedisInbox) {
		i.logger = logger
	}
}
