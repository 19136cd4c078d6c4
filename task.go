package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Task performs cancellable background fetches. Each Start runs one GET on its own goroutine and
// redelivers exactly one FetchResult on the home executor, unless the returned handle is cancelled
// first. A Task holds no per-fetch state and may be shared by any number of owners.
type Task struct {
	home        Executor
	client      *http.Client
	logger      zerolog.Logger
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	tracing     bool
}

// NewTask function constructs a fully configured Task instance.
// It applies all provided functional options, validates required dependencies,
// and initializes default values for any optional configuration not explicitly set.
// The function returns an error only when the home executor is missing.
func NewTask(opts ...Option) (*Task, error) {
	task := &Task{logger: zerolog.Nop()}

	for _, opt := range opts {
		opt(task)
	}

	if task.home == nil {
		return nil, ErrEmptyExecutor
	}

	if task.client == nil {
		var transport http.RoundTripper = http.DefaultTransport
		if task.tracing {
			transport = otelhttp.NewTransport(transport)
		}

		task.client = &http.Client{Transport: transport}
	}

	return task, nil
}

// Start schedules a fetch of req and returns its handle immediately.
// An invalid request never reaches the network: onResult is called synchronously, on the calling
// goroutine, with an InvalidRequest failure and the returned handle is already terminal.
// Otherwise onResult is called at most once, on the home executor, and never after Cancel.
func (t *Task) Start(req FetchRequest, onResult func(FetchResult)) *TaskHandle {
	if onResult == nil {
		onResult = func(FetchResult) {}
	}

	handle := newTaskHandle(req)

	if err := req.Validate(); err != nil {
		handle.finish(StateFailed)
		t.logger.Debug().Err(err).Stringer("task_id", handle.ID()).Msg("Rejected fetch request")
		onResult(Failure(invalidRequest(err)))

		return handle
	}

	// The context is cancelled either by Cancel or once the result leaves the worker.
	ctx, cancel := context.WithCancel(context.Background())
	handle.run(cancel)

	go t.work(ctx, handle, req, onResult)

	return handle
}

// Cancel invalidates handle. A fetch still in flight is aborted and its result is never delivered.
// Cancel returns false when there was nothing to cancel: a nil handle, a handle that was cancelled
// before, or one whose result has already been delivered.
func (t *Task) Cancel(handle *TaskHandle) bool {
	if handle == nil {
		return false
	}

	if !handle.invalidate() {
		return false
	}

	t.logger.Debug().Stringer("task_id", handle.ID()).Msg("Fetch cancelled")

	return true
}

// work runs on the worker goroutine: it performs the fetch and posts the delivery to the home executor.
func (t *Task) work(ctx context.Context, handle *TaskHandle, req FetchRequest, onResult func(FetchResult)) {
	log := t.logger.With().Stringer("task_id", handle.ID()).Str("url", req.URL).Logger()
	log.Debug().Msg("Fetch started")

	result, terminal := t.fetch(ctx, req.URL)
	if result.OK() {
		log.Debug().Int("bytes", len(result.Payload())).Msg("Fetch completed")
	} else {
		log.Debug().Err(result.Error()).Msg("Fetch failed")
	}

	// Nothing to hand over once cancelled; the check inside the delivery closure stays authoritative.
	if !handle.Valid() {
		log.Debug().Msg("Discarding result of cancelled fetch")
		return
	}

	posted := t.home.Post(func() {
		if !handle.finish(terminal) {
			log.Debug().Msg("Discarding result of cancelled fetch")
			return
		}

		onResult(result)
	})

	if !posted {
		handle.invalidate()
		log.Warn().Msg("Home executor refused the result, fetch dropped")
	}
}

// fetch performs the GET and maps its outcome to a result and the terminal state it leads to.
func (t *Task) fetch(ctx context.Context, target string) (FetchResult, State) {
	payload, err := t.get(ctx, target)
	if err != nil {
		return Failure(networkError(err)), StateFailed
	}

	return Success(payload), StateCompleted
}

// get issues a single GET and drains the whole response body into one string.
// Redirects follow the client's policy; a final status of 400 or above is an error.
func (t *Task) get(ctx context.Context, target string) (string, error) {
	if t.timeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, t.timeout)
		defer stop()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: %s for %s", ErrHTTPStatus, resp.Status, target)
	}

	var body io.Reader = resp.Body
	if t.maxBodySize > 0 {
		body = io.LimitReader(resp.Body, t.maxBodySize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if t.maxBodySize > 0 && int64(len(data)) > t.maxBodySize {
		return "", fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, t.maxBodySize)
	}

	return string(data), nil
}
