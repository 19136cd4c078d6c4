package fetcher

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// State is the lifecycle position of a fetch tracked by its TaskHandle.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition can leave the state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// TaskHandle is the cancellation token returned by Task.Start. It is owned by the caller;
// the worker only reaches it through the delivery closure, never the caller itself.
// The state field is the single piece of shared mutable state of a fetch: every transition
// is a check-and-set under mu, so a cancel and a delivery can never both win.
type TaskHandle struct {
	id     uuid.UUID
	url    string
	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// newTaskHandle creates a handle in the Created state for the given request.
func newTaskHandle(req FetchRequest) *TaskHandle {
	return &TaskHandle{id: uuid.New(), url: req.URL, state: StateCreated}
}

// ID returns the unique identifier of the fetch, used in logs and records.
func (h *TaskHandle) ID() uuid.UUID {
	return h.id
}

// URL returns the target of the fetch.
func (h *TaskHandle) URL() string {
	return h.url
}

// State returns the current lifecycle state.
func (h *TaskHandle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.state
}

// Valid reports whether the handle can still produce a delivery.
func (h *TaskHandle) Valid() bool {
	return !h.State().Terminal()
}

// run moves the handle from Created to Running and binds the function that aborts the in-flight request.
func (h *TaskHandle) run(cancel context.CancelFunc) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateCreated {
		return false
	}

	h.state = StateRunning
	h.cancel = cancel

	return true
}

// finish moves a Running handle to the given terminal state. It returns false when the handle
// has already left Running, in which case the caller must discard its result.
func (h *TaskHandle) finish(to State) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateRunning && h.state != StateCreated {
		return false
	}

	h.state = to
	h.release()

	return true
}

// invalidate moves a live handle to Cancelled. Terminal handles are left untouched.
func (h *TaskHandle) invalidate() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state.Terminal() {
		return false
	}

	h.state = StateCancelled
	h.release()

	return true
}

// release aborts the request context, if any. Callers hold mu.
func (h *TaskHandle) release() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}
