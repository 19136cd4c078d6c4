package fetcher

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Executor is a home execution context. Post schedules fn to run on that context and reports whether
// it was accepted; a closed context refuses new work. Implementations run posted functions one at a
// time and in order, so state owned by the home context needs no further locking.
type Executor interface {
	Post(fn func()) bool
}

// ExecutorFunc adapts an ordinary function to the Executor interface.
type ExecutorFunc func(fn func()) bool

// Post calls f(fn).
func (f ExecutorFunc) Post(fn func()) bool {
	return f(fn)
}

// EventLoop is a single goroutine draining a FIFO of posted functions. It plays the part of the
// UI thread: owners live on it, tasks post their results back onto it.
// The queue and the closed flag share mu, so Post can never accept work once Close has returned.
type EventLoop struct {
	mu        sync.Mutex
	queue     []func()
	closed    bool
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	logger    zerolog.Logger
}

// LoopOption configures an EventLoop.
type LoopOption func(l *EventLoop)

// WithLoopLogger sets the logger used to report panics raised by posted functions.
func WithLoopLogger(logger zerolog.Logger) LoopOption {
	return func(l *EventLoop) {
		l.logger = logger
	}
}

// NewEventLoop creates an event loop. Nothing runs until Run is called.
func NewEventLoop(opts ...LoopOption) *EventLoop {
	loop := &EventLoop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(loop)
	}

	return loop
}

// Run executes posted functions on the calling goroutine until ctx is done or Close is called.
// It returns ctx.Err() when stopped by the context and nil when closed. Either way the loop is
// closed on return: later posts are refused instead of queueing work nobody will run.
func (l *EventLoop) Run(ctx context.Context) error {
	defer l.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if fn, ok := l.next(); ok {
			l.invoke(fn)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

// Post queues fn for execution on the loop. It never blocks and returns false once the loop is closed.
func (l *EventLoop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	return true
}

// next pops the oldest queued function. It reports false when the queue is empty or the loop is closed.
func (l *EventLoop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || len(l.queue) == 0 {
		return nil, false
	}

	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]

	return fn, true
}

// Invoke runs fn on the loop and waits for it to return. It fails with ErrLoopClosed when the loop
// is closed and with ctx.Err() when ctx ends first; in the latter case fn may still run later.
func (l *EventLoop) Invoke(ctx context.Context, fn func()) error {
	finished := make(chan struct{})

	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopClosed
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// Run may have returned before reaching fn.
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopClosed
		}
	}
}

// Close stops the loop. Functions still queued are dropped. Close is idempotent.
func (l *EventLoop) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()

		close(l.done)
	})
}

// invoke runs a single posted function, keeping the loop alive if it panics.
func (l *EventLoop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Msg("Posted function panicked")
		}
	}()

	fn()
}
