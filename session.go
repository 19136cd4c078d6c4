package fetcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// defaultShowTimeout bounds a single View.Show call made from the home context.
const defaultShowTimeout = 5 * time.Second

// Session is an owning component: it loads data on demand, shows each delivered result on its view
// and cancels whatever is still in flight when it is torn down. A Session belongs to the home
// context of its Task; Load, Close and the delivered callbacks all run there, so it needs no locks.
type Session struct {
	task    *Task
	view    View
	logger  zerolog.Logger
	current *TaskHandle
	loads   int
	closed  bool
}

// NewSession returns an open session showing results of task on view.
func NewSession(task *Task, view View, logger zerolog.Logger) *Session {
	return &Session{task: task, view: view, logger: logger}
}

// Load starts fetching req. A load still in flight is cancelled first, so at most one result
// is ever pending. Load fails with ErrSessionClosed once Close has been called.
func (s *Session) Load(req FetchRequest) (*TaskHandle, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	s.task.Cancel(s.current)

	s.loads++
	load := s.loads

	s.current = s.task.Start(req, func(res FetchResult) {
		s.show(load, req, res)
	})

	return s.current, nil
}

// Busy reports whether a load is still waiting for its result.
func (s *Session) Busy() bool {
	return s.current != nil && s.current.Valid()
}

// Close tears the session down: the pending load, if any, is cancelled and its result will never
// be shown. Close is idempotent and always returns nil.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	if s.task.Cancel(s.current) {
		s.logger.Debug().Int("load", s.loads).Msg("Cancelled pending load on close")
	}

	s.current = nil

	return nil
}

// show displays the result of a load.
func (s *Session) show(load int, req FetchRequest, res FetchResult) {
	rec := NewRecord(load, req, res)

	ctx, cancel := context.WithTimeout(context.Background(), defaultShowTimeout)
	defer cancel()

	if err := s.view.Show(ctx, rec); err != nil {
		s.logger.Err(err).Int("load", load).Str("url", req.URL).Msg("Failed to show result")
	}
}
