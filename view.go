package fetcher

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// View is the display boundary of an owner: whatever a fetch produced ends up here.
type View interface {
	Show(ctx context.Context, rec Record) error
}

// Record is what a view displays for one delivered result.
type Record struct {
	Load    int       `json:"load"`
	URL     string    `json:"url"`
	OK      bool      `json:"ok"`
	Kind    string    `json:"kind,omitempty"`
	Text    string    `json:"text"`
	ShownAt time.Time `json:"shown_at"`
}

// NewRecord builds the record of res, the outcome of the given load of req.
func NewRecord(load int, req FetchRequest, res FetchResult) Record {
	rec := Record{
		Load:    load,
		URL:     req.URL,
		OK:      res.OK(),
		Text:    res.Text(),
		ShownAt: time.Now().UTC(),
	}

	if info := res.Error(); info != nil {
		rec.Kind = info.Kind.String()
	}

	return rec
}

// WriterView writes the displayed text verbatim, followed by a newline, to an io.Writer.
type WriterView struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterView returns a view printing to w.
func NewWriterView(w io.Writer) *WriterView {
	return &WriterView{w: w}
}

// Show writes rec.Text to the underlying writer.
func (v *WriterView) Show(_ context.Context, rec Record) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, err := fmt.Fprintln(v.w, rec.Text)

	return err
}

// RedisView stores the last displayed record under a single key, so other processes can read
// what the owner is showing. The value is encoded with the view's transcoder.
type RedisView struct {
	rdb        redis.UniversalClient
	key        string
	ttl        time.Duration
	transcoder Transcoder[Record]
}

// NewRedisView returns a view writing to key. A ttl of zero keeps the value until it is replaced.
func NewRedisView(rdb redis.UniversalClient, key string, ttl time.Duration) (*RedisView, error) {
	if rdb == nil {
		return nil, ErrEmptyRedisClient
	}

	return &RedisView{rdb: rdb, key: key, ttl: ttl, transcoder: NewJSONTranscoder[Record]()}, nil
}

// Show replaces the stored record with rec.
func (v *RedisView) Show(ctx context.Context, rec Record) error {
	encoded, err := v.transcoder.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	return v.rdb.Set(ctx, v.key, encoded, v.ttl).Err()
}

// Last returns the record currently stored by the view. It returns redis.Nil when nothing was shown yet.
func (v *RedisView) Last(ctx context.Context) (Record, error) {
	raw, err := v.rdb.Get(ctx, v.key).Result()
	if err != nil {
		return Record{}, err
	}

	return v.transcoder.Decode(raw)
}

// ViewFunc adapts an ordinary function to the View interface.
type ViewFunc func(ctx context.Context, rec Record) error

// Show calls f(ctx, rec).
func (f ViewFunc) Show(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}

// MultiView shows every record on each of its views in order and reports the first error.
type MultiView []View

// Show forwards rec to every view, even after one of them fails.
func (m MultiView) Show(ctx context.Context, rec Record) error {
	var first error

	for _, view := range m {
		if err := view.Show(ctx, rec); err != nil && first == nil {
			first = err
		}
	}

	return first
}
