package fetcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	req := NewFetchRequest("http://example.test/ok")

	ok := NewRecord(3, req, Success("hello"))
	assert.Equal(t, 3, ok.Load)
	assert.Equal(t, "http://example.test/ok", ok.URL)
	assert.True(t, ok.OK)
	assert.Equal(t, "hello", ok.Text)
	assert.Empty(t, ok.Kind)
	assert.False(t, ok.ShownAt.IsZero())

	failed := NewRecord(4, req, Failure(networkError(errors.New("connection refused"))))
	assert.False(t, failed.OK)
	assert.Equal(t, "NetworkError", failed.Kind)
	assert.Equal(t, "connection refused", failed.Text)
}

func TestWriterView(t *testing.T) {
	var buf bytes.Buffer
	view := NewWriterView(&buf)

	require.NoError(t, view.Show(context.Background(), Record{Text: "hello"}))
	require.NoError(t, view.Show(context.Background(), Record{Text: "connection refused"}))

	assert.Equal(t, "hello\nconnection refused\n", buf.String())
}

func TestMultiView(t *testing.T) {
	var calls []string
	failing := ViewFunc(func(context.Context, Record) error {
		calls = append(calls, "failing")
		return errors.New("first")
	})
	second := ViewFunc(func(context.Context, Record) error {
		calls = append(calls, "second")
		return errors.New("second")
	})
	healthy := ViewFunc(func(context.Context, Record) error {
		calls = append(calls, "healthy")
		return nil
	})

	err := MultiView{failing, second, healthy}.Show(context.Background(), Record{})

	assert.EqualError(t, err, "first", "The first failure is reported")
	assert.Equal(t, []string{"failing", "second", "healthy"}, calls, "Every view is shown")
	assert.NoError(t, MultiView{healthy}.Show(context.Background(), Record{}))
}

func TestNewRedisViewWithoutClient(t *testing.T) {
	view, err := NewRedisView(nil, "fetcher.domain.com::view", 0)

	assert.ErrorIs(t, err, ErrEmptyRedisClient)
	assert.Nil(t, view)
}

func TestRedisView(t *testing.T) {
	redisAddress := os.Getenv("REDIS_ADDRESS")
	if redisAddress == "" {
		t.Skip("REDIS_ADDRESS is not set")
	}

	ctx := context.Background()

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{redisAddress}})
	defer rdb.Close()

	require.NoError(t, rdb.Ping(ctx).Err(), "Expected Redis server to respond to ping without errors")

	key := "fetcher.domain.com::view"
	require.NoError(t, rdb.Del(ctx, key).Err())

	view, err := NewRedisView(rdb, key, time.Minute)
	require.NoError(t, err)

	t.Run("NothingShown", func(t *testing.T) {
		_, err := view.Last(ctx)
		assert.ErrorIs(t, err, redis.Nil)
	})

	t.Run("LastRecordWins", func(t *testing.T) {
		req := NewFetchRequest("http://example.test/ok")

		require.NoError(t, view.Show(ctx, NewRecord(1, req, Success("first"))))
		require.NoError(t, view.Show(ctx, NewRecord(2, req, Success("hello"))))

		rec, err := view.Last(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, rec.Load)
		assert.Equal(t, "hello", rec.Text)
		assert.True(t, rec.OK)

		ttl, err := rdb.TTL(ctx, key).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0), "The configured TTL must be applied")
	})
}
