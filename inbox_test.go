package fetcher

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisInboxWithoutClient(t *testing.T) {
	inbox, err := NewRedisInbox()

	assert.ErrorIs(t, err, ErrEmptyRedisClient)
	assert.Nil(t, inbox)
}

func TestRedisInbox(t *testing.T) {
	redisAddress := os.Getenv("REDIS_ADDRESS")
	if redisAddress == "" {
		t.Skip("REDIS_ADDRESS is not set")
	}

	// Create a new background context for the operation.
	ctx := context.Background()

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{redisAddress}})
	// Ensure that the Redis client is closed when the test function completes.
	defer rdb.Close()

	// Perform a health check by pinging the Redis server using the provided context.
	err := rdb.Ping(ctx).Err()
	assert.NoError(t, err, "Expected Redis server to respond to ping without errors")

	inbox, err := NewRedisInbox(WithClient(rdb), WithBatchSize(10))
	assert.NoError(t, err, "Failed to create redis inbox")
	assert.NotNil(t, inbox, "Expected inbox instance to be initialized and not nil")

	// SuccessPull verifies that requests pushed to the inbox come back in order.
	t.Run("SuccessPull", func(t *testing.T) {
		testKey := "fetcher.domain.com::test_requests"
		assert.NoError(t, rdb.Del(ctx, testKey).Err())

		reqs := []FetchRequest{
			NewFetchRequest("http://example.test/ok"),
			NewFetchRequest("http://example.test/timeout"),
			NewFetchRequest(""),
		}

		err := inbox.Push(ctx, testKey, reqs...)
		assert.NoError(t, err, "Failed to push requests into Redis")

		pulled, pullErr := inbox.Pull(ctx, testKey)
		assert.NoError(t, pullErr, "Failed to pull requests")
		// Invalid requests are passed through; the task rejects them when they are loaded.
		assert.Equal(t, reqs, pulled, "Pulled requests mismatch")

		remaining, lenErr := rdb.LLen(ctx, testKey).Result()
		assert.NoError(t, lenErr)
		assert.Zero(t, remaining, "Pulled requests must be removed from the list")
	})

	// BatchSize verifies that a single Pull never takes more than the configured number of requests.
	t.Run("BatchSize", func(t *testing.T) {
		testKey := "fetcher.domain.com::test_batch"
		assert.NoError(t, rdb.Del(ctx, testKey).Err())

		single, err := NewRedisInbox(WithClient(rdb))
		assert.NoError(t, err)

		err = single.Push(ctx, testKey, NewFetchRequest("http://example.test/1"), NewFetchRequest("http://example.test/2"))
		assert.NoError(t, err)

		first, err := single.Pull(ctx, testKey)
		assert.NoError(t, err)
		assert.Equal(t, []FetchRequest{NewFetchRequest("http://example.test/1")}, first)

		second, err := single.Pull(ctx, testKey)
		assert.NoError(t, err)
		assert.Equal(t, []FetchRequest{NewFetchRequest("http://example.test/2")}, second)
	})

	// EmptyList verifies that pulling from an empty list returns no requests and no error.
	t.Run("EmptyList", func(t *testing.T) {
		testKey := "fetcher.domain.com::empty_list"

		pulled, pullErr := inbox.Pull(ctx, testKey)
		assert.NoError(t, pullErr, "Failed to pull from an empty list")
		assert.Len(t, pulled, 0, "Empty request list")
	})

	// FailedDecodeValue verifies that undecodable entries are skipped without failing the Pull.
	t.Run("FailedDecodeValue", func(t *testing.T) {
		testKey := "fetcher.domain.com::test_failed_decode"
		assert.NoError(t, rdb.Del(ctx, testKey).Err())

		err := rdb.RPush(ctx, testKey, `{"url": "http://example.test/ok" 456`).Err()
		assert.NoError(t, err, "Failed to push raw entry into Redis")

		err = inbox.Push(ctx, testKey, NewFetchRequest("http://example.test/ok"))
		assert.NoError(t, err)

		pulled, pullErr := inbox.Pull(ctx, testKey)
		assert.NoError(t, pullErr, "Failed to pull requests when decode error occurs")
		assert.Equal(t, []FetchRequest{NewFetchRequest("http://example.test/ok")}, pulled)
	})

	// PushNothing verifies that an empty Push is a no-op.
	t.Run("PushNothing", func(t *testing.T) {
		assert.NoError(t, inbox.Push(ctx, "fetcher.domain.com::nothing"))
	})
}

func TestRedisInboxWithClosedRedisConnection(t *testing.T) {
	redisAddress := os.Getenv("REDIS_ADDRESS")
	if redisAddress == "" {
		t.Skip("REDIS_ADDRESS is not set")
	}

	ctx := context.Background()

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{redisAddress}})

	inbox, err := NewRedisInbox(WithClient(rdb))
	assert.NoError(t, err, "Failed to create redis inbox")

	// FailedPull verifies that Pull reports an error when Redis is unavailable.
	t.Run("FailedPull", func(t *testing.T) {
		closeErr := rdb.Close()
		assert.NoError(t, closeErr, "Failed to close Redis connection")

		_, pullErr := inbox.Pull(ctx, "fetcher.domain.com::failed")
		assert.Error(t, pullErr, "Expected error when pulling with closed Redis connection, but got nil")

		pushErr := inbox.Push(ctx, "fetcher.domain.com::failed", NewFetchRequest("http://example.test/ok"))
		assert.Error(t, pushErr, "Expected error when pushing with closed Redis connection, but got nil")
	})
}
