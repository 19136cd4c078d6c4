package fetcher

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Inbox is a source of fetch requests for an owner that loads data on demand.
// Pull returns the requests currently waiting under key, possibly none.
type Inbox interface {
	Pull(ctx context.Context, key string) ([]FetchRequest, error)
}

// The script defaultPopCommand pops encoded requests from the head of a Redis list.
// It uses LPOP until max_items entries are taken or the list is empty, whichever comes first,
// so a batch is removed atomically and two owners never receive the same request.
var defaultPopCommand = redis.NewScript(`
local key = KEYS[1]
local max_items = tonumber(ARGV[1])
local items = {}

for i = 1, max_items do
	local item = redis.call('LPOP', key)
	if not item then
		break
	end
	table.insert(items, item)
end

return items
`)

// defaultBatchSize keeps one request per Pull: an owner runs a single load at a time.
const defaultBatchSize = 1

// RedisInbox is a redis-list backed Inbox. Requests are appended with Push and removed with Pull.
// All fields are configured during construction and are not modified afterward.
type RedisInbox struct {
	transcoder Transcoder[FetchRequest]
	rdb        redis.UniversalClient
	popCommand *redis.Script
	size       int
	logger     zerolog.Logger
}

// NewRedisInbox function constructs a fully configured RedisInbox instance.
// It applies all provided functional options, validates required dependencies,
// and initializes default values for any optional configuration not explicitly set.
// The function returns an error only when the redis client is missing.
func NewRedisInbox(opts ...inboxOption) (*RedisInbox, error) {
	inbox := &RedisInbox{logger: zerolog.Nop()}

	for _, opt := range opts {
		opt(inbox)
	}

	if inbox.rdb == nil {
		return nil, ErrEmptyRedisClient
	}

	if inbox.popCommand == nil {
		inbox.popCommand = defaultPopCommand
	}

	if inbox.size <= 0 {
		inbox.size = defaultBatchSize
	}

	if inbox.transcoder == nil {
		inbox.transcoder = NewJSONTranscoder[FetchRequest]()
	}

	return inbox, nil
}

// Push appends the encoded requests to the tail of the list stored at key.
func (i *RedisInbox) Push(ctx context.Context, key string, reqs ...FetchRequest) error {
	if len(reqs) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(reqs))
	for _, req := range reqs {
		encoded, err := i.transcoder.Encode(req)
		if err != nil {
			return fmt.Errorf("encode request %q: %w", req.URL, err)
		}

		values = append(values, encoded)
	}

	return i.rdb.RPush(ctx, key, values...).Err()
}

// Pull pops up to the configured batch size of requests from the head of the list stored at key.
// Entries that cannot be decoded are dropped and logged rather than failing the whole batch.
// Requests are not validated here: Task.Start reports invalid ones through the owner's callback.
func (i *RedisInbox) Pull(ctx context.Context, key string) ([]FetchRequest, error) {
	result, err := i.popCommand.Run(ctx, i.rdb, []string{key}, i.size).Result()
	if err != nil {
		return nil, err
	}

	reqs := make([]FetchRequest, 0)

	// An empty Lua table comes back as an empty slice; anything else carries encoded requests.
	if items, ok := result.([]interface{}); ok && len(items) > 0 {
		for _, item := range items {
			value, ok := item.(string)
			if !ok {
				continue
			}

			req, decodeErr := i.transcoder.Decode(value)
			if decodeErr != nil {
				i.logger.Warn().Err(decodeErr).Str("key", key).Msg("Skipping undecodable request")
				continue
			}

			reqs = append(reqs, req)
		}
	}

	return reqs, nil
}
