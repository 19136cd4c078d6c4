package fetcher

import (
	"github.com/goccy/go-json"
)

// Transcoder defines the contract for bidirectional conversion between a value of type T
// and its string representation. The inbox uses it for queued FetchRequest values and the
// redis view for displayed Record values; both live in redis as plain strings.
type Transcoder[T any] interface {
	// Encode converts a value of type T into a string suitable for storage in Redis.
	Encode(T) (string, error)

	// Decode reconstructs a value of type T from the string previously produced by Encode.
	Decode(string) (T, error)
}

// jsonTranscoder is the built-in transcoder used when the caller does not provide one.
// It performs straightforward JSON serialization, which keeps queued requests and records
// human-readable for anyone inspecting redis by hand.
type jsonTranscoder[T any] struct{}

// NewJSONTranscoder returns the JSON transcoder for T. The transcoder is stateless and reusable.
func NewJSONTranscoder[T any]() Transcoder[T] {
	return jsonTranscoder[T]{}
}

// Encode method converts the provided value into a JSON string representation.
func (jsonTranscoder[T]) Encode(src T) (string, error) {
	bytes, err := json.Marshal(src)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// Decode method reconstructs a value from its JSON string representation.
// On failure the zero value of T is returned together with the decoding error.
func (jsonTranscoder[T]) Decode(src string) (T, error) {
	var entry T

	if err := json.Unmarshal([]byte(src), &entry); err != nil {
		var zero T
		return zero, err
	}

	return entry, nil
}
