// Package queue carries analytics events from request handlers to the
// background writer. Two backends implement the same interface: an
// in-process channel queue for single-node deployments, and a Redis list
// for deployments where events must survive restarts or feed a worker in
// another process. Events the writer gives up on land in a dead letter
// store for inspection and replay.
package queue

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrQueueClosed reports an operation against a queue after Close.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrDeadLetterNotFound reports a dead letter ID with no stored item.
	ErrDeadLetterNotFound = errors.New("dead letter item not found")
)

// Queue is the transport between event producers and the batch writer.
type Queue interface {
	// Enqueue adds one event. Blocks only while the backend is at capacity.
	Enqueue(ctx context.Context, item interface{}) error

	// DequeueWithTimeout collects up to maxItems events, waiting at most
	// timeout for the first one. An empty slice means the wait expired.
	DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]interface{}, error)

	// Length reports how many events are waiting.
	Length(ctx context.Context) (int, error)

	Close() error
}

// DeadLetterQueue stores events that exhausted their retries.
type DeadLetterQueue interface {
	Add(ctx context.Context, item interface{}, cause error) error
	List(ctx context.Context, maxItems int) ([]DeadLetterItem, error)
	Remove(ctx context.Context, id string) error
	Close() error
}

// DeadLetterItem wraps a failed event with the error that parked it.
type DeadLetterItem struct {
	ID        string      `json:"id"`
	Item      interface{} `json:"item"`
	Error     string      `json:"error"`
	Timestamp time.Time   `json:"timestamp"`
	Retries   int         `json:"retries"`
}

// Config tunes batching and, for the Redis backend, the connection.
type Config struct {
	BatchSize    int
	BatchTimeout time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Name distinguishes queues sharing one Redis instance.
	Name string
}

// DefaultConfig returns the batching defaults used by the analytics writer.
func DefaultConfig(name string) *Config {
	return &Config{
		BatchSize:    100,
		BatchTimeout: 5 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 1 * time.Second,
		Name:         name,
	}
}
