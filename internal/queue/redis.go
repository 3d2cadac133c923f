package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// dialRedis opens a client and verifies the server answers before any
// queue traffic depends on it.
func dialRedis(config *Config) (*redis.Client, error) {
	if config == nil {
		return nil, fmt.Errorf("queue config is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisQueue stores events in a Redis list so they survive restarts and
// can feed a writer in another process.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(config *Config) (*RedisQueue, error) {
	client, err := dialRedis(config)
	if err != nil {
		return nil, err
	}
	return &RedisQueue{
		client: client,
		key:    "postforge:queue:" + config.Name,
	}, nil
}

// Enqueue marshals the event to JSON and appends it to the list.
// Consumers receive it back as json.RawMessage.
func (q *RedisQueue) Enqueue(ctx context.Context, item interface{}) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal queue item: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("push queue item: %w", err)
	}
	return nil
}

func (q *RedisQueue) DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]interface{}, error) {
	result, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if err == redis.Nil {
		return []interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop queue item: %w", err)
	}

	// BLPop returns key/value pairs; the payload is the second element.
	items := []interface{}{json.RawMessage(result[1])}
	return q.drain(ctx, items, maxItems), nil
}

// drain grabs already-listed events without blocking. A transient error
// just ends the batch early; the next cycle picks up the rest.
func (q *RedisQueue) drain(ctx context.Context, items []interface{}, maxItems int) []interface{} {
	for len(items) < maxItems {
		value, err := q.client.LPop(ctx, q.key).Result()
		if err != nil {
			return items
		}
		items = append(items, json.RawMessage(value))
	}
	return items
}

func (q *RedisQueue) Length(ctx context.Context) (int, error) {
	length, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return int(length), nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// RedisDeadLetterQueue keeps failed events in a hash keyed by item ID.
type RedisDeadLetterQueue struct {
	client *redis.Client
	key    string
}

func NewRedisDeadLetterQueue(config *Config) (*RedisDeadLetterQueue, error) {
	client, err := dialRedis(config)
	if err != nil {
		return nil, err
	}
	return &RedisDeadLetterQueue{
		client: client,
		key:    "postforge:dlq:" + config.Name,
	}, nil
}

func (q *RedisDeadLetterQueue) Add(ctx context.Context, item interface{}, cause error) error {
	entry := DeadLetterItem{
		ID:        uuid.NewString(),
		Item:      item,
		Error:     cause.Error(),
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal dead letter item: %w", err)
	}
	if err := q.client.HSet(ctx, q.key, entry.ID, data).Err(); err != nil {
		return fmt.Errorf("store dead letter item: %w", err)
	}
	return nil
}

func (q *RedisDeadLetterQueue) List(ctx context.Context, maxItems int) ([]DeadLetterItem, error) {
	stored, err := q.client.HGetAll(ctx, q.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list dead letter items: %w", err)
	}

	items := make([]DeadLetterItem, 0, len(stored))
	for _, data := range stored {
		var entry DeadLetterItem
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			// Skip entries something else wrote into the hash.
			continue
		}
		items = append(items, entry)
		if maxItems > 0 && len(items) >= maxItems {
			break
		}
	}
	return items, nil
}

func (q *RedisDeadLetterQueue) Remove(ctx context.Context, id string) error {
	removed, err := q.client.HDel(ctx, q.key, id).Result()
	if err != nil {
		return fmt.Errorf("remove dead letter item: %w", err)
	}
	if removed == 0 {
		return ErrDeadLetterNotFound
	}
	return nil
}

func (q *RedisDeadLetterQueue) Close() error {
	return q.client.Close()
}
