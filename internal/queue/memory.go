package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryQueue buffers events in a channel. Nothing survives a restart, so
// it suits single-node deployments where losing a few analytics events on
// shutdown is acceptable.
type MemoryQueue struct {
	buf    chan interface{}
	mu     sync.RWMutex
	closed bool
}

// NewMemoryQueue sizes the buffer to hold several batches so producers
// rarely block while the writer is mid-insert.
func NewMemoryQueue(config *Config) *MemoryQueue {
	if config == nil {
		config = DefaultConfig("analytics")
	}
	return &MemoryQueue{
		buf: make(chan interface{}, config.BatchSize*10),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, item interface{}) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.buf <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DequeueWithTimeout waits up to timeout for the first event, then drains
// whatever else is already buffered up to maxItems.
func (q *MemoryQueue) DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]interface{}, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, ErrQueueClosed
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var items []interface{}
	select {
	case item := <-q.buf:
		items = append(items, item)
	case <-timer.C:
		return items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return q.drain(items, maxItems), nil
}

// drain collects buffered events without blocking.
func (q *MemoryQueue) drain(items []interface{}, maxItems int) []interface{} {
	for len(items) < maxItems {
		select {
		case item := <-q.buf:
			items = append(items, item)
		default:
			return items
		}
	}
	return items
}

func (q *MemoryQueue) Length(ctx context.Context) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return 0, ErrQueueClosed
	}
	return len(q.buf), nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.buf)
	return nil
}

// MemoryDeadLetterQueue keeps failed events in process, oldest first.
type MemoryDeadLetterQueue struct {
	mu     sync.Mutex
	items  map[string]DeadLetterItem
	order  []string
	closed bool
}

func NewMemoryDeadLetterQueue() *MemoryDeadLetterQueue {
	return &MemoryDeadLetterQueue{items: make(map[string]DeadLetterItem)}
}

func (q *MemoryDeadLetterQueue) Add(ctx context.Context, item interface{}, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	entry := DeadLetterItem{
		ID:        uuid.NewString(),
		Item:      item,
		Error:     cause.Error(),
		Timestamp: time.Now(),
	}
	q.items[entry.ID] = entry
	q.order = append(q.order, entry.ID)
	return nil
}

func (q *MemoryDeadLetterQueue) List(ctx context.Context, maxItems int) ([]DeadLetterItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}

	if maxItems <= 0 || maxItems > len(q.order) {
		maxItems = len(q.order)
	}
	result := make([]DeadLetterItem, 0, maxItems)
	for _, id := range q.order[:maxItems] {
		result = append(result, q.items[id])
	}
	return result, nil
}

func (q *MemoryDeadLetterQueue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	if _, ok := q.items[id]; !ok {
		return ErrDeadLetterNotFound
	}
	delete(q.items, id)
	for i, stored := range q.order {
		if stored == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return nil
}

func (q *MemoryDeadLetterQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
	q.order = nil
	return nil
}
