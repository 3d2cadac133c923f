package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postforge/internal/models"
)

// Both backends must honor the same replay contract: a failed event parks
// in the dead letter store and can be moved back onto the main queue.
func TestFailedEventReplay(t *testing.T) {
	backends := []struct {
		name  string
		setup func(t *testing.T) (Queue, DeadLetterQueue)
	}{
		{
			name: "memory",
			setup: func(t *testing.T) (Queue, DeadLetterQueue) {
				return NewMemoryQueue(DefaultConfig("analytics")), NewMemoryDeadLetterQueue()
			},
		},
		{
			name: "redis",
			setup: func(t *testing.T) (Queue, DeadLetterQueue) {
				mr := miniredis.RunT(t)
				config := DefaultConfig("analytics")
				config.RedisAddr = mr.Addr()

				q, err := NewRedisQueue(config)
				require.NoError(t, err)
				dlq, err := NewRedisDeadLetterQueue(config)
				require.NoError(t, err)
				return q, dlq
			},
		},
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			q, dlq := backend.setup(t)
			defer q.Close()
			defer dlq.Close()

			ctx := context.Background()
			event := models.NewAnalyticsEvent(42, "content_generated", "1")

			// The writer pulled the event and could not insert it.
			require.NoError(t, dlq.Add(ctx, event, errors.New("insert failed")))

			parked, err := dlq.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, parked, 1)

			// Replay: back onto the queue, then out of the dead letter store.
			require.NoError(t, q.Enqueue(ctx, parked[0].Item))
			require.NoError(t, dlq.Remove(ctx, parked[0].ID))

			length, err := q.Length(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, length)

			remaining, err := dlq.List(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, remaining)
		})
	}
}
