package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"postforge/internal/models"
	"postforge/internal/queue"
)

func TestAnalyticsQueue_SingleEvent(t *testing.T) {
	config := queue.DefaultConfig("test-analytics")
	config.BatchSize = 10
	config.BatchTimeout = 100 * time.Millisecond

	q := queue.NewMemoryQueue(config)
	defer q.Close()

	worker := NewAnalyticsQueueWorker(q, queue.NewMemoryDeadLetterQueue(), nil, config)

	ctx := context.Background()
	event := models.NewAnalyticsEvent(42, "content_generated", "1")

	if err := worker.Enqueue(ctx, event); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	items, err := q.DequeueWithTimeout(ctx, 1, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
}

func TestAnalyticsQueue_BatchEvents(t *testing.T) {
	config := queue.DefaultConfig("test-analytics-batch")
	config.BatchSize = 5
	config.BatchTimeout = 100 * time.Millisecond

	q := queue.NewMemoryQueue(config)
	defer q.Close()

	worker := NewAnalyticsQueueWorker(q, queue.NewMemoryDeadLetterQueue(), nil, config)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		event := models.NewAnalyticsEvent(int64(i), "variations_generated", fmt.Sprintf("%d", i))
		if err := worker.Enqueue(ctx, event); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	length, err := worker.GetQueueLength(ctx)
	if err != nil {
		t.Fatalf("GetQueueLength failed: %v", err)
	}
	if length != 10 {
		t.Errorf("Expected queue length 10, got %d", length)
	}

	items, err := q.DequeueWithTimeout(ctx, 5, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if len(items) != 5 {
		t.Errorf("Expected 5 items in batch, got %d", len(items))
	}
}

func TestAnalyticsQueue_ConcurrentEnqueue(t *testing.T) {
	config := queue.DefaultConfig("test-analytics-concurrent")
	config.BatchSize = 100

	q := queue.NewMemoryQueue(config)
	defer q.Close()

	worker := NewAnalyticsQueueWorker(q, nil, nil, config)
	ctx := context.Background()

	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 10

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(userID int64) {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				event := models.NewAnalyticsEvent(userID, "content_generated", "1")
				_ = worker.Enqueue(ctx, event)
			}
		}(int64(i))
	}
	wg.Wait()

	length, err := worker.GetQueueLength(ctx)
	if err != nil {
		t.Fatalf("GetQueueLength failed: %v", err)
	}
	expected := numGoroutines * eventsPerGoroutine
	if length != expected {
		t.Errorf("Expected queue length %d, got %d", expected, length)
	}
}

func TestAnalyticsQueue_UnmarshalItem(t *testing.T) {
	worker := NewAnalyticsQueueWorker(nil, nil, nil, nil)
	original := models.NewAnalyticsEvent(42, "content_generated", "1")

	// Redis round-trips items as raw JSON, memory keeps the pointer
	serialized, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	tests := []struct {
		name string
		item interface{}
	}{
		{"pointer", original},
		{"value", *original},
		{"bytes", serialized},
		{"raw message", json.RawMessage(serialized)},
		{"generic map", map[string]interface{}{
			"id":          original.ID.String(),
			"user_id":     42,
			"metric_name": "content_generated",
			"value":       "1",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var event models.AnalyticsEvent
			if err := worker.unmarshalItem(tt.item, &event); err != nil {
				t.Fatalf("unmarshalItem failed: %v", err)
			}
			if event.UserID != 42 {
				t.Errorf("Expected UserID 42, got %d", event.UserID)
			}
			if event.MetricName != "content_generated" {
				t.Errorf("Expected metric name preserved, got %q", event.MetricName)
			}
		})
	}
}

func TestAnalyticsQueue_DeadLetterRetry(t *testing.T) {
	config := queue.DefaultConfig("test-analytics-dlq")
	q := queue.NewMemoryQueue(config)
	defer q.Close()
	dlq := queue.NewMemoryDeadLetterQueue()

	worker := NewAnalyticsQueueWorker(q, dlq, nil, config)
	ctx := context.Background()

	// Park a failed event in the DLQ
	event := models.NewAnalyticsEvent(42, "content_generated", "1")
	if err := dlq.Add(ctx, event, fmt.Errorf("simulated insert failure")); err != nil {
		t.Fatalf("DLQ Add failed: %v", err)
	}

	items, err := worker.GetDeadLetterItems(ctx, 10)
	if err != nil {
		t.Fatalf("GetDeadLetterItems failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 DLQ item, got %d", len(items))
	}

	// Retry moves the item back onto the main queue
	if err := worker.RetryDeadLetterItem(ctx, items[0].ID); err != nil {
		t.Fatalf("RetryDeadLetterItem failed: %v", err)
	}

	length, err := worker.GetQueueLength(ctx)
	if err != nil {
		t.Fatalf("GetQueueLength failed: %v", err)
	}
	if length != 1 {
		t.Errorf("Expected re-enqueued item, queue length %d", length)
	}

	remaining, err := worker.GetDeadLetterItems(ctx, 10)
	if err != nil {
		t.Fatalf("GetDeadLetterItems failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected empty DLQ after retry, got %d items", len(remaining))
	}

	if err := worker.RetryDeadLetterItem(ctx, "missing-id"); err == nil {
		t.Error("Expected error retrying unknown DLQ item")
	}
}

func TestAnalyticsQueue_StopUnblocksWorker(t *testing.T) {
	config := queue.DefaultConfig("test-analytics-stop")
	config.BatchTimeout = 50 * time.Millisecond

	q := queue.NewMemoryQueue(config)
	defer q.Close()

	worker := NewAnalyticsQueueWorker(q, queue.NewMemoryDeadLetterQueue(), nil, config)
	worker.Start(context.Background())

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return, worker loop is stuck")
	}
}
