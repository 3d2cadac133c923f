package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"postforge/internal/logging"
	"postforge/internal/models"
	"postforge/internal/queue"
)

// AnalyticsQueueWorker persists analytics events asynchronously. Route
// handlers enqueue and return; the worker drains the queue in batches so a
// slow database never holds up a generation response.
type AnalyticsQueueWorker struct {
	queue       queue.Queue
	dlq         queue.DeadLetterQueue
	db          *DB
	config      *queue.Config
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewAnalyticsQueueWorker creates a new analytics queue worker
func NewAnalyticsQueueWorker(q queue.Queue, dlq queue.DeadLetterQueue, db *DB, config *queue.Config) *AnalyticsQueueWorker {
	if config == nil {
		config = queue.DefaultConfig("analytics")
	}

	return &AnalyticsQueueWorker{
		queue:       q,
		dlq:         dlq,
		db:          db,
		config:      config,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start starts the worker goroutine
func (w *AnalyticsQueueWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop gracefully stops the worker
func (w *AnalyticsQueueWorker) Stop() error {
	close(w.stopChan)
	<-w.stoppedChan
	return nil
}

// Enqueue adds an analytics event to the queue
func (w *AnalyticsQueueWorker) Enqueue(ctx context.Context, event *models.AnalyticsEvent) error {
	return w.queue.Enqueue(ctx, event)
}

// run is the main worker loop
func (w *AnalyticsQueueWorker) run(ctx context.Context) {
	defer close(w.stoppedChan)

	for {
		select {
		case <-w.stopChan:
			logging.Infof("analytics worker stopping")
			return
		case <-ctx.Done():
			logging.Infof("analytics worker context cancelled")
			return
		default:
			w.processBatch(ctx)
		}
	}
}

// processBatch processes a batch of analytics events
func (w *AnalyticsQueueWorker) processBatch(ctx context.Context) {
	// Dequeue items with timeout
	items, err := w.queue.DequeueWithTimeout(ctx, w.config.BatchSize, w.config.BatchTimeout)
	if err != nil {
		logging.Errorf("failed to dequeue analytics events: %v", err)
		time.Sleep(1 * time.Second) // Back off on error
		return
	}

	if len(items) == 0 {
		return
	}

	logging.Debugf("processing analytics batch of %d", len(items))

	events := make([]*models.AnalyticsEvent, 0, len(items))
	for _, item := range items {
		var event models.AnalyticsEvent
		if err := w.unmarshalItem(item, &event); err != nil {
			logging.Errorf("failed to unmarshal analytics event: %v", err)
			continue
		}
		events = append(events, &event)
	}

	if len(events) == 0 {
		return
	}

	// Try to insert as one batch first
	repo := NewAnalyticsRepository(w.db)
	if err := repo.CreateBatch(ctx, events); err != nil {
		logging.Errorf("batch insert failed, falling back to individual inserts: %v", err)
		// Fall back to individual inserts with retries
		for _, event := range events {
			if err := w.processItem(ctx, event); err != nil {
				logging.Errorf("failed to process analytics event: %v", err)
			}
		}
	}
}

// processItem processes a single analytics event with retries
func (w *AnalyticsQueueWorker) processItem(ctx context.Context, event *models.AnalyticsEvent) error {
	repo := NewAnalyticsRepository(w.db)

	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := w.config.RetryBackoff * time.Duration(1<<uint(attempt-1))
			logging.Debugf("retrying analytics event %s (attempt %d, backoff %v)", event.ID, attempt, backoff)
			time.Sleep(backoff)
		}

		if err := repo.Create(ctx, event); err != nil {
			lastErr = err
			logging.Errorf("failed to insert analytics event (attempt %d): %v", attempt, err)
			continue
		}

		return nil
	}

	// Max retries exceeded - add to dead letter queue
	if w.dlq != nil {
		if err := w.dlq.Add(ctx, event, lastErr); err != nil {
			logging.Errorf("failed to add to dead letter queue: %v", err)
		} else {
			logging.Warningf("analytics event %s moved to DLQ: %v", event.ID, lastErr)
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// unmarshalItem unmarshals a queue item into an AnalyticsEvent
func (w *AnalyticsQueueWorker) unmarshalItem(item interface{}, event *models.AnalyticsEvent) error {
	switch v := item.(type) {
	case *models.AnalyticsEvent:
		*event = *v
		return nil
	case models.AnalyticsEvent:
		*event = v
		return nil
	case []byte:
		return json.Unmarshal(v, event)
	case json.RawMessage:
		return json.Unmarshal(v, event)
	default:
		// Try to marshal and unmarshal
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal item: %w", err)
		}
		return json.Unmarshal(data, event)
	}
}

// GetQueueLength returns the current queue length
func (w *AnalyticsQueueWorker) GetQueueLength(ctx context.Context) (int, error) {
	return w.queue.Length(ctx)
}

// GetDeadLetterItems returns items from the dead letter queue
func (w *AnalyticsQueueWorker) GetDeadLetterItems(ctx context.Context, maxItems int) ([]queue.DeadLetterItem, error) {
	if w.dlq == nil {
		return nil, fmt.Errorf("dead letter queue not configured")
	}
	return w.dlq.List(ctx, maxItems)
}

// RetryDeadLetterItem retries a failed item from the dead letter queue
func (w *AnalyticsQueueWorker) RetryDeadLetterItem(ctx context.Context, id string) error {
	if w.dlq == nil {
		return fmt.Errorf("dead letter queue not configured")
	}

	items, err := w.dlq.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list dead letter items: %w", err)
	}

	for _, dlItem := range items {
		if dlItem.ID == id {
			// Re-enqueue the item
			if err := w.queue.Enqueue(ctx, dlItem.Item); err != nil {
				return fmt.Errorf("failed to re-enqueue item: %w", err)
			}

			// Remove from DLQ
			if err := w.dlq.Remove(ctx, id); err != nil {
				return fmt.Errorf("failed to remove from DLQ: %w", err)
			}

			return nil
		}
	}

	return fmt.Errorf("item not found in dead letter queue")
}
