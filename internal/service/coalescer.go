package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-relay/internal/domain"
	"github.com/spec-kit/support-relay/internal/events"
	"github.com/spec-kit/support-relay/internal/observability"
	"github.com/spec-kit/support-relay/internal/transport"
)

// BatchInput describes one arriving photo of a media group. Destination
// and origin are captured at first-item arrival and not re-resolved at
// flush time.
type BatchInput struct {
	TicketID    int64
	Origin      domain.Role
	Destination transport.Destination
	Photo       domain.PhotoRef
	Caption     string
}

type pendingBatch struct {
	ticketID int64
	origin   domain.Role
	dest     transport.Destination
	caption  string
	items    []domain.PhotoRef
}

// MediaBatchCoalescer buffers photos sharing a group key and flushes them
// as one outbound batch once a fixed delay has elapsed since the first
// item arrived. The flush deadline is anchored to first-item arrival;
// later items never re-arm the timer, which bounds worst-case latency
// under a fast-arriving burst.
type MediaBatchCoalescer struct {
	mu      sync.Mutex
	pending map[string]*pendingBatch

	delay        time.Duration
	flushTimeout time.Duration
	transport    transport.Transport
	dispatcher   events.Dispatcher
	metrics      *observability.RelayMetrics
	logger       *zap.Logger
}

// NewMediaBatchCoalescer constructs the coalescer.
func NewMediaBatchCoalescer(delay time.Duration, tp transport.Transport, dispatcher events.Dispatcher, metrics *observability.RelayMetrics, logger *zap.Logger) *MediaBatchCoalescer {
	if delay <= 0 {
		delay = time.Second
	}
	return &MediaBatchCoalescer{
		pending:      make(map[string]*pendingBatch),
		delay:        delay,
		flushTimeout: 30 * time.Second,
		transport:    tp,
		dispatcher:   dispatcher,
		metrics:      metrics,
		logger:       logger,
	}
}

// Add appends a photo to the pending batch for groupKey, creating the
// batch and arming its flush timer when the key is unseen. The caption is
// captured from the first item only. An item arriving after the batch has
// flushed starts a fresh collection cycle for the key.
func (c *MediaBatchCoalescer) Add(groupKey string, input BatchInput) {
	c.mu.Lock()
	batch, ok := c.pending[groupKey]
	if !ok {
		batch = &pendingBatch{
			ticketID: input.TicketID,
			origin:   input.Origin,
			dest:     input.Destination,
			caption:  input.Caption,
		}
		c.pending[groupKey] = batch
		time.AfterFunc(c.delay, func() { c.flush(groupKey) })
	}
	batch.items = append(batch.items, input.Photo)
	c.mu.Unlock()
}

// flush finalizes the batch for groupKey. The entry is removed from the
// pending set before any transport call, so a flush can never run twice
// for the same collection cycle; flushing an absent key is a no-op. The
// lock covers only the map mutation, never the send, so a slow flush for
// one group does not delay collection for another.
func (c *MediaBatchCoalescer) flush(groupKey string) {
	c.mu.Lock()
	batch, ok := c.pending[groupKey]
	delete(c.pending, groupKey)
	c.mu.Unlock()
	if !ok || len(batch.items) == 0 {
		return
	}

	items := make([]transport.BatchItem, len(batch.items))
	for i, photo := range batch.items {
		items[i] = transport.BatchItem{Photo: photo}
	}
	items[0].Caption = frameBatchCaption(batch.origin, batch.caption)

	ctx, cancel := context.WithTimeout(context.Background(), c.flushTimeout)
	defer cancel()

	err := c.transport.SendPhotoBatch(ctx, batch.dest, items)
	if err != nil {
		// No retry and no per-item fallback: the batch is lost for
		// delivery, but each item was already written to the audit log
		// at arrival time.
		c.metrics.RecordDeliveryFailure()
		c.logger.Error("media batch delivery failed",
			zap.String("group_key", groupKey),
			zap.Int64("ticket_id", batch.ticketID),
			zap.Int("items", len(items)),
			zap.Error(err))
	} else {
		c.metrics.RecordBatchFlush(len(items))
	}
	c.publish(ctx, events.Event{
		Type:     events.EventBatchFlushed,
		TicketID: batch.ticketID,
		Payload: events.BatchFlushedPayload{
			GroupKey:  groupKey,
			Origin:    batch.origin,
			ItemCount: len(items),
			Delivered: err == nil,
		},
	})
}

func (c *MediaBatchCoalescer) publish(ctx context.Context, event events.Event) {
	if c.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = c.dispatcher.Publish(ctx, event)
}
