package bot

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"
)

const (
	dispatchWorkers   = 64
	dispatchQueueSize = 128
)

// Dispatcher fans inbound events out to a fixed set of workers. Every
// event of one conversation hashes to the same worker queue, so relays
// for a single ticket are handled strictly in arrival order while
// unrelated conversations progress concurrently. A mutex alone cannot
// give that guarantee: goroutines contending for a lock acquire it in
// arbitrary order.
type Dispatcher struct {
	handler func(context.Context, Event)
	queues  []chan Event
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// NewDispatcher builds a dispatcher delivering events to handler.
func NewDispatcher(handler func(context.Context, Event), logger *zap.Logger) *Dispatcher {
	queues := make([]chan Event, dispatchWorkers)
	for i := range queues {
		queues[i] = make(chan Event, dispatchQueueSize)
	}
	return &Dispatcher{handler: handler, queues: queues, logger: logger}
}

// Start launches the worker pool. Workers drain their queues until ctx
// is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, queue := range d.queues {
		d.wg.Add(1)
		go d.work(ctx, queue)
	}
}

// Enqueue hands one event to its conversation's worker. Blocks when the
// worker's queue is full, which back-pressures the poll loop rather than
// reordering or dropping events.
func (d *Dispatcher) Enqueue(ctx context.Context, ev Event) {
	select {
	case d.queues[d.stripeFor(ev)] <- ev:
	case <-ctx.Done():
	}
}

// Wait blocks until all workers have stopped after cancellation.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) work(ctx context.Context, queue chan Event) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-queue:
			d.handle(ctx, ev)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panic",
				zap.Int64("chat_id", ev.ChatID),
				zap.Int64("thread_id", ev.ThreadID),
				zap.Any("panic", r))
		}
	}()
	d.handler(ctx, ev)
}

// stripeFor maps an event onto a worker by its conversation: the chat
// plus, inside the workspace, the thread.
func (d *Dispatcher) stripeFor(ev Event) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d/%d", ev.ChatID, ev.ThreadID)
	return int(h.Sum32() % uint32(len(d.queues)))
}
