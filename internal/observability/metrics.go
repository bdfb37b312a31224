package observability

import (
	"sync"
)

// RelayMetrics provides basic in-memory counters for relay activity.
type RelayMetrics struct {
	mu               sync.Mutex
	relayed          map[string]int64
	dropped          map[string]int64
	deliveryFailures int64
	ticketsCreated   int64
	threadsBound     int64
	batchesFlushed   int64
	batchItems       int64
}

// NewRelayMetrics initializes metrics storage.
func NewRelayMetrics() *RelayMetrics {
	return &RelayMetrics{
		relayed: make(map[string]int64),
		dropped: make(map[string]int64),
	}
}

// RecordRelay increments the counter for a successful relay.
func (m *RelayMetrics) RecordRelay(direction, kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relayed[direction+"|"+kind]++
}

// RecordDrop counts an inbound event that produced no outbound delivery.
func (m *RelayMetrics) RecordDrop(reason string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped[reason]++
}

// RecordDeliveryFailure counts a failed transport send.
func (m *RelayMetrics) RecordDeliveryFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveryFailures++
}

// RecordTicketCreated counts a new ticket.
func (m *RelayMetrics) RecordTicketCreated() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketsCreated++
}

// RecordThreadBound counts a successful thread binding.
func (m *RelayMetrics) RecordThreadBound() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threadsBound++
}

// RecordBatchFlush counts one flushed media batch of n items.
func (m *RelayMetrics) RecordBatchFlush(n int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchesFlushed++
	m.batchItems += int64(n)
}

// Snapshot returns a copy of all counters for the ops endpoint.
func (m *RelayMetrics) Snapshot() map[string]any {
	if m == nil {
		return map[string]any{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	relayed := make(map[string]int64, len(m.relayed))
	for k, v := range m.relayed {
		relayed[k] = v
	}
	dropped := make(map[string]int64, len(m.dropped))
	for k, v := range m.dropped {
		dropped[k] = v
	}
	return map[string]any{
		"relayed":           relayed,
		"dropped":           dropped,
		"delivery_failures": m.deliveryFailures,
		"tickets_created":   m.ticketsCreated,
		"threads_bound":     m.threadsBound,
		"batches_flushed":   m.batchesFlushed,
		"batch_items":       m.batchItems,
	}
}
