package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-relay/internal/domain"
	"github.com/spec-kit/support-relay/internal/observability"
	"github.com/spec-kit/support-relay/internal/transport"
)

func newTestCoalescer(tp *fakeTransport, delay time.Duration) (*MediaBatchCoalescer, *observability.RelayMetrics) {
	metrics := observability.NewRelayMetrics()
	return NewMediaBatchCoalescer(delay, tp, nil, metrics, zap.NewNop()), metrics
}

func TestCoalescerFlushesOneBatch(t *testing.T) {
	t.Parallel()
	tp := &fakeTransport{}
	c, metrics := newTestCoalescer(tp, 20*time.Millisecond)

	dest := transport.ThreadDestination(-100, 7)
	c.Add("grp-1", BatchInput{TicketID: 1, Origin: domain.RoleUser, Destination: dest, Photo: "p1"})
	c.Add("grp-1", BatchInput{TicketID: 1, Origin: domain.RoleUser, Destination: dest, Photo: "p2", Caption: "here"})
	c.Add("grp-1", BatchInput{TicketID: 1, Origin: domain.RoleUser, Destination: dest, Photo: "p3"})

	waitFor(t, time.Second, func() bool { return len(tp.sentBatches()) == 1 })

	batch := tp.sentBatches()[0]
	if batch.dest != dest {
		t.Errorf("batch dest = %+v, want %+v", batch.dest, dest)
	}
	if len(batch.items) != 3 {
		t.Fatalf("batch has %d items, want 3", len(batch.items))
	}
	// The caption is captured from the first item; item 2's "here" is lost.
	if got := batch.items[0].Caption; got != "👤 User sent album" {
		t.Errorf("first item caption = %q, want %q", got, "👤 User sent album")
	}
	for i := 1; i < len(batch.items); i++ {
		if batch.items[i].Caption != "" {
			t.Errorf("item %d caption = %q, want empty", i, batch.items[i].Caption)
		}
	}
	if got := metrics.Snapshot()["batches_flushed"]; got != int64(1) {
		t.Errorf("batches_flushed = %v, want 1", got)
	}
}

func TestCoalescerFirstItemCaptionFraming(t *testing.T) {
	t.Parallel()
	tp := &fakeTransport{}
	c, _ := newTestCoalescer(tp, 10*time.Millisecond)

	dest := transport.UserDestination(42)
	c.Add("grp-a", BatchInput{TicketID: 2, Origin: domain.RoleAdmin, Destination: dest, Photo: "a1", Caption: "two accounts left"})
	c.Add("grp-a", BatchInput{TicketID: 2, Origin: domain.RoleAdmin, Destination: dest, Photo: "a2"})

	waitFor(t, time.Second, func() bool { return len(tp.sentBatches()) == 1 })

	want := "📨 Antwort des Administrators\ntwo accounts left"
	if got := tp.sentBatches()[0].items[0].Caption; got != want {
		t.Errorf("caption = %q, want %q", got, want)
	}
}

func TestCoalescerTimerAnchoredToFirstItem(t *testing.T) {
	t.Parallel()
	tp := &fakeTransport{}
	c, _ := newTestCoalescer(tp, 60*time.Millisecond)

	dest := transport.ThreadDestination(-100, 9)
	start := time.Now()
	c.Add("grp-t", BatchInput{TicketID: 3, Origin: domain.RoleUser, Destination: dest, Photo: "p1"})
	// Keep feeding items past the original deadline; none may re-arm it.
	for i := 0; i < 4; i++ {
		time.Sleep(15 * time.Millisecond)
		c.Add("grp-t", BatchInput{TicketID: 3, Origin: domain.RoleUser, Destination: dest, Photo: domain.PhotoRef("extra")})
	}

	waitFor(t, time.Second, func() bool { return len(tp.sentBatches()) == 1 })
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("flush took %v, deadline was not anchored to first item", elapsed)
	}
}

func TestCoalescerPostFlushArrivalStartsFreshCycle(t *testing.T) {
	t.Parallel()
	tp := &fakeTransport{}
	c, _ := newTestCoalescer(tp, 10*time.Millisecond)

	dest := transport.ThreadDestination(-100, 11)
	c.Add("grp-f", BatchInput{TicketID: 4, Origin: domain.RoleUser, Destination: dest, Photo: "p1"})
	waitFor(t, time.Second, func() bool { return len(tp.sentBatches()) == 1 })

	c.Add("grp-f", BatchInput{TicketID: 4, Origin: domain.RoleUser, Destination: dest, Photo: "p2"})
	waitFor(t, time.Second, func() bool { return len(tp.sentBatches()) == 2 })

	batches := tp.sentBatches()
	if len(batches[0].items) != 1 || len(batches[1].items) != 1 {
		t.Errorf("batch sizes = %d, %d; want 1, 1", len(batches[0].items), len(batches[1].items))
	}
	if batches[1].items[0].Photo != "p2" {
		t.Errorf("second cycle photo = %q, want %q", batches[1].items[0].Photo, "p2")
	}
}

func TestCoalescerFlushAbsentKeyIsNoop(t *testing.T) {
	t.Parallel()
	tp := &fakeTransport{}
	c, _ := newTestCoalescer(tp, 10*time.Millisecond)

	c.flush("never-seen")
	if got := len(tp.sentBatches()); got != 0 {
		t.Errorf("sent %d batches, want 0", got)
	}
}

func TestCoalescerIndependentKeysDoNotBlockEachOther(t *testing.T) {
	t.Parallel()
	slowDest := transport.ThreadDestination(-100, 1)
	fastDest := transport.ThreadDestination(-100, 2)
	release := make(chan struct{})
	tp := &fakeTransport{blockDest: slowDest, blockBatch: release}
	c, _ := newTestCoalescer(tp, 10*time.Millisecond)

	c.Add("slow", BatchInput{TicketID: 5, Origin: domain.RoleUser, Destination: slowDest, Photo: "s1"})
	time.Sleep(30 * time.Millisecond)
	c.Add("fast", BatchInput{TicketID: 6, Origin: domain.RoleUser, Destination: fastDest, Photo: "f1"})

	// The fast group's flush must land while the slow one is still stuck.
	waitFor(t, time.Second, func() bool {
		for _, b := range tp.sentBatches() {
			if b.dest == fastDest {
				return true
			}
		}
		return false
	})

	close(release)
	waitFor(t, time.Second, func() bool { return len(tp.sentBatches()) == 2 })
}

func TestCoalescerDeliveryFailureIsNotRetried(t *testing.T) {
	t.Parallel()
	tp := &fakeTransport{batchErr: errors.New("telegram: 502")}
	c, metrics := newTestCoalescer(tp, 10*time.Millisecond)

	dest := transport.ThreadDestination(-100, 13)
	c.Add("grp-e", BatchInput{TicketID: 7, Origin: domain.RoleUser, Destination: dest, Photo: "p1"})

	waitFor(t, time.Second, func() bool {
		return metrics.Snapshot()["delivery_failures"] == int64(1)
	})

	// The failed flush removed the batch; nothing is pending afterwards.
	time.Sleep(30 * time.Millisecond)
	c.mu.Lock()
	pending := len(c.pending)
	c.mu.Unlock()
	if pending != 0 {
		t.Errorf("pending batches = %d, want 0", pending)
	}
	if got := metrics.Snapshot()["batches_flushed"]; got != int64(0) {
		t.Errorf("batches_flushed = %v, want 0", got)
	}
}
