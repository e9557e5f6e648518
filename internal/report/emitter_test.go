package report

import (
	"testing"
	"time"

	"github.com/trovescan/trove/internal/inventory"
)

// fakeClock lets tests advance the emitter's notion of time explicitly.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEmitter(clock *fakeClock, batchSize int) *Emitter {
	e := NewEmitter(200*time.Millisecond, 100*time.Millisecond, batchSize)
	e.now = clock.now
	e.lastFlush = clock.t
	return e
}

func TestOfferThrottlesProgress(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	e := newTestEmitter(clock, 50)

	if !e.Offer(inventory.ScanProgress{Scanned: 1}) {
		t.Fatalf("first snapshot should go out")
	}
	clock.advance(50 * time.Millisecond)
	if e.Offer(inventory.ScanProgress{Scanned: 2}) {
		t.Fatalf("snapshot within interval should be suppressed")
	}
	clock.advance(200 * time.Millisecond)
	if !e.Offer(inventory.ScanProgress{Scanned: 3}) {
		t.Fatalf("snapshot after interval should go out")
	}

	if got := len(e.Progress()); got != 2 {
		t.Fatalf("expected 2 buffered snapshots, got %d", got)
	}
}

func TestSendBypassesThrottle(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	e := newTestEmitter(clock, 50)

	e.Offer(inventory.ScanProgress{Status: inventory.StatusScanning})
	e.Send(inventory.ScanProgress{Status: inventory.StatusCompleted})

	if got := len(e.Progress()); got != 2 {
		t.Fatalf("expected terminal snapshot despite throttle, got %d buffered", got)
	}
}

func TestBatchFlushOnSize(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	e := newTestEmitter(clock, 3)

	e.Add(inventory.ScannedFile{Name: "a"})
	e.Add(inventory.ScannedFile{Name: "b"})
	if len(e.Batches()) != 0 {
		t.Fatalf("batch flushed before size threshold")
	}
	e.Add(inventory.ScannedFile{Name: "c"})

	select {
	case batch := <-e.Batches():
		if len(batch) != 3 {
			t.Fatalf("expected batch of 3, got %d", len(batch))
		}
	default:
		t.Fatalf("expected a batch at size threshold")
	}
	if e.Pending() != 0 {
		t.Fatalf("pending not cleared after flush")
	}
}

func TestBatchFlushOnInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	e := newTestEmitter(clock, 50)

	e.Add(inventory.ScannedFile{Name: "a"})
	if len(e.Batches()) != 0 {
		t.Fatalf("batch flushed before interval elapsed")
	}

	clock.advance(150 * time.Millisecond)
	e.Add(inventory.ScannedFile{Name: "b"})

	select {
	case batch := <-e.Batches():
		if len(batch) != 2 {
			t.Fatalf("expected batch of 2, got %d", len(batch))
		}
	default:
		t.Fatalf("expected interval-driven flush")
	}
}

func TestDropsWhenConsumerGone(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	e := newTestEmitter(clock, 1)

	// Fill both channel buffers; further sends must not block.
	for i := 0; i < channelDepth+10; i++ {
		e.Send(inventory.ScanProgress{Scanned: int64(i)})
		e.Add(inventory.ScannedFile{Name: "f"})
	}
}
