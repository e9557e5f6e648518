// Package report rate-limits the event stream a scan produces: progress
// snapshots on one channel, matched-file batches on another. It carries no
// domain logic of its own.
package report

import (
	"time"

	"github.com/trovescan/trove/internal/inventory"
)

const (
	// DefaultProgressInterval bounds progress snapshots to one per interval.
	DefaultProgressInterval = 200 * time.Millisecond
	// DefaultFlushInterval is the maximum time between batch flushes.
	DefaultFlushInterval = 100 * time.Millisecond
	// DefaultBatchSize flushes a batch once this many files accumulate.
	DefaultBatchSize = 50

	channelDepth = 64
)

// Emitter throttles outbound scan events. The two channels are independent;
// each tracks its own last-send timestamp. All methods must be called from
// a single producer goroutine. Sends never block: when a consumer stops
// draining, events are dropped silently.
type Emitter struct {
	progressCh chan inventory.ScanProgress
	batchCh    chan []inventory.ScannedFile

	progressEvery time.Duration
	flushEvery    time.Duration
	batchSize     int

	lastProgress time.Time
	lastFlush    time.Time
	pending      []inventory.ScannedFile

	now func() time.Time
}

// NewEmitter creates an emitter with the given thresholds. Zero values fall
// back to the defaults.
func NewEmitter(progressEvery, flushEvery time.Duration, batchSize int) *Emitter {
	if progressEvery <= 0 {
		progressEvery = DefaultProgressInterval
	}
	if flushEvery <= 0 {
		flushEvery = DefaultFlushInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	e := &Emitter{
		progressCh:    make(chan inventory.ScanProgress, channelDepth),
		batchCh:       make(chan []inventory.ScannedFile, channelDepth),
		progressEvery: progressEvery,
		flushEvery:    flushEvery,
		batchSize:     batchSize,
		now:           time.Now,
	}
	e.lastFlush = e.now()
	return e
}

// Progress is the stream of throttled progress snapshots.
func (e *Emitter) Progress() <-chan inventory.ScanProgress {
	return e.progressCh
}

// Batches is the ordered stream of newly matched file batches.
func (e *Emitter) Batches() <-chan []inventory.ScannedFile {
	return e.batchCh
}

// Offer sends a progress snapshot unless one was sent within the progress
// interval. It reports whether the snapshot went out.
func (e *Emitter) Offer(p inventory.ScanProgress) bool {
	now := e.now()
	if now.Sub(e.lastProgress) < e.progressEvery {
		return false
	}
	e.lastProgress = now
	e.send(p)
	return true
}

// Send emits a progress snapshot unconditionally. Used for terminal states
// that must not be rate-limited away.
func (e *Emitter) Send(p inventory.ScanProgress) {
	e.lastProgress = e.now()
	e.send(p)
}

// Add buffers a matched file and flushes the pending batch once the size
// threshold is reached or the flush interval has elapsed since the previous
// flush, whichever happens first.
func (e *Emitter) Add(f inventory.ScannedFile) {
	e.pending = append(e.pending, f)
	if len(e.pending) >= e.batchSize || e.now().Sub(e.lastFlush) >= e.flushEvery {
		e.Flush()
	}
}

// Flush emits the pending batch, if any.
func (e *Emitter) Flush() {
	e.lastFlush = e.now()
	if len(e.pending) == 0 {
		return
	}
	batch := make([]inventory.ScannedFile, len(e.pending))
	copy(batch, e.pending)
	e.pending = e.pending[:0]
	select {
	case e.batchCh <- batch:
	default:
	}
}

// Pending returns how many matched files are buffered but not yet flushed.
func (e *Emitter) Pending() int {
	return len(e.pending)
}

// Close closes both channels. No emitter method may be called afterward.
func (e *Emitter) Close() {
	close(e.progressCh)
	close(e.batchCh)
}

func (e *Emitter) send(p inventory.ScanProgress) {
	select {
	case e.progressCh <- p:
	default:
	}
}
