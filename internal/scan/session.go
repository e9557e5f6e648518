package scan

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/trovescan/trove/internal/exclude"
	"github.com/trovescan/trove/internal/inventory"
	"github.com/trovescan/trove/internal/pathutil"
	"github.com/trovescan/trove/internal/report"
	"github.com/trovescan/trove/internal/tree"
)

const (
	stageWalk      = "walk"
	stageAggregate = "aggregate"
)

// Result is the terminal outcome of a session. Partial is true iff the
// session ended via cancellation rather than exhausting all roots.
type Result struct {
	Files      []inventory.ScannedFile
	FolderTree []*inventory.FolderNode
	Partial    bool
}

// Session owns one traversal's mutable state and coordinates the walker
// with the reporter. A session runs once; it is created by a Coordinator
// and discarded when done.
type Session struct {
	// ID correlates progress events, log lines, and the persisted snapshot.
	ID string

	opts    *Options
	roots   []string
	policy  *exclude.Policy
	filter  *timeFilter
	emitter *report.Emitter

	// files accumulates every match, including ones buffered but never
	// emitted as a batch. Written only by the walker goroutine.
	files []inventory.ScannedFile

	scanned atomic.Int64
	matched atomic.Int64
	skipped atomic.Int64
	aborted atomic.Bool

	started time.Time
	doneCh  chan struct{}

	// result and err are written once before doneCh closes.
	result *Result
	err    error
}

func newSession(opts *Options) *Session {
	roots := make([]string, 0, len(opts.Roots))
	for _, r := range opts.Roots {
		roots = append(roots, pathutil.Normalize(r))
	}
	return &Session{
		ID:      uuid.NewString(),
		opts:    opts,
		roots:   roots,
		policy:  exclude.NewPolicy(opts.UseRecommendedExclusions, opts.CustomExclusions),
		filter:  timeFilterFrom(opts, time.Now()),
		emitter: report.NewEmitter(opts.ProgressInterval, opts.FlushInterval, opts.BatchSize),
		doneCh:  make(chan struct{}),
	}
}

func (s *Session) start() {
	s.started = time.Now()
	go s.run()
}

func (s *Session) run() {
	defer close(s.doneCh)
	defer s.emitter.Close()
	defer func() {
		if r := recover(); r != nil {
			s.err = fmt.Errorf("scan failed unexpectedly: %v", r)
			s.emitter.Send(s.snapshot(inventory.StatusError, stageWalk, "", s.err.Error()))
		}
	}()

	s.emitter.Send(s.snapshot(inventory.StatusScanning, stageWalk, "", ""))

	for _, root := range s.roots {
		if s.aborted.Load() {
			break
		}
		// An individually missing or non-directory root is skipped; the
		// scan continues with the remaining roots.
		info, err := statTimeout(root, s.opts.DirStatTimeout)
		if err != nil || !info.IsDir() {
			s.skipped.Add(1)
			continue
		}
		w := &walker{sess: s}
		w.walk(root)
	}

	cancelled := s.aborted.Load()
	if !cancelled {
		// The final partial batch goes out only on a clean finish; after a
		// cancellation no further batches are emitted, though buffered
		// matches survive in the result.
		s.emitter.Flush()
	}

	s.emitter.Send(s.snapshot(inventory.StatusScanning, stageAggregate, "", ""))
	folderTree := tree.Build(s.files, s.roots, nil)

	s.result = &Result{
		Files:      s.files,
		FolderTree: folderTree,
		Partial:    cancelled,
	}

	status := inventory.StatusCompleted
	if cancelled {
		status = inventory.StatusCancelled
	}
	s.emitter.Send(s.snapshot(status, stageAggregate, "", ""))
}

// Cancel requests a cooperative stop. The walker observes the flag between
// filesystem operations; an in-flight timed call cannot be interrupted,
// only discarded once it settles.
func (s *Session) Cancel() {
	s.aborted.Store(true)
}

// Progress is the throttled stream of progress snapshots. Closed when the
// session finishes.
func (s *Session) Progress() <-chan inventory.ScanProgress {
	return s.emitter.Progress()
}

// Batches is the ordered stream of newly matched files. Closed when the
// session finishes.
func (s *Session) Batches() <-chan []inventory.ScannedFile {
	return s.emitter.Batches()
}

// Done closes once the session has fully stopped.
func (s *Session) Done() <-chan struct{} {
	return s.doneCh
}

// Result returns the terminal outcome. Valid only after Done has closed; a
// non-nil error means the scan died to an unexpected failure and the result
// is nil.
func (s *Session) Result() (*Result, error) {
	return s.result, s.err
}

// Counters returns the running scanned/matched/skipped totals. Safe to call
// from any goroutine while the scan runs.
func (s *Session) Counters() (scanned, matched, skipped int64) {
	return s.scanned.Load(), s.matched.Load(), s.skipped.Load()
}

// StartedAt reports when the traversal began.
func (s *Session) StartedAt() time.Time {
	return s.started
}

// Roots returns the normalized root paths of this session.
func (s *Session) Roots() []string {
	return s.roots
}

func (s *Session) snapshot(status inventory.ScanStatus, stage, current, errMsg string) inventory.ScanProgress {
	return inventory.ScanProgress{
		ScanID:      s.ID,
		Status:      status,
		Stage:       stage,
		CurrentPath: current,
		Scanned:     s.scanned.Load(),
		Matched:     s.matched.Load(),
		Skipped:     s.skipped.Load(),
		Error:       errMsg,
		Timestamp:   time.Now(),
	}
}

func (s *Session) offerProgress(current string) {
	s.emitter.Offer(s.snapshot(inventory.StatusScanning, stageWalk, current, ""))
}
