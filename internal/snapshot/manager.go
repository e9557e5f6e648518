package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/trovescan/trove/internal/db"
	"github.com/trovescan/trove/internal/inventory"
	"github.com/trovescan/trove/internal/scan"

	_ "modernc.org/sqlite"
)

// ProgressFunc is called for each progress snapshot during a scan.
type ProgressFunc func(p inventory.ScanProgress)

// Manager handles the scan-to-snapshot lifecycle including locking,
// atomic publication, and retention.
type Manager struct {
	outputDir    string
	retention    int
	lockFile     *os.File
	progressFunc ProgressFunc
	coord        *scan.Coordinator
}

// NewManager creates a new snapshot manager writing into outputDir and
// keeping at most retention snapshots (0 disables pruning).
func NewManager(outputDir string, retention int) *Manager {
	return &Manager{
		outputDir: outputDir,
		retention: retention,
		coord:     scan.NewCoordinator(),
	}
}

// SetProgressFunc sets a callback for progress updates during scan.
func (m *Manager) SetProgressFunc(f ProgressFunc) {
	m.progressFunc = f
}

// RunScan executes a complete scan workflow: walk the configured roots,
// stream matches into a temp database, persist the folder tree and scan
// metadata, then atomically publish the snapshot. Returns the path of
// the published snapshot. Cancelling ctx stops the walk cooperatively;
// the partial snapshot is still published with its metadata marked.
func (m *Manager) RunScan(ctx context.Context, opts *scan.Options) (string, error) {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := m.acquireLock(); err != nil {
		return "", fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer m.releaseLock()

	tempPath := filepath.Join(m.outputDir, fmt.Sprintf(".trove-temp-%d.db", time.Now().UnixNano()))
	database, err := sql.Open("sqlite", tempPath)
	if err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to create database: %w", err)
	}

	fail := func(err error) (string, error) {
		database.Close()
		os.Remove(tempPath)
		return "", err
	}

	if err := db.InitSchema(database); err != nil {
		return fail(fmt.Errorf("failed to initialize schema: %w", err))
	}
	if err := db.ApplyWritePragmas(database); err != nil {
		return fail(fmt.Errorf("failed to apply pragmas: %w", err))
	}

	sess, err := m.coord.Start(opts)
	if err != nil {
		return fail(err)
	}

	// The ingester drains the batch stream until the session closes it,
	// so it gets its own context. Cancelling the scan is handled below.
	ing := db.NewIngester(database, sess.Batches())
	ingErr := make(chan error, 1)
	go func() {
		ingErr <- ing.Run(context.Background())
	}()

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for p := range sess.Progress() {
			if m.progressFunc != nil {
				m.progressFunc(p)
			}
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			sess.Cancel()
		case <-sess.Done():
		}
	}()

	<-sess.Done()
	if err := <-ingErr; err != nil {
		return fail(fmt.Errorf("failed to ingest scan results: %w", err))
	}
	<-progressDone

	result, scanErr := sess.Result()
	if scanErr != nil {
		return fail(fmt.Errorf("scan failed: %w", scanErr))
	}

	// A cancelled session holds matches that were buffered but never
	// emitted as a batch. Backfill them; the insert replaces on path so
	// already-ingested rows are unaffected.
	if ing.Written() < int64(len(result.Files)) {
		if err := db.InsertFiles(database, result.Files); err != nil {
			return fail(fmt.Errorf("failed to backfill files: %w", err))
		}
	}

	if err := db.InsertFolderTree(database, result.FolderTree); err != nil {
		return fail(fmt.Errorf("failed to persist folder tree: %w", err))
	}

	scanned, matched, skipped := sess.Counters()
	meta := inventory.ScanMeta{
		ScanID:    sess.ID,
		Roots:     sess.Roots(),
		StartTime: sess.StartedAt(),
		EndTime:   time.Now(),
		Scanned:   scanned,
		Matched:   matched,
		Skipped:   skipped,
		Partial:   result.Partial,
	}
	if err := db.InsertScanMeta(database, meta); err != nil {
		return fail(fmt.Errorf("failed to persist scan metadata: %w", err))
	}

	if err := db.BuildIndexes(database); err != nil {
		return fail(fmt.Errorf("failed to build indexes: %w", err))
	}
	if err := db.Finalize(database); err != nil {
		return fail(fmt.Errorf("failed to finalize database: %w", err))
	}
	database.Close()

	finalName := fmt.Sprintf("trove-%s.db", time.Now().Format("20060102-150405"))
	finalPath := filepath.Join(m.outputDir, finalName)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to rename database: %w", err)
	}

	// Update latest.db atomically via temp symlink + rename.
	latestPath := filepath.Join(m.outputDir, "latest.db")
	tempLink := filepath.Join(m.outputDir, ".latest.db.tmp")
	os.Remove(tempLink)
	if err := os.Symlink(finalName, tempLink); err == nil {
		if err := os.Rename(tempLink, latestPath); err != nil {
			os.Remove(tempLink)
			fmt.Fprintf(os.Stderr, "warning: failed to update latest.db symlink: %v\n", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "warning: failed to create latest.db symlink: %v\n", err)
	}

	if err := m.pruneOldSnapshots(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to prune old snapshots: %v\n", err)
	}

	return finalPath, nil
}

// Cancel requests cancellation of the running scan, if any.
func (m *Manager) Cancel() {
	m.coord.Cancel()
}

func (m *Manager) acquireLock() error {
	lockPath := filepath.Join(m.outputDir, ".trove.lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return fmt.Errorf("another scan is in progress")
	}

	m.lockFile = f
	return nil
}

func (m *Manager) releaseLock() {
	if m.lockFile != nil {
		syscall.Flock(int(m.lockFile.Fd()), syscall.LOCK_UN)
		m.lockFile.Close()
		m.lockFile = nil
	}
}

func (m *Manager) pruneOldSnapshots() error {
	if m.retention <= 0 {
		return nil
	}

	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return err
	}

	var snapshots []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "trove-") && strings.HasSuffix(e.Name(), ".db") {
			snapshots = append(snapshots, e.Name())
		}
	}

	// Names embed the timestamp, so lexical order is chronological.
	sort.Strings(snapshots)

	for len(snapshots) > m.retention {
		oldPath := filepath.Join(m.outputDir, snapshots[0])
		if err := os.Remove(oldPath); err != nil {
			return fmt.Errorf("failed to remove %s: %w", snapshots[0], err)
		}
		snapshots = snapshots[1:]
	}

	return nil
}

// GetLatest returns the path to the latest snapshot.
func (m *Manager) GetLatest() (string, error) {
	latestPath := filepath.Join(m.outputDir, "latest.db")
	resolved, err := filepath.EvalSymlinks(latestPath)
	if err != nil {
		return "", fmt.Errorf("no latest snapshot found: %w", err)
	}
	return resolved, nil
}

// ListSnapshots returns all available snapshots sorted by date.
func (m *Manager) ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, err
	}

	var snapshots []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "trove-") && strings.HasSuffix(e.Name(), ".db") {
			snapshots = append(snapshots, filepath.Join(m.outputDir, e.Name()))
		}
	}

	sort.Strings(snapshots)
	return snapshots, nil
}
