package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trovescan/trove/internal/inventory"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// drain collects every event a session emits and returns them once the
// session is done.
func drain(t *testing.T, s *Session) ([]inventory.ScanProgress, [][]inventory.ScannedFile) {
	t.Helper()
	var progress []inventory.ScanProgress
	var batches [][]inventory.ScannedFile
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for p := range s.Progress() {
			progress = append(progress, p)
		}
	}()
	for b := range s.Batches() {
		batches = append(batches, b)
	}
	<-progressDone
	<-s.Done()
	return progress, batches
}

func TestFlatDirectoryCounts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"))
	writeFile(t, filepath.Join(root, "b.jpg"))
	writeFile(t, filepath.Join(root, "c.xyz")) // unsupported extension

	c := NewCoordinator()
	s, err := c.Start(DefaultOptions().WithRoots(root))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_, batches := drain(t, s)

	scanned, matched, skipped := s.Counters()
	if scanned != 3 || matched != 2 || skipped != 1 {
		t.Fatalf("counters scanned=%d matched=%d skipped=%d, want 3/2/1", scanned, matched, skipped)
	}

	result, err := s.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Partial {
		t.Fatalf("clean completion must not be partial")
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files in result, got %d", len(result.Files))
	}

	var streamed int
	for _, b := range batches {
		streamed += len(b)
	}
	if streamed != 2 {
		t.Fatalf("expected 2 files across batches, got %d", streamed)
	}
}

func TestCustomExclusionPreventsRecursion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "B", "file.pdf"))

	c := NewCoordinator()
	s, err := c.Start(DefaultOptions().WithRoots(root).WithCustomExclusions("A"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	drain(t, s)

	scanned, matched, skipped := s.Counters()
	if matched != 0 {
		t.Fatalf("expected zero matches under excluded subtree, got %d", matched)
	}
	if scanned != 0 {
		t.Fatalf("file inside excluded subtree was examined (scanned=%d)", scanned)
	}
	if skipped != 1 {
		t.Fatalf("expected exactly one skip for the excluded dir, got %d", skipped)
	}
}

func TestDotEntriesNeverMatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden.pdf"))
	writeFile(t, filepath.Join(root, ".stash", "inner.pdf"))
	writeFile(t, filepath.Join(root, "visible.pdf"))

	c := NewCoordinator()
	s, err := c.Start(DefaultOptions().WithRoots(root))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	drain(t, s)

	result, _ := s.Result()
	if len(result.Files) != 1 || result.Files[0].Name != "visible.pdf" {
		t.Fatalf("expected only visible.pdf, got %+v", result.Files)
	}
}

func TestDateRangeFilter(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "old.pdf")
	in := filepath.Join(root, "in.pdf")
	late := filepath.Join(root, "late.pdf")
	for _, p := range []string{old, in, late} {
		writeFile(t, p)
	}

	from := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	mustChtimes(t, old, from.AddDate(0, 0, -5))
	mustChtimes(t, in, from.AddDate(0, 0, 3))
	mustChtimes(t, late, to.AddDate(0, 0, 5))

	c := NewCoordinator()
	s, err := c.Start(DefaultOptions().WithRoots(root).WithDateRange(from, to))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	drain(t, s)

	result, _ := s.Result()
	if len(result.Files) != 1 || result.Files[0].Name != "in.pdf" {
		t.Fatalf("expected only in.pdf to pass the filter, got %+v", result.Files)
	}
	for _, f := range result.Files {
		if f.ModifiedAt.Before(from) || f.ModifiedAt.After(to) {
			t.Fatalf("file %s outside range: %v", f.Name, f.ModifiedAt)
		}
	}
}

func TestMtimeSubtreeSkip(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "stale")
	writeFile(t, filepath.Join(sub, "doc.pdf"))

	from := time.Now().AddDate(0, 0, -7)
	// The file is recent but the directory itself predates the window;
	// the heuristic skips the whole subtree. Accepted false negative.
	mustChtimes(t, sub, from.AddDate(0, 0, -30))

	c := NewCoordinator()
	s, err := c.Start(DefaultOptions().WithRoots(root).WithDaysBack(7))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	drain(t, s)

	result, _ := s.Result()
	if len(result.Files) != 0 {
		t.Fatalf("expected stale subtree to be skipped, got %d files", len(result.Files))
	}
	_, _, skipped := s.Counters()
	if skipped != 1 {
		t.Fatalf("expected the subtree to count as one skip, got %d", skipped)
	}
}

func TestInvalidRootAmongSeveral(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"))
	missing := filepath.Join(root, "does-not-exist")

	c := NewCoordinator()
	s, err := c.Start(DefaultOptions().WithRoots(missing, root))
	if err != nil {
		t.Fatalf("an invalid root among several must not be fatal: %v", err)
	}
	drain(t, s)

	result, resErr := s.Result()
	if resErr != nil {
		t.Fatalf("result: %v", resErr)
	}
	if result.Partial {
		t.Fatalf("skipping an invalid root is not a cancellation")
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected the valid root to be scanned, got %d files", len(result.Files))
	}
	_, _, skipped := s.Counters()
	if skipped != 1 {
		t.Fatalf("expected invalid root to count as one skip, got %d", skipped)
	}
}

func TestZeroRootsIsSetupError(t *testing.T) {
	c := NewCoordinator()
	if _, err := c.Start(DefaultOptions()); err != ErrNoRoots {
		t.Fatalf("expected ErrNoRoots, got %v", err)
	}
	if c.Active() != nil {
		t.Fatalf("no session may exist after a setup error")
	}
}

func TestResultTreeMatchesFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "a.pdf"))
	writeFile(t, filepath.Join(root, "docs", "b.pdf"))
	writeFile(t, filepath.Join(root, "media", "c.mp4"))

	c := NewCoordinator()
	s, err := c.Start(DefaultOptions().WithRoots(root))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	drain(t, s)

	result, _ := s.Result()
	if len(result.FolderTree) != 1 {
		t.Fatalf("expected one root node, got %d", len(result.FolderTree))
	}
	node := result.FolderTree[0]
	if node.TotalFileCount != int64(len(result.Files)) {
		t.Fatalf("tree total %d != matched files %d", node.TotalFileCount, len(result.Files))
	}
}

func mustChtimes(t *testing.T, path string, when time.Time) {
	t.Helper()
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
