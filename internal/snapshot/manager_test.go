package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trovescan/trove/internal/db"
	"github.com/trovescan/trove/internal/inventory"
	"github.com/trovescan/trove/internal/scan"
)

func writeFixture(t *testing.T, root string) {
	t.Helper()
	for _, name := range []string{"report.pdf", "photo.jpg", "helper.py"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("data"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestRunScanPublishesSnapshot(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root)

	outDir := t.TempDir()
	mgr := NewManager(outDir, 3)

	var last inventory.ScanProgress
	mgr.SetProgressFunc(func(p inventory.ScanProgress) { last = p })

	path, err := mgr.RunScan(context.Background(), scan.DefaultOptions().WithRoots(root))
	if err != nil {
		t.Fatalf("run scan: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	if last.Status != inventory.StatusCompleted {
		t.Fatalf("final progress status = %s, want completed", last.Status)
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer database.Close()

	meta, err := db.GetScanMeta(database)
	if err != nil {
		t.Fatalf("read meta: %v", err)
	}
	if meta.Partial {
		t.Fatal("completed scan marked partial")
	}
	if meta.Matched != 2 {
		t.Fatalf("matched = %d, want 2", meta.Matched)
	}

	files, err := db.LoadFiles(database)
	if err != nil {
		t.Fatalf("load files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 persisted files, got %d", len(files))
	}

	roots, err := db.RootFolders(database)
	if err != nil {
		t.Fatalf("root folders: %v", err)
	}
	if len(roots) != 1 || roots[0].TotalFiles != 2 {
		t.Fatalf("unexpected persisted roots: %+v", roots)
	}
}

func TestRunScanUpdatesLatestSymlink(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root)

	outDir := t.TempDir()
	mgr := NewManager(outDir, 0)

	path, err := mgr.RunScan(context.Background(), scan.DefaultOptions().WithRoots(root))
	if err != nil {
		t.Fatalf("run scan: %v", err)
	}

	latest, err := mgr.GetLatest()
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("resolve snapshot: %v", err)
	}
	if latest != resolved {
		t.Fatalf("latest = %s, want %s", latest, resolved)
	}
}

func TestRetentionPrunesOldSnapshots(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root)

	outDir := t.TempDir()
	mgr := NewManager(outDir, 1)

	first, err := mgr.RunScan(context.Background(), scan.DefaultOptions().WithRoots(root))
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}

	// Snapshot names have second resolution.
	time.Sleep(1100 * time.Millisecond)

	second, err := mgr.RunScan(context.Background(), scan.DefaultOptions().WithRoots(root))
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if _, err := os.Stat(second); err != nil {
		t.Fatalf("second snapshot missing: %v", err)
	}
	if _, err := os.Stat(first); err == nil {
		t.Fatal("expected first snapshot to be pruned")
	}

	snaps, err := mgr.ListSnapshots()
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0] != second {
		t.Fatalf("unexpected snapshot list: %v", snaps)
	}
}

func TestCancelledScanPublishesPartialSnapshot(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("doc-%03d.pdf", i)
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	outDir := t.TempDir()
	mgr := NewManager(outDir, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	opts := scan.DefaultOptions().WithRoots(root).WithThrottle(2 * time.Millisecond)
	path, err := mgr.RunScan(ctx, opts)
	if err != nil {
		t.Fatalf("run scan: %v", err)
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer database.Close()

	meta, err := db.GetScanMeta(database)
	if err != nil {
		t.Fatalf("read meta: %v", err)
	}
	if !meta.Partial {
		t.Fatal("cancelled scan not marked partial")
	}

	files, err := db.LoadFiles(database)
	if err != nil {
		t.Fatalf("load files: %v", err)
	}
	if int64(len(files)) != meta.Matched {
		t.Fatalf("persisted %d files but matched %d", len(files), meta.Matched)
	}
}
