package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/trovescan/trove/internal/db"
	"github.com/trovescan/trove/internal/inventory"
	"github.com/trovescan/trove/internal/pathutil"
	"github.com/trovescan/trove/internal/scan"
	"github.com/trovescan/trove/internal/snapshot"

	_ "modernc.org/sqlite"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var scanCmd = &cobra.Command{
	Use:   "scan [roots...]",
	Short: "Scan directories and create a snapshot",
	Long: `Scan one or more directory trees for recently modified supported
files and store the results in a SQLite snapshot.`,
	RunE: runScan,
}

var (
	scanOut         string
	scanDaysBack    int
	scanFrom        string
	scanTo          string
	scanRecommended bool
	scanExclude     []string
	scanRetention   int
	scanThrottle    time.Duration
	scanProgress    time.Duration
)

const dateLayout = "2006-01-02"

func init() {
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "./data", "Output directory for snapshots")
	scanCmd.Flags().IntVar(&scanDaysBack, "days-back", 30, "Only match files modified within the last N days (0 = no limit)")
	scanCmd.Flags().StringVar(&scanFrom, "from", "", "Only match files modified on or after this date (YYYY-MM-DD, overrides --days-back)")
	scanCmd.Flags().StringVar(&scanTo, "to", "", "Only match files modified on or before this date (YYYY-MM-DD)")
	scanCmd.Flags().BoolVar(&scanRecommended, "recommended-exclusions", true, "Skip OS caches, trash, and application support directories")
	scanCmd.Flags().StringSliceVarP(&scanExclude, "exclude", "e", nil, "Glob patterns to exclude (can be repeated)")
	scanCmd.Flags().IntVar(&scanRetention, "retention", 5, "Number of snapshots to retain (0 = unlimited)")
	scanCmd.Flags().DurationVar(&scanThrottle, "throttle", 0, "Pause between directory entries for low-impact scans")
	scanCmd.Flags().DurationVar(&scanProgress, "progress-interval", 30*time.Second, "Emit progress lines to stderr at this interval when not a TTY (0 to disable)")
}

func runScan(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	roots := make([]string, 0, len(args))
	for _, arg := range args {
		root, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("failed to resolve root path %q: %w", arg, err)
		}
		roots = append(roots, pathutil.Normalize(root))
	}

	outDir, err := filepath.Abs(scanOut)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	opts := scan.DefaultOptions().
		WithRoots(roots...).
		WithDaysBack(scanDaysBack).
		WithRecommendedExclusions(scanRecommended).
		WithCustomExclusions(scanExclude...).
		WithThrottle(scanThrottle)

	from, to, err := parseDateRange(scanFrom, scanTo)
	if err != nil {
		return err
	}
	if !from.IsZero() || !to.IsZero() {
		opts.WithDateRange(from, to)
	}

	fmt.Printf("Scanning %d root(s)...\n", len(roots))

	mgr := snapshot.NewManager(outDir, scanRetention)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCanceling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()
	startTime := time.Now()

	var mu sync.Mutex
	var last inventory.ScanProgress
	mgr.SetProgressFunc(func(p inventory.ScanProgress) {
		mu.Lock()
		last = p
		mu.Unlock()
	})

	isTTY := isTerminal()
	var spinnerIdx int
	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		lastNonTTY := time.Now()
		for {
			select {
			case <-progressDone:
				return
			case <-ticker.C:
				mu.Lock()
				p := last
				mu.Unlock()
				elapsed := time.Since(startTime).Round(time.Millisecond)

				if isTTY {
					spinner := spinnerFrames[spinnerIdx%len(spinnerFrames)]
					spinnerIdx++
					if p.Stage == "aggregate" {
						fmt.Fprintf(os.Stderr, "\r\033[K%s aggregating... | %s", spinner, elapsed)
					} else {
						fmt.Fprintf(os.Stderr, "\r\033[K%s Scanning... %d seen | %d matched | %d skipped | %s | %s",
							spinner, p.Scanned, p.Matched, p.Skipped, trimPath(p.CurrentPath, 40), elapsed)
					}
				} else if scanProgress > 0 && time.Since(lastNonTTY) >= scanProgress {
					fmt.Fprintf(os.Stderr, "PROGRESS stage=%s scanned=%d matched=%d skipped=%d elapsed=%s\n",
						p.Stage, p.Scanned, p.Matched, p.Skipped, elapsed)
					lastNonTTY = time.Now()
				}
			}
		}
	}()

	dbPath, err := mgr.RunScan(ctx, opts)
	close(progressDone)

	if isTTY {
		fmt.Fprintf(os.Stderr, "\r\033[K")
	}

	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Printf("Snapshot: %s\n", dbPath)
	fmt.Printf("Scan completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	printSummary(dbPath)
	return nil
}

func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromStr != "" {
		from, err = time.ParseInLocation(dateLayout, fromStr, time.Local)
		if err != nil {
			return from, to, fmt.Errorf("invalid --from date %q: %w", fromStr, err)
		}
	}
	if toStr != "" {
		to, err = time.ParseInLocation(dateLayout, toStr, time.Local)
		if err != nil {
			return from, to, fmt.Errorf("invalid --to date %q: %w", toStr, err)
		}
		// Make the bound inclusive of the whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("--to date is before --from date")
	}
	return from, to, nil
}

func printSummary(dbPath string) {
	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return
	}
	defer database.Close()

	meta, err := db.GetScanMeta(database)
	if err != nil {
		return
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Examined: %s\n", humanize.Comma(meta.Scanned))
	fmt.Printf("  Matched:  %s\n", humanize.Comma(meta.Matched))
	fmt.Printf("  Skipped:  %s\n", humanize.Comma(meta.Skipped))
	if meta.Partial {
		fmt.Printf("  Partial:  scan was cancelled before finishing\n")
	}
}

func trimPath(p string, maxLen int) string {
	if len(p) <= maxLen {
		return p
	}
	return "..." + p[len(p)-maxLen+3:]
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
