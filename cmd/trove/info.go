package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/trovescan/trove/internal/db"

	_ "modernc.org/sqlite"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display scan metadata",
	Long:  `Print metadata about a snapshot including timestamps and counters.`,
	RunE:  runInfo,
}

var infoDB string

func init() {
	infoCmd.Flags().StringVarP(&infoDB, "db", "d", "./data/latest.db", "Path to snapshot file")
}

func runInfo(cmd *cobra.Command, args []string) error {
	database, err := sql.Open("sqlite", infoDB)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer database.Close()

	meta, err := db.GetScanMeta(database)
	if err != nil {
		return fmt.Errorf("failed to read scan metadata: %w", err)
	}

	fmt.Printf("Scan Information\n")
	fmt.Printf("================\n\n")
	fmt.Printf("Scan ID:    %s\n", meta.ScanID)
	fmt.Printf("Roots:      %s\n", strings.Join(meta.Roots, ", "))
	fmt.Printf("Start Time: %s\n", meta.StartTime.Format(time.RFC3339))
	if !meta.EndTime.IsZero() {
		fmt.Printf("End Time:   %s\n", meta.EndTime.Format(time.RFC3339))
		fmt.Printf("Duration:   %s\n", meta.EndTime.Sub(meta.StartTime).Round(time.Millisecond))
	}
	fmt.Printf("\nCounters\n")
	fmt.Printf("--------\n")
	fmt.Printf("Examined: %s\n", humanize.Comma(meta.Scanned))
	fmt.Printf("Matched:  %s\n", humanize.Comma(meta.Matched))
	fmt.Printf("Skipped:  %s\n", humanize.Comma(meta.Skipped))
	if meta.Partial {
		fmt.Printf("\nThis snapshot is partial: the scan was cancelled before finishing.\n")
	}

	return nil
}
