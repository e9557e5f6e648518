package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trove",
	Short: "A recent-files scanner and browser",
	Long: `trove scans chosen directories for recently modified documents,
media, and other supported files, stores the results in SQLite
snapshots, and provides a TUI browser for exploring them.`,
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(treeCmd)
}
