package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trovescan/trove/internal/db"
	"github.com/trovescan/trove/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	_ "modernc.org/sqlite"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a snapshot interactively",
	Long:  `Open an interactive TUI to browse the folder tree of a snapshot.`,
	RunE:  runBrowse,
}

var browseDB string

func init() {
	browseCmd.Flags().StringVarP(&browseDB, "db", "d", "./data/latest.db", "Path to snapshot file")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	database, err := sql.Open("sqlite", browseDB)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer database.Close()

	if err := db.ApplyReadPragmas(database); err != nil {
		return fmt.Errorf("failed to apply pragmas: %w", err)
	}

	model := tui.NewModel(database)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
