package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/trovescan/trove/internal/db"
	"github.com/trovescan/trove/internal/inventory"
	"github.com/trovescan/trove/internal/tree"

	_ "modernc.org/sqlite"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the folder tree non-interactively",
	Long: `Rebuild the folder tree from a snapshot and print it for
scripting, optionally restricted to certain file kinds.`,
	RunE: runTree,
}

var (
	treeDB    string
	treeKinds []string
	treeDepth int
	treeFiles bool
)

func init() {
	treeCmd.Flags().StringVarP(&treeDB, "db", "d", "./data/latest.db", "Path to snapshot file")
	treeCmd.Flags().StringSliceVarP(&treeKinds, "kind", "k", nil, "Only include these file kinds (document, image, video, audio, archive, book, presentation, spreadsheet)")
	treeCmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum folder depth to print (0 = unlimited)")
	treeCmd.Flags().BoolVar(&treeFiles, "files", false, "Also list individual files")
}

func runTree(cmd *cobra.Command, args []string) error {
	database, err := sql.Open("sqlite", treeDB)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer database.Close()

	meta, err := db.GetScanMeta(database)
	if err != nil {
		return fmt.Errorf("failed to read scan metadata: %w", err)
	}

	var kinds []inventory.FileKind
	for _, s := range treeKinds {
		kind, ok := inventory.KindFromString(strings.ToLower(s))
		if !ok {
			return fmt.Errorf("unknown file kind %q", s)
		}
		kinds = append(kinds, kind)
	}

	files, err := db.LoadFiles(database)
	if err != nil {
		return fmt.Errorf("failed to load files: %w", err)
	}

	nodes := tree.Build(files, meta.Roots, kinds)
	if len(nodes) == 0 {
		fmt.Println("No matching files.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SIZE\tFILES\tPATH\n")
	for _, node := range nodes {
		printNode(w, node, 0)
	}
	return w.Flush()
}

func printNode(w *tabwriter.Writer, node *inventory.FolderNode, depth int) {
	if treeDepth > 0 && depth >= treeDepth {
		return
	}

	indent := strings.Repeat("  ", depth)
	label := node.Name
	if depth == 0 {
		label = node.Path
	}
	fmt.Fprintf(w, "%s\t%s\t%s%s/\n",
		humanize.Bytes(uint64(node.TotalSize)),
		humanize.Comma(node.TotalFileCount),
		indent, label,
	)

	if treeFiles {
		for _, f := range node.Files {
			fmt.Fprintf(w, "%s\t\t%s  %s\n",
				humanize.Bytes(uint64(f.Size)),
				indent, f.Name,
			)
		}
	}

	for _, child := range node.Children {
		printNode(w, child, depth+1)
	}
}
