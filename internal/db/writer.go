package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/trovescan/trove/internal/inventory"
)

const insertFileSQL = `INSERT OR REPLACE INTO files (path, name, ext, size, mtime, ctime, kind, origin, parent)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertFolderSQL = `INSERT OR REPLACE INTO folders (path, parent, name, file_count, total_files, total_size, latest_mtime)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// rootsSeparator joins root paths inside the scan_meta roots column.
// Newlines cannot appear in the paths the CLI accepts.
const rootsSeparator = "\n"

// Ingester drains matched-file batches into the database, one transaction
// per batch. Batches arrive already rate-limited by the scan's reporter.
type Ingester struct {
	db      *sql.DB
	batches <-chan []inventory.ScannedFile

	written atomic.Int64
}

// NewIngester creates an ingester reading from batches until the channel
// closes.
func NewIngester(db *sql.DB, batches <-chan []inventory.ScannedFile) *Ingester {
	return &Ingester{db: db, batches: batches}
}

// Run consumes batches until the channel is closed or the context ends.
func (ing *Ingester) Run(ctx context.Context) error {
	stmt, err := ing.db.Prepare(insertFileSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare file statement: %w", err)
	}
	defer stmt.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-ing.batches:
			if !ok {
				return nil
			}
			if err := ing.flush(stmt, batch); err != nil {
				return err
			}
		}
	}
}

// Written returns how many file rows have been committed so far. Safe for
// concurrent reads.
func (ing *Ingester) Written() int64 {
	return ing.written.Load()
}

func (ing *Ingester) flush(stmt *sql.Stmt, batch []inventory.ScannedFile) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := ing.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStmt := tx.Stmt(stmt)
	for _, f := range batch {
		_, err := txStmt.Exec(f.Path, f.Name, f.Extension, f.Size,
			f.ModifiedAt.Unix(), f.CreatedAt.Unix(), f.Kind, f.Origin, f.ParentPath)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert file %q: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	ing.written.Add(int64(len(batch)))
	return nil
}

// InsertFiles writes a complete file list in a single transaction. Used
// when persisting a finished session's result rather than streaming.
func InsertFiles(database *sql.DB, files []inventory.ScannedFile) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(insertFileSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare file statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		_, err := stmt.Exec(f.Path, f.Name, f.Extension, f.Size,
			f.ModifiedAt.Unix(), f.CreatedAt.Unix(), f.Kind, f.Origin, f.ParentPath)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert file %q: %w", f.Path, err)
		}
	}

	return tx.Commit()
}

// InsertFolderTree flattens the pruned tree into folder rows, all in one
// transaction.
func InsertFolderTree(database *sql.DB, nodes []*inventory.FolderNode) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(insertFolderSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare folder statement: %w", err)
	}
	defer stmt.Close()

	var walk func(parent string, node *inventory.FolderNode) error
	walk = func(parent string, node *inventory.FolderNode) error {
		_, err := stmt.Exec(node.Path, parent, node.Name, node.FileCount,
			node.TotalFileCount, node.TotalSize, node.LatestModified.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert folder %q: %w", node.Path, err)
		}
		for _, child := range node.Children {
			if err := walk(node.Path, child); err != nil {
				return err
			}
		}
		return nil
	}

	for _, node := range nodes {
		if err := walk("", node); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// InsertScanMeta writes the singleton scan metadata row.
func InsertScanMeta(database *sql.DB, meta inventory.ScanMeta) error {
	partial := 0
	if meta.Partial {
		partial = 1
	}
	_, err := database.Exec(
		`INSERT OR REPLACE INTO scan_meta (id, scan_id, roots, start_time, end_time, scanned, matched, skipped, partial)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ScanID, strings.Join(meta.Roots, rootsSeparator),
		meta.StartTime.Unix(), meta.EndTime.Unix(),
		meta.Scanned, meta.Matched, meta.Skipped, partial,
	)
	if err != nil {
		return fmt.Errorf("failed to write scan metadata: %w", err)
	}
	return nil
}
