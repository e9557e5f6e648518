package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/trovescan/trove/internal/inventory"
	"github.com/trovescan/trove/internal/pathutil"
)

// FolderRow is one persisted folder aggregate.
type FolderRow struct {
	Path           string
	Parent         string
	Name           string
	FileCount      int64
	TotalFiles     int64
	TotalSize      int64
	LatestModified time.Time
}

// LoadFolder fetches a single folder aggregate, or nil when the path is not
// part of the snapshot.
func LoadFolder(database *sql.DB, path string) (*FolderRow, error) {
	path = pathutil.Normalize(path)
	row := database.QueryRow(
		`SELECT path, parent, name, file_count, total_files, total_size, latest_mtime
		 FROM folders WHERE path = ?`, path)

	var f FolderRow
	var latest int64
	err := row.Scan(&f.Path, &f.Parent, &f.Name, &f.FileCount, &f.TotalFiles, &f.TotalSize, &latest)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load folder %q: %w", path, err)
	}
	f.LatestModified = time.Unix(latest, 0)
	return &f, nil
}

// LoadChildFolders returns a folder's direct subfolders, most recently
// modified first.
func LoadChildFolders(database *sql.DB, parent string) ([]FolderRow, error) {
	parent = pathutil.Normalize(parent)
	rows, err := database.Query(
		`SELECT path, parent, name, file_count, total_files, total_size, latest_mtime
		 FROM folders WHERE parent = ? ORDER BY latest_mtime DESC, name ASC`, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to query child folders: %w", err)
	}
	defer rows.Close()

	var folders []FolderRow
	for rows.Next() {
		var f FolderRow
		var latest int64
		if err := rows.Scan(&f.Path, &f.Parent, &f.Name, &f.FileCount, &f.TotalFiles, &f.TotalSize, &latest); err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		f.LatestModified = time.Unix(latest, 0)
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// RootFolders returns the snapshot's top-level folder aggregates.
func RootFolders(database *sql.DB) ([]FolderRow, error) {
	return LoadChildFolders(database, "")
}

// LoadFolderFiles returns a folder's direct files, most recently modified
// first.
func LoadFolderFiles(database *sql.DB, parent string) ([]inventory.ScannedFile, error) {
	parent = pathutil.Normalize(parent)
	rows, err := database.Query(
		`SELECT path, name, ext, size, mtime, ctime, kind, origin, parent
		 FROM files WHERE parent = ? ORDER BY mtime DESC, name ASC`, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to query folder files: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

// LoadFiles returns the complete inventory, in no particular order. Used to
// rebuild folder trees with a kind filter.
func LoadFiles(database *sql.DB) ([]inventory.ScannedFile, error) {
	rows, err := database.Query(
		`SELECT path, name, ext, size, mtime, ctime, kind, origin, parent FROM files`)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

func scanFiles(rows *sql.Rows) ([]inventory.ScannedFile, error) {
	var files []inventory.ScannedFile
	for rows.Next() {
		var f inventory.ScannedFile
		var mtime, ctime int64
		var kind, origin int
		if err := rows.Scan(&f.Path, &f.Name, &f.Extension, &f.Size, &mtime, &ctime, &kind, &origin, &f.ParentPath); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		f.ModifiedAt = time.Unix(mtime, 0)
		f.CreatedAt = time.Unix(ctime, 0)
		f.Kind = inventory.FileKind(kind)
		f.Origin = inventory.FileOrigin(origin)
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetScanMeta retrieves the snapshot's scan metadata.
func GetScanMeta(database *sql.DB) (*inventory.ScanMeta, error) {
	var m inventory.ScanMeta
	var roots string
	var startTime, endTime int64
	var partial int

	err := database.QueryRow(
		`SELECT scan_id, roots, start_time, COALESCE(end_time, 0), scanned, matched, skipped, partial
		 FROM scan_meta WHERE id = 1`,
	).Scan(&m.ScanID, &roots, &startTime, &endTime, &m.Scanned, &m.Matched, &m.Skipped, &partial)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan metadata: %w", err)
	}

	if roots != "" {
		m.Roots = strings.Split(roots, rootsSeparator)
	}
	m.StartTime = time.Unix(startTime, 0)
	if endTime > 0 {
		m.EndTime = time.Unix(endTime, 0)
	}
	m.Partial = partial != 0
	return &m, nil
}
