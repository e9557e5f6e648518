package tui

import (
	"database/sql"
	"strings"
	"time"

	"github.com/trovescan/trove/internal/db"
	"github.com/trovescan/trove/internal/inventory"

	tea "github.com/charmbracelet/bubbletea"
)

// SortColumn represents the current sort field.
type SortColumn int

const (
	SortByDate SortColumn = iota
	SortBySize
	SortByFiles
	SortByName
)

func (s SortColumn) String() string {
	switch s {
	case SortBySize:
		return "size"
	case SortByFiles:
		return "files"
	case SortByName:
		return "name"
	default:
		return "date"
	}
}

// row is one selectable line in the browser, either a folder or a file.
type row struct {
	name     string
	path     string
	isDir    bool
	size     int64
	files    int64
	modified time.Time
	kind     inventory.FileKind
}

// Model holds the TUI state.
type Model struct {
	db          *sql.DB
	meta        *inventory.ScanMeta
	currentPath string
	// trail holds the paths entered so far, so backspace can return to
	// the root listing even when a root's parent is outside the scan.
	trail        []string
	folder       *db.FolderRow
	allRows      []row
	rows         []row
	cursor       int
	sort         SortColumn
	width        int
	height       int
	filter       string
	filterActive bool
	err          error
}

// NewModel creates a new TUI model reading from an open snapshot database.
func NewModel(database *sql.DB) *Model {
	return &Model{
		db:   database,
		sort: SortByDate,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadInitialData
}

type dataLoadedMsg struct {
	meta *inventory.ScanMeta
	rows []row
	err  error
}

func (m *Model) loadInitialData() tea.Msg {
	meta, err := db.GetScanMeta(m.db)
	if err != nil {
		return dataLoadedMsg{err: err}
	}

	roots, err := db.RootFolders(m.db)
	if err != nil {
		return dataLoadedMsg{err: err}
	}

	return dataLoadedMsg{meta: meta, rows: folderRows(roots)}
}

type folderLoadedMsg struct {
	path   string
	folder *db.FolderRow
	rows   []row
	err    error
}

func (m *Model) loadFolder(path string) tea.Cmd {
	return func() tea.Msg {
		folder, err := db.LoadFolder(m.db, path)
		if err != nil {
			return folderLoadedMsg{err: err}
		}

		children, err := db.LoadChildFolders(m.db, path)
		if err != nil {
			return folderLoadedMsg{err: err}
		}

		files, err := db.LoadFolderFiles(m.db, path)
		if err != nil {
			return folderLoadedMsg{err: err}
		}

		rows := folderRows(children)
		for _, f := range files {
			rows = append(rows, row{
				name:     f.Name,
				path:     f.Path,
				size:     f.Size,
				modified: f.ModifiedAt,
				kind:     f.Kind,
			})
		}

		return folderLoadedMsg{path: path, folder: folder, rows: rows}
	}
}

func folderRows(folders []db.FolderRow) []row {
	rows := make([]row, 0, len(folders))
	for _, f := range folders {
		rows = append(rows, row{
			name:     f.Name,
			path:     f.Path,
			isDir:    true,
			size:     f.TotalSize,
			files:    f.TotalFiles,
			modified: f.LatestModified,
		})
	}
	return rows
}

func (m *Model) helpLine() string {
	if m.filterActive {
		return "Type to filter | Enter: apply | Esc: clear | q: quit"
	}
	return "↑/↓ move | Enter: open | Backspace: close | d/s/f/n: sort | /: filter | q: quit"
}

func (m *Model) setRows(rows []row) {
	m.allRows = rows
	m.applyFilter()
}

func (m *Model) applyFilter() {
	if m.filter == "" {
		m.rows = m.allRows
	} else {
		filtered := make([]row, 0, len(m.allRows))
		needle := strings.ToLower(m.filter)
		for _, r := range m.allRows {
			if strings.Contains(strings.ToLower(r.name), needle) {
				filtered = append(filtered, r)
			}
		}
		m.rows = filtered
	}
	m.sortRows()
	m.cursor = 0
}
