package tui

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.meta = msg.meta
		m.currentPath = ""
		m.trail = nil
		m.folder = nil
		m.filter = ""
		m.filterActive = false
		m.setRows(msg.rows)
		return m, nil

	case folderLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.currentPath = msg.path
		m.folder = msg.folder
		m.filter = ""
		m.filterActive = false
		m.setRows(msg.rows)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterActive {
		switch msg.String() {
		case "enter":
			m.filterActive = false
			return m, nil

		case "esc":
			m.filterActive = false
			m.filter = ""
			m.applyFilter()
			return m, nil

		case "backspace":
			if len(m.filter) > 0 {
				runes := []rune(m.filter)
				m.filter = string(runes[:len(runes)-1])
				m.applyFilter()
			}
			return m, nil

		case "q", "ctrl+c":
			return m, tea.Quit
		}

		if msg.Type == tea.KeyRunes {
			m.filter += msg.String()
			m.applyFilter()
			return m, nil
		}

		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil

	case "enter", "l", "right":
		if len(m.rows) > 0 && m.cursor < len(m.rows) {
			selected := m.rows[m.cursor]
			if selected.isDir {
				m.trail = append(m.trail, m.currentPath)
				return m, m.loadFolder(selected.path)
			}
		}
		return m, nil

	case "backspace", "h", "left":
		if len(m.trail) > 0 {
			parent := m.trail[len(m.trail)-1]
			m.trail = m.trail[:len(m.trail)-1]
			if parent == "" {
				return m, m.loadInitialData
			}
			return m, m.loadFolder(parent)
		}
		return m, nil

	case "d":
		m.sort = SortByDate
		m.applyFilter()
		return m, nil

	case "s":
		m.sort = SortBySize
		m.applyFilter()
		return m, nil

	case "f":
		m.sort = SortByFiles
		m.applyFilter()
		return m, nil

	case "n":
		m.sort = SortByName
		m.applyFilter()
		return m, nil

	case "/":
		m.filterActive = true
		return m, nil

	case "home", "g":
		m.cursor = 0
		return m, nil

	case "end", "G":
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
		}
		return m, nil

	case "pgup":
		m.cursor -= 10
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case "pgdown":
		m.cursor += 10
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) sortRows() {
	rows := m.rows
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch m.sort {
		case SortBySize:
			if a.size != b.size {
				return a.size > b.size
			}
		case SortByFiles:
			if a.files != b.files {
				return a.files > b.files
			}
		case SortByName:
			an, bn := strings.ToLower(a.name), strings.ToLower(b.name)
			if an != bn {
				return an < bn
			}
		default:
			if !a.modified.Equal(b.modified) {
				return a.modified.After(b.modified)
			}
		}
		return a.name < b.name
	})
}
