package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/trovescan/trove/internal/inventory"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	if m.meta == nil {
		return "Loading..."
	}

	var b strings.Builder
	headerLines := 0

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		headerLines++
	}

	// Header
	writeLine(titleStyle.Render("trove - Recent Files Browser"))

	scanInfo := fmt.Sprintf("Scan: %s | Matched: %s | Roots: %d",
		m.meta.StartTime.Format("2006-01-02 15:04"),
		FormatCount(m.meta.Matched),
		len(m.meta.Roots),
	)
	if m.meta.Partial {
		scanInfo += " | PARTIAL"
	}
	writeLine(statsStyle.Render(scanInfo))

	// Breadcrumbs / path
	location := m.currentPath
	if location == "" {
		location = "(scanned roots)"
	}
	pathLabel := fmt.Sprintf("Path: %s", truncateMiddle(location, max(10, m.width-6)))
	writeLine(breadcrumbStyle.Render(pathLabel))

	// Current folder stats
	dirInfo := ""
	if m.folder != nil {
		dirInfo = fmt.Sprintf("Total: %s | %s files | latest %s",
			FormatSize(m.folder.TotalSize),
			FormatCount(m.folder.TotalFiles),
			FormatAge(m.folder.LatestModified),
		)
	}

	// Status line
	status := fmt.Sprintf("Items: %s | Sort: %s", FormatCount(int64(len(m.rows))), m.sort)
	if m.filter != "" {
		status += fmt.Sprintf(" | Filter: %q", m.filter)
	}
	if len(m.rows) > 0 && m.cursor < len(m.rows) {
		sel := m.rows[m.cursor]
		status += fmt.Sprintf(" | Sel: %s (%s)", sel.name, FormatSize(sel.size))
	}
	writeLine(statusStyle.Render(status))

	// Filter input
	if m.filterActive {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s_", m.filter)))
	} else if m.filter != "" {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s", m.filter)))
	}

	// Column headers with sort indicator
	sizeLabel := headerLabel("SIZE", m.sort == SortBySize, "v")
	filesLabel := headerLabel("FILES", m.sort == SortByFiles, "v")
	modLabel := headerLabel("MODIFIED", m.sort == SortByDate, "v")
	nameLabel := headerLabel("NAME", m.sort == SortByName, "^")

	// Calculate visible rows
	footerLines := 2
	if dirInfo != "" {
		footerLines = 3
	}
	visibleRows := m.height - headerLines - footerLines
	if visibleRows < 5 {
		visibleRows = 5
	}

	// Determine scroll offset
	startIdx := 0
	if m.cursor >= visibleRows {
		startIdx = m.cursor - visibleRows + 1
	}
	endIdx := min(len(m.rows), startIdx+visibleRows)

	widths := calcColumnWidths(m.rows, startIdx, endIdx, sizeLabel, filesLabel, modLabel)
	nameWidth := calcNameWidth(m.width, widths)
	gap := strings.Repeat(" ", colGap)
	nameGap := strings.Repeat(" ", nameGapWidth)

	barLabel := barHeaderLabel(m.sort)
	nameLabel = truncateRight(nameLabel, nameWidth)
	namePad := nameWidth - len(nameLabel)
	if namePad < 0 {
		namePad = 0
	}
	header := fmt.Sprintf("%*s%s%*s%s%-*s%s%s%s%s%*s",
		widths.size, sizeLabel,
		gap,
		widths.files, filesLabel,
		gap,
		widths.modified, modLabel,
		nameGap,
		nameLabel,
		strings.Repeat(" ", namePad),
		gap,
		barColWidth, barLabel,
	)
	writeLine(headerStyle.Render(header))

	// Rows
	for i := startIdx; i < endIdx; i++ {
		b.WriteString(m.formatRow(m.rows[i], i == m.cursor, widths, nameWidth))
		b.WriteString("\n")
	}

	// Pad if needed
	displayedRows := min(len(m.rows)-startIdx, visibleRows)
	for i := displayedRows; i < visibleRows; i++ {
		b.WriteString("\n")
	}

	// Footer
	b.WriteString("\n")
	if dirInfo != "" {
		b.WriteString(statsStyle.Render(dirInfo))
		b.WriteString("\n")
	}
	help := m.helpLine()
	if len(m.rows) > 0 {
		help = fmt.Sprintf("%s [%d/%d]", help, m.cursor+1, len(m.rows))
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

type columnWidths struct {
	size     int
	files    int
	modified int
}

const (
	colGap        = 2
	nameGapWidth  = 2
	minNameWidth  = 10
	barBlockWidth = 10
	barPctWidth   = 4
	barGapWidth   = 1
	barColWidth   = barBlockWidth + barGapWidth + barPctWidth
)

func calcColumnWidths(rows []row, startIdx, endIdx int, sizeLabel, filesLabel, modLabel string) columnWidths {
	w := columnWidths{
		size:     len(sizeLabel),
		files:    len(filesLabel),
		modified: len(modLabel),
	}

	for i := startIdx; i < endIdx; i++ {
		r := rows[i]
		if n := len(FormatSize(r.size)); n > w.size {
			w.size = n
		}
		if n := len(formatFileCount(r)); n > w.files {
			w.files = n
		}
		if n := len(FormatAge(r.modified)); n > w.modified {
			w.modified = n
		}
	}

	return w
}

func calcNameWidth(totalWidth int, w columnWidths) int {
	used := w.size + w.files + w.modified + (colGap * 3) + nameGapWidth + barColWidth
	nameWidth := totalWidth - used
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}
	return nameWidth
}

func truncateRight(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func formatFileCount(r row) string {
	if !r.isDir {
		return "-"
	}
	return FormatCount(r.files)
}

func (m *Model) formatRow(r row, selected bool, widths columnWidths, nameWidth int) string {
	size := FormatSize(r.size)
	files := formatFileCount(r)
	modified := FormatAge(r.modified)

	rawName := r.name
	if r.isDir {
		rawName += "/"
	}
	rawName = truncateRight(rawName, nameWidth)

	var styledName string
	switch {
	case r.isDir:
		styledName = dirStyle.Render(rawName)
	case r.kind == inventory.KindImage || r.kind == inventory.KindVideo || r.kind == inventory.KindAudio:
		styledName = mediaStyle.Render(rawName)
	default:
		styledName = fileStyle.Render(rawName)
	}

	// Pad name to fixed width so bar column aligns.
	pad := nameWidth - len(rawName)
	if pad < 0 {
		pad = 0
	}
	paddedName := styledName + strings.Repeat(" ", pad)

	rowVal, parentTotal := m.barValues(r)
	bar := formatBar(rowVal, parentTotal)

	gap := strings.Repeat(" ", colGap)
	nameGap := strings.Repeat(" ", nameGapWidth)
	line := fmt.Sprintf("%*s%s%*s%s%-*s%s%s%s%s",
		widths.size, size,
		gap,
		widths.files, files,
		gap,
		widths.modified, modified,
		nameGap,
		paddedName,
		gap,
		bar,
	)

	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func barHeaderLabel(sort SortColumn) string {
	if sort == SortByFiles {
		return "FILE%"
	}
	return "SIZE%"
}

// barValues returns a row's share of the listing for the percent bar. At
// the root listing the denominator is the sum over the scanned roots.
func (m *Model) barValues(r row) (int64, int64) {
	if m.sort == SortByFiles {
		if m.folder != nil {
			return r.files, m.folder.TotalFiles
		}
		var total int64
		for _, other := range m.allRows {
			total += other.files
		}
		return r.files, total
	}

	if m.folder != nil {
		return r.size, m.folder.TotalSize
	}
	var total int64
	for _, other := range m.allRows {
		total += other.size
	}
	return r.size, total
}

func formatBar(rowVal, parentTotal int64) string {
	if parentTotal <= 0 || rowVal <= 0 {
		empty := strings.Repeat("░", barBlockWidth)
		return barEmptyStyle.Render(empty) + fmt.Sprintf("  %3d%%", 0)
	}

	pct := float64(rowVal) / float64(parentTotal) * 100
	if pct > 100 {
		pct = 100
	}

	filled := int(math.Round(pct / 100 * float64(barBlockWidth)))
	if filled < 1 {
		filled = 1
	}
	if filled > barBlockWidth {
		filled = barBlockWidth
	}

	filledStr := barFilledStyle.Render(strings.Repeat("█", filled))
	emptyStr := barEmptyStyle.Render(strings.Repeat("░", barBlockWidth-filled))
	return filledStr + emptyStr + fmt.Sprintf("  %3d%%", int(math.Round(pct)))
}

func headerLabel(label string, active bool, dir string) string {
	if active {
		return label + dir
	}
	return label
}

func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return s[:head] + "..." + s[len(s)-tail:]
}
