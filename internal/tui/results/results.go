package results

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/dbview/internal/database"
	"github.com/joacominatel/dbview/internal/tui/theme"
)

// NoRecords is the informational row shown for an empty table.
const NoRecords = "No records found in this table."

const (
	maxColWidth = 40
	chromeLines = 3 // title, header, separator
)

// Model is the table detail grid.
type Model struct {
	table     string
	columns   []string
	rows      [][]string
	records   []database.Record
	notice    string
	isError   bool
	loading   bool
	width     int
	height    int
	cursorY   int
	scrollY   int
	colOffset int
	colWidths []int

	statusMessage string
}

// New creates a new results model.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.clampScroll()
}

// SetLoading shows a loading notice for table.
func (m *Model) SetLoading(table string) {
	m.reset(table)
	m.loading = true
}

// SetRecords displays records of table. Every value is converted to its
// display string here; an empty result shows a single informational row.
func (m *Model) SetRecords(table string, records []database.Record) {
	m.reset(table)
	if len(records) == 0 {
		m.notice = NoRecords
		return
	}

	m.columns = database.Columns(records)
	m.records = records
	m.rows = make([][]string, len(records))
	for i, rec := range records {
		m.rows[i] = rec.Strings()
	}
	m.calculateColumnWidths()
}

// SetError shows err as the informational row for table.
func (m *Model) SetError(table string, err error) {
	m.reset(table)
	m.notice = "Error: " + err.Error()
	m.isError = true
}

func (m *Model) reset(table string) {
	m.table = table
	m.columns = nil
	m.rows = nil
	m.records = nil
	m.colWidths = nil
	m.notice = ""
	m.isError = false
	m.loading = false
	m.cursorY = 0
	m.scrollY = 0
	m.colOffset = 0
	m.statusMessage = ""
}

// Table returns the table being displayed.
func (m Model) Table() string {
	return m.table
}

// Columns returns the displayed column headers.
func (m Model) Columns() []string {
	return m.columns
}

// Rows returns the displayed cells.
func (m Model) Rows() [][]string {
	return m.rows
}

// Notice returns the informational row, if any.
func (m Model) Notice() string {
	return m.notice
}

// Loading reports whether rows are being fetched.
func (m Model) Loading() bool {
	return m.loading
}

// StatusMessage returns the result of the last copy action.
func (m Model) StatusMessage() string {
	return m.statusMessage
}

func (m *Model) calculateColumnWidths() {
	m.colWidths = make([]int, len(m.columns))

	// Use display width (not byte length) for accurate measurement
	for i, col := range m.columns {
		m.colWidths[i] = lipgloss.Width(col)
	}
	for _, row := range m.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(m.colWidths) && w > m.colWidths[i] {
				m.colWidths[i] = w
			}
		}
	}
	for i := range m.colWidths {
		m.colWidths[i] = max(1, min(m.colWidths[i], maxColWidth))
	}
}

func (m Model) visibleRows() int {
	return max(1, m.height-chromeLines)
}

// ScrollBy moves the row cursor by delta.
func (m *Model) ScrollBy(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursorY = max(0, min(m.cursorY+delta, len(m.rows)-1))
	m.clampScroll()
}

func (m *Model) clampScroll() {
	visible := m.visibleRows()
	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if m.cursorY >= m.scrollY+visible {
		m.scrollY = m.cursorY - visible + 1
	}
	m.scrollY = max(0, min(m.scrollY, len(m.rows)-visible))
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the grid.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.ScrollBy(-1)
		case "down", "j":
			m.ScrollBy(1)
		case "pgup":
			m.ScrollBy(-m.visibleRows())
		case "pgdown":
			m.ScrollBy(m.visibleRows())
		case "home", "g":
			m.ScrollBy(-len(m.rows))
		case "end", "G":
			m.ScrollBy(len(m.rows))
		case "left", "h":
			if m.colOffset > 0 {
				m.colOffset--
			}
		case "right", "l":
			if m.colOffset < len(m.columns)-1 {
				m.colOffset++
			}
		case "y":
			m.doCopyRowText()
		case "Y":
			m.doCopyRowJSON()
		}
	}

	return m, nil
}

// View renders the grid.
func (m Model) View() string {
	title := theme.StyleTitle.Render(fmt.Sprintf("Data for '%s'", m.table))

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading rows...")
	}

	if m.notice != "" {
		style := theme.StyleMuted
		if m.isError {
			style = theme.StyleError
		}
		return title + "\n" + style.Render("  "+m.notice)
	}

	stats := fmt.Sprintf("%d row(s)", len(m.rows))
	if m.colOffset > 0 {
		stats += fmt.Sprintf(" | from column %d/%d", m.colOffset+1, len(m.columns))
	}
	if m.statusMessage != "" {
		stats += " | " + m.statusMessage
	}

	var b strings.Builder
	b.WriteString(title + " " + theme.StyleMuted.Render(stats))
	b.WriteString("\n")

	visibleCols := m.visibleColumns()
	b.WriteString(m.renderRow(m.columns, visibleCols, true))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator(visibleCols))

	end := min(len(m.rows), m.scrollY+m.visibleRows())
	for i := m.scrollY; i < end; i++ {
		b.WriteString("\n")
		line := m.renderRow(m.rows[i], visibleCols, false)
		if i == m.cursorY {
			line = theme.StyleSelected.Render(line)
		}
		b.WriteString(line)
	}

	return b.String()
}

// visibleColumns returns the column indexes that fit the width, starting at
// the horizontal offset. At least one column is always shown.
func (m Model) visibleColumns() []int {
	var cols []int
	used := 2 // leading indent
	for i := m.colOffset; i < len(m.columns); i++ {
		w := m.colWidths[i]
		if len(cols) > 0 {
			w += 3 // " │ "
		}
		if len(cols) > 0 && m.width > 0 && used+w > m.width {
			break
		}
		cols = append(cols, i)
		used += w
	}
	return cols
}

func (m Model) renderRow(cells []string, cols []int, isHeader bool) string {
	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		width := m.colWidths[i]
		display := ""
		if i < len(cells) {
			display = cells[i]
		}
		display = fit(display, width)

		if isHeader {
			parts = append(parts, theme.StyleHeaderCell.Render(display))
		} else {
			parts = append(parts, display)
		}
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator(cols []int) string {
	parts := make([]string, len(cols))
	for j, i := range cols {
		parts[j] = strings.Repeat("─", m.colWidths[i])
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}

// fit truncates s with an ellipsis or pads it to exactly width cells.
func fit(s string, width int) string {
	s = strings.NewReplacer("\n", " ", "\t", " ").Replace(s)
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
