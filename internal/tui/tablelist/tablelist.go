// Package tablelist renders the table listing and turns a confirmed
// selection into a SelectMsg.
package tablelist

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/dbview/internal/tui/theme"
)

// Title is the heading shown above the table names.
const Title = "Database Tables"

// SelectMsg is sent when the user opens a table.
type SelectMsg struct {
	Table string
}

// Model is the table listing component.
type Model struct {
	tables  []string
	cursor  int
	offset  int
	width   int
	height  int
	loading bool
	err     error
}

// New creates a new table list model.
func New() Model {
	return Model{loading: true}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.clampOffset()
}

// SetLoading sets the loading state. Starting a load clears a previous
// error.
func (m *Model) SetLoading(l bool) {
	m.loading = l
	if l {
		m.err = nil
	}
}

// SetError shows err in place of the listing.
func (m *Model) SetError(err error) {
	m.err = err
	m.loading = false
}

// SetTables replaces the listing, keeping the cursor on the same table
// when it is still present.
func (m *Model) SetTables(tables []string) {
	selected, hadSelection := m.Selected()
	m.tables = slices.Clone(tables)
	m.loading = false
	m.err = nil

	m.cursor = 0
	if hadSelection {
		if i := slices.Index(m.tables, selected); i >= 0 {
			m.cursor = i
		}
	}
	m.clampOffset()
}

// Tables returns the listed table names.
func (m Model) Tables() []string {
	return m.tables
}

// Selected returns the table under the cursor.
func (m Model) Selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tables) {
		return "", false
	}
	return m.tables[m.cursor], true
}

// Cursor returns the cursor index.
func (m Model) Cursor() int {
	return m.cursor
}

// SetCursor moves the cursor to index i, clamped to the listing.
func (m *Model) SetCursor(i int) {
	m.cursor = max(0, min(i, len(m.tables)-1))
	m.clampOffset()
}

// MoveCursor moves the cursor by delta rows.
func (m *Model) MoveCursor(delta int) {
	m.SetCursor(m.cursor + delta)
}

// IndexAt maps a content line (0 is the first name below the title) to a
// table index.
func (m Model) IndexAt(line int) (int, bool) {
	if line < 0 || line >= m.visibleHeight() {
		return 0, false
	}
	i := m.offset + line
	if i >= len(m.tables) {
		return 0, false
	}
	return i, true
}

func (m Model) visibleHeight() int {
	return max(1, m.height-1) // title
}

func (m *Model) clampOffset() {
	visible := m.visibleHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	m.offset = max(0, min(m.offset, len(m.tables)-visible))
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the table list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.MoveCursor(-1)
		case "down", "j":
			m.MoveCursor(1)
		case "pgup":
			m.MoveCursor(-m.visibleHeight())
		case "pgdown":
			m.MoveCursor(m.visibleHeight())
		case "home", "g":
			m.SetCursor(0)
		case "end", "G":
			m.SetCursor(len(m.tables) - 1)
		case "enter":
			return m, m.open()
		}
	}

	return m, nil
}

func (m Model) open() tea.Cmd {
	table, ok := m.Selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return SelectMsg{Table: table}
	}
}

// View renders the listing.
func (m Model) View() string {
	// the title must stay on one line: clicks map to rows by line number
	title := theme.StyleTitle.Render(Title) + theme.StyleMuted.Render("(Enter or double-click to open)")
	if m.width > 0 {
		title = lipgloss.NewStyle().MaxWidth(m.width).Render(title)
	}

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}
	if m.err != nil {
		return title + "\n" + theme.StyleError.Render("  Error: "+m.err.Error())
	}
	if len(m.tables) == 0 {
		return title + "\n" + theme.StyleMuted.Render("  No tables found.")
	}

	var b strings.Builder
	b.WriteString(title)

	end := min(len(m.tables), m.offset+m.visibleHeight())
	for i := m.offset; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderItem(i))
	}
	return b.String()
}

func (m Model) renderItem(i int) string {
	line := "  " + m.tables[i]
	if i == m.cursor {
		line = "> " + m.tables[i]
	}

	if m.width > 4 && lipgloss.Width(line) > m.width {
		runes := []rune(line)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > m.width {
			runes = runes[:len(runes)-1]
		}
		line = string(runes) + "…"
	}

	if i == m.cursor {
		return theme.StyleSelected.Render(line)
	}
	return line
}
