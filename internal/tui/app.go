package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/dbview/internal/database"
	"github.com/joacominatel/dbview/internal/tui/nav"
	"github.com/joacominatel/dbview/internal/tui/results"
	"github.com/joacominatel/dbview/internal/tui/statusbar"
	"github.com/joacominatel/dbview/internal/tui/tablelist"
	"github.com/joacominatel/dbview/internal/tui/theme"
)

const (
	headerHeight = 1
	statusHeight = 1
	// first table name row: header, pane border, list title
	listFirstLine = headerHeight + 1 + 1

	doubleClickInterval = 500 * time.Millisecond
	listTimeout         = 15 * time.Second
	fetchTimeout        = 30 * time.Second

	backLabel = "⬅ Back to Tables"
)

// Source provides the data shown by the viewer.
type Source interface {
	ListTables(ctx context.Context) ([]string, error)
	FetchRows(ctx context.Context, table string, limit int) ([]database.Record, error)
	DatabaseName() string
}

// Options configures the viewer.
type Options struct {
	// PreferredTable is opened first when it exists.
	PreferredTable string
	Logger         *slog.Logger
	// Now is used for double-click detection; defaults to time.Now.
	Now func() time.Time
}

// Custom messages for async operations.
type (
	tablesLoadedMsg struct {
		tables []string
		err    error
	}
	rowsLoadedMsg struct {
		table   string
		records []database.Record
		err     error
	}
)

// Model is the top-level bubbletea model. Navigation lives in nav.Machine;
// Update only translates keys, clicks and fetch results into transitions
// and redraws.
type Model struct {
	source    Source
	logger    *slog.Logger
	now       func() time.Time
	preferred string

	nav       nav.Machine
	started   bool
	tables    tablelist.Model
	grid      results.Model
	statusbar statusbar.Model
	help      help.Model
	keys      KeyMap

	width  int
	height int

	lastClick    time.Time
	lastClickRow int
}

// NewModel creates the top-level model for an already connected source.
func NewModel(source Source, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		source:       source,
		logger:       logger,
		now:          now,
		preferred:    opts.PreferredTable,
		tables:       tablelist.New(),
		grid:         results.New(),
		statusbar:    statusbar.New(),
		help:         help.New(),
		keys:         DefaultKeyMap(),
		lastClickRow: -1,
	}
	m.statusbar.SetConnected(true, source.DatabaseName())
	m.refreshChrome()
	return m
}

// Run starts the viewer and blocks until the user quits.
func Run(source Source, opts Options) error {
	p := tea.NewProgram(NewModel(source, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

// Current returns the active view.
func (m Model) Current() nav.View {
	return m.nav.View()
}

// BackEnabled reports whether the back control is active.
func (m Model) BackEnabled() bool {
	return m.nav.BackEnabled()
}

// Init loads the table listing.
func (m Model) Init() tea.Cmd {
	return m.loadTablesCmd()
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			return m.back()
		case key.Matches(msg, m.keys.Reload):
			return m.reload()
		}
		return m.updateActive(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tablelist.SelectMsg:
		return m.open(msg.Table)

	case tablesLoadedMsg:
		return m.tablesLoaded(msg)

	case rowsLoadedMsg:
		// drop results for a view the user already left
		if m.nav.View() != nav.Detail(msg.table) {
			m.logger.Debug("dropping stale rows", "table", msg.table)
			return m, nil
		}
		if msg.err != nil {
			m.grid.SetError(msg.table, msg.err)
			m.statusbar.SetMessage("")
			return m, nil
		}
		m.grid.SetRecords(msg.table, msg.records)
		m.statusbar.SetMessage("")
		return m, nil
	}

	return m, nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.nav.View().Kind == nav.TableDetail {
		m.grid, cmd = m.grid.Update(msg)
	} else {
		m.tables, cmd = m.tables.Update(msg)
	}
	return m, cmd
}

func (m Model) tablesLoaded(msg tablesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.tables.SetError(msg.err)
		m.statusbar.SetMessage("Failed to list tables")
		return m, nil
	}

	m.tables.SetTables(msg.tables)
	m.statusbar.SetMessage("")

	if m.started {
		m.nav.SetTables(msg.tables)
		return m, nil
	}

	m.started = true
	m.nav = nav.New(msg.tables, m.preferred)
	m.refreshChrome()

	if v := m.nav.View(); v.Kind == nav.TableDetail {
		m.grid.SetLoading(v.Table)
		return m, m.fetchRowsCmd(v.Table)
	}
	return m, nil
}

// open handles a Select event.
func (m Model) open(table string) (tea.Model, tea.Cmd) {
	if !m.nav.Apply(nav.Select{Table: table}) {
		return m, nil
	}
	m.logger.Debug("open table", "table", table)
	m.grid.SetLoading(table)
	m.statusbar.SetMessage("Loading " + table + "...")
	m.refreshChrome()
	return m, m.fetchRowsCmd(table)
}

// back handles a Back event. The listing is fetched again on return.
func (m Model) back() (tea.Model, tea.Cmd) {
	if !m.nav.Apply(nav.Back{}) {
		return m, nil
	}
	m.lastClickRow = -1
	m.refreshChrome()
	return m, m.loadTablesCmd()
}

// reload fetches the active view's data again. On the listing this is also
// the way out of a failed first load.
func (m Model) reload() (tea.Model, tea.Cmd) {
	if v := m.nav.View(); v.Kind == nav.TableDetail {
		m.grid.SetLoading(v.Table)
		m.statusbar.SetMessage("Loading " + v.Table + "...")
		return m, m.fetchRowsCmd(v.Table)
	}
	m.tables.SetLoading(true)
	m.statusbar.SetMessage("Loading tables...")
	return m, m.loadTablesCmd()
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	detail := m.nav.View().Kind == nav.TableDetail

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		if detail {
			m.grid.ScrollBy(delta)
		} else {
			m.tables.MoveCursor(delta)
		}
		return m, nil

	case tea.MouseButtonLeft:
		if msg.Y == 0 && msg.X < lipgloss.Width(m.backControl()) {
			return m.back()
		}
		if detail {
			return m, nil
		}

		idx, ok := m.tables.IndexAt(msg.Y - listFirstLine)
		if !ok {
			return m, nil
		}
		now := m.now()
		if idx == m.lastClickRow && now.Sub(m.lastClick) <= doubleClickInterval {
			m.lastClickRow = -1
			table := m.tables.Tables()[idx]
			return m.open(table)
		}
		m.tables.SetCursor(idx)
		m.lastClick = now
		m.lastClickRow = idx
	}

	return m, nil
}

func (m *Model) refreshChrome() {
	v := m.nav.View()
	m.statusbar.SetView(v.String())
	m.statusbar.SetHints(m.help.ShortHelpView(m.keys.bindingsFor(v.Kind)))
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	innerWidth := max(1, m.width-2)
	innerHeight := max(1, m.height-headerHeight-statusHeight-2)

	m.tables.SetSize(innerWidth, innerHeight)
	m.grid.SetSize(innerWidth, innerHeight)
	m.statusbar.SetWidth(m.width)
	m.help.Width = m.width
}

// Async commands

func (m Model) loadTablesCmd() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()
		tables, err := source.ListTables(ctx)
		return tablesLoadedMsg{tables: tables, err: err}
	}
}

func (m Model) fetchRowsCmd(table string) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		// the detail view always shows every row
		records, err := source.FetchRows(ctx, table, 0)
		return rowsLoadedMsg{table: table, records: records, err: err}
	}
}

// View renders the entire application.
func (m Model) View() string {
	title := theme.StyleTitle.Render(fmt.Sprintf("dbview · %s", m.source.DatabaseName()))
	header := lipgloss.JoinHorizontal(lipgloss.Top, m.backControl(), title)
	if m.width > 0 {
		header = lipgloss.NewStyle().MaxWidth(m.width).Render(header)
	}

	var content string
	if m.nav.View().Kind == nav.TableDetail {
		content = m.grid.View()
	} else {
		content = m.tables.View()
	}

	pane := theme.StylePane
	if m.width > 0 && m.height > 0 {
		pane = pane.
			Width(max(1, m.width-2)).
			Height(max(1, m.height-headerHeight-statusHeight-2))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		pane.Render(content),
		m.statusbar.View(),
	)
}

func (m Model) backControl() string {
	if m.nav.BackEnabled() {
		return theme.StyleBackEnabled.Render(backLabel)
	}
	return theme.StyleBackDisabled.Render(backLabel)
}
