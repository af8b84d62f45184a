package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/dbview/internal/app"
	"github.com/joacominatel/dbview/internal/database"
	"github.com/joacominatel/dbview/internal/database/sqlite"
	"github.com/joacominatel/dbview/internal/testutil"
	"github.com/joacominatel/dbview/internal/tui/nav"
	"github.com/joacominatel/dbview/internal/tui/results"
	"github.com/joacominatel/dbview/internal/tui/tablelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource serves fixed tables; tables listed in errs fail to fetch.
type stubSource struct {
	tables  []string
	records map[string][]database.Record
	errs    map[string]error
	listErr error
	lists   int
}

func (s *stubSource) ListTables(context.Context) ([]string, error) {
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.tables, nil
}

func (s *stubSource) FetchRows(_ context.Context, table string, _ int) ([]database.Record, error) {
	if err := s.errs[table]; err != nil {
		return nil, err
	}
	return s.records[table], nil
}

func (s *stubSource) DatabaseName() string { return "stub" }

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

// settle runs cmd and feeds every resulting message back into the model.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if _, quit := msg.(tea.QuitMsg); quit {
			return m
		}
		m, cmd = update(t, m, msg)
	}
	return m
}

func start(t *testing.T, src Source, opts Options) Model {
	t.Helper()
	m := NewModel(src, opts)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return settle(t, m, m.Init())
}

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func ticketsStub() *stubSource {
	return &stubSource{
		tables: []string{"tickets", "users"},
		records: map[string][]database.Record{
			"tickets": {
				{{Column: "id", Value: int64(1)}, {Column: "title", Value: "VPN down"}},
				{{Column: "id", Value: int64(2)}, {Column: "title", Value: "Printer jam"}},
			},
		},
	}
}

func TestModel_TicketsScenario(t *testing.T) {
	svc := app.NewService(sqlite.New(), testutil.NewTestLogger(t))
	require.NoError(t, svc.Connect(context.Background(), testutil.NewTicketsDB(t, 7)))
	defer func() { _ = svc.Disconnect() }()

	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := start(t, svc, Options{PreferredTable: "incident", Now: clk.now, Logger: testutil.NewTestLogger(t)})

	assert.Equal(t, nav.List(), m.Current())
	assert.False(t, m.BackEnabled())
	assert.Equal(t, []string{"tickets", "users"}, m.tables.Tables())

	// double-click the first row
	m, cmd := update(t, m, leftClick(4, listFirstLine))
	assert.Nil(t, cmd)
	clk.t = clk.t.Add(200 * time.Millisecond)
	m, cmd = update(t, m, leftClick(4, listFirstLine))
	m = settle(t, m, cmd)

	assert.Equal(t, nav.Detail("tickets"), m.Current())
	assert.True(t, m.BackEnabled())
	assert.Len(t, m.grid.Rows(), 7, "detail view fetches every row")
	assert.Equal(t, []string{"id", "title", "status", "opened_on", "assignee"}, m.grid.Columns())
	assert.Contains(t, m.View(), "Data for 'tickets'")
}

func TestModel_PreferredTable(t *testing.T) {
	src := ticketsStub()
	m := start(t, src, Options{PreferredTable: "users"})

	assert.Equal(t, nav.Detail("users"), m.Current())
	assert.True(t, m.BackEnabled())
	assert.Equal(t, results.NoRecords, m.grid.Notice())
	assert.Contains(t, m.View(), results.NoRecords)
}

func TestModel_EnterOpensSelectedTable(t *testing.T) {
	m := start(t, ticketsStub(), Options{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m, cmd)

	assert.Equal(t, nav.Detail("users"), m.Current())
	assert.Equal(t, results.NoRecords, m.grid.Notice())
}

func TestModel_SelectThenBack(t *testing.T) {
	src := ticketsStub()
	m := start(t, src, Options{})
	before := m.nav
	require.Equal(t, 1, src.lists)

	m = settle(t, m, func() tea.Msg { return tea.KeyMsg{Type: tea.KeyEnter} })
	require.Equal(t, nav.Detail("tickets"), m.Current())
	assert.Len(t, m.grid.Rows(), 2)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = settle(t, m, cmd)

	assert.Equal(t, nav.List(), m.Current())
	assert.False(t, m.BackEnabled())
	assert.Equal(t, before, m.nav)
	assert.Equal(t, 2, src.lists, "listing is fetched again on return")

	// back from the listing does nothing
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, nav.List(), m.Current())
}

func TestModel_BackControlClick(t *testing.T) {
	m := start(t, ticketsStub(), Options{PreferredTable: "tickets"})
	require.True(t, m.BackEnabled())
	assert.Contains(t, m.View(), backLabel)

	m, cmd := update(t, m, leftClick(1, 0))
	m = settle(t, m, cmd)
	assert.Equal(t, nav.List(), m.Current())
	assert.False(t, m.BackEnabled())
}

func TestModel_SlowClicksDoNotOpen(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := start(t, ticketsStub(), Options{Now: clk.now})

	m, _ = update(t, m, leftClick(4, listFirstLine+1))
	assert.Equal(t, 1, m.tables.Cursor(), "single click moves the cursor")

	clk.t = clk.t.Add(2 * time.Second)
	m, cmd := update(t, m, leftClick(4, listFirstLine+1))
	assert.Nil(t, cmd)
	assert.Equal(t, nav.List(), m.Current())

	// click below the last table
	m, cmd = update(t, m, leftClick(4, listFirstLine+5))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.tables.Cursor())
}

func TestModel_StaleRowsDropped(t *testing.T) {
	m := start(t, ticketsStub(), Options{})

	m, cmd := update(t, m, tablelistSelect("tickets"))
	require.NotNil(t, cmd)
	pending := cmd()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, pending)

	assert.Equal(t, nav.List(), m.Current())
	assert.Empty(t, m.grid.Rows())
}

func TestModel_FetchErrorShowsNotice(t *testing.T) {
	src := ticketsStub()
	src.errs = map[string]error{"tickets": &app.ErrQuery{Table: "tickets", Cause: assert.AnError}}
	m := start(t, src, Options{})

	m, cmd := update(t, m, tablelistSelect("tickets"))
	m = settle(t, m, cmd)

	assert.Equal(t, nav.Detail("tickets"), m.Current())
	assert.Contains(t, m.grid.Notice(), "Error:")
	assert.Contains(t, m.View(), assert.AnError.Error())
}

func TestModel_SelectUnknownTableIgnored(t *testing.T) {
	m := start(t, ticketsStub(), Options{})

	m, cmd := update(t, m, tablelistSelect("incident"))
	assert.Nil(t, cmd)
	assert.Equal(t, nav.List(), m.Current())
}

func TestModel_Quit(t *testing.T) {
	m := start(t, ticketsStub(), Options{})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_View(t *testing.T) {
	m := start(t, ticketsStub(), Options{})

	view := m.View()
	assert.Contains(t, view, "Database Tables")
	assert.Contains(t, view, "tickets")
	assert.Contains(t, view, backLabel)
	assert.Contains(t, view, "dbview · stub")
}

func tablelistSelect(table string) tea.Msg {
	return tablelist.SelectMsg{Table: table}
}

func TestModel_NarrowTerminalDoubleClick(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewModel(ticketsStub(), Options{Now: clk.now})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})
	m = settle(t, m, m.Init())

	lines := strings.Split(m.View(), "\n")
	require.Greater(t, len(lines), listFirstLine+1)
	assert.Contains(t, lines[listFirstLine], "> tickets")
	assert.Contains(t, lines[listFirstLine+1], "users")

	m, _ = update(t, m, leftClick(4, listFirstLine))
	clk.t = clk.t.Add(100 * time.Millisecond)
	m, cmd := update(t, m, leftClick(4, listFirstLine))
	m = settle(t, m, cmd)

	assert.Equal(t, nav.Detail("tickets"), m.Current())
}

func TestModel_ReloadAfterFailedListing(t *testing.T) {
	src := ticketsStub()
	src.listErr = assert.AnError
	m := start(t, src, Options{PreferredTable: "tickets"})

	assert.Equal(t, nav.List(), m.Current())
	assert.Contains(t, m.View(), assert.AnError.Error())

	src.listErr = nil
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading...")
	m = settle(t, m, cmd)

	assert.Equal(t, 2, src.lists)
	assert.Equal(t, nav.Detail("tickets"), m.Current(), "first successful listing opens the preferred table")
	assert.Len(t, m.grid.Rows(), 2)
}

func TestModel_ReloadDetail(t *testing.T) {
	src := ticketsStub()
	m := start(t, src, Options{PreferredTable: "tickets"})
	require.Len(t, m.grid.Rows(), 2)

	src.records["tickets"] = append(src.records["tickets"],
		database.Record{{Column: "id", Value: int64(3)}, {Column: "title", Value: "Disk full"}})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = settle(t, m, cmd)

	assert.Equal(t, nav.Detail("tickets"), m.Current())
	assert.Len(t, m.grid.Rows(), 3)
}
