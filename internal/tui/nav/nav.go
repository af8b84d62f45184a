// Package nav holds the navigation state of the interactive viewer: either
// the table listing or the detail view of one table. UI events are
// translated into Select and Back events and applied here.
package nav

import (
	"fmt"
	"slices"
)

// Kind identifies which view is active.
type Kind int

const (
	TableList Kind = iota
	TableDetail
)

func (k Kind) String() string {
	switch k {
	case TableList:
		return "tables"
	case TableDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// View is the active view. Table is set only for TableDetail.
type View struct {
	Kind  Kind
	Table string
}

// List returns the table listing view.
func List() View {
	return View{Kind: TableList}
}

// Detail returns the detail view of table.
func Detail(table string) View {
	return View{Kind: TableDetail, Table: table}
}

func (v View) String() string {
	if v.Kind == TableDetail {
		return fmt.Sprintf("detail(%s)", v.Table)
	}
	return v.Kind.String()
}

// Event is a navigation request.
type Event interface {
	event()
}

// Select opens the detail view of Table. Only honored from the listing.
type Select struct {
	Table string
}

// Back returns to the listing. Only honored from a detail view.
type Back struct{}

func (Select) event() {}
func (Back) event()   {}

// Machine is the navigation state machine. The zero value shows the
// listing with no known tables.
type Machine struct {
	view   View
	tables []string
}

// New starts on the detail view of preferred when it is one of tables,
// otherwise on the listing.
func New(tables []string, preferred string) Machine {
	m := Machine{view: List(), tables: slices.Clone(tables)}
	if preferred != "" && slices.Contains(tables, preferred) {
		m.view = Detail(preferred)
	}
	return m
}

// View returns the active view.
func (m Machine) View() View {
	return m.view
}

// Tables returns the listing selections are validated against.
func (m Machine) Tables() []string {
	return m.tables
}

// SetTables replaces the listing. The active view is kept.
func (m *Machine) SetTables(tables []string) {
	m.tables = slices.Clone(tables)
}

// BackEnabled reports whether a Back event would change the view.
func (m Machine) BackEnabled() bool {
	return m.view.Kind == TableDetail
}

// Apply performs the transition for ev and reports whether the view changed.
func (m *Machine) Apply(ev Event) bool {
	switch e := ev.(type) {
	case Select:
		if m.view.Kind != TableList || !slices.Contains(m.tables, e.Table) {
			return false
		}
		m.view = Detail(e.Table)
		return true
	case Back:
		if m.view.Kind != TableDetail {
			return false
		}
		m.view = List()
		return true
	}
	return false
}
