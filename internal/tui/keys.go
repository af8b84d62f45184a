package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/joacominatel/dbview/internal/tui/nav"
)

// KeyMap holds the viewer's global key bindings. Component-level movement
// keys are handled by the components themselves.
type KeyMap struct {
	Open     key.Binding
	Back     key.Binding
	Move     key.Binding
	Columns  key.Binding
	Copy     key.Binding
	CopyJSON key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter/dbl-click", "open table"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace", "b"),
			key.WithHelp("esc/b", "back to tables"),
		),
		Move: key.NewBinding(
			key.WithKeys("up", "down", "k", "j"),
			key.WithHelp("↑/↓", "move"),
		),
		Columns: key.NewBinding(
			key.WithKeys("left", "right", "h", "l"),
			key.WithHelp("←/→", "columns"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy row"),
		),
		CopyJSON: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy JSON"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// bindingsFor returns the bindings that apply to the given view.
func (k KeyMap) bindingsFor(kind nav.Kind) []key.Binding {
	if kind == nav.TableDetail {
		return []key.Binding{k.Back, k.Move, k.Columns, k.Copy, k.CopyJSON, k.Reload, k.Quit}
	}
	return []key.Binding{k.Open, k.Move, k.Reload, k.Quit}
}
