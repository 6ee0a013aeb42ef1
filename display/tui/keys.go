package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings for the dashboard.
// It implements the help.KeyMap interface for bubbles/help integration.
type keyMap struct {
	Quit     key.Binding
	NextKind key.Binding
	PrevKind key.Binding
	Raise    key.Binding
	Lower    key.Binding
	Help     key.Binding
}

// ShortHelp returns the compact set of keybindings shown by default in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.NextKind, k.Raise, k.Lower, k.Quit}
}

// FullHelp returns the expanded keybinding groups shown when help is toggled.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextKind, k.PrevKind},
		{k.Raise, k.Lower},
		{k.Help, k.Quit},
	}
}

// keys holds the default key bindings used by the dashboard.
var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	NextKind: key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab", "next resource")),
	PrevKind: key.NewBinding(key.WithKeys("shift+tab", "up", "k"), key.WithHelp("shift+tab", "prev resource")),
	Raise:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "raise threshold")),
	Lower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "lower threshold")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// KeyHelp lists every dashboard binding in FullHelp order, with all the keys
// that trigger it.
func KeyHelp() []KeyBinding {
	var out []KeyBinding
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			out = append(out, KeyBinding{Keys: b.Keys(), Desc: b.Help().Desc})
		}
	}
	return out
}

// KeyBinding describes one dashboard action.
type KeyBinding struct {
	Keys []string
	Desc string
}
