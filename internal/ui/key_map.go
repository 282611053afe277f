package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	refresh key.Binding
	auto    key.Binding
	match   key.Binding
	next    key.Binding
	confirm key.Binding
	dismiss key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		auto:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-refresh")),
		match:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "match")),
		next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "innings")),
		confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		dismiss: key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "dismiss")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.refresh, k.auto, k.match, k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.refresh, k.auto},
		{k.match, k.next},
		{k.dismiss, k.quit},
	}
}
