// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/charmbracelet/bubbles/key"

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings for the launcher.
type KeyMap struct {
	// Global
	Quit      key.Binding
	SwitchTab key.Binding
	Escape    key.Binding
	Help      key.Binding

	// Script list (Terminal tab)
	Up         key.Binding
	Down       key.Binding
	Run        key.Binding
	Filter     key.Binding
	Edit       key.Binding
	Delete     key.Binding
	AddScript  key.Binding
	Fullscreen key.Binding
	Settings   key.Binding
	Import     key.Binding

	// Chat tab
	Send        key.Binding
	NextModel   key.Binding
	PrevModel   key.Binding
	Refresh     key.Binding
	Mic         key.Binding
	Speak       key.Binding
	PrevMessage key.Binding
	NextMessage key.Binding
	Copy        key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding

	// Settings modal
	NextSection key.Binding
	PrevSection key.Binding
	Left        key.Binding
	Right       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		SwitchTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "terminal/chat"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Run: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "run"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit mode"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		AddScript: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add script"),
		),
		Fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import profile"),
		),

		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		NextModel: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "next model"),
		),
		PrevModel: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "prev model"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "reload models"),
		),
		Mic: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "mic"),
		),
		Speak: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "speak"),
		),
		PrevMessage: key.NewBinding(
			key.WithKeys("ctrl+up", "alt+up"),
			key.WithHelp("C-up", "prev reply"),
		),
		NextMessage: key.NewBinding(
			key.WithKeys("ctrl+down", "alt+down"),
			key.WithHelp("C-down", "next reply"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy reply"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),

		NextSection: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next section"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "prev section"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "less"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "more"),
		),
	}
}

// =============================================================================
// HELP
// =============================================================================

// contextHelp adapts the key map to help.KeyMap for the current view.
type contextHelp struct {
	keys  KeyMap
	chat  bool
	modal bool
}

// ShortHelp returns the bindings shown in the footer.
func (h contextHelp) ShortHelp() []key.Binding {
	k := h.keys
	switch {
	case h.modal:
		return []key.Binding{k.NextSection, k.Up, k.Down, k.Left, k.Right, k.Escape}
	case h.chat:
		return []key.Binding{k.Send, k.NextModel, k.Mic, k.Speak, k.Copy, k.SwitchTab, k.Quit}
	default:
		return []key.Binding{k.Run, k.Filter, k.Edit, k.AddScript, k.Settings, k.SwitchTab, k.Help}
	}
}

// FullHelp returns the expanded help columns.
func (h contextHelp) FullHelp() [][]key.Binding {
	k := h.keys
	if h.chat {
		return [][]key.Binding{
			{k.Send, k.NextModel, k.PrevModel, k.Refresh},
			{k.Mic, k.Speak, k.PrevMessage, k.NextMessage},
			{k.Copy, k.ScrollUp, k.ScrollDown, k.SwitchTab, k.Quit},
		}
	}
	return [][]key.Binding{
		{k.Up, k.Down, k.Run, k.Filter},
		{k.Edit, k.Delete, k.AddScript, k.Fullscreen},
		{k.Settings, k.Import, k.SwitchTab, k.Help, k.Quit},
	}
}
