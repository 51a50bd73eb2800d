// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/termdeck/internal/theme"
)

// =============================================================================
// SCRIPT FORM
// =============================================================================

// scriptForm collects a name and a command. It backs both the add-script
// modal and the Add section of the settings panel.
type scriptForm struct {
	name    textinput.Model
	command textinput.Model
	focus   int
	err     string
}

func newScriptForm() scriptForm {
	name := textinput.New()
	name.Prompt = "Name     "
	name.Placeholder = "Check Disk Space"
	name.CharLimit = 64

	command := textinput.New()
	command.Prompt = "Command  "
	command.Placeholder = "df -h"

	return scriptForm{name: name, command: command}
}

// Focus focuses the first field.
func (f *scriptForm) Focus() tea.Cmd {
	f.focus = 0
	f.command.Blur()
	return f.name.Focus()
}

// Blur unfocuses both fields.
func (f *scriptForm) Blur() {
	f.name.Blur()
	f.command.Blur()
}

// Reset clears both fields and any error.
func (f *scriptForm) Reset() {
	f.name.Reset()
	f.command.Reset()
	f.err = ""
}

// Next moves focus to the command field.
func (f *scriptForm) Next() tea.Cmd {
	f.focus = 1
	f.name.Blur()
	return f.command.Focus()
}

// Prev moves focus to the name field.
func (f *scriptForm) Prev() tea.Cmd {
	return f.Focus()
}

// Values returns the trimmed field values.
func (f *scriptForm) Values() (name, command string) {
	return strings.TrimSpace(f.name.Value()), strings.TrimSpace(f.command.Value())
}

// Update forwards msg to the focused field.
func (f *scriptForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.name, cmd = f.name.Update(msg)
	} else {
		f.command, cmd = f.command.Update(msg)
	}
	return cmd
}

// =============================================================================
// SETTINGS STATE
// =============================================================================

type settingsState struct {
	tab           SettingsTab
	removeCursor  int
	colorRow      int
	accentIdx     int
	glowIdx       int
	customHex     textinput.Model
	profileCursor int
}

func newSettings(accent, glow string) settingsState {
	custom := textinput.New()
	custom.Prompt = ""
	custom.CharLimit = 7
	custom.Placeholder = "#RRGGBB"
	custom.SetValue(accent)

	return settingsState{
		accentIdx: max(theme.PresetIndex(accent), 0),
		glowIdx:   max(theme.PresetIndex(glow), 0),
		customHex: custom,
	}
}

// cycle moves i by delta within n, wrapping.
func cycle(i, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

// clampCursor keeps a list cursor inside [0, n).
func clampCursor(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
