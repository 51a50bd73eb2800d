// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/termdeck/internal/launcher"
	"github.com/jeranaias/termdeck/internal/model"
	"github.com/jeranaias/termdeck/internal/ollama"
	"github.com/jeranaias/termdeck/internal/theme"
	"github.com/jeranaias/termdeck/internal/ui/components"
	"github.com/jeranaias/termdeck/internal/voice"
)

// Update handles every message for the root model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		if m.svc.Dispatcher.InFlight() == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.ToastTickMsg:
		if m.toasts.Tick() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case ModelsMsg:
		m.refreshChat()
		if msg.Err != nil {
			return m, m.toastError("Could not list models: " + describeErr(msg.Err))
		}
		return m, nil

	case ChatReplyMsg:
		m.refreshChat()
		if msg.Err != nil {
			return m, m.toastError("Chat failed: " + describeErr(msg.Err))
		}
		return m, nil

	case TranscriptStartedMsg:
		if msg.Err != nil {
			if !errors.Is(msg.Err, voice.ErrUnavailable) {
				return m, m.toastError("Speech recognition failed to start")
			}
			return m, nil
		}
		m.listening = true
		m.transcripts = msg.Ch
		return m, waitForTranscript(m.transcripts)

	case TranscriptMsg:
		m.input.SetValue(msg.Text)
		m.input.CursorEnd()
		return m, waitForTranscript(m.transcripts)

	case transcriptClosedMsg:
		m.listening = false
		m.transcripts = nil
		return m, nil

	case RecordingMsg:
		if msg.Err != nil {
			return m, m.toastError("Microphone unavailable: " + msg.Err.Error())
		}
		return m, nil

	case SpeechDoneMsg:
		if msg.MessageID == m.speakingID && !m.svc.Output.Speaking() {
			m.speakingID = ""
			m.refreshChat()
		}
		return m, nil

	case ProfileImportedMsg:
		return m.handleProfileImported(msg)

	case ProfileWatchStartedMsg:
		if msg.Err != nil {
			m.svc.Logger.Printf("profile: watch failed | error=%v", msg.Err)
			return m, nil
		}
		m.profileEvents = msg.Ch
		return m, waitForProfileEvent(m.profileEvents)

	case ProfileFileMsg:
		return m.handleProfileFile(msg)

	case profileWatchClosedMsg:
		m.profileEvents = nil
		return m, nil

	case CopiedMsg:
		if msg.Err != nil {
			return m, m.toastError("Copy failed: " + msg.Err.Error())
		}
		return m, m.toastSuccess("Reply copied")
	}

	return m, m.forwardToFocused(msg)
}

// forwardToFocused hands non-key messages such as cursor blinks to the
// focused text input.
func (m *Model) forwardToFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.modal == ModalImportProfile:
		m.importPath, cmd = m.importPath.Update(msg)
	case m.modal == ModalAddScript:
		cmd = m.scriptForm.Update(msg)
	case m.modal == ModalSettings && m.settings.tab == SettingsAdd:
		cmd = m.scriptForm.Update(msg)
	case m.modal == ModalSettings && m.settings.tab == SettingsColors && m.settings.colorRow == colorRowCustom:
		m.settings.customHex, cmd = m.settings.customHex.Update(msg)
	case m.filtering:
		m.filter, cmd = m.filter.Update(msg)
	case m.tab == TabChat:
		m.input, cmd = m.input.Update(msg)
	}
	return cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.svc.Close()
		return m, tea.Quit
	}

	switch m.modal {
	case ModalSettings:
		return m.handleSettingsKey(msg)
	case ModalAddScript:
		return m.handleAddScriptKey(msg)
	case ModalImportProfile:
		return m.handleImportKey(msg)
	}

	if key.Matches(msg, m.keys.Escape) {
		switch {
		case m.filtering || m.filter.Value() != "":
			return m.stopFilter(), nil
		case m.toasts.Dismiss():
		case m.fullscreen:
			m.fullscreen = false
			m.layout()
		case m.showHelp:
			m.showHelp = false
			m.layout()
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.SwitchTab) {
		return m.switchTab(), nil
	}

	if m.tab == TabChat {
		return m.handleChatKey(msg)
	}
	return m.handleTerminalKey(msg)
}

func (m Model) switchTab() Model {
	m.filtering = false
	m.filter.Blur()
	if m.tab == TabTerminal {
		m.tab = TabChat
		m.fullscreen = false
		m.input.Focus()
	} else {
		m.tab = TabTerminal
		m.input.Blur()
	}
	m.layout()
	return m
}

// -----------------------------------------------------------------------------
// Terminal tab
// -----------------------------------------------------------------------------

func (m Model) handleTerminalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.Type {
		case tea.KeyEnter:
			m.filter.Blur()
			m.filtering = false
			return m.runSelected()
		case tea.KeyUp, tea.KeyDown:
			// list navigation below
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.cursor = 0
			return m, cmd
		}
	}

	visible := m.visibleScripts()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = clampCursor(m.cursor-1, len(visible))
	case key.Matches(msg, m.keys.Down):
		m.cursor = clampCursor(m.cursor+1, len(visible))
	case key.Matches(msg, m.keys.Run):
		return m.runSelected()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Edit):
		m.editing = !m.editing
	case key.Matches(msg, m.keys.Delete):
		if m.editing {
			return m.deleteScript(visible, m.cursor)
		}
	case key.Matches(msg, m.keys.AddScript):
		m.modal = ModalAddScript
		m.scriptForm.Reset()
		return m, m.scriptForm.Focus()
	case key.Matches(msg, m.keys.Fullscreen):
		m.fullscreen = !m.fullscreen
		m.layout()
	case key.Matches(msg, m.keys.Settings):
		return m.openSettings(SettingsAdd)
	case key.Matches(msg, m.keys.Import):
		return m.openImport()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
	}
	return m, nil
}

func (m Model) stopFilter() Model {
	m.filtering = false
	m.filter.Blur()
	m.filter.Reset()
	m.cursor = 0
	return m
}

func (m Model) visibleScripts() []launcher.Script {
	if q := strings.TrimSpace(m.filter.Value()); q != "" {
		return m.svc.Shelf.Filter(q)
	}
	return m.svc.Shelf.List()
}

func (m Model) runSelected() (tea.Model, tea.Cmd) {
	visible := m.visibleScripts()
	if len(visible) == 0 {
		return m, nil
	}
	s := visible[clampCursor(m.cursor, len(visible))]
	if err := m.svc.Terminal.Run(s, m.editing); err != nil {
		if errors.Is(err, launcher.ErrEditing) {
			return m, m.toastStatus("Editing mode is on; press e to leave it")
		}
		return m, m.toastError(err.Error())
	}
	return m, nil
}

func (m Model) deleteScript(list []launcher.Script, i int) (tea.Model, tea.Cmd) {
	if len(list) == 0 {
		return m, nil
	}
	s := list[clampCursor(i, len(list))]
	if err := m.svc.Shelf.Delete(s.ID); err != nil {
		return m, m.toastError(err.Error())
	}
	m.cursor = clampCursor(m.cursor, len(m.visibleScripts()))
	m.settings.removeCursor = clampCursor(m.settings.removeCursor, m.svc.Shelf.Len())
	return m, m.toastSuccess("Removed " + s.Name)
}

// -----------------------------------------------------------------------------
// Chat tab
// -----------------------------------------------------------------------------

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		return m.send()
	case key.Matches(msg, m.keys.NextModel):
		m.svc.Directory.Cycle(1)
		m.refreshChat()
		return m, nil
	case key.Matches(msg, m.keys.PrevModel):
		m.svc.Directory.Cycle(-1)
		m.refreshChat()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, RefreshModelsCmd(m.svc.Directory)
	case key.Matches(msg, m.keys.Mic):
		if !m.svc.Input.CanRecord() {
			return m, m.toastStatus("No microphone program found")
		}
		return m, ToggleRecordingCmd(m.svc.Context(), m.svc.Input)
	case key.Matches(msg, m.keys.Speak):
		return m.speak()
	case key.Matches(msg, m.keys.PrevMessage):
		m.moveMessageCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.NextMessage):
		m.moveMessageCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		target, ok := m.targetReply()
		if !ok {
			return m, nil
		}
		return m, copyCmd(m.svc.Clipboard, target.Content)
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send hands the pending input to the dispatcher.
func (m Model) send() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	req, ok := m.svc.Dispatcher.Begin(text)
	if !ok {
		switch {
		case strings.TrimSpace(text) == "":
		case m.svc.Directory.Selected() == "":
			return m, m.toastStatus("No model selected")
		default:
			return m, m.toastStatus("Still waiting for the previous reply")
		}
		return m, nil
	}
	m.input.Reset()
	m.msgCursor = -1
	m.refreshChat()
	return m, tea.Batch(CompleteChatCmd(m.svc.Dispatcher, req), m.spinner.Tick)
}

// targetReply is the selected assistant message, or the latest one.
func (m Model) targetReply() (model.Message, bool) {
	msgs := m.svc.Dispatcher.Conversation().Messages()
	if m.msgCursor >= 0 && m.msgCursor < len(msgs) && msgs[m.msgCursor].Role == model.RoleAssistant {
		return msgs[m.msgCursor], true
	}
	return m.svc.Dispatcher.Conversation().LastAssistant()
}

func (m Model) speak() (tea.Model, tea.Cmd) {
	target, ok := m.targetReply()
	if !ok {
		return m, nil
	}
	started, done := m.svc.Output.Speak(target.Content)
	if !started {
		m.speakingID = ""
		m.refreshChat()
		return m, nil
	}
	m.speakingID = target.ID
	m.refreshChat()
	return m, waitForSpeech(target.ID, done)
}

// moveMessageCursor steps between assistant replies. Moving past the newest
// reply returns to following the latest one.
func (m *Model) moveMessageCursor(delta int) {
	msgs := m.svc.Dispatcher.Conversation().Messages()
	var replies []int
	for i, msg := range msgs {
		if msg.Role == model.RoleAssistant {
			replies = append(replies, i)
		}
	}
	if len(replies) == 0 {
		m.msgCursor = -1
		return
	}

	pos := len(replies)
	for i, idx := range replies {
		if idx == m.msgCursor {
			pos = i
			break
		}
	}
	pos += delta
	switch {
	case pos < 0:
		pos = 0
	case pos >= len(replies):
		m.msgCursor = -1
		m.refreshChat()
		return
	}
	m.msgCursor = replies[pos]
	m.refreshChat()
}

// -----------------------------------------------------------------------------
// Settings modal
// -----------------------------------------------------------------------------

func (m Model) openSettings(tab SettingsTab) (tea.Model, tea.Cmd) {
	m.modal = ModalSettings
	m.filtering = false
	m.input.Blur()
	return m.enterSettingsTab(tab)
}

func (m Model) enterSettingsTab(tab SettingsTab) (tea.Model, tea.Cmd) {
	m.settings.tab = tab
	m.scriptForm.Blur()
	m.settings.customHex.Blur()
	switch tab {
	case SettingsAdd:
		return m, m.scriptForm.Focus()
	case SettingsRemove:
		m.settings.removeCursor = clampCursor(m.settings.removeCursor, m.svc.Shelf.Len())
	case SettingsColors:
		if m.settings.colorRow == colorRowCustom {
			return m, m.settings.customHex.Focus()
		}
	case SettingsProfiles:
		m.settings.profileCursor = m.svc.Profiles.CurrentIndex()
	}
	return m, nil
}

func (m Model) closeModal() Model {
	m.modal = ModalNone
	m.scriptForm.Blur()
	m.settings.customHex.Blur()
	m.importPath.Blur()
	if m.tab == TabChat {
		m.input.Focus()
	}
	return m
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		return m.closeModal(), nil
	case key.Matches(msg, m.keys.NextSection):
		return m.enterSettingsTab(SettingsTab(cycle(int(m.settings.tab), 1, len(settingsLabels))))
	case key.Matches(msg, m.keys.PrevSection):
		return m.enterSettingsTab(SettingsTab(cycle(int(m.settings.tab), -1, len(settingsLabels))))
	}

	switch m.settings.tab {
	case SettingsAdd:
		return m.handleScriptFormKey(msg, false)
	case SettingsRemove:
		n := m.svc.Shelf.Len()
		switch {
		case key.Matches(msg, m.keys.Up):
			m.settings.removeCursor = clampCursor(m.settings.removeCursor-1, n)
		case key.Matches(msg, m.keys.Down):
			m.settings.removeCursor = clampCursor(m.settings.removeCursor+1, n)
		case key.Matches(msg, m.keys.Delete), key.Matches(msg, m.keys.Run):
			return m.deleteScript(m.svc.Shelf.List(), m.settings.removeCursor)
		}
	case SettingsColors:
		return m.handleColorsKey(msg)
	case SettingsProfiles:
		n := len(m.svc.Profiles.Profiles())
		switch {
		case key.Matches(msg, m.keys.Up):
			m.settings.profileCursor = clampCursor(m.settings.profileCursor-1, n)
		case key.Matches(msg, m.keys.Down):
			m.settings.profileCursor = clampCursor(m.settings.profileCursor+1, n)
		case key.Matches(msg, m.keys.Run):
			m.svc.Profiles.SelectIndex(m.settings.profileCursor)
			m.applyTheme()
		case key.Matches(msg, m.keys.Import):
			return m.openImport()
		}
	}
	return m, nil
}

func (m Model) handleColorsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.settings

	// Up and down always move between rows, even from the hex field.
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown:
		delta := 1
		if msg.Type == tea.KeyUp {
			delta = -1
		}
		s.colorRow = clampCursor(s.colorRow+delta, colorRowCount)
		if s.colorRow == colorRowCustom {
			s.customHex.SetValue(m.accent)
			return m, s.customHex.Focus()
		}
		s.customHex.Blur()
		return m, nil
	}

	if s.colorRow == colorRowCustom {
		return m.updateCustomHex(msg)
	}

	delta := 0
	switch {
	case key.Matches(msg, m.keys.Left):
		delta = -1
	case key.Matches(msg, m.keys.Right):
		delta = 1
	default:
		return m, nil
	}

	switch s.colorRow {
	case colorRowAccent:
		s.accentIdx = cycle(s.accentIdx, delta, len(theme.Presets))
		m.accent = theme.Presets[s.accentIdx].Value
	case colorRowGlow:
		s.glowIdx = cycle(s.glowIdx, delta, len(theme.Presets))
		m.glow.Color = theme.Presets[s.glowIdx].Value
	case colorRowOpacity:
		m.glow.Opacity = theme.ClampOpacity(m.glow.Opacity + float64(delta)*theme.GlowOpacityStep)
	}
	m.applyTheme()
	return m, nil
}

// updateCustomHex accepts only keystrokes that keep the field a hex prefix
// and applies the accent once a full color is typed.
func (m Model) updateCustomHex(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.settings
	prev := s.customHex.Value()

	var cmd tea.Cmd
	s.customHex, cmd = s.customHex.Update(msg)
	next := s.customHex.Value()
	if next != "" && !theme.ValidPartialHex(next) {
		s.customHex.SetValue(prev)
		return m, cmd
	}

	if hex, err := theme.ParseHex(next); err == nil && hex != strings.ToUpper(m.accent) {
		m.accent = hex
		if i := theme.PresetIndex(hex); i >= 0 {
			s.accentIdx = i
		}
		m.applyTheme()
	}
	return m, cmd
}

// -----------------------------------------------------------------------------
// Add-script and import modals
// -----------------------------------------------------------------------------

func (m Model) handleAddScriptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) {
		return m.closeModal(), nil
	}
	return m.handleScriptFormKey(msg, true)
}

// handleScriptFormKey drives the name/command form. closeOnAdd closes the
// modal after a successful add.
func (m Model) handleScriptFormKey(msg tea.KeyMsg, closeOnAdd bool) (tea.Model, tea.Cmd) {
	f := &m.scriptForm
	switch msg.Type {
	case tea.KeyUp:
		return m, f.Prev()
	case tea.KeyDown:
		return m, f.Next()
	case tea.KeyEnter:
		if f.focus == 0 {
			return m, f.Next()
		}
		name, command := f.Values()
		s, err := m.svc.Shelf.Add(name, command)
		if err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.Reset()
		cmds := []tea.Cmd{m.toastSuccess("Added " + s.Name)}
		if closeOnAdd {
			m = m.closeModal()
		} else {
			cmds = append(cmds, f.Focus())
		}
		return m, tea.Batch(cmds...)
	}
	f.err = ""
	return m, f.Update(msg)
}

func (m Model) openImport() (tea.Model, tea.Cmd) {
	m.modal = ModalImportProfile
	m.filtering = false
	m.input.Blur()
	m.importPath.Reset()
	return m, m.importPath.Focus()
}

func (m Model) handleImportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.closeModal(), nil
	case tea.KeyEnter:
		path := expandHome(strings.TrimSpace(m.importPath.Value()))
		if path == "" {
			return m, nil
		}
		return m, ImportProfileCmd(path)
	}
	var cmd tea.Cmd
	m.importPath, cmd = m.importPath.Update(msg)
	return m, cmd
}

func (m Model) handleProfileImported(msg ProfileImportedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.svc.Logger.Printf("profile: import failed | path=%s error=%v", msg.Path, msg.Err)
		return m, m.toastError("Import failed: " + msg.Err.Error())
	}
	m.svc.Profiles.Add(msg.Profile)
	m.settings.profileCursor = m.svc.Profiles.CurrentIndex()
	m.applyTheme()
	if m.modal == ModalImportProfile {
		m = m.closeModal()
	}
	return m, m.toastSuccess("Imported " + msg.Profile.Name)
}

func (m Model) handleProfileFile(msg ProfileFileMsg) (tea.Model, tea.Cmd) {
	ev := msg.Event
	var cmd tea.Cmd
	if ev.Err != nil {
		cmd = m.toastError(fmt.Sprintf("Profile %s: %v", filepath.Base(ev.Path), ev.Err))
	} else {
		m.svc.Profiles.Put(ev.Profile)
		m.applyTheme()
		cmd = m.toastStatus("Loaded profile " + ev.Profile.Name)
	}
	return m, tea.Batch(cmd, waitForProfileEvent(m.profileEvents))
}

// -----------------------------------------------------------------------------
// Mouse
// -----------------------------------------------------------------------------

// handleMouse toggles fullscreen on a click in the terminal pane and scrolls
// the chat with the wheel.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.modal != ModalNone {
		return m, nil
	}
	if m.tab == TabChat {
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.inTerminalPane(msg.X, msg.Y) {
		m.fullscreen = !m.fullscreen
		m.layout()
	}
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) toastError(text string) tea.Cmd {
	m.toasts.AddError(text)
	return components.ToastTickCmd()
}

func (m *Model) toastStatus(text string) tea.Cmd {
	m.toasts.AddStatus(text)
	return components.ToastTickCmd()
}

func (m *Model) toastSuccess(text string) tea.Cmd {
	m.toasts.AddSuccess(text)
	return components.ToastTickCmd()
}

// describeErr turns client errors into short toast text.
func describeErr(err error) string {
	switch {
	case ollama.IsNotRunning(err):
		return "cannot reach the model server"
	case ollama.IsTimeout(err):
		return "the model server timed out"
	case ollama.IsModelNotFound(err):
		return "model not found"
	}
	return err.Error()
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
