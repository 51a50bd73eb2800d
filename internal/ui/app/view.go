// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/termdeck/internal/model"
	"github.com/jeranaias/termdeck/internal/ui/components"
	"github.com/jeranaias/termdeck/internal/util"
)

// highlightStyle is the chroma style for echoed commands.
const highlightStyle = "monokai"

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) sidebarWidth() int {
	if m.fullscreen {
		return 0
	}
	w := m.svc.Config.UI.SidebarWidth
	if w <= 0 {
		w = 40
	}
	if limit := m.width / 2; w > limit {
		w = limit
	}
	return w
}

func (m Model) footerHeight() int {
	if m.showHelp {
		return 4
	}
	return 1
}

func (m Model) bodyHeight() int {
	h := m.height - 1 - m.footerHeight()
	if h < 3 {
		h = 3
	}
	return h
}

// layout sizes child widgets after a resize or a layout toggle.
func (m *Model) layout() {
	mainW := m.width - m.sidebarWidth()
	m.chatView.Width = max(mainW-2, 10)
	m.chatView.Height = max(m.bodyHeight()-5, 1)
	m.input.Width = max(mainW-12, 10)
	m.filter.Width = max(m.sidebarWidth()-6, 4)
	m.importPath.Width = 40
	m.refreshChat()
}

// inTerminalPane reports whether a screen cell lies inside the terminal pane.
func (m Model) inTerminalPane(x, y int) bool {
	if m.tab != TabTerminal {
		return false
	}
	return y >= 1 && y < 1+m.bodyHeight() && x >= m.sidebarWidth() && x < m.width
}

// refreshChat re-renders the conversation into the viewport.
func (m *Model) refreshChat() {
	if m.chatView.Width <= 0 {
		return
	}
	m.chatView.SetContent(m.renderMessages(m.chatView.Width))
	if m.msgCursor < 0 {
		m.chatView.GotoBottom()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	bodyH := m.bodyHeight()
	var body string
	switch {
	case m.modal != ModalNone:
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.renderModal(),
			lipgloss.WithWhitespaceBackground(m.theme.App.GetBackground()))
	case m.fullscreen:
		body = m.renderTerminalPane(m.width, bodyH)
	default:
		sw := m.sidebarWidth()
		var main string
		if m.tab == TabChat {
			main = m.renderChat(m.width-sw, bodyH)
		} else {
			main = m.renderTerminalPane(m.width-sw, bodyH)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(sw, bodyH), main)
	}

	if m.toasts.HasToasts() {
		stack := components.RenderToastStack(m.toasts.Toasts(), m.toasts.Now(), m.width)
		body = overlayBottomRight(body, stack, m.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

// overlayBottomRight draws top over the bottom-right corner of base.
func overlayBottomRight(base, top string, width int) string {
	baseLines := strings.Split(base, "\n")
	topLines := strings.Split(top, "\n")
	if len(topLines) > len(baseLines) {
		topLines = topLines[len(topLines)-len(baseLines):]
	}
	offset := len(baseLines) - len(topLines)
	for i, tl := range topLines {
		tw := ansi.StringWidth(tl)
		keep := max(width-tw-1, 0)
		left := ansi.Truncate(baseLines[offset+i], keep, "")
		pad := keep - ansi.StringWidth(left)
		baseLines[offset+i] = left + strings.Repeat(" ", pad) + tl
	}
	return strings.Join(baseLines, "\n")
}

func (m Model) renderHeader() string {
	th := m.theme
	parts := []string{th.HeaderName.Render("termdeck")}

	if sel := m.svc.Directory.Selected(); sel != "" {
		parts = append(parts, "model: "+sel)
	} else {
		parts = append(parts, "model: none")
	}
	parts = append(parts, "profile: "+m.svc.Profiles.Current().Name)

	if m.editing {
		parts = append(parts, th.ScriptDelete.Render("EDITING"))
	}
	if m.svc.Input.Recording() {
		parts = append(parts, th.MicOn.Render("● REC"))
	}
	if m.listening {
		parts = append(parts, th.MicOff.Render("listening"))
	}
	if m.svc.Output.Speaking() {
		parts = append(parts, th.SpeakOn.Render("♪ speaking"))
	}

	line := strings.Join(parts, "  ·  ")
	return th.Header.Width(m.width).MaxWidth(m.width).Render(ansi.Truncate(line, m.width-2, "…"))
}

func (m Model) renderFooter() string {
	m.help.ShowAll = m.showHelp
	view := m.help.View(contextHelp{
		keys:  m.keys,
		chat:  m.tab == TabChat,
		modal: m.modal != ModalNone,
	})
	return m.theme.Footer.
		Width(m.width).
		MaxWidth(m.width).
		Height(m.footerHeight()).
		MaxHeight(m.footerHeight()).
		Render(view)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar(width, height int) string {
	th := m.theme
	inner := max(width-3, 1)

	var b strings.Builder
	b.WriteString(components.RenderTabs(th, tabLabels, int(m.tab)))
	b.WriteString("\n\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(th.FilterPrompt.Render(m.filter.View()))
		b.WriteString("\n")
	}

	scripts := m.visibleScripts()
	if len(scripts) == 0 {
		b.WriteString(th.Hint.Render("No scripts"))
	}
	cursor := clampCursor(m.cursor, len(scripts))
	for i, s := range scripts {
		line := util.Truncate(s.Name, inner-4)
		if m.editing {
			line = th.ScriptDelete.Render("✕") + " " + line
		}
		cmd := th.ScriptCommand.Render(util.Truncate(s.Command, inner-4))
		if i == cursor && m.tab == TabTerminal {
			b.WriteString(th.ScriptSelected.Render(line + "\n" + cmd))
		} else {
			b.WriteString(th.ScriptItem.Render(line + "\n" + cmd))
		}
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString("\n" + th.Hint.Render("d delete · e done"))
	}

	return th.SidebarBox.
		Width(width - 1).
		Height(height).
		MaxHeight(height).
		Render(b.String())
}

// =============================================================================
// TERMINAL PANE
// =============================================================================

func (m Model) renderTerminalPane(width, height int) string {
	th := m.theme
	innerW := max(width-6, 4)
	innerH := max(height-5, 1)

	p := m.svc.Profiles.Current()
	title := th.TerminalTitle.Render(util.Truncate(fmt.Sprintf("%s  %s", p.Name, p.Shell), innerW))

	var lines []string
	for _, line := range strings.Split(m.svc.Terminal.Render(highlightStyle), "\n") {
		lines = append(lines, strings.Split(ansi.Wrap(line, innerW, ""), "\n")...)
	}
	if len(lines) > innerH {
		lines = lines[len(lines)-innerH:]
	}
	content := title + "\n" + strings.Join(lines, "\n")

	pane := th.TerminalPane
	if m.fullscreen {
		pane = th.TerminalFullscreen
	}
	rendered := pane.
		Width(max(width-4, 1)).
		Height(max(height-4, 1)).
		MaxHeight(max(height-2, 1)).
		Render(content)
	return th.TerminalHalo.Render(rendered)
}

// =============================================================================
// CHAT PANEL
// =============================================================================

func (m Model) renderChat(width, height int) string {
	th := m.theme

	picker := th.Hint.Render("No models · C-l to reload")
	if names := m.svc.Directory.Names(); len(names) > 0 {
		sel := m.svc.Directory.Selected()
		pos := 0
		for i, n := range names {
			if n == sel {
				pos = i + 1
			}
		}
		picker = th.Label.Render("Model ") +
			th.ModelPicker.Render(fmt.Sprintf("‹ %s ›", sel)) +
			th.Hint.Render(fmt.Sprintf(" %d/%d", pos, len(names)))
	}

	thinking := ""
	if n := m.svc.Dispatcher.InFlight(); n > 0 {
		label := "thinking"
		if n > 1 {
			label = fmt.Sprintf("thinking (%d)", n)
		}
		thinking = th.Thinking.Render(m.spinner.View() + " " + label)
	}

	mic := th.MicOff.Render("mic ○")
	if m.svc.Input.Recording() {
		mic = th.MicOn.Render("mic ●")
	}
	input := th.InputBox.Width(max(width-4, 10)).Render(m.input.View() + "  " + mic)

	content := lipgloss.JoinVertical(lipgloss.Left,
		ansi.Truncate(picker, width-2, "…"),
		m.chatView.View(),
		thinking,
		input,
	)
	return th.ChatBox.Width(width).Height(height).MaxHeight(height).Render(content)
}

// renderMessages lays out the conversation for the viewport.
func (m Model) renderMessages(width int) string {
	th := m.theme
	msgs := m.svc.Dispatcher.Conversation().Messages()
	if len(msgs) == 0 {
		hint := "No messages yet. Type below and press Enter."
		if m.svc.Directory.Selected() == "" {
			hint = "No model selected. Start Ollama and press C-l."
		}
		return th.Hint.Render(hint)
	}

	bodyW := max(width-4, 10)
	blocks := make([]string, 0, len(msgs))
	for i, msg := range msgs {
		label := th.AssistantLabel.Render(msg.Role.DisplayName())
		if msg.Role == model.RoleUser {
			label = th.UserLabel.Render(msg.Role.DisplayName())
		}
		label += th.Hint.Render("  " + msg.Timestamp.Format("15:04"))
		if msg.ID != "" && msg.ID == m.speakingID {
			label += "  " + th.SpeakOn.Render("♪ speaking · C-s to stop")
		}

		var body string
		if msg.Role == model.RoleUser {
			body = th.UserBubble.Render(util.Wrap(msg.Content, bodyW-2))
		} else {
			body = th.AssistantBody.Render(m.md.Render(msg.Content, bodyW))
		}

		block := label + "\n" + body
		if i == m.msgCursor {
			block = th.MessageCursor.PaddingLeft(1).Render(block)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}
