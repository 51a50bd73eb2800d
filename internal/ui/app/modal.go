// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/jeranaias/termdeck/internal/theme"
	"github.com/jeranaias/termdeck/internal/ui/components"
	"github.com/jeranaias/termdeck/internal/util"
)

func (m Model) modalWidth() int {
	return max(min(64, m.width-4), 20)
}

func (m Model) renderModal() string {
	th := m.theme
	w := m.modalWidth()

	var title, body string
	switch m.modal {
	case ModalSettings:
		title = "Settings"
		body = components.RenderTabs(th, settingsLabels, int(m.settings.tab)) + "\n\n" + m.renderSettingsBody(w-6)
	case ModalAddScript:
		title = "Add Script"
		body = m.renderScriptForm()
	case ModalImportProfile:
		title = "Import Profile"
		body = m.importPath.View() + "\n\n" +
			th.Hint.Render("JSON (.json, .conf) or YAML (.yaml, .yml). Missing fields use the custom defaults.")
	}
	return th.Modal.Width(w).Render(th.ModalTitle.Render(title) + "\n" + body)
}

func (m Model) renderScriptForm() string {
	th := m.theme
	f := m.scriptForm
	out := f.name.View() + "\n" + f.command.View()
	if f.err != "" {
		out += "\n\n" + th.ErrorText.Render(f.err)
	}
	return out + "\n\n" + th.Hint.Render("up/down switch field · Enter add · Esc close")
}

func (m Model) renderSettingsBody(width int) string {
	switch m.settings.tab {
	case SettingsAdd:
		return m.renderScriptForm()
	case SettingsRemove:
		return m.renderRemoveList(width)
	case SettingsColors:
		return m.renderColors()
	case SettingsProfiles:
		return m.renderProfiles(width)
	}
	return ""
}

func (m Model) renderRemoveList(width int) string {
	th := m.theme
	scripts := m.svc.Shelf.List()
	if len(scripts) == 0 {
		return th.Hint.Render("No scripts to remove")
	}
	var b strings.Builder
	for i, s := range scripts {
		line := util.Truncate(s.Name, width-4)
		if i == m.settings.removeCursor {
			b.WriteString(th.ScriptDelete.Render("✕ ") + th.ProfileActive.Render(line))
		} else {
			b.WriteString("  " + th.ProfileItem.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + th.Hint.Render("Enter or d removes the highlighted script"))
	return b.String()
}

func (m Model) renderSwatches(selected int) string {
	th := m.theme
	var b strings.Builder
	for i, p := range theme.Presets {
		mark := " "
		if i == selected {
			mark = "◆"
		}
		b.WriteString(th.SwatchStyle(p.Value, i == selected).Render(mark))
	}
	return b.String()
}

func (m Model) renderColors() string {
	th := m.theme
	s := m.settings

	row := func(i int, label, value string) string {
		marker := "  "
		if s.colorRow == i {
			marker = th.FilterPrompt.Render("› ")
		}
		return marker + th.Label.Render(fmt.Sprintf("%-9s", label)) + value
	}

	rgb, err := theme.HexToRGB(m.accent)
	if err != nil {
		rgb = "-"
	}

	preview := th.SwatchStyle(m.accent, false).Render(" ")
	if v := s.customHex.Value(); theme.ValidHex(v) {
		preview = th.SwatchStyle(v, false).Render(" ")
	}

	lines := []string{
		row(colorRowAccent, "Accent", m.renderSwatches(s.accentIdx)+" "+theme.PresetName(m.accent)),
		row(colorRowCustom, "Custom", s.customHex.View()+" "+preview),
		row(colorRowGlow, "Glow", m.renderSwatches(s.glowIdx)+" "+theme.PresetName(m.glow.Color)),
		row(colorRowOpacity, "Opacity", components.RenderSlider(th, m.glow.Opacity, theme.MaxGlowOpacity, 24)),
		"",
		th.Hint.Render(fmt.Sprintf("accent %s · rgb(%s)", m.accent, rgb)),
		th.Hint.Render("up/down row · left/right change · type #RRGGBB in Custom"),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderProfiles(width int) string {
	th := m.theme
	profiles := m.svc.Profiles.Profiles()
	current := m.svc.Profiles.CurrentIndex()
	cursor := clampCursor(m.settings.profileCursor, len(profiles))

	var b strings.Builder
	for i, p := range profiles {
		name := util.Truncate(p.Name, width-6)
		if i == current {
			name += " ✓"
		}
		if i == cursor {
			b.WriteString(th.FilterPrompt.Render("› ") + th.ProfileActive.Render(name))
		} else {
			b.WriteString("  " + th.ProfileItem.Render(name))
		}
		b.WriteString("\n")
	}

	p := profiles[cursor]
	details := fmt.Sprintf("shell %s · bg %s · fg %s · %s %gpx · opacity %.2f",
		p.Shell, p.BackgroundColor, p.ForegroundColor, p.FontFamily, p.FontSize, p.Opacity)
	b.WriteString("\n" + th.Hint.Render(util.Wrap(details, width)))
	b.WriteString("\n" + th.Hint.Render("Enter select · i import from file"))
	return b.String()
}
