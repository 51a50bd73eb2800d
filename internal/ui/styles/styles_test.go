// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termdeck/internal/profile"
	"github.com/jeranaias/termdeck/internal/theme"
)

func TestNewTheme_Defaults(t *testing.T) {
	th := NewTheme(Options{})
	require.NotNil(t, th)

	assert.Equal(t, lipgloss.Color(theme.DefaultAccent), th.Accent)
	assert.Equal(t, "mate-terminal", th.Options.Profile.ID)
	assert.Equal(t, lipgloss.Color("#FFFFFF"), th.TerminalFg)
}

func TestTheme_ApplyAccent(t *testing.T) {
	th := NewTheme(Options{Accent: "#3B82F6"})
	assert.Equal(t, lipgloss.Color("#3B82F6"), th.Accent)

	th.Apply(Options{Accent: "not-a-color"})
	assert.Equal(t, lipgloss.Color(theme.DefaultAccent), th.Accent, "invalid accent falls back")
}

func TestTheme_GlowFollowsOptions(t *testing.T) {
	p := profile.Defaults()[0]
	p.Opacity = 1

	off := NewTheme(Options{Glow: theme.Glow{Color: "#FFFFFF", Opacity: 0}, Profile: p})
	on := NewTheme(Options{Glow: theme.Glow{Color: "#FFFFFF", Opacity: 0.3}, Profile: p})

	assert.Equal(t, off.TerminalBg, off.GlowBorder, "no glow means the border disappears into the pane")
	assert.NotEqual(t, off.GlowBorder, on.GlowBorder)
}

func TestTheme_ProfileBackground(t *testing.T) {
	p := profile.Defaults()[1]
	p.Opacity = 1
	th := NewTheme(Options{Profile: p})
	assert.Equal(t, "#2e3436", string(th.TerminalBg))
}

func TestSpinnerConfig(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, LineSpinner.Interval())
	assert.Equal(t, time.Second, SpinnerConfig{}.Interval())

	b := DotsSpinner.Bubble()
	assert.Equal(t, DotsSpinner.Frames, b.Frames)
	assert.Equal(t, DotsSpinner.Interval(), b.FPS)
}
