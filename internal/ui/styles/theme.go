// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/termdeck/internal/profile"
	"github.com/jeranaias/termdeck/internal/theme"
)

// Options are the user-controlled inputs to a Theme.
type Options struct {
	Accent  string
	Glow    theme.Glow
	Profile profile.Profile
}

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Options Options

	// Resolved colors
	Accent     lipgloss.Color
	GlowBorder lipgloss.Color
	GlowOuter  lipgloss.Color
	TerminalBg lipgloss.Color
	TerminalFg lipgloss.Color

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App        lipgloss.Style
	Header     lipgloss.Style
	HeaderName lipgloss.Style
	Footer     lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	SidebarBox     lipgloss.Style
	Tab            lipgloss.Style
	TabActive      lipgloss.Style
	ScriptItem     lipgloss.Style
	ScriptSelected lipgloss.Style
	ScriptCommand  lipgloss.Style
	ScriptDelete   lipgloss.Style
	FilterPrompt   lipgloss.Style

	// ==========================================================================
	// TERMINAL PANE
	// ==========================================================================

	TerminalHalo       lipgloss.Style
	TerminalPane       lipgloss.Style
	TerminalFullscreen lipgloss.Style
	TerminalTitle      lipgloss.Style

	// ==========================================================================
	// CHAT PANEL
	// ==========================================================================

	ChatBox        lipgloss.Style
	ModelPicker    lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBubble     lipgloss.Style
	AssistantBody  lipgloss.Style
	MessageCursor  lipgloss.Style
	InputBox       lipgloss.Style
	MicOn          lipgloss.Style
	MicOff         lipgloss.Style
	SpeakOn        lipgloss.Style
	Thinking       lipgloss.Style

	// ==========================================================================
	// SETTINGS AND MODALS
	// ==========================================================================

	Modal         lipgloss.Style
	ModalTitle    lipgloss.Style
	Label         lipgloss.Style
	Hint          lipgloss.Style
	Swatch        lipgloss.Style
	SwatchActive  lipgloss.Style
	Slider        lipgloss.Style
	SliderFill    lipgloss.Style
	ProfileItem   lipgloss.Style
	ProfileActive lipgloss.Style
	Button        lipgloss.Style
	ButtonDanger  lipgloss.Style
	ErrorText     lipgloss.Style
}

// NewTheme creates a theme from the given options, detecting terminal
// capabilities.
func NewTheme(opts Options) *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.Apply(opts)
	return t
}

// Apply rebuilds every style from opts, keeping detected capabilities.
func (t *Theme) Apply(opts Options) {
	if !theme.ValidHex(opts.Accent) {
		opts.Accent = theme.DefaultAccent
	}
	if opts.Profile.BackgroundColor == "" {
		opts.Profile = profile.Defaults()[0]
	}
	t.Options = opts

	appBg := Background.Dark
	if !t.IsDark {
		appBg = Background.Light
	}
	termBg := theme.Mix(appBg, opts.Profile.BackgroundColor, opts.Profile.Opacity)

	t.Accent = lipgloss.Color(opts.Accent)
	rings := opts.Glow.Layers(termBg, 2)
	t.GlowBorder = lipgloss.Color(rings[0])
	t.GlowOuter = lipgloss.Color(rings[1])
	t.TerminalBg = lipgloss.Color(termBg)
	t.TerminalFg = lipgloss.Color(opts.Profile.ForegroundColor)

	t.initStyles()
}

// SwatchStyle returns a block style painted in hex.
func (t *Theme) SwatchStyle(hex string, active bool) lipgloss.Style {
	base := t.Swatch
	if active {
		base = t.SwatchActive
	}
	return base.Background(lipgloss.Color(hex))
}

func (t *Theme) initStyles() {
	accent := t.Accent

	// Layout
	t.App = lipgloss.NewStyle().Background(Background)
	t.Header = lipgloss.NewStyle().
		Background(Sidebar).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.HeaderName = lipgloss.NewStyle().Foreground(accent).Bold(true)
	t.Footer = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)

	// Sidebar
	t.SidebarBox = lipgloss.NewStyle().
		Background(Sidebar).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Border).
		Padding(0, 1)
	t.Tab = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)
	t.TabActive = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true).
		Underline(true).
		Padding(0, 1)
	t.ScriptItem = lipgloss.NewStyle().Foreground(TextPrimary).Padding(0, 1)
	t.ScriptSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Hover).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(accent).
		PaddingLeft(1)
	t.ScriptCommand = lipgloss.NewStyle().Foreground(TextMuted).PaddingLeft(1)
	t.ScriptDelete = lipgloss.NewStyle().Foreground(Danger).Bold(true)
	t.FilterPrompt = lipgloss.NewStyle().Foreground(accent)

	// Terminal pane, drawn inside a fainter outer ring
	t.TerminalHalo = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.GlowOuter)
	t.TerminalPane = lipgloss.NewStyle().
		Background(t.TerminalBg).
		Foreground(t.TerminalFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.GlowBorder).
		Padding(0, 1)
	t.TerminalFullscreen = t.TerminalPane.
		BorderStyle(lipgloss.DoubleBorder())
	t.TerminalTitle = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	// Chat
	t.ChatBox = lipgloss.NewStyle().Padding(0, 1)
	t.ModelPicker = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Panel).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	t.UserLabel = lipgloss.NewStyle().Foreground(accent).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true)
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(HoverStrong).
		Padding(0, 1)
	t.AssistantBody = lipgloss.NewStyle().Foreground(TextPrimary)
	t.MessageCursor = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(accent)
	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	t.MicOn = lipgloss.NewStyle().Foreground(Recording).Bold(true)
	t.MicOff = lipgloss.NewStyle().Foreground(TextMuted)
	t.SpeakOn = lipgloss.NewStyle().Foreground(accent).Bold(true)
	t.Thinking = lipgloss.NewStyle().Foreground(accent).Italic(true)

	// Settings and modals
	t.Modal = lipgloss.NewStyle().
		Background(Panel).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	t.ModalTitle = lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1)
	t.Label = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.Swatch = lipgloss.NewStyle().Padding(0, 1).Foreground(TextInverse)
	t.SwatchActive = t.Swatch.Bold(true).Underline(true)
	t.Slider = lipgloss.NewStyle().Foreground(Border)
	t.SliderFill = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Options.Glow.Color))
	t.ProfileItem = lipgloss.NewStyle().Foreground(TextPrimary).Padding(0, 1)
	t.ProfileActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(accent).
		Padding(0, 1)
	t.Button = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(accent).
		Padding(0, 2)
	t.ButtonDanger = t.Button.Background(Danger)
	t.ErrorText = lipgloss.NewStyle().Foreground(Danger)
}
