// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/termdeck/internal/profile"
	"github.com/jeranaias/termdeck/internal/theme"
	"github.com/jeranaias/termdeck/internal/ui/components"
	"github.com/jeranaias/termdeck/internal/ui/styles"
)

// =============================================================================
// VIEW STATE ENUMS
// =============================================================================

// Tab is the sidebar tab, which picks the main pane.
type Tab int

const (
	TabTerminal Tab = iota
	TabChat
)

var tabLabels = []string{"Terminal", "AI Chat"}

// Modal is the overlay currently open.
type Modal int

const (
	ModalNone Modal = iota
	ModalSettings
	ModalAddScript
	ModalImportProfile
)

// SettingsTab is a section of the settings panel.
type SettingsTab int

const (
	SettingsAdd SettingsTab = iota
	SettingsRemove
	SettingsColors
	SettingsProfiles
)

var settingsLabels = []string{"Add", "Remove", "Colors", "Profiles"}

// Rows of the Colors section.
const (
	colorRowAccent = iota
	colorRowCustom
	colorRowGlow
	colorRowOpacity
	colorRowCount
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	svc   *Services
	keys  KeyMap
	help  help.Model
	theme *styles.Theme
	md    *markdown

	width  int
	height int

	// Shared view state, passed down to every renderer.
	accent     string
	glow       theme.Glow
	editing    bool
	tab        Tab
	fullscreen bool
	modal      Modal
	showHelp   bool

	// Script list
	cursor    int
	filtering bool
	filter    textinput.Model

	// Chat panel
	input      textinput.Model
	chatView   viewport.Model
	spinner    spinner.Model
	msgCursor  int // index into the conversation; -1 follows the latest reply
	speakingID string
	listening  bool

	// Open event channels from long-running commands
	transcripts   <-chan string
	profileEvents <-chan profile.Event

	// Modals
	settings   settingsState
	scriptForm scriptForm
	importPath textinput.Model

	toasts *components.ToastManager
}

// New creates the root model over svc.
func New(svc *Services) Model {
	cfg := svc.Config

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter scripts"

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Ask something..."
	if svc.Input.CanTranscribe() {
		input.Placeholder = "Type or speak..."
	}

	importPath := textinput.New()
	importPath.Prompt = "path: "
	importPath.Placeholder = "~/profiles/solarized.json"

	sp := spinner.New(spinner.WithSpinner(styles.DotsSpinner.Bubble()))

	glow := theme.Glow{Color: cfg.UI.GlowColor, Opacity: theme.ClampOpacity(cfg.UI.GlowOpacity)}
	if !theme.ValidHex(glow.Color) {
		glow.Color = cfg.UI.Accent
	}

	m := Model{
		svc:        svc,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		md:         newMarkdown(cfg.UI.MarkdownStyle),
		accent:     cfg.UI.Accent,
		glow:       glow,
		filter:     filter,
		input:      input,
		chatView:   viewport.New(0, 0),
		spinner:    sp,
		msgCursor:  -1,
		importPath: importPath,
		scriptForm: newScriptForm(),
		toasts:     components.NewToastManager(),
	}
	m.settings = newSettings(m.accent, m.glow.Color)
	m.theme = styles.NewTheme(m.themeOptions())
	return m
}

// Services returns the collaborators the model was built on.
func (m Model) Services() *Services {
	return m.svc
}

// Init starts the model listing, transcription and profile watching.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		RefreshModelsCmd(m.svc.Directory),
		textinput.Blink,
	}
	if m.svc.Input.CanTranscribe() {
		cmds = append(cmds, StartTranscriptionCmd(m.svc.Context(), m.svc.Input))
	}
	if m.svc.Watcher != nil {
		cmds = append(cmds, StartProfileWatchCmd(m.svc.Context(), m.svc.Watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) themeOptions() styles.Options {
	return styles.Options{
		Accent:  m.accent,
		Glow:    m.glow,
		Profile: m.svc.Profiles.Current(),
	}
}

// applyTheme rebuilds styles after accent, glow or profile changes.
func (m *Model) applyTheme() {
	m.theme.Apply(m.themeOptions())
	m.refreshChat()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Accent returns the current accent color.
func (m Model) Accent() string { return m.accent }

// Glow returns the current glow settings.
func (m Model) Glow() theme.Glow { return m.glow }

// Editing reports whether editing mode is on.
func (m Model) Editing() bool { return m.editing }

// ActiveTab returns the sidebar tab.
func (m Model) ActiveTab() Tab { return m.tab }

// Fullscreen reports whether the terminal pane fills the screen.
func (m Model) Fullscreen() bool { return m.fullscreen }

// OpenModal returns the modal currently shown.
func (m Model) OpenModal() Modal { return m.modal }

// PendingInput returns the chat input text.
func (m Model) PendingInput() string { return m.input.Value() }
