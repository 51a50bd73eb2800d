// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termdeck/internal/config"
	"github.com/jeranaias/termdeck/internal/launcher"
	"github.com/jeranaias/termdeck/internal/model"
	"github.com/jeranaias/termdeck/internal/profile"
	"github.com/jeranaias/termdeck/internal/theme"
	"github.com/jeranaias/termdeck/internal/voice"
)

// =============================================================================
// FIXTURES
// =============================================================================

type blockingSynth struct {
	mu     sync.Mutex
	spoken []string
}

func (s *blockingSynth) Available() bool { return true }

func (s *blockingSynth) Say(ctx context.Context, text string) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

type failingRecorder struct{}

func (failingRecorder) Available() bool { return true }

func (failingRecorder) Start(context.Context) (voice.Capture, error) {
	return nil, errors.New("device busy")
}

type fixture struct {
	svc     *Services
	logs    *bytes.Buffer
	synth   *blockingSynth
	copied  []string
	chatErr bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{logs: &bytes.Buffer{}, synth: &blockingSynth{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"llama2"},{"name":"mistral"}]}`))
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if f.chatErr {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "hi there"},
			"done":    true,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Ollama.URL = srv.URL
	cfg.Voice.Disabled = true

	logger := log.New(f.logs, "", 0)
	svc := NewServices(cfg, logger)
	svc.Input = voice.NewInputBridge(nil, failingRecorder{}, logger)
	svc.Output = voice.NewOutputBridge(f.synth, logger)
	svc.Clipboard = func(s string) error {
		f.copied = append(f.copied, s)
		return nil
	}
	t.Cleanup(svc.Close)

	f.svc = svc
	return f
}

func (f *fixture) model(t *testing.T) Model {
	t.Helper()
	m := New(f.svc)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func keys(t *testing.T, m Model, ks ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range ks {
		m, _ = update(t, m, k)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, runes(string(r)))
	}
	return m
}

var (
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
	up       = tea.KeyMsg{Type: tea.KeyUp}
	down     = tea.KeyMsg{Type: tea.KeyDown}
	right    = tea.KeyMsg{Type: tea.KeyRight}
	ctrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	ctrlN    = tea.KeyMsg{Type: tea.KeyCtrlN}
	ctrlR    = tea.KeyMsg{Type: tea.KeyCtrlR}
	ctrlY    = tea.KeyMsg{Type: tea.KeyCtrlY}
)

// collect runs cmd and any batched children, returning the messages that
// arrive within a short window. Slow ticks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(2 * time.Second):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func find[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func refreshModels(t *testing.T, m Model) Model {
	t.Helper()
	msgs := collect(RefreshModelsCmd(m.svc.Directory))
	got, ok := find[ModelsMsg](msgs)
	require.True(t, ok)
	m, _ = update(t, m, got)
	return m
}

// =============================================================================
// LAYOUT AND TERMINAL TAB
// =============================================================================

func TestView_Initial(t *testing.T) {
	m := newFixture(t).model(t)
	out := ansi.Strip(m.View())

	assert.Contains(t, out, "termdeck")
	assert.Contains(t, out, "Terminal ready...")
	assert.Contains(t, out, "Update System")
	assert.Contains(t, out, "MATE Terminal")
	assert.Equal(t, 40, strings.Count(out, "\n")+1, "view fills the window height")
}

func TestView_BeforeResize(t *testing.T) {
	m := New(newFixture(t).svc)
	assert.Equal(t, "Loading...", m.View())
}

func TestTerminal_RunScript(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	m = keys(t, m, down, enter)
	assert.Equal(t, launcher.InitialOutput+"\n$ df -h\nExecuting: df -h...\n", f.svc.Terminal.Output())
}

func TestTerminal_EditingBlocksRunAndAllowsDelete(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	m = keys(t, m, runes("e"), enter)
	assert.True(t, m.Editing())
	assert.Equal(t, launcher.InitialOutput, f.svc.Terminal.Output(), "nothing runs while editing")
	assert.True(t, m.toasts.HasToasts())

	m = keys(t, m, runes("d"))
	assert.Equal(t, 2, f.svc.Shelf.Len())
	for _, s := range f.svc.Shelf.List() {
		assert.NotEqual(t, "Update System", s.Name)
	}

	m = keys(t, m, runes("e"), runes("d"))
	assert.False(t, m.Editing())
	assert.Equal(t, 2, f.svc.Shelf.Len(), "delete needs editing mode")
}

func TestTerminal_FilterRunsMatch(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	m = keys(t, m, runes("/"))
	m = typeText(t, m, "info")
	m = keys(t, m, enter)
	assert.Contains(t, f.svc.Terminal.Output(), "$ neofetch")

	m = keys(t, m, esc)
	assert.Empty(t, m.filter.Value())
}

func TestTerminal_FullscreenByKeyAndClick(t *testing.T) {
	m := newFixture(t).model(t)

	m = keys(t, m, runes("f"))
	assert.True(t, m.Fullscreen())
	m = keys(t, m, esc)
	assert.False(t, m.Fullscreen())

	click := tea.MouseMsg{X: 80, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, _ = update(t, m, click)
	assert.True(t, m.Fullscreen())
	m, _ = update(t, m, click)
	assert.False(t, m.Fullscreen())

	sidebarClick := tea.MouseMsg{X: 2, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, _ = update(t, m, sidebarClick)
	assert.False(t, m.Fullscreen())
}

func TestAddScriptModal(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	m = keys(t, m, runes("a"))
	require.Equal(t, ModalAddScript, m.OpenModal())

	m = typeText(t, m, "Uptime")
	m = keys(t, m, enter)
	m = keys(t, m, enter)
	assert.Equal(t, ModalAddScript, m.OpenModal(), "empty command is rejected")
	assert.NotEmpty(t, m.scriptForm.err)

	m = typeText(t, m, "uptime")
	m = keys(t, m, enter)
	assert.Equal(t, ModalNone, m.OpenModal())
	require.Equal(t, 4, f.svc.Shelf.Len())
	assert.Equal(t, "Uptime", f.svc.Shelf.List()[3].Name)
}

// =============================================================================
// CHAT TAB
// =============================================================================

func TestChat_SendAppendsUserThenReply(t *testing.T) {
	f := newFixture(t)
	m := refreshModels(t, f.model(t))
	require.Equal(t, "llama2", f.svc.Directory.Selected())

	m = keys(t, m, tab)
	require.Equal(t, TabChat, m.ActiveTab())
	m = typeText(t, m, "hello")

	m, cmd := update(t, m, enter)
	assert.Empty(t, m.PendingInput(), "input clears on send")
	msgs := f.svc.Dispatcher.Conversation().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleUser, msgs[0].Role)

	reply, ok := find[ChatReplyMsg](collect(cmd))
	require.True(t, ok)
	require.NoError(t, reply.Err)
	m, _ = update(t, m, reply)

	msgs = f.svc.Dispatcher.Conversation().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi there", msgs[1].Content)
	assert.Contains(t, ansi.Strip(m.View()), "hi there")
}

func TestChat_FailureToastsAndKeepsUserMessage(t *testing.T) {
	f := newFixture(t)
	f.chatErr = true
	m := refreshModels(t, f.model(t))

	m = keys(t, m, tab)
	m = typeText(t, m, "hello")
	m, cmd := update(t, m, enter)

	reply, ok := find[ChatReplyMsg](collect(cmd))
	require.True(t, ok)
	require.Error(t, reply.Err)
	m, _ = update(t, m, reply)

	assert.Equal(t, 1, f.svc.Dispatcher.Conversation().Len())
	assert.True(t, m.toasts.HasToasts())
	assert.Contains(t, f.logs.String(), "dispatch: chat failed")
}

func TestChat_NoModelIsNoop(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	m = keys(t, m, tab)
	m = typeText(t, m, "hello")
	m, _ = update(t, m, enter)

	assert.Zero(t, f.svc.Dispatcher.Conversation().Len())
	assert.Equal(t, "hello", m.PendingInput(), "input stays when nothing was sent")
}

func TestChat_ModelsFailureShowsToast(t *testing.T) {
	f := newFixture(t)
	f.svc.Config.Ollama.URL = "http://127.0.0.1:1"
	svc := NewServices(f.svc.Config, log.New(f.logs, "", 0))
	t.Cleanup(svc.Close)

	m := New(svc)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = refreshModels(t, m)

	assert.Empty(t, svc.Directory.Names())
	assert.Empty(t, svc.Directory.Selected())
	assert.True(t, m.toasts.HasToasts())
}

func TestChat_CycleModel(t *testing.T) {
	f := newFixture(t)
	m := refreshModels(t, f.model(t))
	m = keys(t, m, tab, ctrlN)
	assert.Equal(t, "mistral", f.svc.Directory.Selected())
	assert.Contains(t, ansi.Strip(m.View()), "mistral")
}

func TestChat_SpeakToggles(t *testing.T) {
	f := newFixture(t)
	f.svc.Dispatcher.Conversation().Append(model.NewMessage(model.RoleUser, "hello"))
	f.svc.Dispatcher.Conversation().Append(model.NewMessage(model.RoleAssistant, "hi there"))
	m := keys(t, f.model(t), tab)

	m, cmd := update(t, m, ctrlS)
	require.NotNil(t, cmd)
	assert.True(t, f.svc.Output.Speaking())
	assert.NotEmpty(t, m.speakingID)

	m, _ = update(t, m, ctrlS)
	assert.False(t, f.svc.Output.Speaking())
	assert.Empty(t, m.speakingID)

	done, ok := find[SpeechDoneMsg](collect(cmd))
	require.True(t, ok)
	m, _ = update(t, m, done)
	assert.Empty(t, m.speakingID)
}

func TestChat_SpeakWithoutReplyDoesNothing(t *testing.T) {
	f := newFixture(t)
	m := keys(t, f.model(t), tab)
	_, cmd := update(t, m, ctrlS)
	assert.Nil(t, cmd)
	assert.False(t, f.svc.Output.Speaking())
}

func TestChat_CopySelectedReply(t *testing.T) {
	f := newFixture(t)
	conv := f.svc.Dispatcher.Conversation()
	conv.Append(model.NewMessage(model.RoleAssistant, "first"))
	conv.Append(model.NewMessage(model.RoleAssistant, "second"))
	m := keys(t, f.model(t), tab)

	m = keys(t, m, tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	assert.Equal(t, 1, m.msgCursor)
	m = keys(t, m, tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	assert.Equal(t, 0, m.msgCursor)

	_, cmd := update(t, m, ctrlY)
	copied, ok := find[CopiedMsg](collect(cmd))
	require.True(t, ok)
	require.NoError(t, copied.Err)
	assert.Equal(t, []string{"first"}, f.copied)
}

func TestChat_TranscriptFillsInput(t *testing.T) {
	m := keys(t, newFixture(t).model(t), tab)

	ch := make(chan string, 1)
	m, cmd := update(t, m, TranscriptStartedMsg{Ch: ch})
	require.NotNil(t, cmd)
	assert.True(t, m.listening)

	ch <- "hello world"
	msg, ok := find[TranscriptMsg](collect(cmd))
	require.True(t, ok)
	m, next := update(t, m, msg)
	assert.Equal(t, "hello world", m.PendingInput())
	assert.NotNil(t, next, "keeps waiting for updates")

	close(ch)
	closed := collect(next)
	require.Len(t, closed, 1)
	m, _ = update(t, m, closed[0])
	assert.False(t, m.listening)
}

func TestChat_MicFailureToasts(t *testing.T) {
	f := newFixture(t)
	m := keys(t, f.model(t), tab)

	_, cmd := update(t, m, ctrlR)
	rec, ok := find[RecordingMsg](collect(cmd))
	require.True(t, ok)
	require.Error(t, rec.Err)

	m, _ = update(t, m, rec)
	assert.False(t, f.svc.Input.Recording())
	assert.True(t, m.toasts.HasToasts())
	assert.Contains(t, f.logs.String(), "voice: microphone unavailable")
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings_AccentAndGlow(t *testing.T) {
	m := newFixture(t).model(t)

	m = keys(t, m, runes("s"))
	require.Equal(t, ModalSettings, m.OpenModal())
	m = keys(t, m, tab, tab)
	require.Equal(t, SettingsColors, m.settings.tab)

	m = keys(t, m, right)
	assert.Equal(t, theme.Presets[1].Value, m.Accent())
	assert.Contains(t, ansi.Strip(m.View()), "Blue")

	m = keys(t, m, down, down, right)
	assert.Equal(t, theme.Presets[1].Value, m.Glow().Color)

	m = keys(t, m, down, right)
	assert.InDelta(t, 0.16, m.Glow().Opacity, 1e-9)

	for i := 0; i < 40; i++ {
		m = keys(t, m, right)
	}
	assert.InDelta(t, theme.MaxGlowOpacity, m.Glow().Opacity, 1e-9)

	m = keys(t, m, esc)
	assert.Equal(t, ModalNone, m.OpenModal())
}

func TestSettings_CustomHex(t *testing.T) {
	m := newFixture(t).model(t)
	m = keys(t, m, runes("s"), shiftTab, shiftTab, down)
	require.Equal(t, SettingsColors, m.settings.tab)
	require.Equal(t, colorRowCustom, m.settings.colorRow)

	m.settings.customHex.SetValue("")
	m = typeText(t, m, "#3b82")
	assert.Equal(t, "#10B981", m.Accent(), "partial colors are not applied")

	m = typeText(t, m, "zz")
	assert.Equal(t, "#3b82", m.settings.customHex.Value(), "non-hex input is rejected")

	m = typeText(t, m, "f6")
	assert.Equal(t, "#3B82F6", m.Accent())
	assert.Equal(t, 1, m.settings.accentIdx)
}

func TestSettings_AddAndRemoveScripts(t *testing.T) {
	f := newFixture(t)
	m := keys(t, f.model(t), runes("s"))
	require.Equal(t, SettingsAdd, m.settings.tab)

	m = typeText(t, m, "Ports")
	m = keys(t, m, down)
	m = typeText(t, m, "ss -tlnp")
	m = keys(t, m, enter)
	assert.Equal(t, ModalSettings, m.OpenModal(), "settings stays open after adding")
	require.Equal(t, 4, f.svc.Shelf.Len())

	m = keys(t, m, tab)
	require.Equal(t, SettingsRemove, m.settings.tab)
	m = keys(t, m, down, down, down, enter)
	assert.Equal(t, 3, f.svc.Shelf.Len())
	for _, s := range f.svc.Shelf.List() {
		assert.NotEqual(t, "Ports", s.Name)
	}
}

func TestSettings_SelectProfile(t *testing.T) {
	f := newFixture(t)
	m := keys(t, f.model(t), runes("s"), shiftTab)
	require.Equal(t, SettingsProfiles, m.settings.tab)

	m = keys(t, m, down, down, enter)
	assert.Equal(t, "konsole", f.svc.Profiles.Current().ID)
	assert.Equal(t, "#232627", f.svc.Profiles.Current().BackgroundColor)

	m = keys(t, m, up, enter)
	assert.Equal(t, "gnome-terminal", f.svc.Profiles.Current().ID)
}

// =============================================================================
// PROFILES
// =============================================================================

func TestImportProfile(t *testing.T) {
	f := newFixture(t)
	m := keys(t, f.model(t), runes("i"))
	require.Equal(t, ModalImportProfile, m.OpenModal())

	p := profile.CustomBase()
	p.Name = "Solarized"
	p.BackgroundColor = "#002B36"
	m, _ = update(t, m, ProfileImportedMsg{Path: "/tmp/solarized.json", Profile: p})

	assert.Equal(t, ModalNone, m.OpenModal())
	assert.Equal(t, "Solarized", f.svc.Profiles.Current().Name)
	assert.Contains(t, ansi.Strip(m.View()), "Solarized")
}

func TestImportProfile_Failure(t *testing.T) {
	f := newFixture(t)
	m := keys(t, f.model(t), runes("i"))

	m, _ = update(t, m, ProfileImportedMsg{Path: "/tmp/bad.json", Err: profile.ErrInvalidProfile})
	assert.Equal(t, ModalImportProfile, m.OpenModal(), "modal stays open for another try")
	assert.Equal(t, "mate-terminal", f.svc.Profiles.Current().ID)
	assert.Contains(t, f.logs.String(), "profile: import failed")
}

func TestImportProfileCmd_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/night.yaml"
	require.NoError(t, writeFile(path, "name: Night\nbackgroundColor: \"#101010\"\n"))

	msg, ok := find[ProfileImportedMsg](collect(ImportProfileCmd(path)))
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, "Night", msg.Profile.Name)
	assert.Equal(t, "#101010", msg.Profile.BackgroundColor)
}

func TestProfileWatcherEvents(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	ch := make(chan profile.Event, 1)
	m, _ = update(t, m, ProfileWatchStartedMsg{Ch: ch})

	p := profile.CustomBase()
	p.ID = "file:night.json"
	p.Name = "Night"
	m, cmd := update(t, m, ProfileFileMsg{Event: profile.Event{Path: "night.json", Profile: p}})
	assert.NotNil(t, cmd)
	assert.Equal(t, "Night", f.svc.Profiles.Current().Name)

	p.Name = "Night v2"
	m, _ = update(t, m, ProfileFileMsg{Event: profile.Event{Path: "night.json", Profile: p}})
	assert.Len(t, f.svc.Profiles.Profiles(), 4, "rewrites replace the same profile")
	assert.Equal(t, "Night v2", f.svc.Profiles.Current().Name)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestOverlayBottomRight(t *testing.T) {
	base := "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"
	out := overlayBottomRight(base, "XX\nYY", 10)
	assert.Equal(t, "aaaaaaaaaa\nbbbbbbbXX\ncccccccYY", out)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/test")
	assert.Equal(t, "/home/test/p.json", expandHome("~/p.json"))
	assert.Equal(t, "/abs/p.json", expandHome("/abs/p.json"))
}

func TestCycleAndClamp(t *testing.T) {
	assert.Equal(t, 0, cycle(12, 1, 13))
	assert.Equal(t, 12, cycle(0, -1, 13))
	assert.Equal(t, 0, cycle(5, 1, 0))
	assert.Equal(t, 2, clampCursor(7, 3))
	assert.Equal(t, 0, clampCursor(-1, 3))
}

func writeFile(path, data string) error {
	return os.WriteFile(path, []byte(data), 0o600)
}
