// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/termdeck/internal/assistant"
	"github.com/jeranaias/termdeck/internal/model"
	"github.com/jeranaias/termdeck/internal/profile"
	"github.com/jeranaias/termdeck/internal/voice"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ModelsMsg reports the end of a model directory refresh.
type ModelsMsg struct {
	Err error
}

// ChatReplyMsg reports the end of one chat exchange.
type ChatReplyMsg struct {
	Reply model.Message
	Err   error
}

// TranscriptStartedMsg carries the transcription channel once listening.
type TranscriptStartedMsg struct {
	Ch  <-chan string
	Err error
}

// TranscriptMsg is one pending-input update from the recognizer.
type TranscriptMsg struct {
	Text string
}

// transcriptClosedMsg means the recognizer session ended.
type transcriptClosedMsg struct{}

// RecordingMsg reports the result of a microphone toggle.
type RecordingMsg struct {
	On  bool
	Err error
}

// SpeechDoneMsg reports that an utterance ended.
type SpeechDoneMsg struct {
	MessageID string
}

// ProfileImportedMsg reports a profile read from the import modal.
type ProfileImportedMsg struct {
	Path    string
	Profile profile.Profile
	Err     error
}

// ProfileWatchStartedMsg carries the watcher channel.
type ProfileWatchStartedMsg struct {
	Ch  <-chan profile.Event
	Err error
}

// ProfileFileMsg is one event from the profile directory watcher.
type ProfileFileMsg struct {
	Event profile.Event
}

// profileWatchClosedMsg means the watcher stopped.
type profileWatchClosedMsg struct{}

// CopiedMsg reports a clipboard write.
type CopiedMsg struct {
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

// RefreshModelsCmd queries the model directory. The directory applies its own
// timeout.
func RefreshModelsCmd(dir *assistant.Directory) tea.Cmd {
	return func() tea.Msg {
		return ModelsMsg{Err: dir.Refresh(context.Background())}
	}
}

// CompleteChatCmd finishes a request accepted by Dispatcher.Begin.
func CompleteChatCmd(d *assistant.Dispatcher, req assistant.Request) tea.Cmd {
	return func() tea.Msg {
		reply, err := d.Complete(context.Background(), req)
		return ChatReplyMsg{Reply: reply, Err: err}
	}
}

// StartTranscriptionCmd opens the single transcription session.
func StartTranscriptionCmd(ctx context.Context, b *voice.InputBridge) tea.Cmd {
	return func() tea.Msg {
		ch, err := b.Listen(ctx)
		return TranscriptStartedMsg{Ch: ch, Err: err}
	}
}

// waitForTranscript blocks for the next transcript update.
func waitForTranscript(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		text, ok := <-ch
		if !ok {
			return transcriptClosedMsg{}
		}
		return TranscriptMsg{Text: text}
	}
}

// ToggleRecordingCmd starts or stops raw microphone capture.
func ToggleRecordingCmd(ctx context.Context, b *voice.InputBridge) tea.Cmd {
	return func() tea.Msg {
		on, err := b.ToggleRecording(ctx)
		return RecordingMsg{On: on, Err: err}
	}
}

// waitForSpeech blocks until an utterance ends.
func waitForSpeech(id string, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return SpeechDoneMsg{MessageID: id}
	}
}

// ImportProfileCmd reads and parses a profile file.
func ImportProfileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		p, err := profile.ImportFile(path)
		return ProfileImportedMsg{Path: path, Profile: p, Err: err}
	}
}

// StartProfileWatchCmd runs the profile directory watcher.
func StartProfileWatchCmd(ctx context.Context, w *profile.Watcher) tea.Cmd {
	return func() tea.Msg {
		ch, err := w.Run(ctx)
		return ProfileWatchStartedMsg{Ch: ch, Err: err}
	}
}

// waitForProfileEvent blocks for the next watcher event.
func waitForProfileEvent(ch <-chan profile.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return profileWatchClosedMsg{}
		}
		return ProfileFileMsg{Event: ev}
	}
}

// copyCmd writes text to the clipboard.
func copyCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Err: write(text)}
	}
}
