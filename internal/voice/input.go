// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Segment is one piece of the running transcript.
type Segment struct {
	Text    string
	Interim bool
}

// InputBridge feeds speech into the pending-input field and owns the
// raw microphone capture toggle. The two are independent: transcription
// does not need recording to be on, and captured audio is never read.
type InputBridge struct {
	recognizer Recognizer
	recorder   Recorder
	logger     *log.Logger

	mu        sync.Mutex
	segments  []Segment
	listening bool
	recording bool
	capture   Capture

	// starting is set while recorder.Start runs; abandon asks that start
	// to stop its capture as soon as it returns.
	starting bool
	abandon  bool
}

// NewInputBridge creates a bridge. Nil capabilities become no-ops and a nil
// logger uses the standard one.
func NewInputBridge(recognizer Recognizer, recorder Recorder, logger *log.Logger) *InputBridge {
	if recognizer == nil {
		recognizer = NopRecognizer{}
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &InputBridge{recognizer: recognizer, recorder: recorder, logger: logger}
}

// CanTranscribe reports whether live transcription is possible.
func (b *InputBridge) CanTranscribe() bool { return b.recognizer.Available() }

// CanRecord reports whether a microphone program was found.
func (b *InputBridge) CanRecord() bool { return b.recorder.Available() }

// =============================================================================
// TRANSCRIPTION
// =============================================================================

// Listen starts the single continuous transcription session. Every result
// yields the full pending-input text on the returned channel: all segments
// heard so far, joined and NFC-normalized. The channel closes when the
// session ends. Calling Listen a second time is an error.
func (b *InputBridge) Listen(ctx context.Context) (<-chan string, error) {
	b.mu.Lock()
	if b.listening {
		b.mu.Unlock()
		return nil, errors.New("transcription already started")
	}
	b.listening = true
	b.mu.Unlock()

	events, err := b.recognizer.Listen(ctx)
	if err != nil {
		b.mu.Lock()
		b.listening = false
		b.mu.Unlock()
		if !errors.Is(err, ErrUnavailable) {
			b.logger.Printf("voice: recognizer failed to start | error=%v", err)
		}
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer func() {
			b.mu.Lock()
			b.listening = false
			b.mu.Unlock()
		}()

		for ev := range events {
			if ev.Err != nil {
				b.logger.Printf("voice: recognition error | error=%v", ev.Err)
				continue
			}
			text := b.Apply(ev)
			select {
			case out <- text:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Apply folds one result into the segment list and returns the new pending
// input. An interim result replaces a trailing interim segment; a final
// result also replaces it, then stays.
func (b *InputBridge) Apply(ev Event) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.segments); n > 0 && b.segments[n-1].Interim {
		b.segments = b.segments[:n-1]
	}
	if ev.Text != "" {
		b.segments = append(b.segments, Segment{Text: ev.Text, Interim: ev.Interim})
	}
	return b.pendingLocked()
}

// Pending returns the current transcript text.
func (b *InputBridge) Pending() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingLocked()
}

// Segments returns a copy of the current segments.
func (b *InputBridge) Segments() []Segment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Segment(nil), b.segments...)
}

func (b *InputBridge) pendingLocked() string {
	parts := make([]string, 0, len(b.segments))
	for _, s := range b.segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return norm.NFC.String(strings.Join(parts, " "))
}

// =============================================================================
// RAW CAPTURE
// =============================================================================

// Recording reports whether the microphone is held.
func (b *InputBridge) Recording() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording
}

// ToggleRecording stops an active capture or starts a new one, returning
// the resulting state. A failed start is logged and leaves recording off.
// A toggle made while a start is in progress does nothing.
func (b *InputBridge) ToggleRecording(ctx context.Context) (bool, error) {
	b.mu.Lock()
	if b.starting {
		b.mu.Unlock()
		return false, nil
	}
	if b.recording {
		c := b.capture
		b.recording = false
		b.capture = nil
		b.mu.Unlock()

		if err := c.Stop(); err != nil {
			b.logger.Printf("voice: stopping capture failed | error=%v", err)
		}
		return false, nil
	}
	b.starting = true
	b.mu.Unlock()

	c, err := b.recorder.Start(ctx)

	b.mu.Lock()
	b.starting = false
	abandon := b.abandon
	b.abandon = false
	if err != nil {
		b.mu.Unlock()
		b.logger.Printf("voice: microphone unavailable | error=%v", err)
		return false, err
	}
	if abandon {
		b.mu.Unlock()
		_ = c.Stop()
		return false, nil
	}
	b.recording = true
	b.capture = c
	b.mu.Unlock()

	go b.watch(c)
	return true, nil
}

// watch turns recording off if the capture program dies on its own.
func (b *InputBridge) watch(c Capture) {
	<-c.Done()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.capture == c {
		b.recording = false
		b.capture = nil
		b.logger.Printf("voice: capture ended unexpectedly")
	}
}

// Close stops any active capture.
func (b *InputBridge) Close() {
	b.mu.Lock()
	c := b.capture
	b.recording = false
	b.capture = nil
	if b.starting {
		b.abandon = true
	}
	b.mu.Unlock()
	if c != nil {
		_ = c.Stop()
	}
}
