// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a capability has no backing program.
var ErrUnavailable = errors.New("voice capability unavailable")

// Event is one recognition result.
type Event struct {
	Text    string
	Interim bool
	Err     error
}

// Recognizer produces a continuous stream of recognition results.
// The channel is closed when the session ends or ctx is cancelled.
type Recognizer interface {
	Available() bool
	Listen(ctx context.Context) (<-chan Event, error)
}

// Capture is a running microphone capture.
type Capture interface {
	// Stop halts the capture and releases the device.
	Stop() error
	// Done is closed when the capture ends for any reason.
	Done() <-chan struct{}
}

// Recorder acquires the microphone.
type Recorder interface {
	Available() bool
	Start(ctx context.Context) (Capture, error)
}

// Synthesizer speaks text. Say blocks until the utterance ends or ctx is
// cancelled.
type Synthesizer interface {
	Available() bool
	Say(ctx context.Context, text string) error
}

// =============================================================================
// NO-OP FALLBACKS
// =============================================================================

// NopRecognizer never produces results.
type NopRecognizer struct{}

func (NopRecognizer) Available() bool { return false }

func (NopRecognizer) Listen(context.Context) (<-chan Event, error) {
	return nil, ErrUnavailable
}

// NopRecorder cannot acquire a microphone.
type NopRecorder struct{}

func (NopRecorder) Available() bool { return false }

func (NopRecorder) Start(context.Context) (Capture, error) {
	return nil, ErrUnavailable
}

// NopSynthesizer finishes every utterance immediately.
type NopSynthesizer struct{}

func (NopSynthesizer) Available() bool { return false }

func (NopSynthesizer) Say(context.Context, string) error { return nil }
