// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"errors"
	"log"
	"sync"
)

// OutputBridge speaks assistant text with at most one utterance at a time.
type OutputBridge struct {
	synth  Synthesizer
	logger *log.Logger

	mu       sync.Mutex
	speaking bool
	cancel   context.CancelFunc
	gen      uint64
}

// NewOutputBridge creates a bridge. A nil synthesizer becomes a no-op.
func NewOutputBridge(synth Synthesizer, logger *log.Logger) *OutputBridge {
	if synth == nil {
		synth = NopSynthesizer{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OutputBridge{synth: synth, logger: logger}
}

// CanSpeak reports whether a speech program was found.
func (b *OutputBridge) CanSpeak() bool { return b.synth.Available() }

// Speaking reports whether an utterance is in progress.
func (b *OutputBridge) Speaking() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speaking
}

// Speak toggles speech. While speaking it cancels the current utterance,
// clears the flag and returns (false, nil). Otherwise it starts text and
// returns (true, done); done receives once when that utterance ends, after
// the flag has been cleared.
func (b *OutputBridge) Speak(text string) (started bool, done <-chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.speaking {
		b.cancel()
		b.cancel = nil
		b.speaking = false
		b.gen++
		return false, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.gen++
	gen := b.gen
	b.cancel = cancel
	b.speaking = true

	ch := make(chan struct{})
	go func() {
		defer close(ch)
		err := b.synth.Say(ctx, text)
		cancel()

		b.mu.Lock()
		if b.gen == gen {
			b.speaking = false
			b.cancel = nil
		}
		b.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Printf("voice: speech failed | error=%v", err)
		}
	}()
	return true, ch
}

// Stop cancels any utterance in progress.
func (b *OutputBridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.speaking {
		b.cancel()
		b.cancel = nil
		b.speaking = false
		b.gen++
	}
}
