// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model for termdeck.
//
// The Model is the single owner of view state: accent and glow colors, the
// active terminal profile, editing mode, the active sidebar tab, fullscreen
// and which modal is open. Child renderers receive that state as arguments.
//
// Everything that blocks (model listing, chat requests, microphone start,
// speech, profile file reads) runs as a tea.Cmd and reports back with one of
// the messages in messages.go.
//
// Layout:
//
//	┌ header: name · model · profile · mic/speech state ───────────┐
//	│ sidebar        │ terminal pane (glow border) or chat panel   │
//	│ [Terminal|Chat]│                                             │
//	│ scripts...     │                                             │
//	└ footer: key help, toasts ────────────────────────────────────┘
package app
