// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the termdeck TUI.
//
// Fixed surface colors live in colors.go as lipgloss.AdaptiveColor values.
// The user-controlled parts (accent, glow, terminal profile) are folded into
// a Theme, which the root model rebuilds whenever one of them changes:
//
//	th := styles.NewTheme(styles.Options{
//		Accent:  "#10B981",
//		Glow:    theme.Glow{Color: "#10B981", Opacity: 0.15},
//		Profile: lib.Current(),
//	})
//	pane := th.TerminalPane.Render(output)
//
// Spinner frames for the chat "thinking" indicator are in animations.go.
package styles
