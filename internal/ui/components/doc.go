// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable view pieces for the termdeck TUI.
//
// Components are pure render helpers plus small state holders. They take a
// *styles.Theme explicitly; none of them read global view state.
//
//   - ToastManager: non-blocking, auto-dismissing status and error toasts
//   - RenderTabs: a one-line tab strip
//   - RenderSlider: a horizontal value bar for the glow opacity
package components
