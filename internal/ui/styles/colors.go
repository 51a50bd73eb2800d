// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Background - App background
var Background = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#0D0D0D"}

// Sidebar - Sidebar and header background
var Sidebar = lipgloss.AdaptiveColor{Light: "#F0F0F0", Dark: "#151515"}

// Panel - Modal and settings panel background
var Panel = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1A1A1A"}

// Border - Separators and idle borders
var Border = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#1F1F1F"}

// Hover - Cursor row highlight
var Hover = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#2A2A2A"}

// HoverStrong - Pressed / selected-and-hovered rows
var HoverStrong = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#333333"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F3F4F6"}

// TextSecondary - Labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}

// TextMuted - Hints and placeholders
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}

// TextInverse - Text on accent backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0D0D0D"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Danger - Errors, delete actions
var Danger = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// Warning - Recoverable problems
var Warning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Success - Confirmations
var Success = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Info - Status toasts
var Info = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Recording - Active microphone indicator
var Recording = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
