// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the termdeck packages.
//
// # Key Functions
//
// Text:
//   - Truncate: display-width aware truncation with an ellipsis
//   - FillRight: pad a string to a display width
//   - Wrap: word wrap that keeps existing line breaks (terminal pane)
//
// Files:
//   - AtomicWriteFile: crash-safe write used when saving configuration
package util
