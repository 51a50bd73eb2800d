// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const ellipsis = "…"

// Truncate shortens s to at most width terminal columns, ending in an
// ellipsis when anything was cut. Wide (CJK) runes count as two columns.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return ellipsis
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// FillRight pads s with spaces up to width columns. Strings that are already
// wider are truncated first.
func FillRight(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// Width returns the display width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Wrap word-wraps s at width columns while keeping its own line breaks, the
// way a pre-wrap text block behaves. Words longer than a line are hard-broken.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	soft := wordwrap.String(s, width)
	lines := strings.Split(soft, "\n")
	for i, line := range lines {
		if runewidth.StringWidth(line) > width {
			lines[i] = wrap.String(line, width)
		}
	}
	return strings.Join(lines, "\n")
}
