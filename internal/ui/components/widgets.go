// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/termdeck/internal/ui/styles"
)

// RenderTabs renders a tab strip with the active tab highlighted.
func RenderTabs(th *styles.Theme, labels []string, active int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		if i == active {
			parts[i] = th.TabActive.Render(l)
		} else {
			parts[i] = th.Tab.Render(l)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// RenderSlider renders value in [0, max] as a bar of width cells followed by
// the value as a percentage.
func RenderSlider(th *styles.Theme, value, max float64, width int) string {
	if width < 4 {
		width = 4
	}
	ratio := 0.0
	if max > 0 {
		ratio = math.Max(0, math.Min(1, value/max))
	}
	filled := int(math.Round(ratio * float64(width)))

	bar := th.SliderFill.Render(strings.Repeat("█", filled)) +
		th.Slider.Render(strings.Repeat("─", width-filled))
	return fmt.Sprintf("%s %3.0f%%", bar, value*100)
}
