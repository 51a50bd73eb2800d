// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package theme holds the accent palette and the glow effect math.
package theme

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned for a color that is not #RRGGBB.
var ErrInvalidColor = errors.New("invalid color")

// Preset is a named accent color.
type Preset struct {
	Name  string
	Value string
}

// Presets are the accent colors offered by the color picker, in order.
var Presets = []Preset{
	{"Emerald", "#10B981"},
	{"Blue", "#3B82F6"},
	{"Indigo", "#6366F1"},
	{"Purple", "#8B5CF6"},
	{"Pink", "#EC4899"},
	{"Rose", "#F43F5E"},
	{"Orange", "#F97316"},
	{"Amber", "#F59E0B"},
	{"Yellow", "#EAB308"},
	{"Lime", "#84CC16"},
	{"Green", "#22C55E"},
	{"Teal", "#14B8A6"},
	{"Cyan", "#06B6D4"},
}

// DefaultAccent is the accent color at startup.
const DefaultAccent = "#10B981"

// Glow limits for the opacity slider.
const (
	MinGlowOpacity     = 0.0
	MaxGlowOpacity     = 0.3
	GlowOpacityStep    = 0.01
	DefaultGlowOpacity = 0.15
)

var hexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// partialHex accepts what a user may have typed so far.
var partialHex = regexp.MustCompile(`^#[0-9A-Fa-f]{0,6}$`)

// ValidHex reports whether s is a complete #RRGGBB color.
func ValidHex(s string) bool {
	return hexPattern.MatchString(s)
}

// ValidPartialHex reports whether s could still become a valid color.
func ValidPartialHex(s string) bool {
	return partialHex.MatchString(s)
}

// ParseHex validates s and returns it in canonical upper case.
func ParseHex(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !ValidHex(s) {
		return "", fmt.Errorf("%w: %q is not #RRGGBB", ErrInvalidColor, s)
	}
	return strings.ToUpper(s), nil
}

// PresetName returns the preset name for a color, or "Custom".
func PresetName(hex string) string {
	for _, p := range Presets {
		if strings.EqualFold(p.Value, hex) {
			return p.Name
		}
	}
	return "Custom"
}

// PresetIndex returns the preset position of a color, or -1.
func PresetIndex(hex string) int {
	for i, p := range Presets {
		if strings.EqualFold(p.Value, hex) {
			return i
		}
	}
	return -1
}

// HexToRGB converts #RRGGBB to "r, g, b".
func HexToRGB(hex string) (string, error) {
	if !ValidHex(hex) {
		return "", fmt.Errorf("%w: %q is not #RRGGBB", ErrInvalidColor, hex)
	}
	var rgb [3]uint64
	for i := range rgb {
		v, err := strconv.ParseUint(hex[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidColor, err)
		}
		rgb[i] = v
	}
	return fmt.Sprintf("%d, %d, %d", rgb[0], rgb[1], rgb[2]), nil
}

// =============================================================================
// GLOW
// =============================================================================

// ClampOpacity snaps v to the slider's range and step.
func ClampOpacity(v float64) float64 {
	v = math.Max(MinGlowOpacity, math.Min(MaxGlowOpacity, v))
	return math.Round(v/GlowOpacityStep) * GlowOpacityStep
}

// Glow is the tint around the terminal pane.
type Glow struct {
	Color   string
	Opacity float64
}

// Layers returns the border colors from the innermost ring outwards. The
// ring strengths follow a halving falloff scaled by the glow opacity.
// Colors that fail to parse fall back to the background.
func (g Glow) Layers(background string, rings int) []string {
	bg, err := colorful.Hex(background)
	if err != nil {
		bg = colorful.Color{}
	}
	fg, err := colorful.Hex(g.Color)
	if err != nil || g.Opacity <= 0 {
		out := make([]string, rings)
		for i := range out {
			out[i] = bg.Hex()
		}
		return out
	}

	out := make([]string, rings)
	// At full slider strength the inner ring is a clear tint.
	strength := math.Min(1, g.Opacity/MaxGlowOpacity)
	for i := range out {
		alpha := strength * math.Pow(0.5, float64(i))
		out[i] = bg.BlendRgb(fg, alpha).Clamped().Hex()
	}
	return out
}

// Border returns the single blended border color used when only one ring
// fits.
func (g Glow) Border(background string) string {
	return g.Layers(background, 1)[0]
}

// Mix blends over onto base by t in [0, 1]. Unparseable inputs return base
// unchanged.
func Mix(base, over string, t float64) string {
	b, err := colorful.Hex(base)
	if err != nil {
		return base
	}
	o, err := colorful.Hex(over)
	if err != nil {
		return base
	}
	t = math.Max(0, math.Min(1, t))
	return b.BlendRgb(o, t).Clamped().Hex()
}
