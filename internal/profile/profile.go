// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrInvalidProfile is returned for input that cannot become a profile.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile describes how the faux terminal pane looks.
type Profile struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Shell           string  `json:"shell" yaml:"shell"`
	BackgroundColor string  `json:"backgroundColor" yaml:"backgroundColor"`
	ForegroundColor string  `json:"foregroundColor" yaml:"foregroundColor"`
	FontSize        float64 `json:"fontSize" yaml:"fontSize"`
	FontFamily      string  `json:"fontFamily" yaml:"fontFamily"`
	Opacity         float64 `json:"opacity" yaml:"opacity"`
}

// Defaults returns the built-in profiles. The first is the initial choice.
func Defaults() []Profile {
	return []Profile{
		{
			ID: "mate-terminal", Name: "MATE Terminal", Shell: "/bin/bash",
			BackgroundColor: "#0D0D0D", ForegroundColor: "#FFFFFF",
			FontSize: 14, FontFamily: "Ubuntu Mono", Opacity: 0.95,
		},
		{
			ID: "gnome-terminal", Name: "GNOME Terminal", Shell: "/bin/bash",
			BackgroundColor: "#2E3436", ForegroundColor: "#FFFFFF",
			FontSize: 14, FontFamily: "DejaVu Sans Mono", Opacity: 0.9,
		},
		{
			ID: "konsole", Name: "Konsole", Shell: "/bin/bash",
			BackgroundColor: "#232627", ForegroundColor: "#FCFCFC",
			FontSize: 14, FontFamily: "Hack", Opacity: 1,
		},
	}
}

// now is swapped in tests.
var now = time.Now

// CustomBase returns the profile every import starts from.
func CustomBase() Profile {
	return Profile{
		ID:              fmt.Sprintf("custom-%d", now().UnixMilli()),
		Name:            "Custom Profile",
		Shell:           "/bin/bash",
		BackgroundColor: "#0D0D0D",
		ForegroundColor: "#FFFFFF",
		FontSize:        14,
		FontFamily:      "monospace",
		Opacity:         1,
	}
}

// =============================================================================
// IMPORT
// =============================================================================

// Format is a profile file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath maps a file extension to a format. ".conf" files are JSON.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".conf":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", ErrInvalidProfile, filepath.Ext(path))
	}
}

// ImportFile reads and imports one profile file.
func ImportFile(path string) (Profile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Profile{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p, err := Import(data, format)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// Import decodes data as a single object and overlays its fields on
// CustomBase. Unknown keys are ignored.
func Import(data []byte, format Format) (Profile, error) {
	var fields map[string]any

	switch format {
	case FormatJSON:
		if !gjson.ValidBytes(data) {
			return Profile{}, fmt.Errorf("%w: malformed JSON", ErrInvalidProfile)
		}
		root := gjson.ParseBytes(data)
		if !root.IsObject() {
			return Profile{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidProfile)
		}
		m, ok := root.Value().(map[string]any)
		if !ok {
			return Profile{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidProfile)
		}
		fields = m
	case FormatYAML:
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return Profile{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
		if fields == nil {
			return Profile{}, fmt.Errorf("%w: expected a YAML mapping", ErrInvalidProfile)
		}
	default:
		return Profile{}, fmt.Errorf("%w: unknown format %q", ErrInvalidProfile, format)
	}

	p := CustomBase()
	if err := overlay(&p, fields); err != nil {
		return Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// overlay copies recognised keys from fields onto p.
func overlay(p *Profile, fields map[string]any) error {
	strs := map[string]*string{
		"id":              &p.ID,
		"name":            &p.Name,
		"shell":           &p.Shell,
		"backgroundColor": &p.BackgroundColor,
		"foregroundColor": &p.ForegroundColor,
		"fontFamily":      &p.FontFamily,
	}
	nums := map[string]*float64{
		"fontSize": &p.FontSize,
		"opacity":  &p.Opacity,
	}

	for key, val := range fields {
		if dst, ok := strs[key]; ok {
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", ErrInvalidProfile, key)
			}
			*dst = s
			continue
		}
		if dst, ok := nums[key]; ok {
			switch n := val.(type) {
			case float64:
				*dst = n
			case int:
				*dst = float64(n)
			default:
				return fmt.Errorf("%w: %s must be a number", ErrInvalidProfile, key)
			}
		}
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Validate checks that the profile can be rendered. Three-digit colors are
// expanded to six digits.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidProfile)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidProfile)
	}
	for _, c := range []*string{&p.BackgroundColor, &p.ForegroundColor} {
		if !hexColor.MatchString(*c) {
			return fmt.Errorf("%w: color %q is not #RGB or #RRGGBB", ErrInvalidProfile, *c)
		}
		if len(*c) == 4 {
			s := *c
			*c = "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3]})
		}
	}
	if p.FontSize <= 0 {
		return fmt.Errorf("%w: fontSize must be positive", ErrInvalidProfile)
	}
	if p.Opacity < 0 || p.Opacity > 1 {
		return fmt.Errorf("%w: opacity must be between 0 and 1", ErrInvalidProfile)
	}
	return nil
}

// =============================================================================
// LIBRARY
// =============================================================================

// Library is the ordered set of available profiles plus the current one.
// Not safe for concurrent use; the UI loop owns it.
type Library struct {
	profiles []Profile
	current  int
}

// NewLibrary creates a library with the defaults, selecting initialID when
// it names one of them and the first profile otherwise.
func NewLibrary(initialID string) *Library {
	l := &Library{profiles: Defaults()}
	_ = l.Select(initialID)
	return l
}

// Profiles returns a copy of all profiles in order.
func (l *Library) Profiles() []Profile {
	return append([]Profile(nil), l.profiles...)
}

// Current returns the selected profile.
func (l *Library) Current() Profile {
	return l.profiles[l.current]
}

// CurrentIndex returns the position of the selected profile.
func (l *Library) CurrentIndex() int {
	return l.current
}

// Select makes the profile with the given ID current.
func (l *Library) Select(id string) error {
	for i, p := range l.profiles {
		if p.ID == id {
			l.current = i
			return nil
		}
	}
	return fmt.Errorf("%w: no profile with id %q", ErrInvalidProfile, id)
}

// SelectIndex makes the i-th profile current, wrapping out-of-range values.
func (l *Library) SelectIndex(i int) {
	n := len(l.profiles)
	l.current = ((i % n) + n) % n
}

// Add appends an imported profile and selects it.
func (l *Library) Add(p Profile) {
	l.profiles = append(l.profiles, p)
	l.current = len(l.profiles) - 1
}

// Put replaces the profile with the same ID, or appends it, and selects it.
func (l *Library) Put(p Profile) {
	for i := range l.profiles {
		if l.profiles[i].ID == p.ID {
			l.profiles[i] = p
			l.current = i
			return
		}
	}
	l.Add(p)
}
