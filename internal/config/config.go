// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/termdeck/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete termdeck configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Local inference server
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Chat panel behaviour
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Look and feel
	UI UIConfig `toml:"ui" json:"ui"`

	// Speech helpers
	Voice VoiceConfig `toml:"voice" json:"voice"`

	// Profile import
	Profiles ProfilesConfig `toml:"profiles" json:"profiles"`

	// Extra launcher shortcuts, appended after the built-in ones
	Scripts []ScriptConfig `toml:"scripts" json:"scripts"`
}

// OllamaConfig contains the local inference server configuration.
type OllamaConfig struct {
	// URL is the base URL of the server
	URL string `toml:"url" json:"url"`
	// DefaultModel is preferred over the first listed model when it is present
	DefaultModel string `toml:"default_model" json:"default_model"`
	// ListTimeout bounds the model directory query
	ListTimeout Duration `toml:"list_timeout" json:"list_timeout"`
	// ChatTimeout bounds one chat exchange; zero means no timeout
	ChatTimeout Duration `toml:"chat_timeout" json:"chat_timeout"`
}

// ChatConfig contains chat dispatch settings.
type ChatConfig struct {
	// SingleFlight drops new sends while a request is outstanding
	SingleFlight bool `toml:"single_flight" json:"single_flight"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Accent is the accent color as #RRGGBB
	Accent string `toml:"accent" json:"accent"`
	// GlowColor tints the terminal pane border
	GlowColor string `toml:"glow_color" json:"glow_color"`
	// GlowOpacity is the glow strength, 0.0-0.3
	GlowOpacity float64 `toml:"glow_opacity" json:"glow_opacity"`
	// Profile is the ID of the terminal profile selected at startup
	Profile string `toml:"profile" json:"profile"`
	// SidebarWidth is the sidebar width in columns
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
	// MarkdownStyle is the glamour style for assistant replies: "dark", "light", "auto"
	MarkdownStyle string `toml:"markdown_style" json:"markdown_style"`
}

// VoiceConfig names the helper programs behind the voice bridges.
// Empty values fall back to auto-detection.
type VoiceConfig struct {
	// TTSCommand speaks its final argument, e.g. "espeak-ng"
	TTSCommand string `toml:"tts_command" json:"tts_command"`
	// RecordCommand captures microphone audio to stdout, e.g. "arecord -q -f cd -t raw"
	RecordCommand string `toml:"record_command" json:"record_command"`
	// RecognizerCommand prints one recognized segment per line
	RecognizerCommand string `toml:"recognizer_command" json:"recognizer_command"`
	// Disabled turns every voice capability into its no-op fallback
	Disabled bool `toml:"disabled" json:"disabled"`
}

// ProfilesConfig contains terminal profile import settings.
type ProfilesConfig struct {
	// WatchDir is scanned and watched for profile files; empty disables it
	WatchDir string `toml:"watch_dir" json:"watch_dir"`
	// Watch enables live import of files dropped into WatchDir
	Watch bool `toml:"watch" json:"watch"`
}

// ScriptConfig is one launcher shortcut.
type ScriptConfig struct {
	Name    string `toml:"name" json:"name"`
	Command string `toml:"command" json:"command"`
}

// Duration is a time.Duration that reads and writes as "10s" in both TOML and JSON.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" || s == "0" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Version: "1",

		Ollama: OllamaConfig{
			URL:         "http://localhost:11434",
			ListTimeout: Duration{10 * time.Second},
		},

		UI: UIConfig{
			Accent:        "#10B981",
			GlowColor:     "#10B981",
			GlowOpacity:   0.15,
			Profile:       "mate-terminal",
			SidebarWidth:  40,
			MarkdownStyle: "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the termdeck configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".termdeck"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogPath returns the path of the TUI diagnostic log.
func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "termdeck.log"), nil
}

// DefaultProfilesDir returns ~/.termdeck/profiles.
func DefaultProfilesDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the configuration from ~/.termdeck. TOML wins over JSON.
// A broken file does not stop startup: defaults are returned together with
// the load error so the caller can log it.
func Load() (*Config, error) {
	var loadErr error

	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			cfg, err := LoadFromPath(path)
			if err == nil {
				return cfg, nil
			}
			loadErr = err
		}
	}

	if loadErr == nil {
		if path, err := ConfigPathJSON(); err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				cfg, err := LoadFromPath(path)
				if err == nil {
					return cfg, nil
				}
				loadErr = err
			}
		}
	}

	cfg := decodeBase()
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		// Env overrides are the only way defaults can become invalid.
		return Default(), fmt.Errorf("invalid environment override: %w", err)
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file. Files ending in
// .json are decoded as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := decodeBase()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON config %s: %w", path, err)
		}
	} else {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// decodeBase is Default without a glow color, so an unset glow can follow
// whatever accent the file or environment picks.
func decodeBase() *Config {
	cfg := Default()
	cfg.UI.GlowColor = ""
	return cfg
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = defaults.Ollama.URL
	}
	if cfg.Ollama.ListTimeout.Duration == 0 {
		cfg.Ollama.ListTimeout = defaults.Ollama.ListTimeout
	}
	if cfg.UI.Accent == "" {
		cfg.UI.Accent = defaults.UI.Accent
	}
	if cfg.UI.GlowColor == "" {
		cfg.UI.GlowColor = cfg.UI.Accent
	}
	if cfg.UI.Profile == "" {
		cfg.UI.Profile = defaults.UI.Profile
	}
	if cfg.UI.SidebarWidth == 0 {
		cfg.UI.SidebarWidth = defaults.UI.SidebarWidth
	}
	if cfg.UI.MarkdownStyle == "" {
		cfg.UI.MarkdownStyle = defaults.UI.MarkdownStyle
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to ~/.termdeck/config.toml.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# termdeck configuration file\n")
	buf.WriteString("# Generated by 'termdeck setup' - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600, 0o700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0o600, 0o700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// MaxGlowOpacity is the strongest glow the settings slider allows.
const MaxGlowOpacity = 0.3

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Ollama.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "ollama.url",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", c.Ollama.URL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "ollama.url",
			Message: fmt.Sprintf("unsupported scheme %q", u.Scheme),
		})
	}

	if c.Ollama.ListTimeout.Duration < 0 {
		errs = append(errs, ValidationError{Field: "ollama.list_timeout", Message: "must be non-negative"})
	}
	if c.Ollama.ChatTimeout.Duration < 0 {
		errs = append(errs, ValidationError{Field: "ollama.chat_timeout", Message: "must be non-negative"})
	}

	if !hexColorPattern.MatchString(c.UI.Accent) {
		errs = append(errs, ValidationError{
			Field:   "ui.accent",
			Message: fmt.Sprintf("must be #RRGGBB, got %q", c.UI.Accent),
		})
	}
	if !hexColorPattern.MatchString(c.UI.GlowColor) {
		errs = append(errs, ValidationError{
			Field:   "ui.glow_color",
			Message: fmt.Sprintf("must be #RRGGBB, got %q", c.UI.GlowColor),
		})
	}
	if c.UI.GlowOpacity < 0 || c.UI.GlowOpacity > MaxGlowOpacity {
		errs = append(errs, ValidationError{
			Field:   "ui.glow_opacity",
			Message: fmt.Sprintf("must be between 0 and %.1f, got %.2f", MaxGlowOpacity, c.UI.GlowOpacity),
		})
	}
	if c.UI.SidebarWidth < 24 || c.UI.SidebarWidth > 120 {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: fmt.Sprintf("must be 24-120, got %d", c.UI.SidebarWidth),
		})
	}
	validStyles := map[string]bool{"dark": true, "light": true, "auto": true, "notty": true}
	if !validStyles[strings.ToLower(c.UI.MarkdownStyle)] {
		errs = append(errs, ValidationError{
			Field:   "ui.markdown_style",
			Message: fmt.Sprintf("invalid style %q, must be one of: dark, light, auto, notty", c.UI.MarkdownStyle),
		})
	}

	for i, s := range c.Scripts {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Command) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("scripts[%d]", i),
				Message: "name and command are both required",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TERMDECK_OLLAMA_URL: overrides ollama.url
//   - TERMDECK_MODEL: overrides ollama.default_model
//   - TERMDECK_ACCENT: overrides ui.accent
//   - TERMDECK_TTS: overrides voice.tts_command
//   - TERMDECK_RECOGNIZER: overrides voice.recognizer_command
//   - TERMDECK_NO_VOICE: "1" or "true" disables every voice capability
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TERMDECK_OLLAMA_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("TERMDECK_MODEL"); v != "" {
		c.Ollama.DefaultModel = v
	}
	if v := os.Getenv("TERMDECK_ACCENT"); v != "" {
		c.UI.Accent = v
	}
	if v := os.Getenv("TERMDECK_TTS"); v != "" {
		c.Voice.TTSCommand = v
	}
	if v := os.Getenv("TERMDECK_RECOGNIZER"); v != "" {
		c.Voice.RecognizerCommand = v
	}
	if v := os.Getenv("TERMDECK_NO_VOICE"); v != "" {
		c.Voice.Disabled = v == "1" || strings.EqualFold(v, "true")
	}
}
