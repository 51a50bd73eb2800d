// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateHome points the home directory at a temp dir and clears overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"TERMDECK_OLLAMA_URL", "TERMDECK_MODEL", "TERMDECK_ACCENT",
		"TERMDECK_TTS", "TERMDECK_RECOGNIZER", "TERMDECK_NO_VOICE",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "http://localhost:11434", cfg.Ollama.URL)
	assert.Equal(t, 10*time.Second, cfg.Ollama.ListTimeout.Duration)
	assert.Zero(t, cfg.Ollama.ChatTimeout.Duration, "chat has no timeout by default")
	assert.False(t, cfg.Chat.SingleFlight)
	assert.Equal(t, "#10B981", cfg.UI.Accent)
	assert.Equal(t, "mate-terminal", cfg.UI.Profile)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.Ollama.URL = "localhost:11434" }, "ollama.url"},
		{"ftp url", func(c *Config) { c.Ollama.URL = "ftp://host" }, "ollama.url"},
		{"negative chat timeout", func(c *Config) { c.Ollama.ChatTimeout.Duration = -time.Second }, "ollama.chat_timeout"},
		{"short accent", func(c *Config) { c.UI.Accent = "#FFF" }, "ui.accent"},
		{"named glow", func(c *Config) { c.UI.GlowColor = "red" }, "ui.glow_color"},
		{"glow too strong", func(c *Config) { c.UI.GlowOpacity = 0.31 }, "ui.glow_opacity"},
		{"sidebar too narrow", func(c *Config) { c.UI.SidebarWidth = 5 }, "ui.sidebar_width"},
		{"unknown markdown style", func(c *Config) { c.UI.MarkdownStyle = "neon" }, "ui.markdown_style"},
		{"blank script", func(c *Config) { c.Scripts = []ScriptConfig{{Name: "x"}} }, "scripts[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestValidateErrors_Join(t *testing.T) {
	errs := ValidateErrors{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}
	assert.Equal(t, "a: bad; b: worse", errs.Error())
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	require.NoError(t, d.UnmarshalText([]byte("0")))
	assert.Zero(t, d.Duration)

	assert.Error(t, d.UnmarshalText([]byte("soon")))

	out, err := Duration{10 * time.Second}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "10s", string(out))
}

func TestLoadFromPath_TOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[ollama]
url = "http://10.0.0.5:11434"
default_model = "llama3"
chat_timeout = "2m"

[chat]
single_flight = true

[ui]
accent = "#3B82F6"

[[scripts]]
name = "Disk"
command = "df -h"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:11434", cfg.Ollama.URL)
	assert.Equal(t, "llama3", cfg.Ollama.DefaultModel)
	assert.Equal(t, 2*time.Minute, cfg.Ollama.ChatTimeout.Duration)
	assert.Equal(t, 10*time.Second, cfg.Ollama.ListTimeout.Duration, "missing values are filled from defaults")
	assert.True(t, cfg.Chat.SingleFlight)
	assert.Equal(t, "#3B82F6", cfg.UI.Accent)
	assert.Equal(t, "#3B82F6", cfg.UI.GlowColor, "glow follows accent when unset")
	require.Len(t, cfg.Scripts, 1)
	assert.Equal(t, ScriptConfig{Name: "Disk", Command: "df -h"}, cfg.Scripts[0])
}

func TestLoadFromPath_JSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"ollama":{"url":"http://127.0.0.1:9999","list_timeout":"3s"},"ui":{"glow_opacity":0.2}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Ollama.URL)
	assert.Equal(t, 3*time.Second, cfg.Ollama.ListTimeout.Duration)
	assert.InDelta(t, 0.2, cfg.UI.GlowOpacity, 1e-9)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\naccent = \"green\"\n"), 0o600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui.accent")
}

func TestLoad_PrefersTOMLOverJSON(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".termdeck")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ollama]\ndefault_model = \"from-toml\"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"ollama":{"default_model":"from-json"}}`), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-toml", cfg.Ollama.DefaultModel)
}

func TestLoad_BrokenFileFallsBackToDefaults(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".termdeck")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0o600))

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().Ollama.URL, cfg.Ollama.URL)
}

func TestLoad_NoFiles(t *testing.T) {
	isolateHome(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().UI, cfg.UI)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("TERMDECK_OLLAMA_URL", "http://gpu-box:11434")
	t.Setenv("TERMDECK_MODEL", "mistral")
	t.Setenv("TERMDECK_ACCENT", "#EF4444")
	t.Setenv("TERMDECK_TTS", "say")
	t.Setenv("TERMDECK_RECOGNIZER", "vosk-stream")
	t.Setenv("TERMDECK_NO_VOICE", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://gpu-box:11434", cfg.Ollama.URL)
	assert.Equal(t, "mistral", cfg.Ollama.DefaultModel)
	assert.Equal(t, "#EF4444", cfg.UI.Accent)
	assert.Equal(t, "say", cfg.Voice.TTSCommand)
	assert.Equal(t, "vosk-stream", cfg.Voice.RecognizerCommand)
	assert.True(t, cfg.Voice.Disabled)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Ollama.ChatTimeout = Duration{45 * time.Second}
	cfg.Scripts = []ScriptConfig{{Name: "Uptime", Command: "uptime"}}
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, loaded.Ollama.ChatTimeout.Duration)
	assert.Equal(t, cfg.Scripts, loaded.Scripts)
}

func TestSaveJSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveJSON(Default(), path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Ollama, loaded.Ollama)
}

func TestLoad_GlowFollowsAccent(t *testing.T) {
	isolateHome(t)
	t.Setenv("TERMDECK_ACCENT", "#F59E0B")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "#F59E0B", cfg.UI.Accent)
	assert.Equal(t, "#F59E0B", cfg.UI.GlowColor)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\naccent = \"#3B82F6\"\nglow_color = \"#EF4444\"\n"), 0o600))
	cfg, err = LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "#EF4444", cfg.UI.GlowColor, "an explicit glow is kept")
}
