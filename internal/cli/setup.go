// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - First-run wizard that writes ~/.termdeck/config.toml.

package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jeranaias/termdeck/internal/assistant"
	"github.com/jeranaias/termdeck/internal/config"
	"github.com/jeranaias/termdeck/internal/ollama"
	"github.com/jeranaias/termdeck/internal/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively write the configuration file",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupAnswers holds the wizard's form values.
type setupAnswers struct {
	URL          string
	Model        string
	Accent       string
	Opacity      string
	SingleFlight bool
	VoiceOff     bool
}

func answersFrom(cfg *config.Config) setupAnswers {
	return setupAnswers{
		URL:          cfg.Ollama.URL,
		Model:        cfg.Ollama.DefaultModel,
		Accent:       strings.ToUpper(cfg.UI.Accent),
		Opacity:      strconv.FormatFloat(cfg.UI.GlowOpacity, 'f', 2, 64),
		SingleFlight: cfg.Chat.SingleFlight,
		VoiceOff:     cfg.Voice.Disabled,
	}
}

// apply copies the answers into cfg. The glow follows the accent.
func (a setupAnswers) apply(cfg *config.Config) error {
	cfg.Ollama.URL = strings.TrimRight(strings.TrimSpace(a.URL), "/")
	cfg.Ollama.DefaultModel = strings.TrimSpace(a.Model)

	accent, err := theme.ParseHex(a.Accent)
	if err != nil {
		return err
	}
	cfg.UI.Accent = accent
	cfg.UI.GlowColor = accent

	opacity, err := strconv.ParseFloat(strings.TrimSpace(a.Opacity), 64)
	if err != nil {
		return fmt.Errorf("glow opacity: %w", err)
	}
	cfg.UI.GlowOpacity = theme.ClampOpacity(opacity)

	cfg.Chat.SingleFlight = a.SingleFlight
	cfg.Voice.Disabled = a.VoiceOff
	return cfg.Validate()
}

func validateServerURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http(s) URL such as %s", ollama.DefaultBaseURL)
	}
	return nil
}

func validateOpacity(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < theme.MinGlowOpacity || v > theme.MaxGlowOpacity {
		return fmt.Errorf("enter a number between %.2f and %.2f", theme.MinGlowOpacity, theme.MaxGlowOpacity)
	}
	return nil
}

func accentOptions(current string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(theme.Presets)+1)
	if theme.PresetIndex(current) < 0 && theme.ValidHex(current) {
		opts = append(opts, huh.NewOption("Custom ("+current+")", current))
	}
	for _, p := range theme.Presets {
		opts = append(opts, huh.NewOption(p.Name+" "+p.Value, p.Value))
	}
	return opts
}

// modelOptions lists the server's models, or nil when it cannot be reached.
func modelOptions(ctx context.Context, cfg *config.Config, logw io.Writer) []huh.Option[string] {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.Ollama.URL})
	dir := assistant.NewDirectory(client, assistant.DirectoryOptions{
		Timeout: cfg.Ollama.ListTimeout.Duration,
		Logger:  newLogger(logw),
	})
	if err := dir.Refresh(ctx); err != nil {
		return nil
	}
	names := dir.Names()
	if len(names) == 0 {
		return nil
	}
	opts := []huh.Option[string]{huh.NewOption("First listed model", "")}
	for _, n := range names {
		opts = append(opts, huh.NewOption(n, n))
	}
	return opts
}

func runSetup(cmd *cobra.Command, _ []string) error {
	if err := RequiresTTY("run setup"); err != nil {
		return err
	}

	cfg, cfgErr := loadConfig()
	if cfg == nil {
		return cfgErr
	}
	if cfgErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v (starting from defaults)\n", WarningStyle.Render("[Warning]"), cfgErr)
	}
	a := answersFrom(cfg)

	serverForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ollama server URL").
				Value(&a.URL).
				Validate(validateServerURL),
		),
	)
	if err := serverForm.Run(); err != nil {
		return err
	}
	cfg.Ollama.URL = strings.TrimRight(strings.TrimSpace(a.URL), "/")

	var modelField huh.Field
	if opts := modelOptions(cmd.Context(), cfg, cmd.ErrOrStderr()); opts != nil {
		modelField = huh.NewSelect[string]().
			Title("Default model").
			Options(opts...).
			Value(&a.Model)
	} else {
		modelField = huh.NewInput().
			Title("Default model").
			Description("Server unreachable; leave empty to use the first listed model").
			Value(&a.Model)
	}

	form := huh.NewForm(
		huh.NewGroup(modelField),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Accent color").
				Options(accentOptions(a.Accent)...).
				Value(&a.Accent),
			huh.NewInput().
				Title("Terminal glow strength").
				Description(fmt.Sprintf("%.2f to %.2f", theme.MinGlowOpacity, theme.MaxGlowOpacity)).
				Value(&a.Opacity).
				Validate(validateOpacity),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Wait for each reply before sending the next message?").
				Value(&a.SingleFlight),
			huh.NewConfirm().
				Title("Disable voice input and spoken replies?").
				Value(&a.VoiceOff),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if err := a.apply(cfg); err != nil {
		return err
	}
	path, err := saveConfig(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Saved %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

// saveConfig writes to --config when given, else the default TOML path.
func saveConfig(cfg *config.Config) (string, error) {
	switch {
	case configPath == "":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return "", err
		}
		return path, config.Save(cfg)
	case strings.HasSuffix(strings.ToLower(configPath), ".json"):
		return configPath, config.SaveJSON(cfg, configPath)
	default:
		return configPath, config.SaveTOML(cfg, configPath)
	}
}
