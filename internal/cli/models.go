// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeranaias/termdeck/internal/assistant"
	"github.com/jeranaias/termdeck/internal/ollama"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the Ollama server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, cfgErr := loadConfig()
		if cfg == nil {
			return cfgErr
		}
		logger := newLogger(cmd.ErrOrStderr())
		if cfgErr != nil {
			logger.Printf("config: load failed, using defaults | error=%v", cfgErr)
		}

		client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.Ollama.URL})
		dir := assistant.NewDirectory(client, assistant.DirectoryOptions{
			Timeout:   cfg.Ollama.ListTimeout.Duration,
			Preferred: cfg.Ollama.DefaultModel,
			Logger:    logger,
		})
		return listModels(cmd.Context(), dir, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

// listModels refreshes dir and prints one row per model. The model the
// dashboard would start with is starred.
func listModels(ctx context.Context, dir *assistant.Directory, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := dir.Refresh(ctx); err != nil {
		return err
	}

	models := dir.Models()
	if len(models) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No models installed. Pull one with 'ollama pull <name>'."))
		return nil
	}

	selected := dir.Selected()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SeparatorStyle).
		Headers("", "NAME", "SIZE", "PARAMS", "QUANT", "MODIFIED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TitleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, m := range models {
		marker := ""
		if m.Name == selected {
			marker = "*"
		}
		modified := "-"
		if !m.ModifiedAt.IsZero() {
			modified = humanize.Time(m.ModifiedAt)
		}
		t.Row(marker, m.Name, m.FormatSize(), orDash(m.Details.ParameterSize), orDash(m.Details.QuantizationLevel), modified)
	}

	fmt.Fprintln(w, t.Render())
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
