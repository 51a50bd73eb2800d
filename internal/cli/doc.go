// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the termdeck command tree.
//
// # Commands
//
//   - termdeck: the dashboard (launcher tab and chat tab)
//   - termdeck chat: line-mode chat using the same model directory and dispatcher
//   - termdeck models: table of models on the Ollama server
//   - termdeck setup: form that writes ~/.termdeck/config.toml
//   - termdeck version: build information, optionally as JSON
//
// Global flags are --config to read a specific file and --verbose to log
// diagnostics to stderr. The dashboard always logs to ~/.termdeck/termdeck.log.
package cli
