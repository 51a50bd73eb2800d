// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with an
// Ollama-compatible inference server.
//
// Only the two request/response endpoints termdeck needs are covered:
//
//   - GET  /api/tags  lists the locally available models
//   - POST /api/chat  sends a full conversation with "stream": false
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.Ollama.URL})
//	models, err := client.ListModels(ctx)
//	resp, err := client.Chat(ctx, "llama2", []ollama.Message{ollama.NewUserMessage("hello")})
//	fmt.Println(resp.Message.Content)
//
// Failures are reported as *ClientError values; use IsNotRunning,
// IsTimeout and IsModelNotFound to classify them.
package ollama
