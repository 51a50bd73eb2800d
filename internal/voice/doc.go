// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice bridges the chat panel to speech helpers on the host.
//
// Three capabilities sit behind small interfaces, each with an external
// program implementation and a no-op fallback:
//
//   - Recognizer: a program that prints one recognized segment per line;
//     lines starting with "~" are interim and replace the previous interim
//   - Recorder: a program that captures microphone audio to stdout
//   - Synthesizer: a program that speaks its final argument and exits
//
// Detect picks implementations from configuration or by probing PATH.
// InputBridge owns the transcript segments and the recording flag;
// OutputBridge owns the speaking flag and allows at most one utterance.
package voice
