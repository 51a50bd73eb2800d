// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile provides terminal look profiles, importing them from
// JSON or YAML, and an optional directory watcher that imports new files.
//
// An imported profile starts from a custom base (generated ID, "Custom
// Profile", /bin/bash, #0D0D0D on #FFFFFF, size 14, monospace, opacity 1)
// and any field present in the file replaces the base value.
package profile
