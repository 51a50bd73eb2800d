// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant connects the chat panel to the local model server.
//
// Directory keeps the list of models reported by the server and the active
// selection. Dispatcher turns pending input into a user message, sends the
// whole history and appends the reply. Both log failures and hand the error
// back to the caller; neither retries nor rolls anything back.
package assistant
