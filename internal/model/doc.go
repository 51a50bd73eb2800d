// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat panel's
// conversation.
//
// # Key Types
//
//   - Role: message sender (user or assistant)
//   - Message: immutable value with role, content, ID and timestamp
//   - Conversation: ordered, append-only message store safe for concurrent use
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewMessage(model.RoleUser, "hello"))
//	for _, m := range conv.Messages() {
//	    fmt.Println(m.Role.DisplayName(), m.Content)
//	}
//
// There is no way to edit, remove or clear messages. A Conversation lives
// only as long as the process.
package model
