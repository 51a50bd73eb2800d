// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package launcher holds the sidebar's command shortcuts and the faux
// terminal they echo into.
//
// Nothing is ever executed. Executing a shortcut appends a prompt line and an
// "Executing:" line to the Terminal buffer, which lives in memory only.
package launcher
