// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, AtomicWriteFile(path, []byte("accent = \"#10B981\""), 0o600, 0o700))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "accent = \"#10B981\"", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "config.toml")

	require.NoError(t, AtomicWriteFile(path, []byte("x"), 0o600, 0o700))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestAtomicWriteFile_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0o600, 0o700))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0o600, 0o700))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
	}
}

// =============================================================================
// TEXT TESTS
// =============================================================================

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "df -h", 10, "df -h"},
		{"exact", "neofetch", 8, "neofetch"},
		{"cut", "Update System", 8, "Update …"},
		{"zero", "anything", 0, ""},
		{"one", "anything", 1, "…"},
		{"wide runes", "日本語テキスト", 7, "日本語…"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Truncate(tc.in, tc.width)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, Width(got), tc.width)
		})
	}
}

func TestFillRight(t *testing.T) {
	assert.Equal(t, "ab   ", FillRight("ab", 5))
	assert.Equal(t, 5, Width(FillRight("a long name", 5)))
}

func TestWrap_KeepsLineBreaks(t *testing.T) {
	in := "Terminal ready...\n\n$ df -h\nExecuting: df -h...\n"
	assert.Equal(t, in, Wrap(in, 80))
}

func TestWrap_BreaksLongLines(t *testing.T) {
	got := Wrap("aaaa bbbb cccc", 9)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, Width(line), 9)
	}

	got = Wrap(strings.Repeat("x", 20), 8)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, Width(line), 8)
	}
}
