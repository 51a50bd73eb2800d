// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package launcher

import (
	"errors"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// ErrEditing is returned when a shortcut is run while the shelf is in
// editing mode.
var ErrEditing = errors.New("scripts cannot run while editing")

// InitialOutput is the content of a fresh terminal.
const InitialOutput = "Terminal ready...\n"

const promptPrefix = "$ "

// Terminal is the faux terminal output buffer.
type Terminal struct {
	buf strings.Builder
}

// NewTerminal creates a terminal showing InitialOutput.
func NewTerminal() *Terminal {
	t := &Terminal{}
	t.buf.WriteString(InitialOutput)
	return t
}

// Execute echoes command as if it ran. Nothing is executed.
func (t *Terminal) Execute(command string) {
	t.buf.WriteString("\n" + promptPrefix + command + "\nExecuting: " + command + "...\n")
}

// Run echoes script unless editing mode is on.
func (t *Terminal) Run(script Script, editing bool) error {
	if editing {
		return ErrEditing
	}
	t.Execute(script.Command)
	return nil
}

// Output returns the raw buffer.
func (t *Terminal) Output() string {
	return t.buf.String()
}

// Render returns the buffer with every prompt line's command passed
// through the shell highlighter.
func (t *Terminal) Render(style string) string {
	lines := strings.Split(t.buf.String(), "\n")
	for i, line := range lines {
		if cmd, ok := strings.CutPrefix(line, promptPrefix); ok {
			lines[i] = promptPrefix + HighlightShell(cmd, style)
		}
	}
	return strings.Join(lines, "\n")
}

// HighlightShell colors a shell command for a 256-color terminal. It falls
// back to the plain command when highlighting fails.
func HighlightShell(command, style string) string {
	lexer := lexers.Get("bash")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	st := chromaStyles.Get(style)
	if st == nil {
		st = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, command)
	if err != nil {
		return command
	}

	var out strings.Builder
	if err := formatter.Format(&out, st, iterator); err != nil {
		return command
	}
	// Commands are single-line; drop the newline the lexer ensures.
	return strings.ReplaceAll(out.String(), "\n", "")
}
