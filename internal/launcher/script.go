// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package launcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/jeranaias/termdeck/internal/config"
)

// ErrInvalidScript is returned when a shortcut is missing its name or command.
var ErrInvalidScript = errors.New("script needs both a name and a command")

// ErrUnknownScript is returned for an ID not on the shelf.
var ErrUnknownScript = errors.New("unknown script")

// Script is one sidebar shortcut.
type Script struct {
	ID      string
	Name    string
	Command string
}

// DefaultScripts are the shortcuts every shelf starts with.
var DefaultScripts = []config.ScriptConfig{
	{Name: "Update System", Command: "sudo apt update && sudo apt upgrade"},
	{Name: "Check Disk Space", Command: "df -h"},
	{Name: "System Info", Command: "neofetch"},
}

// Shelf is the ordered list of shortcuts. Not safe for concurrent use; the
// UI loop owns it.
type Shelf struct {
	scripts []Script
}

// NewShelf creates a shelf holding the defaults followed by extra, which
// usually comes from configuration. Invalid extras are skipped.
func NewShelf(extra []config.ScriptConfig) *Shelf {
	s := &Shelf{}
	for _, sc := range DefaultScripts {
		_, _ = s.Add(sc.Name, sc.Command)
	}
	for _, sc := range extra {
		_, _ = s.Add(sc.Name, sc.Command)
	}
	return s
}

// Add appends a shortcut. Both fields are required; they are stored as given.
func (s *Shelf) Add(name, command string) (Script, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(command) == "" {
		return Script{}, ErrInvalidScript
	}
	sc := Script{ID: uuid.NewString(), Name: name, Command: command}
	s.scripts = append(s.scripts, sc)
	return sc, nil
}

// Delete removes the shortcut with the given ID.
func (s *Shelf) Delete(id string) error {
	for i, sc := range s.scripts {
		if sc.ID == id {
			s.scripts = append(s.scripts[:i], s.scripts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownScript, id)
}

// Get returns the shortcut with the given ID.
func (s *Shelf) Get(id string) (Script, bool) {
	for _, sc := range s.scripts {
		if sc.ID == id {
			return sc, true
		}
	}
	return Script{}, false
}

// List returns a copy of all shortcuts in insertion order.
func (s *Shelf) List() []Script {
	return append([]Script(nil), s.scripts...)
}

// Len returns the number of shortcuts.
func (s *Shelf) Len() int {
	return len(s.scripts)
}

// scriptSource lets fuzzy search over script names.
type scriptSource []Script

func (c scriptSource) String(i int) string { return c[i].Name }
func (c scriptSource) Len() int            { return len(c) }

// Filter returns shortcuts whose names fuzzy-match query, best first.
// An empty query returns everything in insertion order.
func (s *Shelf) Filter(query string) []Script {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List()
	}
	matches := fuzzy.FindFrom(query, scriptSource(s.scripts))
	out := make([]Script, 0, len(matches))
	for _, m := range matches {
		out = append(out, s.scripts[m.Index])
	}
	return out
}
