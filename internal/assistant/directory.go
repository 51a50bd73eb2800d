// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/termdeck/internal/ollama"
)

// ErrUnknownModel is returned by Select for a name the server did not list.
var ErrUnknownModel = errors.New("unknown model")

// ModelLister is the part of the Ollama client the directory needs.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
}

// DirectoryOptions configures a Directory.
type DirectoryOptions struct {
	// Timeout bounds each Refresh; zero means only the caller's context applies.
	Timeout time.Duration
	// Preferred is selected after a refresh when the server lists it.
	Preferred string
	// Logger receives failure lines; nil uses the standard logger.
	Logger *log.Logger
}

// Directory holds the models known to the server and the active selection.
// Safe for concurrent use.
type Directory struct {
	lister ModelLister
	opts   DirectoryOptions
	logger *log.Logger

	mu       sync.RWMutex
	models   []ollama.ModelInfo
	selected string
}

// NewDirectory creates an empty directory. Call Refresh to populate it.
func NewDirectory(lister ModelLister, opts DirectoryOptions) *Directory {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Directory{lister: lister, opts: opts, logger: logger}
}

// Refresh queries the server once. On success the list is replaced and the
// selection moves to the preferred model if listed, else the first entry.
// On any failure the list is emptied, the selection unset and the error
// logged and returned.
func (d *Directory) Refresh(ctx context.Context) error {
	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	models, err := d.lister.ListModels(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.models = nil
		d.selected = ""
		d.logger.Printf("directory: refresh failed | error=%v", err)
		return fmt.Errorf("list models: %w", err)
	}

	d.models = models
	d.selected = ""
	for _, m := range models {
		if m.Name == d.opts.Preferred && m.Name != "" {
			d.selected = m.Name
			break
		}
	}
	if d.selected == "" && len(models) > 0 {
		d.selected = models[0].Name
	}
	return nil
}

// Models returns a copy of the listed models in server order.
func (d *Directory) Models() []ollama.ModelInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]ollama.ModelInfo, len(d.models))
	copy(out, d.models)
	return out
}

// Names returns the listed model names in server order.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, len(d.models))
	for i, m := range d.models {
		names[i] = m.Name
	}
	return names
}

// Selected returns the active model, or "" when none is set.
func (d *Directory) Selected() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selected
}

// Select makes name the active model. It must be one of the listed models.
func (d *Directory) Select(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.models {
		if m.Name == name {
			d.selected = name
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

// Cycle moves the selection delta positions through the list, wrapping
// at both ends, and returns the new selection.
func (d *Directory) Cycle(delta int) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.models)
	if n == 0 {
		return ""
	}
	idx := 0
	for i, m := range d.models {
		if m.Name == d.selected {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%n + n) % n
	d.selected = d.models[idx].Name
	return d.selected
}
