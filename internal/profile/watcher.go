// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// FilePattern matches the files the watcher imports.
const FilePattern = "*.{json,conf,yaml,yml}"

// Event reports one imported (or rejected) profile file.
type Event struct {
	Path    string
	Profile Profile
	Err     error
}

// Watcher imports profile files found in a directory, first those already
// present and then any that are created or rewritten.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a watcher for dir. The directory is created if missing.
func NewWatcher(dir string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]time.Time),
	}, nil
}

// Matches reports whether path names a profile file.
func Matches(path string) bool {
	ok, err := doublestar.Match(FilePattern, filepath.Base(path))
	return err == nil && ok
}

// Scan imports every matching file currently in the directory, in name order.
func (w *Watcher) Scan() []Event {
	names, err := doublestar.Glob(os.DirFS(w.dir), FilePattern)
	if err != nil {
		w.logger.Printf("profile: scan failed | dir=%s error=%v", w.dir, err)
		return nil
	}
	sort.Strings(names)

	events := make([]Event, 0, len(names))
	for _, name := range names {
		events = append(events, w.load(filepath.Join(w.dir, name)))
	}
	return events
}

// Run scans the directory, then watches it until ctx is cancelled. Events
// are delivered on the returned channel, which closes when Run stops.
func (w *Watcher) Run(ctx context.Context) (<-chan Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer fsw.Close()

		send := func(ev Event) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for _, ev := range w.Scan() {
			if !send(ev) {
				return
			}
		}

		ticker := time.NewTicker(w.debounce / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && Matches(event.Name) {
					w.mu.Lock()
					w.pending[event.Name] = time.Now()
					w.mu.Unlock()
				}

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.logger.Printf("profile: watch error | error=%v", err)

			case <-ticker.C:
				for _, path := range w.due() {
					if !send(w.load(path)) {
						return
					}
				}
			}
		}
	}()
	return out, nil
}

// due pops the paths whose last change is older than the debounce window.
func (w *Watcher) due() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := time.Now().Add(-w.debounce)
	var ready []string
	for path, changed := range w.pending {
		if changed.Before(cutoff) {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

func (w *Watcher) load(path string) Event {
	p, err := ImportFile(path)
	if err != nil {
		w.logger.Printf("profile: import failed | path=%s error=%v", path, err)
		return Event{Path: path, Err: err}
	}
	// Files without an id keep one identity across rewrites.
	if strings.HasPrefix(p.ID, "custom-") {
		p.ID = "file:" + filepath.Base(path)
	}
	return Event{Path: path, Profile: p}
}
