// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"log"

	"github.com/atotto/clipboard"

	"github.com/jeranaias/termdeck/internal/assistant"
	"github.com/jeranaias/termdeck/internal/config"
	"github.com/jeranaias/termdeck/internal/launcher"
	"github.com/jeranaias/termdeck/internal/model"
	"github.com/jeranaias/termdeck/internal/ollama"
	"github.com/jeranaias/termdeck/internal/profile"
	"github.com/jeranaias/termdeck/internal/voice"
)

// Services are the long-lived collaborators behind the UI. The chat REPL
// builds the same set without a Model.
type Services struct {
	Config     *config.Config
	Client     *ollama.Client
	Directory  *assistant.Directory
	Dispatcher *assistant.Dispatcher
	Input      *voice.InputBridge
	Output     *voice.OutputBridge
	Shelf      *launcher.Shelf
	Terminal   *launcher.Terminal
	Profiles   *profile.Library
	// Watcher is nil unless profile watching is enabled.
	Watcher *profile.Watcher
	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error
	Logger    *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServices wires every collaborator from cfg. A nil logger uses the
// standard logger.
func NewServices(cfg *config.Config, logger *log.Logger) *Services {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.URL,
	})
	dir := assistant.NewDirectory(client, assistant.DirectoryOptions{
		Timeout:   cfg.Ollama.ListTimeout.Duration,
		Preferred: cfg.Ollama.DefaultModel,
		Logger:    logger,
	})
	disp := assistant.NewDispatcher(client, dir, model.NewConversation(), assistant.DispatcherOptions{
		Timeout:      cfg.Ollama.ChatTimeout.Duration,
		SingleFlight: cfg.Chat.SingleFlight,
		Logger:       logger,
	})

	caps := voice.Detect(cfg.Voice)

	svc := &Services{
		Config:     cfg,
		Client:     client,
		Directory:  dir,
		Dispatcher: disp,
		Input:      voice.NewInputBridge(caps.Recognizer, caps.Recorder, logger),
		Output:     voice.NewOutputBridge(caps.Synthesizer, logger),
		Shelf:      launcher.NewShelf(cfg.Scripts),
		Terminal:   launcher.NewTerminal(),
		Profiles:   profile.NewLibrary(cfg.UI.Profile),
		Clipboard:  clipboard.WriteAll,
		Logger:     logger,
	}

	if cfg.Profiles.Watch {
		dirPath := cfg.Profiles.WatchDir
		if dirPath == "" {
			if p, err := config.DefaultProfilesDir(); err == nil {
				dirPath = p
			}
		}
		if dirPath != "" {
			w, err := profile.NewWatcher(dirPath, 0, logger)
			if err != nil {
				logger.Printf("profile: watcher disabled | dir=%s error=%v", dirPath, err)
			} else {
				svc.Watcher = w
			}
		}
	}

	svc.ctx, svc.cancel = context.WithCancel(context.Background())
	return svc
}

// Context is cancelled by Close.
func (s *Services) Context() context.Context {
	if s.ctx == nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}
	return s.ctx
}

// Close stops transcription, recording, speech and the profile watcher.
func (s *Services) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.Input != nil {
		s.Input.Close()
	}
	if s.Output != nil {
		s.Output.Stop()
	}
}
