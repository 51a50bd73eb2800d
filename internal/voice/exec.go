// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"

	"github.com/jeranaias/termdeck/internal/config"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Capabilities is the detected set of voice helpers.
type Capabilities struct {
	Recognizer  Recognizer
	Recorder    Recorder
	Synthesizer Synthesizer
}

// Detect resolves each capability from configuration, falling back to
// well-known programs on PATH and finally to the no-op implementations.
func Detect(cfg config.VoiceConfig) Capabilities {
	caps := Capabilities{
		Recognizer:  NopRecognizer{},
		Recorder:    NopRecorder{},
		Synthesizer: NopSynthesizer{},
	}
	if cfg.Disabled {
		return caps
	}

	if argv := resolve(cfg.RecognizerCommand, nil); argv != nil {
		caps.Recognizer = &ExecRecognizer{Argv: argv}
	}
	if argv := resolve(cfg.RecordCommand, recorderCandidates()); argv != nil {
		caps.Recorder = &ExecRecorder{Argv: argv}
	}
	if argv := resolve(cfg.TTSCommand, ttsCandidates()); argv != nil {
		caps.Synthesizer = &ExecSynthesizer{Argv: argv}
	}
	return caps
}

// resolve splits a configured command line, or probes candidates in order.
// It returns nil when nothing usable is found.
func resolve(configured string, candidates [][]string) []string {
	if configured = strings.TrimSpace(configured); configured != "" {
		argv, err := shlex.Split(configured)
		if err != nil || len(argv) == 0 {
			return nil
		}
		if _, err := lookPath(argv[0]); err != nil {
			return nil
		}
		return argv
	}
	for _, c := range candidates {
		if _, err := lookPath(c[0]); err == nil {
			return append([]string(nil), c...)
		}
	}
	return nil
}

func recorderCandidates() [][]string {
	ffmpegInput := []string{"-f", "pulse", "-i", "default"}
	if runtime.GOOS == "darwin" {
		ffmpegInput = []string{"-f", "avfoundation", "-i", ":0"}
	}
	ffmpeg := append([]string{"ffmpeg", "-loglevel", "quiet"}, ffmpegInput...)
	ffmpeg = append(ffmpeg, "-f", "s16le", "-")

	return [][]string{
		{"arecord", "-q", "-f", "cd", "-t", "raw"},
		{"rec", "-q", "-t", "raw", "-"},
		ffmpeg,
	}
}

func ttsCandidates() [][]string {
	return [][]string{
		{"espeak-ng"},
		{"espeak"},
		{"spd-say", "--wait"},
		{"say"},
	}
}

// =============================================================================
// RECOGNIZER
// =============================================================================

// ExecRecognizer runs a program that prints one segment per line.
type ExecRecognizer struct {
	Argv []string
}

func (r *ExecRecognizer) Available() bool { return len(r.Argv) > 0 }

// Listen starts the program and streams its lines as events.
func (r *ExecRecognizer) Listen(ctx context.Context) (<-chan Event, error) {
	if !r.Available() {
		return nil, ErrUnavailable
	}

	cmd := exec.CommandContext(ctx, r.Argv[0], r.Argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("recognizer pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start recognizer %s: %w", r.Argv[0], err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)

		send := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if ev, ok := parseLine(scanner.Text()); ok {
				if !send(ev) {
					break
				}
			}
		}
		// Drain so Wait does not block on a full pipe.
		_, _ = io.Copy(io.Discard, stdout)

		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			send(Event{Err: fmt.Errorf("recognizer exited: %w", err)})
		}
	}()
	return events, nil
}

// parseLine turns one recognizer output line into an event. Blank lines
// carry no result.
func parseLine(line string) (Event, bool) {
	line = strings.TrimRight(line, "\r")
	interim := strings.HasPrefix(line, "~")
	if interim {
		line = line[1:]
	}
	text := strings.TrimSpace(line)
	if text == "" && !interim {
		return Event{}, false
	}
	return Event{Text: text, Interim: interim}, true
}

// =============================================================================
// RECORDER
// =============================================================================

// ExecRecorder runs a capture program whose output is discarded.
type ExecRecorder struct {
	Argv []string
}

func (r *ExecRecorder) Available() bool { return len(r.Argv) > 0 }

// Start launches the capture program.
func (r *ExecRecorder) Start(ctx context.Context) (Capture, error) {
	if !r.Available() {
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, r.Argv[0], r.Argv[1:]...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	cmd.WaitDelay = time.Second
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start recorder %s: %w", r.Argv[0], err)
	}

	c := &execCapture{cancel: cancel, done: make(chan struct{})}
	go func() {
		c.err = cmd.Wait()
		close(c.done)
	}()
	return c, nil
}

type execCapture struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
	once   sync.Once
}

// Stop kills the capture program and waits for it to exit. Being killed
// is the expected way for it to end, so that exit status is not an error.
func (c *execCapture) Stop() error {
	var err error
	c.once.Do(func() {
		c.cancel()
		<-c.done
		var exitErr *exec.ExitError
		if c.err != nil && !errors.As(c.err, &exitErr) && !errors.Is(c.err, context.Canceled) {
			err = c.err
		}
	})
	return err
}

func (c *execCapture) Done() <-chan struct{} { return c.done }

// =============================================================================
// SYNTHESIZER
// =============================================================================

// ExecSynthesizer runs a program with the text as its final argument.
type ExecSynthesizer struct {
	Argv []string
}

func (s *ExecSynthesizer) Available() bool { return len(s.Argv) > 0 }

// Say runs one utterance to completion or until ctx is cancelled.
func (s *ExecSynthesizer) Say(ctx context.Context, text string) error {
	if !s.Available() {
		return ErrUnavailable
	}
	args := append(append([]string(nil), s.Argv[1:]...), text)
	cmd := exec.CommandContext(ctx, s.Argv[0], args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", s.Argv[0], err)
	}
	return nil
}
