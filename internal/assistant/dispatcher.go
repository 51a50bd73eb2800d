// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/termdeck/internal/model"
	"github.com/jeranaias/termdeck/internal/ollama"
)

// ErrNothingToSend is returned by Send when the input is blank, no model is
// selected, or a single-flight request is still outstanding.
var ErrNothingToSend = errors.New("nothing to send")

// Chatter is the part of the Ollama client the dispatcher needs.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []ollama.Message) (*ollama.ChatResponse, error)
}

// ChatterFunc adapts a plain function to Chatter.
type ChatterFunc func(ctx context.Context, model string, messages []ollama.Message) (*ollama.ChatResponse, error)

// Chat calls f.
func (f ChatterFunc) Chat(ctx context.Context, model string, messages []ollama.Message) (*ollama.ChatResponse, error) {
	return f(ctx, model, messages)
}

// Selector reports the active model.
type Selector interface {
	Selected() string
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// Timeout bounds each chat exchange; zero means none.
	Timeout time.Duration
	// SingleFlight makes Begin a no-op while a request is outstanding.
	SingleFlight bool
	// Logger receives failure lines; nil uses the standard logger.
	Logger *log.Logger
}

// Request is one accepted send: the model chosen at Begin time and the
// history snapshot that will go over the wire, ending with the user message.
type Request struct {
	Model    string
	Messages []model.Message
	User     model.Message
}

// Dispatcher appends user input to the conversation and fetches replies.
type Dispatcher struct {
	chat   Chatter
	models Selector
	conv   *model.Conversation
	opts   DispatcherOptions
	logger *log.Logger

	mu       sync.Mutex
	inFlight int
}

// NewDispatcher wires a dispatcher to a client, a model selector and the
// conversation it appends to.
func NewDispatcher(chat Chatter, models Selector, conv *model.Conversation, opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{chat: chat, models: models, conv: conv, opts: opts, logger: logger}
}

// Conversation returns the conversation the dispatcher appends to.
func (d *Dispatcher) Conversation() *model.Conversation {
	return d.conv
}

// InFlight returns the number of requests awaiting a response.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// Begin accepts input for sending. When the trimmed input is empty, no model
// is selected, or single-flight is on and a request is outstanding, nothing
// happens and ok is false. Otherwise the user message (content as typed) is
// appended immediately and the caller must clear its pending input and pass
// the Request to Complete.
func (d *Dispatcher) Begin(input string) (req Request, ok bool) {
	if strings.TrimSpace(input) == "" {
		return Request{}, false
	}
	selected := d.models.Selected()
	if selected == "" {
		return Request{}, false
	}

	d.mu.Lock()
	if d.opts.SingleFlight && d.inFlight > 0 {
		d.mu.Unlock()
		return Request{}, false
	}
	d.inFlight++
	d.mu.Unlock()

	user := model.NewMessage(model.RoleUser, input)
	d.conv.Append(user)

	// The snapshot is taken after our own append; concurrent sends may
	// interleave other messages before it.
	return Request{
		Model:    selected,
		Messages: d.conv.Messages(),
		User:     user,
	}, true
}

// Complete issues the chat request for req. On success the reply is appended
// and returned. On failure the error is logged and returned and the
// conversation keeps the user message.
func (d *Dispatcher) Complete(ctx context.Context, req Request) (model.Message, error) {
	defer func() {
		d.mu.Lock()
		d.inFlight--
		d.mu.Unlock()
	}()

	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	resp, err := d.chat.Chat(ctx, req.Model, model.ToOllamaMessages(req.Messages))
	if err != nil {
		d.logger.Printf("dispatch: chat failed | model=%s history=%d error=%v", req.Model, len(req.Messages), err)
		return model.Message{}, fmt.Errorf("chat with %s: %w", req.Model, err)
	}

	reply := model.NewMessage(model.RoleAssistant, resp.Message.Content)
	d.conv.Append(reply)
	return reply, nil
}

// Send is Begin followed by Complete on the calling goroutine.
func (d *Dispatcher) Send(ctx context.Context, input string) (model.Message, error) {
	req, ok := d.Begin(input)
	if !ok {
		return model.Message{}, ErrNothingToSend
	}
	return d.Complete(ctx, req)
}
