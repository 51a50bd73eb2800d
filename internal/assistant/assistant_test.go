// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termdeck/internal/model"
	"github.com/jeranaias/termdeck/internal/ollama"
)

// fakeServer answers /api/tags and /api/chat like a small Ollama.
type fakeServer struct {
	mu       sync.Mutex
	tags     string
	tagsCode int
	reply    string
	chatCode int
	chatBody string
	requests []ollama.ChatRequest
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/api/tags":
		if f.tagsCode != 0 {
			w.WriteHeader(f.tagsCode)
			return
		}
		_, _ = w.Write([]byte(f.tags))
	case "/api/chat":
		var req ollama.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.requests = append(f.requests, req)
		if f.chatCode != 0 {
			w.WriteHeader(f.chatCode)
			return
		}
		if f.chatBody != "" {
			_, _ = w.Write([]byte(f.chatBody))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"content": f.reply}})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeServer) chatRequests() []ollama.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ollama.ChatRequest(nil), f.requests...)
}

func setup(t *testing.T, f *fakeServer) (*Directory, *Dispatcher, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: srv.URL})
	dir := NewDirectory(client, DirectoryOptions{Timeout: 10 * time.Second, Logger: logger})
	disp := NewDispatcher(client, dir, model.NewConversation(), DispatcherOptions{Logger: logger})
	return dir, disp, &logs
}

func contents(msgs []model.Message) [][2]string {
	out := make([][2]string, len(msgs))
	for i, m := range msgs {
		out[i] = [2]string{m.Role.String(), m.Content}
	}
	return out
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestDirectory_RefreshSelectsFirst(t *testing.T) {
	dir, _, _ := setup(t, &fakeServer{tags: `{"models":[{"name":"llama2"},{"name":"mistral"}]}`})

	require.NoError(t, dir.Refresh(context.Background()))
	assert.Equal(t, []string{"llama2", "mistral"}, dir.Names())
	assert.Equal(t, "llama2", dir.Selected())
}

func TestDirectory_RefreshPrefersConfiguredModel(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{tags: `{"models":[{"name":"llama2"},{"name":"mistral"}]}`})
	defer srv.Close()

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: srv.URL})
	dir := NewDirectory(client, DirectoryOptions{Preferred: "mistral"})
	require.NoError(t, dir.Refresh(context.Background()))
	assert.Equal(t, "mistral", dir.Selected())

	dir = NewDirectory(client, DirectoryOptions{Preferred: "not-installed"})
	require.NoError(t, dir.Refresh(context.Background()))
	assert.Equal(t, "llama2", dir.Selected())
}

func TestDirectory_RefreshEmptyList(t *testing.T) {
	dir, _, _ := setup(t, &fakeServer{tags: `{"models":[]}`})
	require.NoError(t, dir.Refresh(context.Background()))
	assert.Empty(t, dir.Models())
	assert.Equal(t, "", dir.Selected())
}

func TestDirectory_RefreshFailureClears(t *testing.T) {
	f := &fakeServer{tags: `{"models":[{"name":"llama2"}]}`}
	dir, _, logs := setup(t, f)
	require.NoError(t, dir.Refresh(context.Background()))
	require.Equal(t, "llama2", dir.Selected())

	f.mu.Lock()
	f.tagsCode = http.StatusInternalServerError
	f.mu.Unlock()

	err := dir.Refresh(context.Background())
	require.Error(t, err)
	assert.Empty(t, dir.Models())
	assert.Equal(t, "", dir.Selected())
	assert.Contains(t, logs.String(), "directory: refresh failed")
}

func TestDirectory_RefreshMalformed(t *testing.T) {
	dir, _, _ := setup(t, &fakeServer{tags: `not json`})
	assert.Error(t, dir.Refresh(context.Background()))
	assert.Equal(t, "", dir.Selected())
}

func TestDirectory_SelectAndCycle(t *testing.T) {
	dir, _, _ := setup(t, &fakeServer{tags: `{"models":[{"name":"a"},{"name":"b"},{"name":"c"}]}`})
	require.NoError(t, dir.Refresh(context.Background()))

	require.NoError(t, dir.Select("c"))
	assert.Equal(t, "c", dir.Selected())

	err := dir.Select("zzz")
	assert.True(t, errors.Is(err, ErrUnknownModel))
	assert.Equal(t, "c", dir.Selected(), "failed select keeps the old choice")

	assert.Equal(t, "a", dir.Cycle(1))
	assert.Equal(t, "c", dir.Cycle(-1))
	assert.Equal(t, "b", dir.Cycle(-1))
}

func TestDirectory_CycleEmpty(t *testing.T) {
	dir := NewDirectory(nil, DirectoryOptions{})
	assert.Equal(t, "", dir.Cycle(1))
}

// =============================================================================
// DISPATCHER
// =============================================================================

func TestDispatcher_SendAppendsUserThenAssistant(t *testing.T) {
	f := &fakeServer{tags: `{"models":[{"name":"llama2"},{"name":"mistral"}]}`, reply: "hi there"}
	dir, disp, _ := setup(t, f)
	require.NoError(t, dir.Refresh(context.Background()))

	reply, err := disp.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply.Content)

	assert.Equal(t, [][2]string{{"user", "hello"}, {"assistant", "hi there"}},
		contents(disp.Conversation().Messages()))

	reqs := f.chatRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "llama2", reqs[0].Model)
	assert.False(t, reqs[0].Stream)
	assert.Equal(t, []ollama.Message{{Role: "user", Content: "hello"}}, reqs[0].Messages)
}

func TestDispatcher_SendsFullHistory(t *testing.T) {
	f := &fakeServer{tags: `{"models":[{"name":"llama2"}]}`, reply: "ok"}
	dir, disp, _ := setup(t, f)
	require.NoError(t, dir.Refresh(context.Background()))

	_, err := disp.Send(context.Background(), "one")
	require.NoError(t, err)
	_, err = disp.Send(context.Background(), "two")
	require.NoError(t, err)

	reqs := f.chatRequests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []ollama.Message{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "ok"},
		{Role: "user", Content: "two"},
	}, reqs[1].Messages)
}

func TestDispatcher_FailureKeepsUserMessage(t *testing.T) {
	f := &fakeServer{tags: `{"models":[{"name":"llama2"}]}`, chatCode: http.StatusInternalServerError}
	dir, disp, logs := setup(t, f)
	require.NoError(t, dir.Refresh(context.Background()))

	_, err := disp.Send(context.Background(), "hello")
	require.Error(t, err)

	assert.Equal(t, [][2]string{{"user", "hello"}}, contents(disp.Conversation().Messages()))
	assert.Contains(t, logs.String(), "dispatch: chat failed")
	assert.Equal(t, 0, disp.InFlight())
}

func TestDispatcher_ReplyWithoutMessageIsFailure(t *testing.T) {
	f := &fakeServer{tags: `{"models":[{"name":"llama2"}]}`, chatBody: `{"error":"model is loading"}`}
	dir, disp, logs := setup(t, f)
	require.NoError(t, dir.Refresh(context.Background()))

	_, err := disp.Send(context.Background(), "hello")
	require.Error(t, err)

	assert.Equal(t, [][2]string{{"user", "hello"}}, contents(disp.Conversation().Messages()))
	assert.Contains(t, logs.String(), "model is loading")
	assert.Equal(t, 0, disp.InFlight())
}

func TestDispatcher_GuardedInputs(t *testing.T) {
	f := &fakeServer{tags: `{"models":[{"name":"llama2"}]}`, reply: "x"}
	dir, disp, _ := setup(t, f)

	// No model selected yet.
	_, ok := disp.Begin("hello")
	assert.False(t, ok)

	require.NoError(t, dir.Refresh(context.Background()))
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := disp.Send(context.Background(), in)
		assert.ErrorIs(t, err, ErrNothingToSend)
	}

	assert.Equal(t, 0, disp.Conversation().Len())
	assert.Empty(t, f.chatRequests())
}

func TestDispatcher_ContentKeptAsTyped(t *testing.T) {
	f := &fakeServer{tags: `{"models":[{"name":"llama2"}]}`, reply: "x"}
	dir, disp, _ := setup(t, f)
	require.NoError(t, dir.Refresh(context.Background()))

	req, ok := disp.Begin("  padded  ")
	require.True(t, ok)
	assert.Equal(t, "  padded  ", req.User.Content)
	assert.Equal(t, 1, disp.Conversation().Len(), "user message appended before the response")
	_, err := disp.Complete(context.Background(), req)
	require.NoError(t, err)
}

// stubChat blocks until released so concurrent behavior can be observed.
type stubChat struct {
	release chan struct{}
}

func (s *stubChat) Chat(ctx context.Context, model string, messages []ollama.Message) (*ollama.ChatResponse, error) {
	<-s.release
	return &ollama.ChatResponse{Message: ollama.Message{Role: "assistant", Content: "reply"}}, nil
}

type fixedModel string

func (f fixedModel) Selected() string { return string(f) }

func TestDispatcher_ConcurrentSendsAllowedByDefault(t *testing.T) {
	chat := &stubChat{release: make(chan struct{})}
	disp := NewDispatcher(chat, fixedModel("m"), model.NewConversation(), DispatcherOptions{})

	r1, ok1 := disp.Begin("first")
	r2, ok2 := disp.Begin("second")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Len(t, r1.Messages, 1)
	assert.Len(t, r2.Messages, 2, "second snapshot sees the first user message")
	assert.Equal(t, 2, disp.InFlight())

	close(chat.release)
	_, err := disp.Complete(context.Background(), r2)
	require.NoError(t, err)
	_, err = disp.Complete(context.Background(), r1)
	require.NoError(t, err)

	assert.Equal(t, [][2]string{
		{"user", "first"}, {"user", "second"}, {"assistant", "reply"}, {"assistant", "reply"},
	}, contents(disp.Conversation().Messages()))
}

func TestDispatcher_SingleFlight(t *testing.T) {
	chat := &stubChat{release: make(chan struct{})}
	disp := NewDispatcher(chat, fixedModel("m"), model.NewConversation(), DispatcherOptions{SingleFlight: true})

	r1, ok := disp.Begin("first")
	require.True(t, ok)
	_, ok = disp.Begin("second")
	assert.False(t, ok)
	assert.Equal(t, 1, disp.Conversation().Len())

	close(chat.release)
	_, err := disp.Complete(context.Background(), r1)
	require.NoError(t, err)

	_, ok = disp.Begin("third")
	assert.True(t, ok)
}

func TestDispatcher_Timeout(t *testing.T) {
	chat := ChatterFunc(func(ctx context.Context, _ string, _ []ollama.Message) (*ollama.ChatResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	disp := NewDispatcher(chat, fixedModel("m"), model.NewConversation(),
		DispatcherOptions{Timeout: 20 * time.Millisecond, Logger: log.New(&bytes.Buffer{}, "", 0)})

	_, err := disp.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, disp.Conversation().Len())
}
