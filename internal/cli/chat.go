// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat with the local model server.
//
// The REPL drives the same directory and dispatcher as the dashboard's chat
// tab, one blocking exchange per line.

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/jeranaias/termdeck/internal/assistant"
	"github.com/jeranaias/termdeck/internal/config"
	"github.com/jeranaias/termdeck/internal/model"
	"github.com/jeranaias/termdeck/internal/ui/app"
)

const chatHelp = `Commands inside the session:
  /models          list available models
  /model [name]    show or switch the model (fuzzy match)
  /history         print the conversation so far
  /speak           speak the last reply, or stop speaking
  /help            show this help
  /quit            leave the session`

var chatModel string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a local model in line mode",
	Long:  "Start an interactive chat session without the dashboard.\n\n" + chatHelp,
	Args:  cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Model to start with")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, cfgErr := loadConfig()
	if cfg == nil {
		return cfgErr
	}
	logger := newLogger(cmd.ErrOrStderr())
	if cfgErr != nil {
		logger.Printf("config: load failed, using defaults | error=%v", cfgErr)
	}
	if chatModel != "" {
		cfg.Ollama.DefaultModel = chatModel
	}

	svc := app.NewServices(cfg, logger)
	defer svc.Close()

	var in lineReader
	if IsTTY() {
		cli := NewChatCLI()
		defer cli.Close()
		in = cli
	} else {
		in = newPlainReader(cmd.InOrStdin())
	}

	r := &chatREPL{
		svc:      svc,
		in:       in,
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
		markdown: ColorsEnabled(),
		width:    GetTerminalWidth(),
	}
	return r.run(cmd.Context())
}

// =============================================================================
// INPUT
// =============================================================================

// lineReader is satisfied by ChatCLI and plainReader.
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from
// ~/.termdeck/chat_history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with arrow-key history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with 0600 permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// plainReader reads lines from a pipe. The prompt is not echoed.
type plainReader struct {
	scanner *bufio.Scanner
}

func newPlainReader(r io.Reader) *plainReader {
	return &plainReader{scanner: bufio.NewScanner(r)}
}

func (p *plainReader) ReadInput(string) (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}

// =============================================================================
// SESSION
// =============================================================================

type chatREPL struct {
	svc    *app.Services
	in     lineReader
	out    io.Writer
	errOut io.Writer

	// markdown renders replies with glamour instead of printing them raw
	markdown bool
	width    int
	renderer *glamour.TermRenderer
}

func (r *chatREPL) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := r.svc.Directory.Refresh(ctx); err != nil {
		r.printError(fmt.Errorf("%w (is 'ollama serve' running?)", err))
	}
	r.printWelcome()

	for {
		input, err := r.in.ReadInput(PromptStyle.Render("termdeck> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				r.printSummary()
				return nil
			}
			return err
		}

		line := strings.TrimSpace(input)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			keepGoing, err := r.handleSlashCommand(line)
			if err != nil {
				r.printError(err)
			}
			if !keepGoing {
				r.printSummary()
				return nil
			}
			continue
		}

		// Typed text goes out as entered, untrimmed.
		r.send(ctx, input)
	}
}

func (r *chatREPL) send(ctx context.Context, input string) {
	reply, err := r.svc.Dispatcher.Send(ctx, input)
	switch {
	case errors.Is(err, assistant.ErrNothingToSend):
		if r.svc.Directory.Selected() == "" {
			r.printError(errors.New("no model selected (try /models)"))
		} else {
			r.printError(errors.New("still waiting for the previous reply"))
		}
	case err != nil:
		r.printError(err)
	default:
		r.printReply(reply)
	}
}

// handleSlashCommand returns false when the session should end.
func (r *chatREPL) handleSlashCommand(line string) (bool, error) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		fmt.Fprintln(r.out, chatHelp)
		return true, nil
	case "/quit", "/q", "/exit":
		return false, nil
	case "/models":
		r.printModels()
		return true, nil
	case "/model", "/m":
		return true, r.switchModel(args)
	case "/history":
		r.printHistory()
		return true, nil
	case "/speak":
		return true, r.speakLast()
	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// switchModel selects the best fuzzy match for args among the listed models.
func (r *chatREPL) switchModel(args []string) error {
	if len(args) == 0 {
		current := r.svc.Directory.Selected()
		if current == "" {
			current = "(none)"
		}
		fmt.Fprintf(r.out, "%s %s\n", RenderLabel("Model:"), ValueStyle.Render(current))
		return nil
	}

	names := r.svc.Directory.Names()
	if len(names) == 0 {
		return errors.New("no models listed")
	}
	matches := fuzzy.Find(strings.Join(args, " "), names)
	if len(matches) == 0 {
		return fmt.Errorf("%w: %q", assistant.ErrUnknownModel, strings.Join(args, " "))
	}
	if err := r.svc.Directory.Select(matches[0].Str); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s Switched to %s\n", SuccessStyle.Render("[OK]"), matches[0].Str)
	return nil
}

func (r *chatREPL) speakLast() error {
	if !r.svc.Output.CanSpeak() {
		return errors.New("no speech synthesizer found")
	}
	last, ok := r.svc.Dispatcher.Conversation().LastAssistant()
	if !ok {
		return errors.New("nothing to speak yet")
	}
	if started, _ := r.svc.Output.Speak(last.Content); !started {
		fmt.Fprintln(r.out, DimStyle.Render("[speech stopped]"))
	}
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

func (r *chatREPL) printWelcome() {
	fmt.Fprintln(r.out, TitleStyle.Render("termdeck chat"))
	fmt.Fprintln(r.out, RenderSeparator(30))
	selected := r.svc.Directory.Selected()
	if selected == "" {
		selected = "(none)"
	}
	fmt.Fprintf(r.out, "%s %s\n", RenderLabel("Model:"), ValueStyle.Render(selected))
	fmt.Fprintf(r.out, "%s %s\n", RenderLabel("Server:"), ValueStyle.Render(r.svc.Client.BaseURL()))
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Fprintln(r.out)
}

func (r *chatREPL) printModels() {
	names := r.svc.Directory.Names()
	if len(names) == 0 {
		fmt.Fprintln(r.out, DimStyle.Render("No models listed."))
		return
	}
	selected := r.svc.Directory.Selected()
	for _, name := range names {
		marker := "  "
		if name == selected {
			marker = SuccessStyle.Render("* ")
		}
		fmt.Fprintf(r.out, "%s%s\n", marker, name)
	}
}

func (r *chatREPL) printHistory() {
	msgs := r.svc.Dispatcher.Conversation().Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(r.out, DimStyle.Render("No messages yet."))
		return
	}
	for _, m := range msgs {
		fmt.Fprintf(r.out, "%s %s\n", RenderLabel(m.Role.DisplayName()+":"), m.Preview(60))
	}
}

func (r *chatREPL) printReply(m model.Message) {
	content := m.Content
	if r.markdown {
		content = r.render(content)
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, strings.TrimRight(content, "\n"))
	fmt.Fprintln(r.out)
}

// render returns content unchanged if glamour cannot handle it.
func (r *chatREPL) render(content string) string {
	if r.renderer == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(r.width-4),
		)
		if err != nil {
			return content
		}
		r.renderer = renderer
	}
	out, err := r.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}

func (r *chatREPL) printError(err error) {
	fmt.Fprintf(r.errOut, "%s %v\n", ErrorStyle.Render("[Error]"), err)
}

func (r *chatREPL) printSummary() {
	n := r.svc.Dispatcher.Conversation().Len()
	fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("Session ended after %d messages.", n)))
}
