// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/zenbot-labs/zenbot-tui/internal/config"
	"github.com/zenbot-labs/zenbot-tui/internal/logging"
	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/session"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/components"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
	"github.com/zenbot-labs/zenbot-tui/internal/util"
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// lineReader yields one line of user input per call. io.EOF ends the session.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	// ReadInputWithSuggestion is ReadInput with the line pre-filled with text.
	ReadInputWithSuggestion(prompt, text string) (string, error)
}

// ChatCLI provides input history and line editing for line-mode chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	c := &ChatCLI{line: line, historyFile: filepath.Join(dir, "chat_history")}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from disk.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput prompts for one line. Ctrl+C and Ctrl+D both report io.EOF.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	return c.record(c.line.Prompt(prompt))
}

// ReadInputWithSuggestion prompts with text already typed and the cursor at
// its end.
func (c *ChatCLI) ReadInputWithSuggestion(prompt, text string) (string, error) {
	return c.record(c.line.PromptWithSuggestion(prompt, text, -1))
}

// record maps an aborted prompt to io.EOF and keeps non-blank input.
func (c *ChatCLI) record(input string, err error) (string, error) {
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes input history owner-readable only.
func (c *ChatCLI) SaveHistory() {
	var buf bytes.Buffer
	if _, err := c.line.WriteHistory(&buf); err != nil {
		return
	}
	if err := util.WritePrivateFile(c.historyFile, buf.Bytes()); err != nil {
		logging.Warnw("saving chat history failed", "error", err)
	}
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

func chatCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with ZenBot line by line",
		Long: "Line-mode chat with input history. Answers stream as they arrive.\n" +
			"Type /help for commands.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := RequiresTTY("chat"); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			editor := NewChatCLI()
			defer editor.Close()

			r := newREPL(e, cmd.OutOrStdout(), editor)
			return r.Run(ctx)
		},
	}
}

// chatBackend is the client surface the REPL uses.
type chatBackend interface {
	streamer
	Metrics(ctx context.Context) (*model.Metrics, error)
}

// repl drives a session from a lineReader.
type repl struct {
	out     io.Writer
	in      lineReader
	client  chatBackend
	theme   *styles.Theme
	sess    *session.Session
	eval    bool
	timeout func() (context.Context, context.CancelFunc)
}

func newREPL(e *env, out io.Writer, in lineReader) *repl {
	return &repl{
		out:    out,
		in:     in,
		client: e.client,
		theme:  e.theme,
		sess:   session.New(e.cfg.Mode()),
		eval:   e.cfg.UI.ShowEvaluation,
		timeout: func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), e.cfg.RequestTimeout())
		},
	}
}

// Run reads lines until EOF, /quit, or ctx is cancelled.
func (r *repl) Run(ctx context.Context) error {
	r.printWelcome()
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := r.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "/") {
			quit, err := r.command(trimmed)
			if err != nil {
				fmt.Fprintln(r.out, styles.RenderError(err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}
		r.sess.SetInput(line)
		r.send(ctx)
	}
}

// readLine prompts for the next line, pre-filled with any pending input.
func (r *repl) readLine() (string, error) {
	if pending := r.sess.Input(); pending != "" {
		r.sess.SetInput("")
		return r.in.ReadInputWithSuggestion(r.prompt(), pending)
	}
	return r.in.ReadInput(r.prompt())
}

func (r *repl) prompt() string {
	return fmt.Sprintf("[%s] › ", r.sess.Mode())
}

// send runs one turn from the session's pending input.
func (r *repl) send(ctx context.Context) {
	fmt.Fprintln(r.out, r.theme.RoleLabel.Render("🤖 ZenBot"))
	res, err := runTurn(ctx, r.out, r.theme, r.client, r.sess, r.eval)
	if err != nil {
		fmt.Fprintln(r.out, styles.RenderError(err.Error()))
		return
	}
	if res.RefreshMetrics {
		r.printMetricsSummary()
	}
}

func (r *repl) printMetricsSummary() {
	ctx, cancel := r.timeout()
	defer cancel()
	m, err := r.client.Metrics(ctx)
	if err != nil {
		logging.Warnw("metrics refresh failed", "error", err)
		return
	}
	fmt.Fprintln(r.out, r.theme.Muted.Render(metricsSummary(m)))
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// command handles a slash command and reports whether to quit.
func (r *repl) command(line string) (bool, error) {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "/quit", "/exit", "/q":
		return true, nil

	case "/help", "/?":
		r.printHelp()

	case "/mode":
		if len(args) == 0 {
			fmt.Fprintln(r.out, styles.RenderInfo("mode: "+r.sess.ToggleMode().Label()))
			return false, nil
		}
		mode, err := model.ParseMode(args[0])
		if err != nil {
			return false, err
		}
		r.sess.SetMode(mode)
		fmt.Fprintln(r.out, styles.RenderInfo("mode: "+mode.Label()))

	case "/samples":
		r.printSamples()

	case "/sample", "/s":
		if len(args) != 1 {
			return false, errors.New("usage: /sample N")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("%w: %s", session.ErrNoSuchSample, args[0])
		}
		if _, err := r.sess.SelectSample(n - 1); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, r.theme.Muted.Render("press Enter to send, or edit first"))

	case "/metrics":
		mctx, cancel := r.timeout()
		defer cancel()
		m, err := r.client.Metrics(mctx)
		if err != nil {
			return false, fmt.Errorf("metrics unavailable: %w", err)
		}
		fmt.Fprintln(r.out, components.RenderMetrics(r.theme, m, min(GetTerminalWidth(), 60)))

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return false, nil
}

func (r *repl) printWelcome() {
	fmt.Fprintln(r.out, r.theme.HeaderTitle.Render("👋 Welcome to ZenBot!"))
	fmt.Fprintln(r.out, r.theme.Muted.Render("Mode: "+r.sess.Mode().Label()+" · /help for commands · Ctrl+D to exit"))
	r.printSamples()
}

func (r *repl) printSamples() {
	fmt.Fprintln(r.out, "Try these questions:")
	for i, q := range session.SampleQuestions {
		fmt.Fprintf(r.out, "  %s %s\n", r.theme.SampleKey.Render(fmt.Sprintf("/sample %d", i+1)), r.theme.SampleText.Render(q))
	}
}

func (r *repl) printHelp() {
	rows := [][2]string{
		{"/sample N", "put sample question N in the prompt"},
		{"/samples", "list the sample questions"},
		{"/mode [fixed|buggy]", "set or toggle the documentation mode"},
		{"/metrics", "show quality metrics"},
		{"/quit", "leave the chat"},
	}
	for _, row := range rows {
		fmt.Fprintf(r.out, "  %s  %s\n", r.theme.HelpKey.Render(util.PadRight(row[0], 20)), r.theme.HelpDesc.Render(row[1]))
	}
}

// compile-time check that the real client serves the REPL
var _ chatBackend = (*zenbot.Client)(nil)
