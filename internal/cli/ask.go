// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zenbot-labs/zenbot-tui/internal/session"
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

type askOptions struct {
	noStream bool
	sample   int
	json     bool
}

func askCmd(e *env) *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question and print the answer",
		Example: "  zenbot ask \"What's the yield strength of Fe 550D 16mm?\"\n" +
			"  zenbot ask --sample 2 --mode buggy\n" +
			"  echo \"Price of TMT 12mm?\" | zenbot ask --no-stream --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := askQuestion(args, opts.sample, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if opts.noStream || opts.json {
				return askOnce(ctx, e, cmd.OutOrStdout(), question, opts.json)
			}
			return askStream(ctx, e, cmd.OutOrStdout(), question)
		},
	}
	cmd.Flags().BoolVar(&opts.noStream, "no-stream", false, "wait for the complete answer instead of streaming")
	cmd.Flags().IntVarP(&opts.sample, "sample", "s", 0, "ask sample question N (1-4)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the full response as JSON (implies --no-stream)")
	return cmd
}

// askQuestion picks the question from a sample number, the arguments, or stdin.
func askQuestion(args []string, sample int, stdin io.Reader) (string, error) {
	if sample != 0 {
		if sample < 1 || sample > len(session.SampleQuestions) {
			return "", fmt.Errorf("%w: %d", session.ErrNoSuchSample, sample)
		}
		return session.SampleQuestions[sample-1], nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok && f == os.Stdin && IsTTY() {
		return "", fmt.Errorf("no question given")
	}
	data, err := io.ReadAll(io.LimitReader(stdin, 64*1024))
	if err != nil {
		return "", fmt.Errorf("read question: %w", err)
	}
	q := strings.TrimSpace(string(data))
	if q == "" {
		return "", fmt.Errorf("no question given")
	}
	return q, nil
}

// askStream streams the answer through a throwaway session so error frames
// and dropped connections are handled the same way as in the dashboard.
func askStream(ctx context.Context, e *env, w io.Writer, question string) error {
	sess := session.New(e.cfg.Mode())
	sess.SetInput(question)
	res, err := runTurn(ctx, w, e.theme, e.client, sess, e.cfg.UI.ShowEvaluation)
	if err != nil {
		return err
	}
	if res.Turn.Phase == session.PhaseFailed {
		if res.Turn.Err != nil {
			return res.Turn.Err
		}
		return fmt.Errorf("server error: %s", res.Turn.ErrorText)
	}
	return nil
}

func askOnce(ctx context.Context, e *env, w io.Writer, question string, asJSON bool) error {
	resp, err := e.client.Chat(ctx, zenbot.ChatRequest{Message: question, Mode: e.cfg.Mode()})
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintln(w, resp.Response)
	if e.cfg.UI.ShowEvaluation && resp.Evaluation != nil {
		fmt.Fprintln(w, evaluationLine(resp.Evaluation))
	}
	return nil
}
