// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
	"github.com/zenbot-labs/zenbot-tui/internal/util"
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

// DefaultHistoryLimit matches the server's default page size.
const DefaultHistoryLimit = 50

func historyCmd(e *env) *cobra.Command {
	var (
		limit  int
		asJSON bool
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored exchanges, newest last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.RequestTimeout())
			defer cancel()
			hist, err := e.client.History(ctx, limit)
			if err != nil {
				return fmt.Errorf("history unavailable: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), hist)
			}
			printHistory(cmd.OutOrStdout(), e.theme, hist, full)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultHistoryLimit, "maximum number of exchanges")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response as JSON")
	cmd.Flags().BoolVar(&full, "full", false, "print whole answers instead of a preview")
	cmd.AddCommand(historyClearCmd(e))
	return cmd
}

func printHistory(w io.Writer, theme *styles.Theme, hist *zenbot.HistoryResponse, full bool) {
	if len(hist.Conversations) == 0 {
		fmt.Fprintln(w, theme.Muted.Render("No conversations yet."))
		return
	}
	for _, c := range hist.Conversations {
		fmt.Fprintf(w, "%s %s %s\n",
			theme.SampleKey.Render(fmt.Sprintf("#%d", c.ID)),
			theme.Timestamp.Render(c.Timestamp),
			theme.Muted.Render("["+c.Mode.String()+"]"))
		fmt.Fprintf(w, "  Q: %s\n", util.TruncateRunes(oneLine(c.Query), 100))
		answer := c.Response
		if !full {
			answer = util.TruncateRunes(oneLine(answer), 160)
		}
		fmt.Fprintf(w, "  A: %s\n", answer)
		if c.Evaluation != nil {
			fmt.Fprintf(w, "  %s\n", evaluationLine(c.Evaluation))
		}
	}
	fmt.Fprintln(w, theme.Muted.Render(fmt.Sprintf("Showing %d of %s",
		len(hist.Conversations), util.FormatCount(hist.Total))))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// =============================================================================
// CLEAR
// =============================================================================

// errNotConfirmed is returned when the user declines a destructive action.
var errNotConfirmed = errors.New("aborted")

func historyClearCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored exchanges and metrics on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if err := RequiresTTY("confirm"); err != nil {
					return fmt.Errorf("%w (pass --yes)", err)
				}
				ok, err := confirm("Delete all history and metrics on " + e.client.BaseURL() + "? [y/N] ")
				if err != nil {
					return err
				}
				if !ok {
					return errNotConfirmed
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.RequestTimeout())
			defer cancel()
			msg, err := e.client.ClearHistory(ctx)
			if err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			if msg == "" {
				msg = "History cleared"
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.RenderSuccess(msg))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on the terminal.
func confirm(prompt string) (bool, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
