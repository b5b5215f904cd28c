// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/spf13/cobra"

	"github.com/zenbot-labs/zenbot-tui/internal/ui/app"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/chat"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/components"
)

func tuiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Aliases: []string{"dashboard"},
		Short:   "Open the chat and metrics dashboard (default)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(e)
		},
	}
}

// tuiOptions maps the resolved config onto the dashboard options.
func tuiOptions(e *env) app.Options {
	opts := app.Options{
		Mode:         e.cfg.Mode(),
		PollInterval: e.cfg.PollInterval(),
		Chat: chat.Options{
			ShowEvaluation: e.cfg.UI.ShowEvaluation,
			ShowTimestamps: e.cfg.UI.ShowTimestamps,
			ASCIISpinner:   !SupportsUnicode(),
		},
	}
	if e.cfg.UI.RenderMarkdown {
		style := "dark"
		if !e.theme.IsDark {
			style = "light"
		}
		opts.Chat.Markdown = components.NewMarkdownRenderer(style)
	}
	return opts
}

func runTUI(e *env) error {
	if err := RequiresTTY("open the dashboard"); err != nil {
		return err
	}
	return app.Run(e.client, e.theme, tuiOptions(e))
}
