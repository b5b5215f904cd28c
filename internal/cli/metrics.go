// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/poller"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/components"
)

type metricsOptions struct {
	watch    bool
	interval time.Duration
	count    int
	json     bool
	width    int
}

func metricsCmd(e *env) *cobra.Command {
	var opts metricsOptions
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show aggregate answer quality metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.width <= 0 {
				opts.width = min(GetTerminalWidth(), 60)
			}
			if opts.interval <= 0 {
				opts.interval = e.cfg.PollInterval()
			}
			if !opts.watch {
				ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.RequestTimeout())
				defer cancel()
				m, err := e.client.Metrics(ctx)
				if err != nil {
					return fmt.Errorf("metrics unavailable: %w", err)
				}
				return printMetrics(cmd.OutOrStdout(), e, m, opts)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watchMetrics(ctx, e, cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&opts.watch, "watch", "w", false, "keep refreshing until interrupted")
	f.DurationVar(&opts.interval, "interval", 0, "refresh period for --watch (default from config)")
	f.IntVar(&opts.count, "count", 0, "with --watch, exit after N refreshes")
	f.BoolVar(&opts.json, "json", false, "print the raw snapshot as JSON")
	f.IntVar(&opts.width, "width", 0, "panel width (default terminal width, at most 60)")
	return cmd
}

func printMetrics(w io.Writer, e *env, m *model.Metrics, opts metricsOptions) error {
	if opts.json {
		return writeJSON(w, m)
	}
	_, err := fmt.Fprintln(w, components.RenderMetrics(e.theme, m, opts.width))
	return err
}

// watchMetrics redraws the panel on every successful poll. Failed polls are
// skipped and the previous panel stays on screen.
func watchMetrics(ctx context.Context, e *env, w io.Writer, opts metricsOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	output := termenv.NewOutput(w)
	redraw := IsStdoutTTY() && w == io.Writer(os.Stdout) && !opts.json

	var (
		mu      sync.Mutex
		shown   int
		printed error
	)
	p := poller.New("metrics-watch", opts.interval, func(pctx context.Context) error {
		rctx, rcancel := context.WithTimeout(pctx, e.cfg.RequestTimeout())
		defer rcancel()
		m, err := e.client.Metrics(rctx)
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()
		if opts.count > 0 && shown >= opts.count {
			return nil
		}
		if redraw {
			output.ClearScreen()
		}
		if err := printMetrics(w, e, m, opts); err != nil {
			printed = err
			cancel()
			return err
		}
		if !opts.json {
			fmt.Fprintf(w, "Updated %s · every %s · Ctrl+C to stop\n", time.Now().Format("15:04:05"), opts.interval)
		}
		shown++
		if opts.count > 0 && shown >= opts.count {
			cancel()
		}
		return nil
	})
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	return printed
}
