// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/components"
)

// ErrUnhealthy is returned by the health command when the probe fails. The
// failure has already been printed.
var ErrUnhealthy = errors.New("zenbot service is unhealthy")

// healthReport is the --json shape of the health command.
type healthReport struct {
	URL         string `json:"url"`
	Status      string `json:"status"`
	ServerState string `json:"server_status,omitempty"`
	ZenbotReady *bool  `json:"zenbot_ready,omitempty"`
	Error       string `json:"error,omitempty"`
}

func healthCmd(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the ZenBot service is up (exit status 1 if not)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.RequestTimeout())
			defer cancel()

			report := healthReport{URL: e.client.BaseURL(), Status: model.HealthHealthy.String()}
			resp, err := e.client.Health(ctx)
			if err != nil {
				report.Status = model.HealthUnhealthy.String()
				report.Error = err.Error()
			} else {
				report.ServerState = resp.Status
				report.ZenbotReady = resp.ZenbotReady
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if jerr := writeJSON(out, report); jerr != nil {
					return jerr
				}
			} else {
				h := components.NewHeader(e.theme)
				if err != nil {
					h.SetHealth(model.HealthUnhealthy)
					fmt.Fprintf(out, "%s  %s\n  %s\n", h.HealthBadge(), report.URL, err)
				} else {
					h.SetHealth(model.HealthHealthy)
					fmt.Fprintf(out, "%s  %s\n", h.HealthBadge(), report.URL)
				}
			}
			if err != nil {
				return ErrUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
