// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// versionProbeTimeout bounds the service lookup so version stays snappy.
const versionProbeTimeout = 3 * time.Second

func versionCmd(e *env) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print client and service versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "zenbot %s (commit %s, built %s, %s %s/%s)\n",
				Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			if local {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), versionProbeTimeout)
			defer cancel()
			info, err := e.client.Info(ctx)
			if err != nil {
				fmt.Fprintf(out, "service %s: unreachable (%v)\n", e.client.BaseURL(), err)
				return nil
			}
			fmt.Fprintf(out, "service %s: %s %s (%s)\n", e.client.BaseURL(), info.Service, info.Version, info.Status)
			if len(info.Endpoints) > 0 {
				fmt.Fprintf(out, "endpoints: %s\n", strings.Join(info.Endpoints, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "do not contact the service")
	return cmd
}
