// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zenbot-labs/zenbot-tui/internal/config"
	"github.com/zenbot-labs/zenbot-tui/internal/logging"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

// Version information, set at build time with -ldflags -X.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// SHARED STATE
// =============================================================================

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	url        string
	mode       string
	configPath string
	logLevel   string
}

// env is resolved once per invocation, before any subcommand runs.
type env struct {
	flags  globalFlags
	cfg    *config.Config
	client *zenbot.Client
	theme  *styles.Theme
}

// setup loads the config, layers flags on top, and builds the client.
// Precedence is flags, then environment, then file, then defaults.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := e.loadConfig()
	if err != nil {
		if cfg == nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), styles.RenderWarning(err.Error()+" (using defaults)"))
	}

	if e.flags.url != "" {
		cfg.Server.BaseURL = e.flags.url
	}
	if e.flags.mode != "" {
		cfg.Chat.DefaultMode = e.flags.mode
	}
	if e.flags.logLevel != "" {
		cfg.Logging.Level = e.flags.logLevel
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if err := logging.Init(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.LogFile(),
	}); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), styles.RenderWarning("logging disabled: "+err.Error()))
	}
	lipgloss.SetColorProfile(GetColorProfile())

	e.cfg = cfg
	e.client = zenbot.NewClient(cfg.Server.BaseURL).WithTimeout(cfg.RequestTimeout())
	e.theme = styles.NewTheme(cfg.UI.Theme)
	logging.Debugw("cli configured", "command", cmd.Name(), "url", cfg.Server.BaseURL, "mode", cfg.Mode())
	return nil
}

func (e *env) loadConfig() (*config.Config, error) {
	if e.flags.configPath != "" {
		if _, err := os.Stat(e.flags.configPath); os.IsNotExist(err) {
			cfg := config.Default()
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return config.LoadFromPath(e.flags.configPath)
	}
	return config.Load()
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// Root builds the zenbot command tree.
func Root() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "zenbot",
		Short: "Terminal client for the ZenBot steel specifications assistant",
		Long: "zenbot talks to a ZenBot service. With no subcommand it opens the\n" +
			"dashboard: chat on the left, live quality metrics on the right.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(e)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.flags.url, "url", "", "ZenBot service URL (overrides ZENBOT_URL and the config file)")
	pf.StringVarP(&e.flags.mode, "mode", "m", "", "documentation mode: fixed or buggy")
	pf.StringVar(&e.flags.configPath, "config", "", "config file path (default ~/.zenbot/config.toml)")
	pf.StringVar(&e.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		tuiCmd(e),
		chatCmd(e),
		askCmd(e),
		metricsCmd(e),
		healthCmd(e),
		historyCmd(e),
		configCmd(e),
		versionCmd(e),
	)
	return root
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	return run(Root(), os.Stderr)
}

func run(root *cobra.Command, stderr io.Writer) int {
	err := root.Execute()
	if err == nil {
		return 0
	}
	if !errors.Is(err, ErrUnhealthy) {
		fmt.Fprintln(stderr, styles.RenderError(err.Error()))
	}
	return 1
}
