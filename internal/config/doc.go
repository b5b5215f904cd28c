// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for zenbot.
//
// # Key Types
//
//   - Config: main configuration structure
//   - ServerConfig: service address and request timeout
//   - PollingConfig: metrics refresh interval
//   - UIConfig: theme and rendering switches
//   - LoggingConfig: zap level, format and file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (--url, --mode)
//   - Environment variables (ZENBOT_*)
//   - ~/.zenbot/config.toml
//   - ~/.zenbot/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, "warning:", err)
//	}
//	client := zenbot.NewClient(cfg.Server.BaseURL).WithTimeout(cfg.RequestTimeout())
package config
