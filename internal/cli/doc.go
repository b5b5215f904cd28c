// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the zenbot command tree.
//
// Running zenbot with no subcommand opens the full-screen dashboard. The
// subcommands cover scripted and line-oriented use of the same service:
//
//	zenbot chat              line-mode chat with history and slash commands
//	zenbot ask QUESTION      one question, answer streamed to stdout
//	zenbot metrics [--watch] quality metrics snapshot
//	zenbot health            exit status 1 when the service is down
//	zenbot history [clear]   stored exchanges
//	zenbot config ...        show, init and edit ~/.zenbot/config.toml
//	zenbot version           client and service versions
//
// Global flags --url and --mode override the config file and the
// ZENBOT_URL / ZENBOT_MODE environment variables.
package cli
