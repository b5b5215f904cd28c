// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// zenbot is a terminal client for the ZenBot steel specifications assistant.
package main

import (
	"os"

	"github.com/zenbot-labs/zenbot-tui/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
