// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerIsQuiet(t *testing.T) {
	// Must not panic before Init.
	Infow("hello", "k", "v")
	Warnw("warn")
	Error("boom", errors.New("x"))
	Sync()
}

func TestSetLogger_CapturesEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	Warnw("skipping malformed frame", "line", "data: {")
	Error("metrics poll failed", errors.New("connection refused"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "data: {", entries[0].ContextMap()["line"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "zenbot.log")
	require.NoError(t, Init(Options{Level: "debug", Format: "json", File: path}))
	t.Cleanup(func() { SetLogger(nil) })

	Infow("poller started", "interval", "5s")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "poller started")
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenbot.log")
	require.NoError(t, Init(Options{Level: "loud", File: path}))
	t.Cleanup(func() { SetLogger(nil) })

	assert.False(t, L().Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, L().Desugar().Core().Enabled(zapcore.InfoLevel))
}
