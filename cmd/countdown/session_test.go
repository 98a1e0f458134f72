/*
 * MIT License
 *
 * Copyright (c) 2022-2025  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/countdown/command"
	"github.com/tochemey/countdown/display/console"
	gerrors "github.com/tochemey/countdown/errors"
	"github.com/tochemey/countdown/log"
	"github.com/tochemey/countdown/timer"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	display := console.New(io.Discard)
	registry, err := timer.NewRegistry(display, timer.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, registry.ShutdownAll(context.Background()))
	})

	out := new(bytes.Buffer)
	return &session{
		handler:  command.NewHandler(registry, display, command.WithLogger(log.DiscardLogger)),
		registry: registry,
		out:      out,
		channel:  "general",
		user:     "alice",
		timeout:  time.Second,
	}, out
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	shell, out := newTestSession(t)
	exec := func(line string) string {
		out.Reset()
		require.False(t, shell.execute(ctx, line))
		return strings.TrimSpace(out.String())
	}

	assert.Equal(t, "No timer running", exec("list"))
	assert.Equal(t, command.Describe(gerrors.ErrNotFound), exec("pause"))
	assert.Equal(t, command.Describe(gerrors.ErrInvalidDuration), exec("start"))
	assert.Equal(t, command.Describe(gerrors.ErrInvalidDuration), exec("start soon"))

	assert.Equal(t, "Timer starting", exec("start 25 protected"))
	assert.Equal(t, command.Describe(gerrors.ErrAlreadyRunning), exec("start 10m"))
	assert.Equal(t, "#general @alice 25 minutes remaining (running)", exec("list"))

	assert.Equal(t, "Time added (5m0s)", exec("add 5"))
	assert.Equal(t, command.Describe(gerrors.ErrInsufficientTime), exec("sub 2h"))
	assert.Equal(t, "Time subtracted (10m0s)", exec("sub 10m"))

	assert.Equal(t, "Now acting as @bob", exec("user bob"))
	assert.Equal(t, "bob@#general> ", shell.prompt())
	assert.Equal(t, "Protected timer: only alice can manipulate it.", exec("stop"))
	assert.Equal(t, "Displaying timer anew", exec("display"))

	assert.Equal(t, "Now in #random", exec("channel random"))
	assert.Equal(t, "Timer starting", exec("start 1h"))
	assert.Equal(t, "Timer paused", exec("pause"))
	assert.Equal(t,
		"#general @alice 20 minutes remaining (running)\n#random @bob 1:00 remaining (paused)",
		exec("list"))
	assert.Equal(t, "Timer resumed", exec("resume"))
	assert.True(t, strings.HasPrefix(exec("stop"), "Timer stopped with "))
	assert.Equal(t, []string{"general"}, shell.registry.Channels())

	assert.Equal(t, "Usage: channel <name>", exec("channel"))
	assert.Equal(t, "Usage: user <name>", exec("user a b"))
	assert.Equal(t, helpText, exec("help"))
	assert.Equal(t, "Unknown command: dance (type 'help' for commands)", exec("dance"))
	assert.Empty(t, exec("   "))

	assert.True(t, shell.execute(ctx, "quit"))
}

func TestParseDuration(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Duration
	}{
		{"25", 25 * time.Minute},
		{"-5", -5 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"45s", 45 * time.Second},
		{"soon", 0},
	}

	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseDuration(tt.input))
		})
	}
	assert.Zero(t, durationArg(nil))
}

func TestLoadConfig(t *testing.T) {
	t.Run("flags override the defaults", func(t *testing.T) {
		cfg, err := loadConfig("", "debug", "nats://127.0.0.1:4222")
		require.NoError(t, err)
		assert.Equal(t, log.DebugLevel, cfg.LogLevel())
		assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, err := loadConfig("", "verbose", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig("/nonexistent/countdown.yaml", "", "")
		require.Error(t, err)
	})
}
