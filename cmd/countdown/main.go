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

// Command countdown runs per-channel countdown timers from an interactive
// terminal.
//
// Each channel holds at most one timer. The timer is shown on a display that
// is refreshed every 30 seconds, then every second during the last minutes,
// and its owner is notified when thresholds such as 30, 15, 5 and 1 minute
// remaining are crossed. Timers are rendered on the terminal by default or
// published to NATS when a server URL is configured:
//
//	countdown -config countdown.yaml
//	countdown -nats nats://127.0.0.1:4222 -channel general -user alice
//
// On SIGINT or SIGTERM every running timer is stopped and its owner told so.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"go.uber.org/multierr"

	"github.com/tochemey/countdown/command"
	"github.com/tochemey/countdown/config"
	"github.com/tochemey/countdown/display/console"
	natsdisplay "github.com/tochemey/countdown/display/nats"
	"github.com/tochemey/countdown/internal/metric"
	"github.com/tochemey/countdown/internal/osutil"
	"github.com/tochemey/countdown/log"
	"github.com/tochemey/countdown/timer"
)

const (
	commandTimeout  = 10 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	natsURL := flag.String("nats", "", "NATS server URL; timers are printed on the terminal when empty")
	channel := flag.String("channel", "general", "initial channel")
	user := flag.String("user", os.Getenv("USER"), "user issuing the commands")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *logLevel, *natsURL)
	if err != nil {
		return err
	}

	if *user == "" {
		*user = "anonymous"
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	logger := log.NewZap(cfg.LogLevel(), rl.Stderr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	display, closeDisplay, err := newDisplay(ctx, cfg, rl.Stdout(), logger)
	if err != nil {
		return err
	}
	defer closeDisplay()

	registry, err := timer.NewRegistry(display,
		append(cfg.TimerOptions(),
			timer.WithLogger(logger),
			timer.WithMeter(metric.New().Meter()))...)
	if err != nil {
		return fmt.Errorf("failed to create the timer registry: %w", err)
	}

	handler := command.NewHandler(registry, display, append(cfg.CommandOptions(), command.WithLogger(logger))...)

	shutdown := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return multierr.Combine(registry.ShutdownAll(ctx), logger.Flush())
	}

	done := make(chan struct{})
	defer close(done)
	osutil.RegisterExitHook(shutdown)
	osutil.HandleSignals(logger, done)

	shell := &session{
		handler:  handler,
		registry: registry,
		out:      rl.Stdout(),
		channel:  *channel,
		user:     *user,
		timeout:  commandTimeout,
	}

	_, _ = fmt.Fprintln(rl.Stdout(), helpText)
	for {
		rl.SetPrompt(shell.prompt())
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			break
		}
		if shell.execute(ctx, strings.TrimSpace(line)) {
			break
		}
	}

	_, _ = fmt.Fprintln(rl.Stdout(), "Exiting...")
	return shutdown()
}

// loadConfig reads the configuration file when given and applies the flag overrides
func loadConfig(path, logLevel, natsURL string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if natsURL != "" {
		cfg.NATS.URL = natsURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newDisplay returns the NATS display when a URL is configured and the terminal one otherwise
func newDisplay(ctx context.Context, cfg *config.Config, out io.Writer, logger log.Logger) (timer.Display, func(), error) {
	if cfg.NATS.URL == "" {
		return console.New(out), func() {}, nil
	}

	displayConfig := cfg.DisplayConfig()
	conn, err := natsdisplay.Connect(ctx, displayConfig)
	if err != nil {
		return nil, nil, err
	}

	logger.Infof("publishing timers to %s", displayConfig.URL)
	return natsdisplay.NewDisplay(conn, displayConfig, natsdisplay.WithLogger(logger)), conn.Close, nil
}
