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
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tochemey/countdown/command"
	"github.com/tochemey/countdown/timer"
)

const helpText = `Commands:
  start <duration> [protected]  start a timer, e.g. "start 1h30m" or "start 25"
  add <duration>                add time to the timer
  sub <duration>                subtract time from the timer
  pause                         pause the timer
  resume                        resume a paused timer
  stop                          stop the timer
  display                       display the timer anew
  list                          list the running timers
  channel <name>                switch to another channel
  user <name>                   act as another user
  help                          show this help
  quit                          leave`

// session runs the commands typed by a single terminal user.
// A bare number is read as minutes.
type session struct {
	handler  *command.Handler
	registry *timer.Registry
	out      io.Writer
	channel  string
	user     string
	timeout  time.Duration
}

// execute runs a single input line and reports whether the user asked to leave
func (s *session) execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		reply string
		err   error
	)

	switch name {
	case "help", "?":
		reply = helpText
	case "quit", "exit", "q":
		return true
	case "list", "ls":
		reply = s.list()
	case "channel":
		if len(args) != 1 {
			reply = "Usage: channel <name>"
			break
		}
		s.channel = args[0]
		reply = "Now in #" + s.channel
	case "user":
		if len(args) != 1 {
			reply = "Usage: user <name>"
			break
		}
		s.user = args[0]
		reply = "Now acting as @" + s.user
	case "start":
		duration := durationArg(args)
		protected := len(args) > 1 && strings.EqualFold(args[1], "protected")
		reply, err = s.handler.Start(ctx, s.channel, s.user, duration, protected)
	case "add":
		reply, err = s.handler.Add(ctx, s.channel, s.user, durationArg(args))
	case "sub":
		reply, err = s.handler.Subtract(ctx, s.channel, s.user, durationArg(args))
	case "pause":
		reply, err = s.handler.Pause(ctx, s.channel, s.user)
	case "resume":
		reply, err = s.handler.Resume(ctx, s.channel, s.user)
	case "stop":
		reply, err = s.handler.Stop(ctx, s.channel, s.user)
	case "display":
		reply, err = s.handler.Display(ctx, s.channel)
	default:
		reply = fmt.Sprintf("Unknown command: %s (type 'help' for commands)", name)
	}

	if err != nil {
		reply = command.Describe(err)
	}
	_, _ = fmt.Fprintln(s.out, reply)
	return false
}

func (s *session) list() string {
	channels := s.registry.Channels()
	if len(channels) == 0 {
		return "No timer running"
	}

	var builder strings.Builder
	for _, channel := range channels {
		engine, ok := s.registry.Get(channel)
		if !ok {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte('\n')
		}
		status := timer.StatusRunning
		if engine.Paused() {
			status = timer.StatusPaused
		}
		fmt.Fprintf(&builder, "#%s @%s %s (%s)", channel, engine.Owner(), timer.FormatRemaining(engine.TimeLeft()), status)
	}
	return builder.String()
}

func (s *session) prompt() string {
	return fmt.Sprintf("%s@#%s> ", s.user, s.channel)
}

// durationArg reads the duration given as first argument. A missing or
// malformed duration is zero, which the handler rejects.
func durationArg(args []string) time.Duration {
	if len(args) == 0 {
		return 0
	}
	return parseDuration(args[0])
}

func parseDuration(value string) time.Duration {
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return duration
}
