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

// Package command implements the timer commands issued by chat users. It
// enforces the access rules of protected timers and the subtraction policy
// before handing the request over to the timer engines, and turns every
// failure into a message telling the user what to do next.
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	gerrors "github.com/tochemey/countdown/errors"
	"github.com/tochemey/countdown/log"
	"github.com/tochemey/countdown/timer"
)

// Handler executes the timer commands against a Registry
type Handler struct {
	registry       *timer.Registry
	display        timer.Display
	logger         log.Logger
	subtractMargin time.Duration
}

// NewHandler creates a Handler. display is used to notify timer owners of
// actions taken by other users and should be the one the registry renders on.
func NewHandler(registry *timer.Registry, display timer.Display, opts ...Option) *Handler {
	handler := &Handler{
		registry:       registry,
		display:        display,
		logger:         log.DefaultLogger,
		subtractMargin: DefaultSubtractMargin,
	}

	for _, opt := range opts {
		opt.Apply(handler)
	}
	return handler
}

// Start starts a timer of the given duration in channel, owned by caller
func (h *Handler) Start(ctx context.Context, channel, caller string, duration time.Duration, protected bool) (string, error) {
	if _, err := h.registry.Create(ctx, channel, caller, duration, protected); err != nil {
		h.logger.Infof("channel=(%s) failed to start timer: %v", channel, err)
		return "", err
	}
	return "Timer starting", nil
}

// Add adds duration to the timer running in channel
func (h *Handler) Add(_ context.Context, channel, caller string, duration time.Duration) (string, error) {
	if duration <= 0 {
		return "", gerrors.NewErrInvalidDuration(duration)
	}

	engine, err := h.lookup(channel, caller)
	if err != nil {
		return "", err
	}

	if err := engine.Adjust(duration); err != nil {
		return "", err
	}

	h.logger.Infof("channel=(%s) %s added %s", channel, caller, duration)
	return fmt.Sprintf("Time added (%s)", duration), nil
}

// Subtract removes duration from the timer running in channel. The request is
// refused when less than the subtract margin would remain.
func (h *Handler) Subtract(_ context.Context, channel, caller string, duration time.Duration) (string, error) {
	if duration <= 0 {
		return "", gerrors.NewErrInvalidDuration(duration)
	}

	engine, err := h.lookup(channel, caller)
	if err != nil {
		return "", err
	}

	if err := engine.Subtract(duration, h.subtractMargin); err != nil {
		return "", err
	}

	h.logger.Infof("channel=(%s) %s subtracted %s", channel, caller, duration)
	return fmt.Sprintf("Time subtracted (%s)", duration), nil
}

// Pause pauses the timer running in channel. When caller does not own the
// timer its owner is notified.
func (h *Handler) Pause(ctx context.Context, channel, caller string) (string, error) {
	engine, err := h.lookup(channel, caller)
	if err != nil {
		return "", err
	}

	if err := engine.Pause(); err != nil {
		return "", err
	}

	if owner := engine.Owner(); owner != caller {
		if err := h.display.Notify(ctx, channel, owner, "timer paused by "+caller); err != nil {
			h.logger.Warnf("channel=(%s) failed to notify %s: %v", channel, owner, err)
		}
	}
	return "Timer paused", nil
}

// Resume resumes the timer running in channel
func (h *Handler) Resume(_ context.Context, channel, caller string) (string, error) {
	engine, err := h.lookup(channel, caller)
	if err != nil {
		return "", err
	}

	if err := engine.Resume(); err != nil {
		return "", err
	}
	return "Timer resumed", nil
}

// Stop stops the timer running in channel
func (h *Handler) Stop(ctx context.Context, channel, caller string) (string, error) {
	engine, err := h.lookup(channel, caller)
	if err != nil {
		return "", err
	}

	left, err := engine.Stop(ctx)
	if err != nil {
		return "", err
	}

	h.logger.Infof("channel=(%s) %s stopped the timer with %s left", channel, caller, left)
	return "Timer stopped with " + timer.FormatRemaining(left), nil
}

// Display displays the timer running in channel anew. Anyone may do it, even
// on a protected timer.
func (h *Handler) Display(ctx context.Context, channel string) (string, error) {
	engine, ok := h.registry.Get(channel)
	if !ok {
		return "", gerrors.NewErrNotFound(channel)
	}

	if err := engine.Refresh(ctx, false); err != nil {
		return "", err
	}
	return "Displaying timer anew", nil
}

// lookup returns the engine running in channel when caller may manipulate it
func (h *Handler) lookup(channel, caller string) (*timer.Engine, error) {
	engine, ok := h.registry.Get(channel)
	if !ok {
		return nil, gerrors.NewErrNotFound(channel)
	}

	if engine.Protected() && engine.Owner() != caller {
		h.logger.Infof("channel=(%s) %s is not allowed to manipulate the timer", channel, caller)
		return nil, gerrors.NewUnauthorizedError(engine.Owner(), caller)
	}
	return engine, nil
}

// Describe returns the message shown to a user whose command failed
func Describe(err error) string {
	var unauthorized *gerrors.UnauthorizedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unauthorized):
		return fmt.Sprintf("Protected timer: only %s can manipulate it.", unauthorized.Owner())
	case errors.Is(err, gerrors.ErrNotFound):
		return "No timer running in this channel. Use /timer start to start one."
	case errors.Is(err, gerrors.ErrAlreadyRunning):
		return "Timer already running: use /timer display to display it anew, /timer add or /timer sub to change it."
	case errors.Is(err, gerrors.ErrInvalidDuration):
		return "You must indicate how many hours/minutes you want the timer to run for."
	case errors.Is(err, gerrors.ErrInsufficientTime):
		return "Not enough time: use /timer stop to stop the timer."
	case errors.Is(err, gerrors.ErrDisplayUnavailable):
		return "Missing permission: the timer cannot be displayed in this channel."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "The timer did not answer in time, please try again."
	default:
		return "Something went wrong, please try again."
	}
}
