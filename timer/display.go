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

package timer

import (
	"context"
	"time"
)

// Handle is an opaque reference to the outward representation of a timer.
// It is owned by the Engine that created it.
type Handle string

// Status is the state of a timer as seen by a Display
type Status int

const (
	StatusRunning Status = iota
	StatusPaused
	StatusFinished
	StatusStopped
)

// String returns the lowercase name of the status
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of a timer state handed to the Display
type Snapshot struct {
	Channel   string
	Owner     string
	Protected bool
	Total     time.Duration
	Left      time.Duration
	Status    Status
}

// Title returns the headline of the timer display
func (s Snapshot) Title() string {
	switch s.Status {
	case StatusFinished:
		return "Timer finished"
	case StatusStopped:
		return "Timer stopped with " + FormatRemaining(s.Left)
	case StatusPaused:
		return "Timer paused: " + FormatRemaining(s.Left)
	default:
		return FormatRemaining(s.Left)
	}
}

// Description returns the help line shown below the title
func (s Snapshot) Description() string {
	switch s.Status {
	case StatusFinished, StatusStopped:
		return "Use /timer start to start a new one."
	default:
		return "Add time with /timer add, subtract time with /timer sub"
	}
}

// Display renders, updates and deletes the outward representation of timers.
// Implementations must be safe for concurrent use by several engines.
//
// Expected failures are returned as errors. An error wrapping
// errors.ErrDisplayUnavailable from Create aborts the start of a timer; every
// other failure is logged by the engine and retried on the next tick.
type Display interface {
	// Create renders a new display and returns its handle
	Create(ctx context.Context, snapshot Snapshot) (Handle, error)
	// Update refreshes the display behind handle. It may return a different
	// handle when the display had to be replaced.
	Update(ctx context.Context, handle Handle, snapshot Snapshot) (Handle, error)
	// Delete removes the display behind handle
	Delete(ctx context.Context, handle Handle) error
	// Notify sends a message to the owner of the timer running in channel
	Notify(ctx context.Context, channel, owner, message string) error
}
