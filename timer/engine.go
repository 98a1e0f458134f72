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
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tochemey/countdown/clock"
	gerrors "github.com/tochemey/countdown/errors"
	"github.com/tochemey/countdown/log"
)

type stopReason int

const (
	reasonNone stopReason = iota
	reasonCompleted
	reasonStopped
	reasonShutdown
)

func (r stopReason) String() string {
	switch r {
	case reasonCompleted:
		return "completed"
	case reasonStopped:
		return "stop"
	case reasonShutdown:
		return "shutdown"
	default:
		return "none"
	}
}

// Engine drives a single countdown timer. It owns the timer state and the
// display handle, and runs one goroutine whose only suspension point is a
// clock timer waiting either for the next refresh or for the pause timeout.
//
// Every command locks the engine, mutates the state and wakes the loop so the
// pending wait is cancelled and the new state is rendered immediately.
// Commands issued against a terminated engine return errors.ErrNotFound,
// except Stop and Shutdown which are idempotent.
type Engine struct {
	id       string
	registry *Registry
	display  Display
	clock    clock.Clock
	logger   log.Logger

	mu         sync.Mutex
	state      *state
	handle     Handle
	pausedAt   time.Time
	terminated bool
	reason     stopReason
	final      time.Duration

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newEngine(registry *Registry, channel, owner string, protected bool, duration time.Duration) *Engine {
	id := uuid.NewString()
	return &Engine{
		id:       id,
		registry: registry,
		display:  registry.display,
		clock:    registry.clock,
		logger:   registry.logger.With("channel", channel, "owner", owner, "timer", id),
		state:    newState(channel, owner, protected, duration, registry.thresholds, registry.clock.Now()),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// ID returns the unique identifier of the engine
func (e *Engine) ID() string {
	return e.id
}

// Channel returns the channel the timer runs in
func (e *Engine) Channel() string {
	return e.state.channel
}

// Owner returns the user that started the timer
func (e *Engine) Owner() string {
	return e.state.owner
}

// Protected reports whether only the owner may manipulate the timer
func (e *Engine) Protected() bool {
	return e.state.protected
}

// TimeLeft returns the remaining time
func (e *Engine) TimeLeft() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return e.final
	}
	return e.state.remaining(e.clock.Now())
}

// TotalTime returns the cumulative configured duration
func (e *Engine) TotalTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.totalTime
}

// Paused reports whether the timer is paused
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.terminated && e.state.paused
}

// Thresholds returns the pending notification thresholds, highest first
func (e *Engine) Thresholds() []time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.pendingThresholds()
}

// Snapshot returns a copy of the current timer state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(e.clock.Now())
}

// Done is closed once the engine has terminated and released its resources
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Adjust adds delta to the remaining time. A negative delta larger than the
// remaining time clamps it to zero, which completes the timer.
// Thresholds are recomputed for the new remaining time.
func (e *Engine) Adjust(delta time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return gerrors.NewErrNotFound(e.state.channel)
	}

	e.state.adjust(e.clock.Now(), delta)
	e.logger.Debugf("timer adjusted by %s, %s left", delta, e.state.timeLeft)
	e.signal()
	return nil
}

// Subtract removes duration from the remaining time when at least margin
// remains afterwards, and fails with an InsufficientTimeError otherwise.
// The check and the change happen under the same lock.
func (e *Engine) Subtract(duration, margin time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return gerrors.NewErrNotFound(e.state.channel)
	}

	now := e.clock.Now()
	available := max(e.state.remaining(now)-margin, 0)
	if duration > available {
		return gerrors.NewInsufficientTimeError(duration, available)
	}

	e.state.adjust(now, -duration)
	e.logger.Debugf("timer reduced by %s, %s left", duration, e.state.timeLeft)
	e.signal()
	return nil
}

// Pause freezes the timer. Pausing a paused timer is a no-op.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return gerrors.NewErrNotFound(e.state.channel)
	}

	now := e.clock.Now()
	if e.state.pause(now) {
		e.pausedAt = now
		e.logger.Debugf("timer paused with %s left", e.state.timeLeft)
		e.signal()
	}
	return nil
}

// Resume restarts a paused timer. Resuming a running timer is a no-op.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return gerrors.NewErrNotFound(e.state.channel)
	}

	if e.state.resume(e.clock.Now()) {
		e.logger.Debugf("timer resumed with %s left", e.state.timeLeft)
		e.signal()
	}
	return nil
}

// Refresh deletes the current display and requests a new one. When resetPause
// is true a paused timer is resumed as well.
func (e *Engine) Refresh(ctx context.Context, resetPause bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return gerrors.NewErrNotFound(e.state.channel)
	}

	e.deleteDisplay(ctx, e.handle)
	e.handle = ""

	if resetPause {
		e.state.resume(e.clock.Now())
	}

	e.signal()
	return nil
}

// Stop terminates the timer and returns the time that was left. It waits for
// the loop to exit, deletes the display and removes the timer from the registry
// before returning. Stopping a terminated timer returns the same value again.
func (e *Engine) Stop(ctx context.Context) (time.Duration, error) {
	return e.terminate(ctx, reasonStopped)
}

// Shutdown behaves like Stop and also tells the channel the timer was stopped
// because the process is going down.
func (e *Engine) Shutdown(ctx context.Context) (time.Duration, error) {
	return e.terminate(ctx, reasonShutdown)
}

func (e *Engine) terminate(ctx context.Context, reason stopReason) (time.Duration, error) {
	e.mu.Lock()
	if !e.terminated {
		e.state.advance(e.clock.Now())
		e.terminated = true
		e.reason = reason
		e.final = e.state.timeLeft
		close(e.quit)
	}
	e.mu.Unlock()

	select {
	case <-e.done:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.final, nil
}

// signal wakes the loop up without blocking. It must be called with the lock held.
func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// run is the engine loop. wait is the first wait, computed when the initial
// display was created.
func (e *Engine) run(wait time.Duration) {
	defer close(e.done)

	for alive := true; alive; {
		timer := e.clock.NewTimer(wait)
		select {
		case <-timer.C():
			e.expire()
		case <-e.wake:
			timer.Stop()
		case <-e.quit:
			timer.Stop()
			e.finalize()
			return
		}
		wait, alive = e.tick()
	}

	e.finalize()
}

// expire handles a wait that ran to its end. A pause that lasted longer than
// the pause timeout is lifted.
func (e *Engine) expire() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated || !e.state.paused {
		return
	}

	if e.clock.Since(e.pausedAt) >= e.registry.pauseTimeout {
		e.logger.Infof("pause timed out after %s, resuming", e.registry.pauseTimeout)
		e.state.resume(e.clock.Now())
	}
}

// tick recomputes the remaining time, renders it, fires the crossed
// thresholds and returns the next wait. It returns false once the engine
// must terminate.
func (e *Engine) tick() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// the state rendered below already reflects any pending command
	select {
	case <-e.wake:
	default:
	}

	if e.terminated {
		return 0, false
	}

	now := e.clock.Now()
	e.state.advance(now)

	completed := e.state.timeLeft == 0
	if completed {
		e.terminated = true
		e.reason = reasonCompleted
		e.final = 0
	}

	e.render(now)

	for _, threshold := range e.state.popThresholds() {
		e.notify(thresholdMessage(threshold))
		e.registry.recordThreshold()
	}

	if completed {
		return 0, false
	}

	next := e.nextWait(now)
	if e.logger.Enabled(log.DebugLevel) {
		e.logger.Debugf("next refresh in %s, pending thresholds %v", next, e.state.pendingThresholds())
	}
	return next, true
}

// nextWait returns how long to wait before the next tick. It must be called
// with the lock held.
func (e *Engine) nextWait(now time.Time) time.Duration {
	if e.state.paused {
		return max(e.pausedAt.Add(e.registry.pauseTimeout).Sub(now), 0)
	}

	left := e.state.timeLeft
	var wait time.Duration
	switch {
	case left <= e.registry.finalStretch:
		wait = left
	case left <= e.registry.fineCutoff:
		wait = e.registry.fineInterval
	default:
		wait = min(e.registry.coarseInterval, left-e.registry.fineCutoff)
	}

	if next, ok := e.state.nextThreshold(); ok {
		wait = min(wait, left-next)
	}
	return wait
}

// render creates or updates the display. A failed update is replaced by a
// new display and the old one is deleted. It must be called with the lock held.
func (e *Engine) render(now time.Time) {
	snapshot := e.snapshot(now)

	if e.handle == "" {
		handle, err := e.createDisplay(snapshot)
		if err != nil {
			e.logger.Warnf("failed to create the timer display: %v", err)
			return
		}
		e.handle = handle
		return
	}

	ctx, cancel := e.displayContext(context.Background())
	handle, err := e.display.Update(ctx, e.handle, snapshot)
	cancel()
	if err == nil {
		if handle != "" {
			e.handle = handle
		}
		return
	}

	e.logger.Infof("failed to update the timer display, replacing it: %v", err)
	e.registry.recordDisplayFailure("update")

	stale := e.handle
	e.handle = ""
	if handle, err = e.createDisplay(snapshot); err != nil {
		e.logger.Warnf("failed to create the timer display: %v", err)
	} else {
		e.handle = handle
	}
	e.deleteDisplay(context.Background(), stale)
}

func (e *Engine) createDisplay(snapshot Snapshot) (Handle, error) {
	ctx, cancel := e.displayContext(context.Background())
	defer cancel()
	handle, err := e.display.Create(ctx, snapshot)
	if err != nil {
		e.registry.recordDisplayFailure("create")
		return "", err
	}
	return handle, nil
}

// deleteDisplay removes the display behind handle. Failures are logged only.
func (e *Engine) deleteDisplay(ctx context.Context, handle Handle) {
	if handle == "" {
		return
	}

	ctx, cancel := e.displayContext(ctx)
	defer cancel()
	if err := e.display.Delete(ctx, handle); err != nil {
		e.registry.recordDisplayFailure("delete")
		e.logger.Infof("failed to delete the timer display (%s): %v", handle, err)
	}
}

func (e *Engine) notify(message string) {
	ctx, cancel := e.displayContext(context.Background())
	defer cancel()
	if err := e.display.Notify(ctx, e.state.channel, e.state.owner, message); err != nil {
		e.registry.recordDisplayFailure("notify")
		e.logger.Warnf("failed to send notification %q: %v", message, err)
	}
}

func (e *Engine) displayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.registry.displayTimeout)
}

// snapshot must be called with the lock held
func (e *Engine) snapshot(now time.Time) Snapshot {
	snapshot := Snapshot{
		Channel:   e.state.channel,
		Owner:     e.state.owner,
		Protected: e.state.protected,
		Total:     e.state.totalTime,
		Left:      e.state.remaining(now),
		Status:    StatusRunning,
	}

	switch {
	case e.terminated && e.reason == reasonCompleted:
		snapshot.Left = 0
		snapshot.Status = StatusFinished
	case e.terminated:
		snapshot.Left = e.final
		snapshot.Status = StatusStopped
	case e.state.paused:
		snapshot.Status = StatusPaused
	}
	return snapshot
}

// finalize releases the display and removes the engine from the registry.
// It runs on the loop goroutine once no wait is pending anymore.
func (e *Engine) finalize() {
	e.mu.Lock()
	handle := e.handle
	reason := e.reason
	final := e.final
	e.handle = ""
	e.mu.Unlock()

	switch reason {
	case reasonCompleted:
		// the finished display stays visible
		e.logger.Info("timer finished")
		e.registry.recordCompleted()
	case reasonShutdown:
		e.deleteDisplay(context.Background(), handle)
		e.notify("**Server shutdown:** Timer stopped (" + FormatRemaining(final) + ")")
		e.logger.Infof("timer shut down with %s left", final)
		e.registry.recordStopped(reason)
	default:
		e.deleteDisplay(context.Background(), handle)
		e.logger.Infof("timer stopped with %s left", final)
		e.registry.recordStopped(reason)
	}

	e.registry.remove(e.state.channel, e)
}

// abort terminates an engine whose loop never started
func (e *Engine) abort() {
	e.terminated = true
	e.reason = reasonStopped
	e.final = e.state.timeLeft
	close(e.quit)
	close(e.done)
}

// isDisplayUnavailable reports whether err is an authorization-class display failure
func isDisplayUnavailable(err error) bool {
	return errors.Is(err, gerrors.ErrDisplayUnavailable)
}
