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
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	clocktesting "k8s.io/utils/clock/testing"

	gerrors "github.com/tochemey/countdown/errors"
	"github.com/tochemey/countdown/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type notification struct {
	channel string
	owner   string
	message string
}

// recordingDisplay keeps every call made by the engines in memory
type recordingDisplay struct {
	mu            sync.Mutex
	sequence      int
	live          map[Handle]Snapshot
	snapshots     []Snapshot
	deleted       []Handle
	notifications []notification
	creates       int
	updates       int

	createErr error
	updateErr error
	deleteErr error
}

var _ Display = (*recordingDisplay)(nil)

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{live: make(map[Handle]Snapshot)}
}

func (d *recordingDisplay) Create(_ context.Context, snapshot Snapshot) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.creates++
	if d.createErr != nil {
		return "", d.createErr
	}
	d.sequence++
	handle := Handle(fmt.Sprintf("h%d", d.sequence))
	d.live[handle] = snapshot
	d.snapshots = append(d.snapshots, snapshot)
	return handle, nil
}

func (d *recordingDisplay) Update(_ context.Context, handle Handle, snapshot Snapshot) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updates++
	if d.updateErr != nil {
		return "", d.updateErr
	}
	if _, ok := d.live[handle]; !ok {
		return "", gerrors.ErrStaleHandle
	}
	d.live[handle] = snapshot
	d.snapshots = append(d.snapshots, snapshot)
	return handle, nil
}

func (d *recordingDisplay) Delete(_ context.Context, handle Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deleteErr != nil {
		return d.deleteErr
	}
	if _, ok := d.live[handle]; !ok {
		return gerrors.ErrStaleHandle
	}
	delete(d.live, handle)
	d.deleted = append(d.deleted, handle)
	return nil
}

func (d *recordingDisplay) Notify(_ context.Context, channel, owner, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications = append(d.notifications, notification{channel: channel, owner: owner, message: message})
	return nil
}

func (d *recordingDisplay) setErrors(createErr, updateErr, deleteErr error) {
	d.mu.Lock()
	d.createErr, d.updateErr, d.deleteErr = createErr, updateErr, deleteErr
	d.mu.Unlock()
}

func (d *recordingDisplay) last() (Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.snapshots) == 0 {
		return Snapshot{}, false
	}
	return d.snapshots[len(d.snapshots)-1], true
}

func (d *recordingDisplay) messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	messages := make([]string, 0, len(d.notifications))
	for _, n := range d.notifications {
		messages = append(messages, n.message)
	}
	return messages
}

func (d *recordingDisplay) liveHandles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

func (d *recordingDisplay) deletedHandles() []Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Handle(nil), d.deleted...)
}

func (d *recordingDisplay) createCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.creates
}

func countMessage(messages []string, message string) int {
	var count int
	for _, m := range messages {
		if m == message {
			count++
		}
	}
	return count
}

func newTestRegistry(t *testing.T, display Display, opts ...Option) (*Registry, *clocktesting.FakeClock) {
	t.Helper()
	fakeClock := clocktesting.NewFakeClock(time.Date(2025, time.March, 1, 20, 0, 0, 0, time.UTC))
	opts = append([]Option{WithClock(fakeClock), WithLogger(log.DiscardLogger)}, opts...)
	registry, err := NewRegistry(display, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, registry.ShutdownAll(context.Background()))
	})
	return registry, fakeClock
}

// waitForWaiter blocks until an engine has armed its next wait
func waitForWaiter(t *testing.T, fakeClock *clocktesting.FakeClock) {
	t.Helper()
	require.Eventually(t, fakeClock.HasWaiters, time.Second, time.Millisecond)
}

// elapse moves the fake clock forward by total, step by step, letting the
// engine arm its next wait before every step
func elapse(t *testing.T, fakeClock *clocktesting.FakeClock, total, step time.Duration) {
	t.Helper()
	for total > 0 {
		d := min(step, total)
		waitForWaiter(t, fakeClock)
		fakeClock.Step(d)
		total -= d
	}
}

// awaitDisplay waits until the last rendered snapshot matches the condition
func awaitDisplay(t *testing.T, display *recordingDisplay, condition func(Snapshot) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		snapshot, ok := display.last()
		return ok && condition(snapshot)
	}, time.Second, time.Millisecond)
}

// lockedBuffer is a bytes.Buffer safe for a logger writing from the engine loop
type lockedBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}
