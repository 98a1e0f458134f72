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

// Package console renders timers as plain text lines on an io.Writer.
package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/countdown/errors"
	"github.com/tochemey/countdown/timer"
)

// Display writes one line per display operation
type Display struct {
	mu       sync.Mutex
	out      io.Writer
	sequence *atomic.Uint64
	live     map[timer.Handle]string
}

// enforce compilation error
var _ timer.Display = (*Display)(nil)

// New creates a Display writing to out
func New(out io.Writer) *Display {
	return &Display{
		out:      out,
		sequence: atomic.NewUint64(0),
		live:     make(map[timer.Handle]string),
	}
}

// Create implements timer.Display
func (d *Display) Create(_ context.Context, snapshot timer.Snapshot) (timer.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handle := timer.Handle(strconv.FormatUint(d.sequence.Inc(), 10))
	if err := d.render(handle, snapshot); err != nil {
		return "", err
	}
	d.live[handle] = snapshot.Channel
	return handle, nil
}

// Update implements timer.Display
func (d *Display) Update(_ context.Context, handle timer.Handle, snapshot timer.Snapshot) (timer.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.live[handle]; !ok {
		return "", gerrors.ErrStaleHandle
	}

	if err := d.render(handle, snapshot); err != nil {
		return "", err
	}
	return handle, nil
}

// Delete implements timer.Display
func (d *Display) Delete(_ context.Context, handle timer.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.live[handle]; !ok {
		return gerrors.ErrStaleHandle
	}
	delete(d.live, handle)
	return nil
}

// Notify implements timer.Display
func (d *Display) Notify(_ context.Context, channel, owner, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := fmt.Fprintf(d.out, "[%s] @%s %s\n", channel, owner, message); err != nil {
		return gerrors.NewErrDisplayUnavailable(err)
	}
	return nil
}

// Live returns the number of displays that have not been deleted
func (d *Display) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

func (d *Display) render(handle timer.Handle, snapshot timer.Snapshot) error {
	line := fmt.Sprintf("[%s] #%s %s | %s\n", snapshot.Channel, handle, snapshot.Title(), snapshot.Description())
	if _, err := io.WriteString(d.out, line); err != nil {
		return gerrors.NewErrDisplayUnavailable(err)
	}
	return nil
}
