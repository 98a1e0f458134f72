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

// Package nats publishes the timer displays as CBOR events on a NATS server.
// Every display operation is published on the subject <prefix>.<channel> so a
// chat bridge can render it on the hosting platform.
package nats

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/countdown/errors"
	"github.com/tochemey/countdown/log"
	"github.com/tochemey/countdown/timer"
)

var subjectReplacer = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_")

type display struct {
	channel string
	created time.Time
}

// Display implements timer.Display on top of a NATS connection
type Display struct {
	connection *nats.Conn
	config     *Config
	logger     log.Logger

	mu       sync.Mutex
	displays map[timer.Handle]display
}

// enforce compilation error
var _ timer.Display = (*Display)(nil)

// Option configures the Display
type Option func(*Display)

// WithLogger sets the Display logger
func WithLogger(logger log.Logger) Option {
	return func(d *Display) {
		d.logger = logger
	}
}

// NewDisplay creates a Display publishing on the given connection
func NewDisplay(connection *nats.Conn, config *Config, opts ...Option) *Display {
	config.Sanitize()
	d := &Display{
		connection: connection,
		config:     config,
		logger:     log.DefaultLogger,
		displays:   make(map[timer.Handle]display),
	}

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Connect connects to the configured NATS server, retrying a few times
// with a growing delay
func Connect(ctx context.Context, config *Config) (*nats.Conn, error) {
	if err := config.Validate(); err != nil {
		return nil, multierr.Combine(gerrors.ErrInvalidConfig, err)
	}

	opts := nats.GetDefaultOptions()
	opts.Url = config.URL
	opts.Name = "countdown"
	opts.ReconnectWait = 2 * time.Second
	opts.MaxReconnect = -1

	const maxRetries = 5
	var connection *nats.Conn
	retrier := retry.NewRetrier(maxRetries, 100*time.Millisecond, opts.ReconnectWait)
	err := retrier.RunContext(ctx, func(context.Context) error {
		var err error
		connection, err = opts.Connect()
		return err
	})
	if err != nil {
		return nil, err
	}
	return connection, nil
}

// Create implements timer.Display
func (d *Display) Create(ctx context.Context, snapshot timer.Snapshot) (timer.Handle, error) {
	handle := timer.Handle(uuid.NewString())
	if err := d.publish(ctx, snapshotEvent(EventCreate, handle, snapshot)); err != nil {
		return "", err
	}

	d.mu.Lock()
	d.displays[handle] = display{channel: snapshot.Channel, created: time.Now()}
	d.mu.Unlock()
	return handle, nil
}

// Update implements timer.Display. A display older than the maximum handle age
// is replaced by a new one and the new handle returned.
func (d *Display) Update(ctx context.Context, handle timer.Handle, snapshot timer.Snapshot) (timer.Handle, error) {
	d.mu.Lock()
	current, ok := d.displays[handle]
	d.mu.Unlock()
	if !ok {
		return "", gerrors.ErrStaleHandle
	}

	if time.Since(current.created) >= d.config.MaxHandleAge {
		d.logger.Debugf("display (%s) of channel %s is too old, replacing it", handle, snapshot.Channel)
		replacement, err := d.Create(ctx, snapshot)
		if err != nil {
			return "", err
		}
		if err := d.Delete(ctx, handle); err != nil {
			d.logger.Infof("failed to delete display (%s): %v", handle, err)
		}
		return replacement, nil
	}

	if err := d.publish(ctx, snapshotEvent(EventUpdate, handle, snapshot)); err != nil {
		return "", err
	}
	return handle, nil
}

// Delete implements timer.Display
func (d *Display) Delete(ctx context.Context, handle timer.Handle) error {
	d.mu.Lock()
	current, ok := d.displays[handle]
	delete(d.displays, handle)
	d.mu.Unlock()
	if !ok {
		return gerrors.ErrStaleHandle
	}

	return d.publish(ctx, Event{
		Kind:      EventDelete,
		Timestamp: time.Now().UTC(),
		Handle:    string(handle),
		Channel:   current.channel,
	})
}

// Notify implements timer.Display
func (d *Display) Notify(ctx context.Context, channel, owner, message string) error {
	return d.publish(ctx, Event{
		Kind:      EventNotify,
		Timestamp: time.Now().UTC(),
		Channel:   channel,
		Owner:     owner,
		Message:   message,
	})
}

// Subject returns the subject the events of channel are published on
func (d *Display) Subject(channel string) string {
	return d.config.SubjectPrefix + "." + subjectReplacer.Replace(channel)
}

func (d *Display) publish(ctx context.Context, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}

	if err := d.connection.Publish(d.Subject(event.Channel), payload); err != nil {
		return toDisplayError(err)
	}

	// flushing needs a deadline
	if _, ok := ctx.Deadline(); ok {
		if err := d.connection.FlushWithContext(ctx); err != nil {
			return toDisplayError(err)
		}
	}
	return nil
}

// toDisplayError marks the errors that will not go away by retrying
func toDisplayError(err error) error {
	switch {
	case errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrConnectionDraining),
		errors.Is(err, nats.ErrAuthorization):
		return gerrors.NewErrDisplayUnavailable(err)
	default:
		return err
	}
}

func snapshotEvent(kind EventKind, handle timer.Handle, snapshot timer.Snapshot) Event {
	return Event{
		Kind:        kind,
		Timestamp:   time.Now().UTC(),
		Handle:      string(handle),
		Channel:     snapshot.Channel,
		Owner:       snapshot.Owner,
		Title:       snapshot.Title(),
		Description: snapshot.Description(),
		Status:      snapshot.Status.String(),
		Left:        snapshot.Left,
		Total:       snapshot.Total,
		Protected:   snapshot.Protected,
	}
}
