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

package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDuration is returned when a timer is started, or time is added or subtracted,
	// with a duration that is not strictly positive.
	ErrInvalidDuration = errors.New("duration must be greater than zero")

	// ErrAlreadyRunning is returned when a timer is started in a channel that already has one.
	ErrAlreadyRunning = errors.New("timer already running")

	// ErrUnauthorized is returned when a protected timer is manipulated by someone other than its owner.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientTime is returned when a subtraction would consume the remaining time.
	ErrInsufficientTime = errors.New("not enough time left")

	// ErrDisplayUnavailable is returned by a Display when the outward representation cannot be
	// created or updated because of missing permissions or a closed transport.
	ErrDisplayUnavailable = errors.New("display unavailable")

	// ErrNotFound is returned when no timer is running in the given channel.
	ErrNotFound = errors.New("timer not found")

	// ErrStaleHandle is returned by a Display when the given handle no longer refers to a live display.
	ErrStaleHandle = errors.New("stale display handle")

	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// NewErrAlreadyRunning formats an error with ErrAlreadyRunning
func NewErrAlreadyRunning(channel string) error {
	return fmt.Errorf("channel=(%s) %w", channel, ErrAlreadyRunning)
}

// NewErrNotFound formats an error with ErrNotFound
func NewErrNotFound(channel string) error {
	return fmt.Errorf("channel=(%s) %w", channel, ErrNotFound)
}

// NewErrInvalidDuration formats an error with ErrInvalidDuration
func NewErrInvalidDuration(duration time.Duration) error {
	return fmt.Errorf("duration=(%s) %w", duration, ErrInvalidDuration)
}

// NewErrDisplayUnavailable wraps a transport error with ErrDisplayUnavailable
func NewErrDisplayUnavailable(err error) error {
	return errors.Join(ErrDisplayUnavailable, err)
}

// UnauthorizedError is returned when a protected timer is manipulated by a user
// other than its owner. It carries the owner so callers can point the user at them.
type UnauthorizedError struct {
	owner  string
	caller string
}

// enforce compilation error
var _ error = (*UnauthorizedError)(nil)

// NewUnauthorizedError creates an instance of UnauthorizedError
func NewUnauthorizedError(owner, caller string) *UnauthorizedError {
	return &UnauthorizedError{owner: owner, caller: caller}
}

// Owner returns the owner of the protected timer
func (e *UnauthorizedError) Owner() string {
	return e.owner
}

// Caller returns the user that was refused
func (e *UnauthorizedError) Caller() string {
	return e.caller
}

// Error implements the standard error interface
func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("user=(%s) cannot manipulate timer owned by (%s): %v", e.caller, e.owner, ErrUnauthorized)
}

// Unwrap returns ErrUnauthorized so errors.Is works on the sentinel
func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// InsufficientTimeError is returned when a subtraction exceeds the available time.
type InsufficientTimeError struct {
	requested time.Duration
	available time.Duration
}

// enforce compilation error
var _ error = (*InsufficientTimeError)(nil)

// NewInsufficientTimeError creates an instance of InsufficientTimeError
func NewInsufficientTimeError(requested, available time.Duration) *InsufficientTimeError {
	return &InsufficientTimeError{requested: requested, available: available}
}

// Requested returns the duration the caller asked to subtract
func (e *InsufficientTimeError) Requested() time.Duration {
	return e.requested
}

// Available returns the duration that could be subtracted
func (e *InsufficientTimeError) Available() time.Duration {
	return e.available
}

// Error implements the standard error interface
func (e *InsufficientTimeError) Error() string {
	return fmt.Sprintf("cannot subtract %s, only %s available: %v", e.requested, e.available, ErrInsufficientTime)
}

// Unwrap returns ErrInsufficientTime so errors.Is works on the sentinel
func (e *InsufficientTimeError) Unwrap() error {
	return ErrInsufficientTime
}
