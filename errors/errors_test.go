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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	t.Run("formatted sentinels", func(t *testing.T) {
		err := NewErrAlreadyRunning("general")
		require.EqualError(t, err, "channel=(general) timer already running")
		assert.ErrorIs(t, err, ErrAlreadyRunning)

		err = NewErrNotFound("general")
		require.EqualError(t, err, "channel=(general) timer not found")
		assert.ErrorIs(t, err, ErrNotFound)

		err = NewErrInvalidDuration(-time.Second)
		require.EqualError(t, err, "duration=(-1s) duration must be greater than zero")
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("display unavailable keeps the cause", func(t *testing.T) {
		cause := errors.New("missing permission")
		err := NewErrDisplayUnavailable(cause)
		assert.ErrorIs(t, err, ErrDisplayUnavailable)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("unauthorized", func(t *testing.T) {
		err := NewUnauthorizedError("alice", "bob")
		require.Equal(t, "alice", err.Owner())
		require.Equal(t, "bob", err.Caller())
		require.EqualError(t, err, "user=(bob) cannot manipulate timer owned by (alice): unauthorized")
		assert.ErrorIs(t, err, ErrUnauthorized)

		var target *UnauthorizedError
		require.ErrorAs(t, error(err), &target)
		assert.Equal(t, "alice", target.Owner())
	})

	t.Run("insufficient time", func(t *testing.T) {
		err := NewInsufficientTimeError(time.Minute, 10*time.Second)
		require.Equal(t, time.Minute, err.Requested())
		require.Equal(t, 10*time.Second, err.Available())
		require.EqualError(t, err, "cannot subtract 1m0s, only 10s available: not enough time left")
		assert.ErrorIs(t, err, ErrInsufficientTime)
	})
}
