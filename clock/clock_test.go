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

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func TestClock(t *testing.T) {
	t.Run("wall clock timer fires", func(t *testing.T) {
		clk := New()
		start := clk.Now()
		timer := clk.NewTimer(10 * time.Millisecond)
		select {
		case <-timer.C():
		case <-time.After(time.Second):
			require.Fail(t, "timer did not fire")
		}
		assert.GreaterOrEqual(t, clk.Since(start), 10*time.Millisecond)
	})

	t.Run("stopped timer never fires", func(t *testing.T) {
		timer := New().NewTimer(10 * time.Millisecond)
		require.True(t, timer.Stop())
		select {
		case <-timer.C():
			require.Fail(t, "stopped timer fired")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("fake clock satisfies Clock", func(t *testing.T) {
		var clk Clock = testingclock.NewFakeClock(time.Unix(0, 0))
		timer := clk.NewTimer(time.Minute)
		clk.(*testingclock.FakeClock).Step(time.Minute)
		select {
		case <-timer.C():
		default:
			require.Fail(t, "fake timer did not fire after step")
		}
		assert.Equal(t, time.Minute, clk.Since(time.Unix(0, 0)))
	})
}
