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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	gerrors "github.com/tochemey/countdown/errors"
	"github.com/tochemey/countdown/log"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("create rejects non positive durations", func(t *testing.T) {
		display := newRecordingDisplay()
		registry, _ := newTestRegistry(t, display)

		for _, duration := range []time.Duration{0, -time.Minute} {
			engine, err := registry.Create(ctx, "general", "alice", duration, false)
			require.ErrorIs(t, err, gerrors.ErrInvalidDuration)
			require.Nil(t, engine)
		}
		assert.Zero(t, registry.Len())
		assert.Zero(t, display.createCount())
	})

	t.Run("create, get and list", func(t *testing.T) {
		display := newRecordingDisplay()
		registry, _ := newTestRegistry(t, display)

		engine, err := registry.Create(ctx, "general", "alice", time.Minute, true)
		require.NoError(t, err)
		require.NotEmpty(t, engine.ID())
		assert.Equal(t, "general", engine.Channel())
		assert.Equal(t, "alice", engine.Owner())
		assert.True(t, engine.Protected())

		_, err = registry.Create(ctx, "random", "bob", time.Minute, false)
		require.NoError(t, err)

		actual, ok := registry.Get("general")
		require.True(t, ok)
		assert.Same(t, engine, actual)

		_, ok = registry.Get("unknown")
		assert.False(t, ok)

		assert.Equal(t, 2, registry.Len())
		assert.Equal(t, []string{"general", "random"}, registry.Channels())

		snapshot := engine.Snapshot()
		assert.Equal(t, Snapshot{
			Channel:   "general",
			Owner:     "alice",
			Protected: true,
			Total:     time.Minute,
			Left:      time.Minute,
			Status:    StatusRunning,
		}, snapshot)
	})

	t.Run("one timer per channel", func(t *testing.T) {
		display := newRecordingDisplay()
		registry, _ := newTestRegistry(t, display)

		_, err := registry.Create(ctx, "general", "alice", time.Minute, false)
		require.NoError(t, err)

		_, err = registry.Create(ctx, "general", "bob", time.Hour, false)
		require.ErrorIs(t, err, gerrors.ErrAlreadyRunning)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("concurrent creates on the same channel", func(t *testing.T) {
		display := newRecordingDisplay()
		registry, _ := newTestRegistry(t, display)

		const callers = 32
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			rejected  int
		)

		start := make(chan struct{})
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := registry.Create(ctx, "general", fmt.Sprintf("user-%d", i), time.Minute, false)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, gerrors.ErrAlreadyRunning):
					rejected++
				}
			}()
		}

		close(start)
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, callers-1, rejected)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("an unavailable display aborts the start", func(t *testing.T) {
		display := newRecordingDisplay()
		display.setErrors(gerrors.NewErrDisplayUnavailable(errors.New("missing access")), nil, nil)
		registry, _ := newTestRegistry(t, display)

		engine, err := registry.Create(ctx, "general", "alice", time.Minute, false)
		require.ErrorIs(t, err, gerrors.ErrDisplayUnavailable)
		require.Nil(t, engine)
		assert.Zero(t, registry.Len())

		// the channel is free again
		display.setErrors(nil, nil, nil)
		_, err = registry.Create(ctx, "general", "alice", time.Minute, false)
		require.NoError(t, err)
	})

	t.Run("a stopped timer frees its channel", func(t *testing.T) {
		display := newRecordingDisplay()
		registry, _ := newTestRegistry(t, display)

		engine, err := registry.Create(ctx, "general", "alice", time.Minute, false)
		require.NoError(t, err)
		_, err = engine.Stop(ctx)
		require.NoError(t, err)

		next, err := registry.Create(ctx, "general", "bob", time.Minute, false)
		require.NoError(t, err)
		assert.NotEqual(t, engine.ID(), next.ID())

		// removing a stale engine leaves the new one in place
		registry.remove("general", engine)
		actual, ok := registry.Get("general")
		require.True(t, ok)
		assert.Same(t, next, actual)
	})

	t.Run("shutdown all", func(t *testing.T) {
		display := newRecordingDisplay()
		registry, _ := newTestRegistry(t, display)

		channels := []string{"general", "random", "support", "events"}
		engines := make([]*Engine, 0, len(channels))
		for _, channel := range channels {
			engine, err := registry.Create(ctx, channel, "alice", 5*time.Minute, false)
			require.NoError(t, err)
			engines = append(engines, engine)
		}

		// a failing display does not prevent the timers from stopping
		display.setErrors(nil, nil, errors.New("unknown message"))
		require.NoError(t, registry.ShutdownAll(ctx))

		assert.Zero(t, registry.Len())
		for _, engine := range engines {
			select {
			case <-engine.Done():
			default:
				t.Fatalf("timer %s still running", engine.Channel())
			}
		}
		assert.Equal(t, len(channels), countMessage(display.messages(), "**Server shutdown:** Timer stopped (5′ 00″ remaining)"))
	})

	t.Run("shutdown all reports the timers that did not stop in time", func(t *testing.T) {
		display := newRecordingDisplay()
		registry, _ := newTestRegistry(t, display)

		_, err := registry.Create(ctx, "general", "alice", 5*time.Minute, false)
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if err := registry.ShutdownAll(cancelled); err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
		require.Eventually(t, func() bool { return registry.Len() == 0 }, time.Second, time.Millisecond)
	})

	t.Run("shutdown all without timers", func(t *testing.T) {
		registry, err := NewRegistry(newRecordingDisplay(), WithLogger(log.DiscardLogger))
		require.NoError(t, err)
		require.NoError(t, registry.ShutdownAll(ctx))
	})
}

func TestRegistryOptions(t *testing.T) {
	registry, err := NewRegistry(newRecordingDisplay(),
		WithLogger(log.DiscardLogger),
		WithPauseTimeout(time.Minute),
		WithCoarseInterval(time.Minute),
		WithFineInterval(2*time.Second),
		WithFineCutoff(10*time.Minute),
		WithFinalStretch(5*time.Second),
		WithDisplayTimeout(time.Second),
		WithThresholds(10*time.Minute, 0),
	)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, registry.pauseTimeout)
	assert.Equal(t, time.Minute, registry.coarseInterval)
	assert.Equal(t, 2*time.Second, registry.fineInterval)
	assert.Equal(t, 10*time.Minute, registry.fineCutoff)
	assert.Equal(t, 5*time.Second, registry.finalStretch)
	assert.Equal(t, time.Second, registry.displayTimeout)
	assert.Equal(t, []time.Duration{10 * time.Minute, 0}, registry.thresholds)
	assert.Nil(t, registry.metric)
}

func TestRegistryCadence(t *testing.T) {
	display := newRecordingDisplay()
	registry, fakeClock := newTestRegistry(t, display)
	now := fakeClock.Now()

	testCases := []struct {
		name     string
		duration time.Duration
		expected time.Duration
	}{
		{name: "coarse", duration: 2 * time.Hour, expected: DefaultCoarseInterval},
		{name: "coarse stops at the fine cutoff", duration: DefaultFineCutoff + 10*time.Second, expected: 10 * time.Second},
		{name: "coarse stops at the next threshold", duration: 3610 * time.Second, expected: 10 * time.Second},
		{name: "fine", duration: 200 * time.Second, expected: DefaultFineInterval},
		{name: "final stretch", duration: 1500 * time.Millisecond, expected: 1500 * time.Millisecond},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(registry, "general", "alice", false, tt.duration)
			assert.Equal(t, tt.expected, engine.nextWait(now))
		})
	}

	t.Run("paused", func(t *testing.T) {
		engine := newEngine(registry, "general", "alice", false, time.Hour)
		engine.state.pause(now)
		engine.pausedAt = now
		assert.Equal(t, DefaultPauseTimeout, engine.nextWait(now))
		assert.Equal(t, DefaultPauseTimeout-time.Minute, engine.nextWait(now.Add(time.Minute)))
		assert.Zero(t, engine.nextWait(now.Add(time.Hour)))
	})
}

func TestRegistryMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("with a meter", func(t *testing.T) {
		display := newRecordingDisplay()
		registry, _ := newTestRegistry(t, display, WithMeter(noop.NewMeterProvider().Meter("test")))
		require.NotNil(t, registry.metric)

		engine, err := registry.Create(ctx, "general", "alice", time.Minute, false)
		require.NoError(t, err)
		require.NoError(t, engine.Adjust(-time.Hour))
		<-engine.Done()
	})

	t.Run("callback registration failure", func(t *testing.T) {
		meter := callbackFailingMeter{Meter: noop.NewMeterProvider().Meter("test"), err: errors.New("boom")}
		registry, err := NewRegistry(newRecordingDisplay(), WithLogger(log.DiscardLogger), WithMeter(meter))
		require.Error(t, err)
		require.Nil(t, registry)
	})
}

type callbackFailingMeter struct {
	otelmetric.Meter
	err error
}

func (m callbackFailingMeter) RegisterCallback(otelmetric.Callback, ...otelmetric.Observable) (otelmetric.Registration, error) {
	return nil, m.err
}
