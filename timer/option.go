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
	"slices"
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/tochemey/countdown/clock"
	"github.com/tochemey/countdown/log"
)

const (
	// DefaultPauseTimeout is how long a timer stays paused before resuming on its own
	DefaultPauseTimeout = 30 * time.Minute
	// DefaultCoarseInterval is the refresh interval above the fine cutoff
	DefaultCoarseInterval = 30 * time.Second
	// DefaultFineInterval is the refresh interval below the fine cutoff
	DefaultFineInterval = time.Second
	// DefaultFineCutoff is the remaining time under which the display refreshes every FineInterval
	DefaultFineCutoff = 330 * time.Second
	// DefaultFinalStretch is the remaining time under which a single wait runs to zero
	DefaultFinalStretch = 2 * time.Second
	// DefaultDisplayTimeout bounds every call made to the Display
	DefaultDisplayTimeout = 5 * time.Second
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(registry *Registry)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(registry *Registry)

// Apply applies the option to the registry
func (f OptionFunc) Apply(registry *Registry) {
	f(registry)
}

// WithLogger sets the logger used by the registry and its timers
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(registry *Registry) {
		registry.logger = logger
	})
}

// WithClock sets the time source. Tests use it to inject a fake clock.
func WithClock(clock clock.Clock) Option {
	return OptionFunc(func(registry *Registry) {
		registry.clock = clock
	})
}

// WithPauseTimeout sets how long a timer can stay paused before resuming on its own
func WithPauseTimeout(timeout time.Duration) Option {
	return OptionFunc(func(registry *Registry) {
		registry.pauseTimeout = timeout
	})
}

// WithCoarseInterval sets the refresh interval used above the fine cutoff
func WithCoarseInterval(interval time.Duration) Option {
	return OptionFunc(func(registry *Registry) {
		registry.coarseInterval = interval
	})
}

// WithFineInterval sets the refresh interval used below the fine cutoff
func WithFineInterval(interval time.Duration) Option {
	return OptionFunc(func(registry *Registry) {
		registry.fineInterval = interval
	})
}

// WithFineCutoff sets the remaining time under which the fine interval is used
func WithFineCutoff(cutoff time.Duration) Option {
	return OptionFunc(func(registry *Registry) {
		registry.fineCutoff = cutoff
	})
}

// WithFinalStretch sets the remaining time under which the timer waits exactly until zero
func WithFinalStretch(stretch time.Duration) Option {
	return OptionFunc(func(registry *Registry) {
		registry.finalStretch = stretch
	})
}

// WithDisplayTimeout bounds every call made to the Display
func WithDisplayTimeout(timeout time.Duration) Option {
	return OptionFunc(func(registry *Registry) {
		registry.displayTimeout = timeout
	})
}

// WithThresholds replaces the canonical notification thresholds.
// Whole-hour thresholds are always added.
func WithThresholds(thresholds ...time.Duration) Option {
	return OptionFunc(func(registry *Registry) {
		registry.thresholds = slices.Clone(thresholds)
	})
}

// WithMeter enables the OpenTelemetry timer instruments
func WithMeter(meter otelmetric.Meter) Option {
	return OptionFunc(func(registry *Registry) {
		registry.meter = meter
	})
}
