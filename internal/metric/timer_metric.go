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

package metric

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TimerMetric groups the OpenTelemetry instruments describing the timers.
//
// Instruments:
//   - timers.active            (Int64ObservableGauge)
//   - timers.started           (Int64Counter)
//   - timers.completed         (Int64Counter)
//   - timers.stopped           (Int64Counter, attribute "reason")
//   - timers.thresholds.fired  (Int64Counter)
//   - timers.display.failures  (Int64Counter, attribute "operation")
type TimerMetric struct {
	active          metric.Int64ObservableGauge
	started         metric.Int64Counter
	completed       metric.Int64Counter
	stopped         metric.Int64Counter
	thresholdsFired metric.Int64Counter
	displayFailures metric.Int64Counter
}

// NewTimerMetric creates the timer instruments using the given Meter.
// It returns an error if any instrument cannot be created.
func NewTimerMetric(meter metric.Meter) (*TimerMetric, error) {
	var instruments TimerMetric
	var err error

	if instruments.active, err = meter.Int64ObservableGauge(
		"timers.active",
		metric.WithDescription("Number of timers currently running or paused"),
	); err != nil {
		return nil, err
	}

	if instruments.started, err = meter.Int64Counter(
		"timers.started",
		metric.WithDescription("Total number of timers started"),
	); err != nil {
		return nil, err
	}

	if instruments.completed, err = meter.Int64Counter(
		"timers.completed",
		metric.WithDescription("Total number of timers that ran down to zero"),
	); err != nil {
		return nil, err
	}

	if instruments.stopped, err = meter.Int64Counter(
		"timers.stopped",
		metric.WithDescription("Total number of timers stopped before reaching zero"),
	); err != nil {
		return nil, err
	}

	if instruments.thresholdsFired, err = meter.Int64Counter(
		"timers.thresholds.fired",
		metric.WithDescription("Total number of threshold notifications sent"),
	); err != nil {
		return nil, err
	}

	if instruments.displayFailures, err = meter.Int64Counter(
		"timers.display.failures",
		metric.WithDescription("Total number of failed display operations"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// Active returns the gauge reporting the number of live timers.
// Use with Meter.RegisterCallback to observe it.
func (x *TimerMetric) Active() metric.Int64ObservableGauge {
	return x.active
}

// RecordStarted counts a started timer
func (x *TimerMetric) RecordStarted(ctx context.Context) {
	x.started.Add(ctx, 1)
}

// RecordCompleted counts a timer that reached zero
func (x *TimerMetric) RecordCompleted(ctx context.Context) {
	x.completed.Add(ctx, 1)
}

// RecordStopped counts a timer stopped for the given reason
func (x *TimerMetric) RecordStopped(ctx context.Context, reason string) {
	x.stopped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordThreshold counts a threshold notification
func (x *TimerMetric) RecordThreshold(ctx context.Context) {
	x.thresholdsFired.Add(ctx, 1)
}

// RecordDisplayFailure counts a failed display operation
func (x *TimerMetric) RecordDisplayFailure(ctx context.Context, operation string) {
	x.displayFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
