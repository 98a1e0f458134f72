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
	"sort"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/multierr"
	otelmetric "go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/countdown/clock"
	gerrors "github.com/tochemey/countdown/errors"
	"github.com/tochemey/countdown/internal/metric"
	"github.com/tochemey/countdown/log"
)

const shardCount = 32

type shard struct {
	mu      sync.RWMutex
	engines map[string]*Engine
}

// Registry maps a channel to the single timer running in it.
// Channels are spread over shards; a shard lock is the only synchronization
// point shared by different timers.
type Registry struct {
	display Display
	shards  []*shard

	logger         log.Logger
	clock          clock.Clock
	pauseTimeout   time.Duration
	coarseInterval time.Duration
	fineInterval   time.Duration
	fineCutoff     time.Duration
	finalStretch   time.Duration
	displayTimeout time.Duration
	thresholds     []time.Duration

	meter  otelmetric.Meter
	metric *metric.TimerMetric
}

// NewRegistry creates a Registry rendering its timers on the given Display
func NewRegistry(display Display, opts ...Option) (*Registry, error) {
	registry := &Registry{
		display:        display,
		shards:         make([]*shard, shardCount),
		logger:         log.DefaultLogger,
		clock:          clock.New(),
		pauseTimeout:   DefaultPauseTimeout,
		coarseInterval: DefaultCoarseInterval,
		fineInterval:   DefaultFineInterval,
		fineCutoff:     DefaultFineCutoff,
		finalStretch:   DefaultFinalStretch,
		displayTimeout: DefaultDisplayTimeout,
		thresholds:     DefaultThresholds,
	}

	for i := range registry.shards {
		registry.shards[i] = &shard{engines: make(map[string]*Engine)}
	}

	for _, opt := range opts {
		opt.Apply(registry)
	}

	if registry.meter != nil {
		if err := registry.registerMetrics(); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Get returns the timer running in channel
func (r *Registry) Get(channel string) (*Engine, bool) {
	shard := r.shard(channel)
	shard.mu.RLock()
	engine, ok := shard.engines[channel]
	shard.mu.RUnlock()
	return engine, ok
}

// Create starts a timer in channel. It fails with errors.ErrInvalidDuration
// when duration is not positive and with errors.ErrAlreadyRunning when the
// channel already has a timer. The first display is created before Create
// returns; when the Display reports errors.ErrDisplayUnavailable the timer
// is discarded and the error returned.
func (r *Registry) Create(ctx context.Context, channel, owner string, duration time.Duration, protected bool) (*Engine, error) {
	if duration <= 0 {
		return nil, gerrors.NewErrInvalidDuration(duration)
	}

	shard := r.shard(channel)
	shard.mu.Lock()
	if _, ok := shard.engines[channel]; ok {
		shard.mu.Unlock()
		return nil, gerrors.NewErrAlreadyRunning(channel)
	}

	engine := newEngine(r, channel, owner, protected, duration)
	// commands reaching the engine before its first display wait on its lock
	engine.mu.Lock()
	defer engine.mu.Unlock()
	shard.engines[channel] = engine
	shard.mu.Unlock()

	now := r.clock.Now()
	createCtx, cancel := engine.displayContext(ctx)
	handle, err := r.display.Create(createCtx, engine.snapshot(now))
	cancel()

	switch {
	case err == nil:
		engine.handle = handle
	case isDisplayUnavailable(err):
		r.recordDisplayFailure("create")
		engine.abort()
		r.remove(channel, engine)
		engine.logger.Warnf("failed to start timer: %v", err)
		return nil, err
	default:
		r.recordDisplayFailure("create")
		engine.logger.Warnf("failed to create the timer display, retrying on next tick: %v", err)
	}

	r.recordStarted()
	engine.logger.Infof("timer started for %s", duration)
	go engine.run(engine.nextWait(now))
	return engine, nil
}

// Len returns the number of running timers
func (r *Registry) Len() int {
	var count int
	for _, shard := range r.shards {
		shard.mu.RLock()
		count += len(shard.engines)
		shard.mu.RUnlock()
	}
	return count
}

// Channels returns the sorted list of channels having a timer
func (r *Registry) Channels() []string {
	var channels []string
	for _, shard := range r.shards {
		shard.mu.RLock()
		for channel := range shard.engines {
			channels = append(channels, channel)
		}
		shard.mu.RUnlock()
	}
	sort.Strings(channels)
	return channels
}

// ShutdownAll stops every running timer concurrently and waits for all of them.
// A failing timer does not prevent the others from stopping; the failures are
// combined in the returned error.
func (r *Registry) ShutdownAll(ctx context.Context) error {
	var engines []*Engine
	for _, shard := range r.shards {
		shard.mu.RLock()
		for _, engine := range shard.engines {
			engines = append(engines, engine)
		}
		shard.mu.RUnlock()
	}

	if len(engines) == 0 {
		return nil
	}

	r.logger.Infof("shutting down %d timer(s)", len(engines))

	var (
		mu   sync.Mutex
		errs error
		eg   errgroup.Group
	)

	for _, engine := range engines {
		eg.Go(func() error {
			if _, err := engine.Shutdown(ctx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = eg.Wait()
	return errs
}

// remove deletes the entry of channel when it still points to engine
func (r *Registry) remove(channel string, engine *Engine) {
	shard := r.shard(channel)
	shard.mu.Lock()
	if current, ok := shard.engines[channel]; ok && current == engine {
		delete(shard.engines, channel)
	}
	shard.mu.Unlock()
}

func (r *Registry) shard(channel string) *shard {
	return r.shards[xxh3.HashString(channel)%uint64(len(r.shards))]
}

func (r *Registry) registerMetrics() error {
	instruments, err := metric.NewTimerMetric(r.meter)
	if err != nil {
		return err
	}

	_, err = r.meter.RegisterCallback(func(_ context.Context, observer otelmetric.Observer) error {
		observer.ObserveInt64(instruments.Active(), int64(r.Len()))
		return nil
	}, instruments.Active())
	if err != nil {
		return err
	}

	r.metric = instruments
	return nil
}

func (r *Registry) recordStarted() {
	if r.metric != nil {
		r.metric.RecordStarted(context.Background())
	}
}

func (r *Registry) recordCompleted() {
	if r.metric != nil {
		r.metric.RecordCompleted(context.Background())
	}
}

func (r *Registry) recordStopped(reason stopReason) {
	if r.metric != nil {
		r.metric.RecordStopped(context.Background(), reason.String())
	}
}

func (r *Registry) recordThreshold() {
	if r.metric != nil {
		r.metric.RecordThreshold(context.Background())
	}
}

func (r *Registry) recordDisplayFailure(operation string) {
	if r.metric != nil {
		r.metric.RecordDisplayFailure(context.Background(), operation)
	}
}
