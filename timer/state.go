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
	"time"

	goset "github.com/deckarep/golang-set/v2"
)

// state holds the remaining time of one timer. It is not safe for concurrent
// use; the owning Engine guards it with its mutex.
//
// timeLeft never exceeds totalTime and no pending threshold is at or above
// timeLeft once popThresholds has run.
type state struct {
	channel   string
	owner     string
	protected bool

	totalTime time.Duration
	timeLeft  time.Duration
	// reference is the instant at which timeLeft was last authoritative.
	// It is meaningless while paused.
	reference time.Time
	paused    bool

	canonical  []time.Duration
	thresholds []time.Duration
	fired      goset.Set[time.Duration]
}

func newState(channel, owner string, protected bool, duration time.Duration, canonical []time.Duration, now time.Time) *state {
	fired := goset.NewThreadUnsafeSet[time.Duration]()
	return &state{
		channel:    channel,
		owner:      owner,
		protected:  protected,
		totalTime:  duration,
		timeLeft:   duration,
		reference:  now,
		canonical:  canonical,
		thresholds: computeThresholds(canonical, duration, fired),
		fired:      fired,
	}
}

// remaining returns the time left at now without mutating the state
func (s *state) remaining(now time.Time) time.Duration {
	if s.paused {
		return s.timeLeft
	}
	elapsed := max(now.Sub(s.reference), 0)
	return max(s.timeLeft-elapsed, 0)
}

// advance subtracts the time elapsed since the reference
func (s *state) advance(now time.Time) {
	if s.paused {
		return
	}
	s.timeLeft = s.remaining(now)
	s.reference = now
}

// pause freezes the remaining time. It returns false when already paused.
func (s *state) pause(now time.Time) bool {
	if s.paused {
		return false
	}
	s.advance(now)
	s.paused = true
	return true
}

// resume restarts the countdown from now. It returns false when not paused.
func (s *state) resume(now time.Time) bool {
	if !s.paused {
		return false
	}
	s.paused = false
	s.reference = now
	return true
}

// adjust adds delta to the remaining time, clamping it at zero. Adding time
// recomputes the pending thresholds for the new remaining time. Removing time
// keeps them all, so the thresholds the jump crossed fire on the next tick.
func (s *state) adjust(now time.Time, delta time.Duration) {
	s.advance(now)
	s.timeLeft = max(s.timeLeft+delta, 0)
	s.totalTime = max(s.totalTime+delta, s.timeLeft)
	if delta > 0 {
		s.thresholds = computeThresholds(s.canonical, s.timeLeft, s.fired)
	}
}

// popThresholds removes and returns the pending thresholds at or above the
// remaining time, highest first
func (s *state) popThresholds() []time.Duration {
	var popped []time.Duration
	for len(s.thresholds) > 0 && s.thresholds[0] >= s.timeLeft {
		threshold := s.thresholds[0]
		s.thresholds = s.thresholds[1:]
		s.fired.Add(threshold)
		popped = append(popped, threshold)
	}
	return popped
}

// nextThreshold returns the highest pending threshold
func (s *state) nextThreshold() (time.Duration, bool) {
	if len(s.thresholds) == 0 {
		return 0, false
	}
	return s.thresholds[0], true
}

// pendingThresholds returns a copy of the pending thresholds
func (s *state) pendingThresholds() []time.Duration {
	thresholds := make([]time.Duration, len(s.thresholds))
	copy(thresholds, s.thresholds)
	return thresholds
}
