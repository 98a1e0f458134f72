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

	goset "github.com/deckarep/golang-set/v2"
)

// DefaultThresholds is the canonical list of remaining durations at which the
// owner of a timer is notified. Whole hours are added on top of it.
var DefaultThresholds = []time.Duration{
	0,
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
}

// computeThresholds returns the canonical thresholds and one threshold per whole
// hour strictly below left, in descending order. Values that already fired are left out.
func computeThresholds(canonical []time.Duration, left time.Duration, fired goset.Set[time.Duration]) []time.Duration {
	pending := goset.NewThreadUnsafeSet[time.Duration]()
	for _, threshold := range canonical {
		if threshold >= 0 && threshold < left {
			pending.Add(threshold)
		}
	}

	for hour := time.Hour; hour < left; hour += time.Hour {
		pending.Add(hour)
	}

	thresholds := make([]time.Duration, 0, pending.Cardinality())
	for _, threshold := range pending.ToSlice() {
		if !fired.Contains(threshold) {
			thresholds = append(thresholds, threshold)
		}
	}

	slices.Sort(thresholds)
	slices.Reverse(thresholds)
	return thresholds
}
