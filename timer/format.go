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
	"fmt"
	"math"
	"time"
)

// secondsCutoff is the remaining time under which the seconds are displayed
const secondsCutoff = 300

// FormatRemaining returns a human readable string for the given remaining time.
// Seconds are only shown once five minutes or less remain.
//
//	FormatRemaining(90 * time.Second)  // 1′ 30″ remaining
//	FormatRemaining(15 * time.Minute)  // 15 minutes remaining
//	FormatRemaining(62 * time.Minute)  // 1:02 remaining
func FormatRemaining(d time.Duration) string {
	total := math.Max(d.Seconds(), 0)

	seconds := math.Round(math.Mod(total, 60))
	if seconds > 59 || total > secondsCutoff {
		seconds = 0
	}

	minutes := math.Round(math.Mod(total-seconds, 3600) / 60)
	if minutes > 59 {
		minutes = 0
	}

	hours := math.Round((total - minutes*60 - seconds) / 3600)

	switch {
	case total > 3569:
		return fmt.Sprintf("%d:%02d remaining", int(hours), int(minutes))
	case total > secondsCutoff:
		return fmt.Sprintf("%d minutes remaining", int(minutes))
	case minutes > 0:
		return fmt.Sprintf("%d′ %02d″ remaining", int(minutes), int(seconds))
	default:
		return fmt.Sprintf("%d seconds remaining", int(seconds))
	}
}

// thresholdMessage is the notification text sent when threshold is crossed
func thresholdMessage(threshold time.Duration) string {
	if threshold <= 0 {
		return "timer finished"
	}
	return FormatRemaining(threshold)
}
