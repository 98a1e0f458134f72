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

package command

import (
	"time"

	"github.com/tochemey/countdown/log"
)

// DefaultSubtractMargin is the time that must remain after a subtraction
const DefaultSubtractMargin = 30 * time.Second

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(handler *Handler)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(handler *Handler)

// Apply applies the option to the handler
func (f OptionFunc) Apply(handler *Handler) {
	f(handler)
}

// WithLogger sets the handler logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(handler *Handler) {
		handler.logger = logger
	})
}

// WithSubtractMargin sets the time that must remain after a subtraction.
// Subtracting more is refused and the user is told to stop the timer instead.
func WithSubtractMargin(margin time.Duration) Option {
	return OptionFunc(func(handler *Handler) {
		handler.subtractMargin = margin
	})
}
