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

package nats

import (
	"regexp"
	"time"

	"github.com/tochemey/countdown/internal/validation"
)

const (
	// DefaultSubjectPrefix is the subject prefix used when none is configured
	DefaultSubjectPrefix = "countdown"
	// DefaultMaxHandleAge is the age after which a display is replaced instead
	// of updated. Chat platforms limit the edits of old messages.
	DefaultMaxHandleAge = time.Hour
)

// Config defines the NATS display settings
type Config struct {
	// URL of the NATS server
	URL string
	// SubjectPrefix is prepended to the channel to build the publish subject
	SubjectPrefix string
	// MaxHandleAge is the age after which a display is replaced
	MaxHandleAge time.Duration
}

// Sanitize fills the unset fields with their defaults
func (c *Config) Sanitize() {
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = DefaultSubjectPrefix
	}
	if c.MaxHandleAge <= 0 {
		c.MaxHandleAge = DefaultMaxHandleAge
	}
}

var subjectPrefixPattern = regexp.MustCompile(`^[^\s*>]*$`)

// Validate checks the configuration
func (c *Config) Validate() error {
	return validation.New().
		AddValidator(validation.NewEmptyStringValidator("nats url", c.URL)).
		AddValidator(validation.NewPatternValidator("nats subject prefix", subjectPrefixPattern, c.SubjectPrefix,
			"must not contain spaces or wildcards")).
		Validate()
}
