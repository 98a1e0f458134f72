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

package validation

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type validationTestSuite struct {
	suite.Suite
}

func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestNewChain() {
	s.Run("new chain without option", func() {
		chain := New()
		s.Assert().NotNil(chain)
		s.Assert().False(chain.failFast)
	})
	s.Run("new chain with fail fast", func() {
		chain := New(FailFast())
		s.Assert().True(chain.failFast)
	})
}

func (s *validationTestSuite) TestValidate() {
	s.Run("without violation", func() {
		chain := New().
			AddValidator(NewEmptyStringValidator("url", "nats://127.0.0.1:4222")).
			AddAssertion(true, "never")
		s.Assert().NoError(chain.Validate())
	})
	s.Run("with FailFast option", func() {
		chain := New(FailFast()).
			AddValidator(NewEmptyStringValidator("url", "")).
			AddAssertion(false, "this is false")
		s.Assert().EqualError(chain.Validate(), "the [url] is required")
	})
	s.Run("with all errors", func() {
		chain := New().
			AddValidator(NewEmptyStringValidator("url", "")).
			AddAssertion(false, "this is false")
		err := chain.Validate()
		s.Assert().EqualError(err, "the [url] is required; this is false")
		// a second run reports the same violations
		s.Assert().EqualError(chain.Validate(), err.Error())
	})
}

func (s *validationTestSuite) TestDurationValidators() {
	s.Assert().NoError(NewPositiveDurationValidator("interval", time.Second).Validate())
	s.Assert().EqualError(NewPositiveDurationValidator("interval", 0).Validate(), "the [interval] must be greater than zero")
	s.Assert().EqualError(NewPositiveDurationValidator("interval", -time.Second).Validate(), "the [interval] must not be negative")
	s.Assert().NoError(NewNonNegativeDurationValidator("margin", 0).Validate())
	s.Assert().EqualError(NewNonNegativeDurationValidator("margin", -time.Second).Validate(), "the [margin] must not be negative")
}

func (s *validationTestSuite) TestPatternValidator() {
	pattern := regexp.MustCompile(`^[a-z]+$`)
	s.Assert().NoError(NewPatternValidator("prefix", pattern, "countdown", "must be lowercase").Validate())
	s.Assert().EqualError(NewPatternValidator("prefix", pattern, "Count", "must be lowercase").Validate(), "the [prefix] must be lowercase")
}
