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

// Package config loads the countdown settings from a YAML file.
//
// Durations are written as Go duration strings:
//
//	timer:
//	  pauseTimeout: 30m
//	  coarseInterval: 30s
//	  thresholds: [0s, 1m, 5m, 15m, 30m]
//	command:
//	  subtractMargin: 30s
//	log:
//	  level: info
//	nats:
//	  url: nats://127.0.0.1:4222
//	  subjectPrefix: countdown
//
// Every field is optional; missing fields keep their default value.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tochemey/countdown/command"
	natsdisplay "github.com/tochemey/countdown/display/nats"
	gerrors "github.com/tochemey/countdown/errors"
	"github.com/tochemey/countdown/internal/validation"
	"github.com/tochemey/countdown/log"
	"github.com/tochemey/countdown/timer"
)

// Config is the countdown configuration
type Config struct {
	Timer   TimerConfig   `yaml:"timer"`
	Command CommandConfig `yaml:"command"`
	Log     LogConfig     `yaml:"log"`
	NATS    NATSConfig    `yaml:"nats"`
}

// TimerConfig holds the timer engine settings
type TimerConfig struct {
	// PauseTimeout is how long a timer stays paused before resuming on its own
	PauseTimeout time.Duration `yaml:"pauseTimeout"`
	// CoarseInterval is the refresh interval above FineCutoff
	CoarseInterval time.Duration `yaml:"coarseInterval"`
	// FineInterval is the refresh interval below FineCutoff
	FineInterval time.Duration `yaml:"fineInterval"`
	FineCutoff   time.Duration `yaml:"fineCutoff"`
	FinalStretch time.Duration `yaml:"finalStretch"`
	// DisplayTimeout bounds every display call
	DisplayTimeout time.Duration `yaml:"displayTimeout"`
	// Thresholds are the remaining durations at which the owner is notified
	Thresholds []time.Duration `yaml:"thresholds"`
}

// CommandConfig holds the command policy settings
type CommandConfig struct {
	// SubtractMargin is the time that must remain after a subtraction
	SubtractMargin time.Duration `yaml:"subtractMargin"`
}

// LogConfig holds the logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// NATSConfig holds the NATS display settings. The console is used when URL is empty.
type NATSConfig struct {
	URL           string        `yaml:"url"`
	SubjectPrefix string        `yaml:"subjectPrefix"`
	MaxHandleAge  time.Duration `yaml:"maxHandleAge"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Timer: TimerConfig{
			PauseTimeout:   timer.DefaultPauseTimeout,
			CoarseInterval: timer.DefaultCoarseInterval,
			FineInterval:   timer.DefaultFineInterval,
			FineCutoff:     timer.DefaultFineCutoff,
			FinalStretch:   timer.DefaultFinalStretch,
			DisplayTimeout: timer.DefaultDisplayTimeout,
			Thresholds:     slices.Clone(timer.DefaultThresholds),
		},
		Command: CommandConfig{
			SubtractMargin: command.DefaultSubtractMargin,
		},
		Log: LogConfig{
			Level: log.InfoLevel.String(),
		},
		NATS: NATSConfig{
			SubjectPrefix: natsdisplay.DefaultSubjectPrefix,
			MaxHandleAge:  natsdisplay.DefaultMaxHandleAge,
		},
	}
}

// Load reads and validates the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", gerrors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration and reports every violation at once
func (c *Config) Validate() error {
	chain := validation.New().
		AddValidator(validation.NewPositiveDurationValidator("timer.pauseTimeout", c.Timer.PauseTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("timer.coarseInterval", c.Timer.CoarseInterval)).
		AddValidator(validation.NewPositiveDurationValidator("timer.fineInterval", c.Timer.FineInterval)).
		AddValidator(validation.NewPositiveDurationValidator("timer.fineCutoff", c.Timer.FineCutoff)).
		AddValidator(validation.NewPositiveDurationValidator("timer.finalStretch", c.Timer.FinalStretch)).
		AddValidator(validation.NewPositiveDurationValidator("timer.displayTimeout", c.Timer.DisplayTimeout)).
		AddAssertion(c.Timer.FinalStretch <= c.Timer.FineCutoff, "timer.finalStretch must not exceed timer.fineCutoff").
		AddValidator(validation.NewNonNegativeDurationValidator("command.subtractMargin", c.Command.SubtractMargin)).
		AddAssertion(log.ParseLevel(c.Log.Level) != log.InvalidLevel, fmt.Sprintf("log.level %q is not a valid level", c.Log.Level))

	for _, threshold := range c.Timer.Thresholds {
		chain.AddValidator(validation.NewNonNegativeDurationValidator("timer.thresholds", threshold))
	}

	if c.NATS.URL != "" {
		chain.AddValidator(c.DisplayConfig())
	}

	if err := chain.Validate(); err != nil {
		return fmt.Errorf("%w: %w", gerrors.ErrInvalidConfig, err)
	}
	return nil
}

// TimerOptions converts the timer settings into registry options
func (c *Config) TimerOptions() []timer.Option {
	return []timer.Option{
		timer.WithPauseTimeout(c.Timer.PauseTimeout),
		timer.WithCoarseInterval(c.Timer.CoarseInterval),
		timer.WithFineInterval(c.Timer.FineInterval),
		timer.WithFineCutoff(c.Timer.FineCutoff),
		timer.WithFinalStretch(c.Timer.FinalStretch),
		timer.WithDisplayTimeout(c.Timer.DisplayTimeout),
		timer.WithThresholds(c.Timer.Thresholds...),
	}
}

// CommandOptions converts the command settings into handler options
func (c *Config) CommandOptions() []command.Option {
	return []command.Option{
		command.WithSubtractMargin(c.Command.SubtractMargin),
	}
}

// LogLevel returns the configured log level
func (c *Config) LogLevel() log.Level {
	return log.ParseLevel(c.Log.Level)
}

// DisplayConfig returns the NATS display configuration
func (c *Config) DisplayConfig() *natsdisplay.Config {
	return &natsdisplay.Config{
		URL:           c.NATS.URL,
		SubjectPrefix: c.NATS.SubjectPrefix,
		MaxHandleAge:  c.NATS.MaxHandleAge,
	}
}
