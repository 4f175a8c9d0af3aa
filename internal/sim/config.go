// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import "time"

var DefaultConfig = Config{
	Roots:    BiasedIntConfig{Min: 1, Med: 1, Max: 4},
	Children: BiasedIntConfig{Min: 0, Med: 1, Max: 4},
	MaxDepth: 4,
	MaxTasks: 200,
	SelfTime: BiasedDurationConfig{Min: 0, Med: 50 * time.Microsecond, Max: 2 * time.Millisecond},
	Workers:  BiasedIntConfig{Min: 0, Med: 2, Max: 8},

	ErrorProbability:    0.1,
	PanicProbability:    0.05,
	RepeatProbability:   0.05,
	BlockingProbability: 0.3,
	HoldProbability:     0.2,
}

type Config struct {
	Roots    BiasedIntConfig
	Children BiasedIntConfig
	MaxDepth int
	MaxTasks int
	SelfTime BiasedDurationConfig

	// Workers bounds the executor pool. Zero means the unbounded goroutine
	// executor.
	Workers BiasedIntConfig

	ErrorProbability    Chance
	PanicProbability    Chance
	RepeatProbability   Chance
	BlockingProbability Chance
	HoldProbability     Chance
}

// NewConfig returns a copy of DefaultConfig scaled down for short test runs.
func NewConfig(short bool) *Config {
	c := DefaultConfig
	if short {
		c.MaxTasks /= 4
		c.SelfTime.Med /= 10
		c.SelfTime.Max /= 10
	}
	return &c
}
