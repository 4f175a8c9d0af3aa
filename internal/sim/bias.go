// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"
	"time"

	"pgregory.net/rapid"
)

// BiasedIntConfig draws integers in [Min, Max] that cluster around Med.
type BiasedIntConfig struct {
	Min int
	Med int
	Max int
}

func (c *BiasedIntConfig) Draw(t *rapid.T, name string) int {
	if c.Med < c.Min || c.Max < c.Med {
		panic(fmt.Sprint("invalid BiasedIntConfig:", *c))
	}
	// Offsetting by Med takes advantage of rapid's bias toward values near
	// zero as well as toward the bounds.
	return c.Med + rapid.IntRange(c.Min-c.Med, c.Max-c.Med).Draw(t, name)
}

// BiasedDurationConfig is the time.Duration counterpart of BiasedIntConfig.
type BiasedDurationConfig struct {
	Min time.Duration
	Med time.Duration
	Max time.Duration
}

func (c *BiasedDurationConfig) Draw(t *rapid.T, name string) time.Duration {
	if c.Med < c.Min || c.Max < c.Med {
		panic(fmt.Sprint("invalid BiasedDurationConfig:", *c))
	}
	return c.Med + time.Duration(rapid.Int64Range(int64(c.Min-c.Med), int64(c.Max-c.Med)).Draw(t, name))
}

// Chance is the probability of a drawn boolean being true.
type Chance float64

func (p Chance) Draw(t *rapid.T, name string) bool {
	// Always drawing, even for 0 and 1, keeps the recorded choice sequence
	// stable when probabilities are tweaked.
	v := rapid.Float64Range(0, 1).Draw(t, name)
	return v < float64(p) || p >= 1
}
