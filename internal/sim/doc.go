// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package sim generates and executes simulated psx runs. A plan is a forest
// of tasks: each task spends some self time, may fail or panic, and registers
// its children in one of several ways before returning. Plans are drawn with
// rapid according to a set of configuration parameters that determine the
// size and shape of the forest, and [Run] checks that the engine executed
// every planned task exactly once and reported each outcome faithfully.
package sim
