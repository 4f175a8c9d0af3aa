// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx

import (
	"github.com/petenewcomb/psx-go/executor"
	"go.uber.org/zap"
)

// An Option configures an [Engine].
type Option func(*options)

type options struct {
	logger *zap.Logger
	exec   executor.Executor
	ids    *IDSource
}

// WithLogger sets the logger for engine diagnostics. The engine logs at debug
// level except for dropped registrations (warn) and task panics (error). The
// default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithExecutor sets the executor used to launch tasks. The default is
// [executor.Goroutines].
func WithExecutor(ex executor.Executor) Option {
	return func(o *options) {
		o.exec = ex
	}
}

// WithIDSource sets the source of task IDs, allowing several engines to share
// one ID space. By default each engine has its own.
func WithIDSource(ids *IDSource) Option {
	return func(o *options) {
		o.ids = ids
	}
}
