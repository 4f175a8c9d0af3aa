// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx

import (
	psx "github.com/petenewcomb/psx-go"
	"go.uber.org/zap"
)

// Instrumented combines logging, tracing and metrics delegates, all backed
// by the global OpenTelemetry providers, into a single delegate. It is the
// delegate counterpart of [InstrumentedTask].
func Instrumented[C any](logger *zap.Logger) (psx.Delegate[C], error) {
	metrics, err := NewMetricsDelegate[C](nil, "")
	if err != nil {
		return nil, err
	}
	return psx.Delegates[C](
		NewLoggingDelegate[C](logger),
		NewTracingDelegate[C](nil),
		metrics,
	), nil
}

// InstrumentedTask applies [LoggedTask] and [TracedTask] to task, so that its
// log entries are written while its span is current.
func InstrumentedTask[C any](logger *zap.Logger, operationName string, task psx.Task[C]) psx.Task[C] {
	return TracedTask(operationName, LoggedTask(logger, operationName, task))
}
