// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package otpsx provides observability integrations for psx engines: a
// [psx.Delegate] for each of structured logging (zap), OpenTelemetry tracing,
// OpenTelemetry metrics and Prometheus metrics, plus task wrappers that
// create spans and carry trace context from a registering task to the task it
// registers.
//
// The delegates can be combined with [psx.Delegates] or, for the common
// case, [Instrumented].
package otpsx
