// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx_test

import (
	"context"
	"fmt"
	"io"

	psx "github.com/petenewcomb/psx-go"
	"github.com/petenewcomb/psx-go/otpsx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Example demonstrating a traced run in which a loading task registers a
// processing task whose span is parented under the loader's.
func Example_tracing() {
	// Configure a stdout exporter; io.Discard keeps the example output stable.
	exporter, _ := stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	// Create a root context with a parent span
	ctx, rootSpan := otel.Tracer("example").Start(context.Background(), "process-request")
	defer rootSpan.End()

	process := otpsx.TracedTask("process-data", psx.NewTask(func(ctx context.Context, tc psx.TaskCtx[[]int]) error {
		sum := 0
		for _, v := range tc.Data() {
			sum += v
		}
		fmt.Println("Final result:", sum)
		return nil
	}))

	load := otpsx.TracedTask("load-data", psx.NewTask(func(ctx context.Context, tc psx.TaskCtx[[]int]) error {
		fmt.Println("Loading data:", tc.Data())
		tc.Register(ctx, otpsx.Propagate(ctx, process))
		return nil
	}))

	engine := psx.NewEngine[[]int](otpsx.NewTracingDelegate[[]int](nil))
	if err := engine.Run(ctx, []int{1, 2, 3, 4, 5}, load); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Loading data: [1 2 3 4 5]
	// Final result: 15
}
