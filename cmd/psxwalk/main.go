// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command psxwalk walks a directory tree using a psx engine, with one task per
// directory, and prints a summary of what it found.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
