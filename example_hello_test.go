// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	// Superfluous alias needed to work around
	// https://github.com/golang/go/issues/12794
	psx "github.com/petenewcomb/psx-go"
)

// "Hello world" example in which one task registers another.
//
//nolint:errcheck
func Example_hello() {
	ctx := context.Background()

	var mu sync.Mutex
	var words []string
	say := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		words = append(words, s)
	}

	engine := psx.NewEngine[string](nil)
	engine.Run(ctx, "world!", psx.NewTask(func(ctx context.Context, tc psx.TaskCtx[string]) error {
		say("Hello")
		tc.Register(ctx, psx.NewTask(func(ctx context.Context, tc psx.TaskCtx[string]) error {
			say(tc.Data())
			return nil
		}))
		return nil
	}))

	fmt.Println(strings.Join(words, " "))
	// Output: Hello world!
}
