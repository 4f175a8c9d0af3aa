// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package cerr lets packages declare their sentinel errors as constants.
package cerr

// Error is a string that satisfies the error interface.
type Error string

func (e Error) Error() string {
	return string(e)
}
