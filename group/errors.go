// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package group

import "fmt"

// InvalidHandleError reports a nil, foreign or mis-sized group handle or
// recording buffer passed to a kernel entry point.  This is a programming
// error in the orchestrating runtime: entry points panic with it.
type InvalidHandleError struct {

	// entry point that received the handle
	Op string

	// name of the group or buffer, if known
	Name string

	// what is wrong with it
	Reason string
}

func (he *InvalidHandleError) Error() string {
	if he.Name == "" {
		return fmt.Sprintf("group: %s: invalid handle: %s", he.Op, he.Reason)
	}
	return fmt.Sprintf("group: %s: invalid handle %q: %s", he.Op, he.Name, he.Reason)
}

// Invalid panics with an *InvalidHandleError
func Invalid(op, name, reason string, args ...any) {
	panic(&InvalidHandleError{Op: op, Name: name, Reason: fmt.Sprintf(reason, args...)})
}
