// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"fmt"

	"github.com/goki/ki/kit"
)

// States are the lifecycle states of a neuron group within a Session
type States int32

//go:generate stringer -type=States

var KiT_States = kit.Enums.AddEnum(StatesN, kit.NotBitFlag, nil)

func (ev States) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *States) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Uninitialized is before the session is seeded
	Uninitialized States = iota

	// Seeded is after Seed, before the first update
	Seeded

	// Updated is after a neuron update, before the spike queue rotation
	Updated

	// QueueRotated is after the spike queue rotation of a step
	QueueRotated

	// Recorded is after recording, which does not change what may follow
	Recorded

	// Finalized is after Finalize: no further calls are allowed
	Finalized

	StatesN
)

// StateError reports a call that is not allowed in the current state of
// a group, e.g., two updates without a spike queue rotation in between.
// This is a programming error: Session methods panic with it.
type StateError struct {

	// the Session method called
	Op string

	// name of the group
	Group string

	// state of the group at the time of the call
	State States

	// what the call requires
	Reason string
}

func (se *StateError) Error() string {
	return fmt.Sprintf("kernel: %s on group %q in state %v: %s", se.Op, se.Group, se.State, se.Reason)
}
