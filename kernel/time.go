// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

// kernel.Time contains all the timing state and parameter information for
// running a fixed-step simulation
type Time struct {

	// accumulated amount of time the simulation has been running,
	// in simulation-time (not real world time), in msec.
	Time float32

	// step counter: number of timesteps run since the last Reset.
	// This is also the recording index of the current step.
	Step int

	// amount of time to increment per step, in msec.
	Dt float32 `def:"0.1"`
}

// Defaults sets default values
func (tm *Time) Defaults() {
	tm.Dt = 0.1
}

// Reset resets the counters all back to zero
func (tm *Time) Reset() {
	tm.Time = 0
	tm.Step = 0
	if tm.Dt == 0 {
		tm.Defaults()
	}
}

// StepInc increments at the step level.  Time is recomputed from the
// step count so that it does not accumulate rounding error.
func (tm *Time) StepInc() {
	tm.Step++
	tm.Time = float32(tm.Step) * tm.Dt
}
