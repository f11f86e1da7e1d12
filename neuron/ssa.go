// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuron

import (
	"github.com/emer/spikegen/hashacc"
)

// SpikeSourceArray state variable indexes
const (
	SSAStartSpike = iota
	SSAEndSpike
)

// SpikeSourceArray emits spikes at the times listed in SpikeTimes.
// Each neuron owns the range [StartSpike, EndSpike) of SpikeTimes, which
// must be sorted within the range.  Indexes are stored as float32 state
// variables, exact up to 2^24.
type SpikeSourceArray struct {

	// spike times in msec, shared by all neurons of the group
	SpikeTimes []float32
}

func (sa *SpikeSourceArray) Model() Models { return SpikeSourceArrayModel }

func (sa *SpikeSourceArray) Defaults() {
}

func (sa *SpikeSourceArray) Update() {
}

func (sa *SpikeSourceArray) Vars() []string { return []string{"StartSpike", "EndSpike"} }

func (sa *SpikeSourceArray) InitVals() []float32 { return []float32{0, 0} }

func (sa *SpikeSourceArray) UpdateHash(ac *hashacc.Accum) {
	ac.Int(len(sa.SpikeTimes))
	for _, st := range sa.SpikeTimes {
		ac.Float32(st)
	}
}

// Step emits the next spike of one neuron if time t has reached it.
// At most one spike is emitted per step.
func (sa *SpikeSourceArray) Step(t float32, start *float32, end float32) bool {
	si := int(*start)
	if *start != end && si < len(sa.SpikeTimes) && t >= sa.SpikeTimes[si] {
		*start += 1
		return true
	}
	return false
}
