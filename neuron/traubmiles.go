// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuron

import (
	"github.com/emer/spikegen/chans"
	"github.com/emer/spikegen/hashacc"
)

// TraubMiles state variable indexes
const (
	TMV = iota
	TMM
	TMH
	TMN
)

// TraubMilesSubSteps is the number of Euler substeps per timestep
const TraubMilesSubSteps = 25

// TraubMiles are the parameters of the Traub & Miles (1991) Hodgkin-Huxley
// neuron.  Conductances in muS, potentials in mV, capacitance in nF.
type TraubMiles struct {

	// maximal conductances of the Na, K and leak channels
	Gbar chans.Chans `view:"inline"`

	// reversal potentials of the Na, K and leak channels
	Erev chans.Chans `view:"inline"`

	// membrane capacitance
	C float32 `def:"0.143"`
}

func (tm *TraubMiles) Model() Models { return TraubMilesModel }

func (tm *TraubMiles) Defaults() {
	tm.Gbar.SetAll(7.15, 1.43, 0.02672)
	tm.Erev.SetAll(50, -95, -63.563)
	tm.C = 0.143
}

func (tm *TraubMiles) Update() {
}

func (tm *TraubMiles) Vars() []string { return []string{"V", "M", "H", "N"} }

func (tm *TraubMiles) InitVals() []float32 {
	var gt chans.Gates
	gt.Init()
	return []float32{-60, gt.M, gt.H, gt.N}
}

func (tm *TraubMiles) UpdateHash(ac *hashacc.Accum) {
	ac.Float32(tm.Gbar.Na)
	ac.Float32(tm.Gbar.K)
	ac.Float32(tm.Gbar.L)
	ac.Float32(tm.Erev.Na)
	ac.Float32(tm.Erev.K)
	ac.Float32(tm.Erev.L)
	ac.Float32(tm.C)
}

// Step advances one neuron by dt in TraubMilesSubSteps Euler substeps.
// The membrane current uses the gates of the start of each substep.
// There is no reset: the neuron spikes while V >= 0.
func (tm *TraubMiles) Step(dt float32, v *float32, gt *chans.Gates, isyn float32) bool {
	mdt := dt / TraubMilesSubSteps
	vm := *v
	var df chans.Chans
	for st := 0; st < TraubMilesSubSteps; st++ {
		df.SetFmMinusOther(vm, tm.Erev)
		imem := -(chans.Current(gt.Conductances(tm.Gbar), df) - isyn)
		gt.Step(vm, mdt)
		vm += imem / tm.C * mdt
	}
	*v = vm
	return vm >= 0
}
