// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuron

import (
	"github.com/chewxy/math32"
	"github.com/emer/spikegen/hashacc"
)

// LIF state variable indexes
const (
	LIFV = iota
	LIFRefracTime
)

// LIF are the parameters of the leaky integrate-and-fire neuron.
// Membrane potential is in mV, times in msec, current in nA, capacitance in nF.
type LIF struct {

	// membrane capacitance
	C float32 `def:"1"`

	// membrane time constant
	TauM float32 `def:"20"`

	// resting potential
	Vrest float32 `def:"-65"`

	// reset potential after a spike
	Vreset float32 `def:"-70"`

	// spiking threshold
	Vthresh float32 `def:"-55"`

	// constant offset current
	Ioffset float32 `def:"0"`

	// refractory period after a spike
	TauRefrac float32 `def:"0"`

	// membrane resistance = TauM / C
	Rm float32 `view:"-" json:"-"`
}

func (lf *LIF) Model() Models { return LIFModel }

func (lf *LIF) Defaults() {
	lf.C = 1
	lf.TauM = 20
	lf.Vrest = -65
	lf.Vreset = -70
	lf.Vthresh = -55
	lf.Ioffset = 0
	lf.TauRefrac = 0
	lf.Update()
}

func (lf *LIF) Update() {
	lf.Rm = lf.TauM / lf.C
}

func (lf *LIF) Vars() []string { return []string{"V", "RefracTime"} }

func (lf *LIF) InitVals() []float32 { return []float32{lf.Vrest, 0} }

func (lf *LIF) UpdateHash(ac *hashacc.Accum) {
	ac.Float32(lf.C)
	ac.Float32(lf.TauM)
	ac.Float32(lf.Vrest)
	ac.Float32(lf.Vreset)
	ac.Float32(lf.Vthresh)
	ac.Float32(lf.Ioffset)
	ac.Float32(lf.TauRefrac)
}

// ExpTC returns the per-step membrane decay factor exp(-dt / TauM)
func (lf *LIF) ExpTC(dt float32) float32 {
	return math32.Exp(-dt / lf.TauM)
}

// Step advances one neuron by dt, given expTC = ExpTC(dt) and synaptic
// input isyn.  Returns true if the neuron spiked, in which case it has
// been reset.
func (lf *LIF) Step(expTC, dt float32, v, refrac *float32, isyn float32) bool {
	if *refrac <= 0 {
		alpha := (isyn+lf.Ioffset)*lf.Rm + lf.Vrest
		*v = alpha - expTC*(alpha-*v)
	} else {
		*refrac -= dt
	}
	if *refrac <= 0 && *v >= lf.Vthresh {
		*v = lf.Vreset
		*refrac = lf.TauRefrac
		return true
	}
	return false
}
