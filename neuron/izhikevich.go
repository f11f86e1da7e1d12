// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuron

import (
	"github.com/emer/spikegen/hashacc"
)

// Izhikevich state variable indexes.  The per-neuron parameters
// A..D only exist for IzhikevichVariable.
const (
	IzhV = iota
	IzhU
	IzhA
	IzhB
	IzhC
	IzhD
)

// IzhPeak is the spike peak at which V is capped and reset
const IzhPeak = 30

// IzhThresh is the spike detection threshold, just under IzhPeak
const IzhThresh = 29.99

// Izhikevich are the parameters of the Izhikevich (2003) neuron.
// Defaults are for a regular spiking cell.
type Izhikevich struct {

	// time scale of the recovery variable U
	A float32 `def:"0.02"`

	// sensitivity of U to subthreshold V
	B float32 `def:"0.2"`

	// after-spike reset of V
	C float32 `def:"-65"`

	// after-spike increment of U
	D float32 `def:"8"`
}

func (iz *Izhikevich) Model() Models { return IzhikevichModel }

func (iz *Izhikevich) Defaults() {
	iz.A = 0.02
	iz.B = 0.2
	iz.C = -65
	iz.D = 8
}

func (iz *Izhikevich) Update() {
}

func (iz *Izhikevich) Vars() []string { return []string{"V", "U"} }

func (iz *Izhikevich) InitVals() []float32 { return []float32{-65, -20} }

func (iz *Izhikevich) UpdateHash(ac *hashacc.Accum) {
	ac.Float32(iz.A)
	ac.Float32(iz.B)
	ac.Float32(iz.C)
	ac.Float32(iz.D)
}

// Step advances one neuron by dt
func (iz *Izhikevich) Step(dt float32, v, u *float32, isyn float32) bool {
	return IzhStep(iz.A, iz.B, iz.C, iz.D, dt, v, u, isyn)
}

// IzhStep is the Izhikevich update with explicit parameters.  A neuron
// at the peak is first reset, then V is integrated in two half steps for
// numerical stability, and capped at the peak.
func IzhStep(a, b, c, d, dt float32, v, u *float32, isyn float32) bool {
	vm, rc := *v, *u
	if vm >= IzhPeak {
		vm = c
		rc += d
	}
	vm += 0.5 * (0.04*vm*vm + 5*vm + 140 - rc + isyn) * dt
	vm += 0.5 * (0.04*vm*vm + 5*vm + 140 - rc + isyn) * dt
	rc += a * (b*vm - rc) * dt
	if vm > IzhPeak {
		vm = IzhPeak
	}
	*v, *u = vm, rc
	return vm >= IzhThresh
}

// IzhikevichVariable is the Izhikevich neuron with A, B, C, D as per-neuron
// state variables, initialized to the values given here
type IzhikevichVariable struct {
	Izhikevich
}

func (iv *IzhikevichVariable) Model() Models { return IzhikevichVariableModel }

func (iv *IzhikevichVariable) Vars() []string {
	return []string{"V", "U", "A", "B", "C", "D"}
}

func (iv *IzhikevichVariable) InitVals() []float32 {
	return []float32{-65, -20, iv.A, iv.B, iv.C, iv.D}
}

// Step advances one neuron by dt using its own parameters
func (iv *IzhikevichVariable) Step(dt float32, v, u *float32, a, b, c, d float32, isyn float32) bool {
	return IzhStep(a, b, c, d, dt, v, u, isyn)
}
