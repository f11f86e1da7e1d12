// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuron

import (
	"github.com/emer/spikegen/hashacc"
)

// RulkovMap state variable indexes
const (
	RulkovV = iota
	RulkovPreV
)

// RulkovMap are the parameters of the Rulkov map neuron, a discrete time
// map that is not integrated with dt: one step is one map iteration.
type RulkovMap struct {

	// spike height
	Vspike float32 `def:"60"`

	// nonlinearity parameter
	Alpha float32 `def:"3"`

	// excitability, shifting the fixed point
	Y float32 `def:"-2.468"`

	// input scaling
	Beta float32 `def:"0.0165"`

	// Vspike^2 * Alpha
	Ip0 float32 `view:"-" json:"-"`

	// Vspike * Y
	Ip1 float32 `view:"-" json:"-"`

	// Vspike * Alpha + Vspike * Y, the spike threshold
	Ip2 float32 `view:"-" json:"-"`
}

func (rm *RulkovMap) Model() Models { return RulkovMapModel }

func (rm *RulkovMap) Defaults() {
	rm.Vspike = 60
	rm.Alpha = 3
	rm.Y = -2.468
	rm.Beta = 0.0165
	rm.Update()
}

func (rm *RulkovMap) Update() {
	rm.Ip0 = rm.Vspike * rm.Vspike * rm.Alpha
	rm.Ip1 = rm.Vspike * rm.Y
	rm.Ip2 = rm.Vspike*rm.Alpha + rm.Vspike*rm.Y
}

func (rm *RulkovMap) Vars() []string { return []string{"V", "PreV"} }

func (rm *RulkovMap) InitVals() []float32 { return []float32{-60, -60} }

func (rm *RulkovMap) UpdateHash(ac *hashacc.Accum) {
	ac.Float32(rm.Vspike)
	ac.Float32(rm.Alpha)
	ac.Float32(rm.Y)
	ac.Float32(rm.Beta)
}

// Step iterates the map once for one neuron
func (rm *RulkovMap) Step(v, preV *float32, isyn float32) bool {
	switch {
	case *v <= 0:
		*preV = *v
		*v = rm.Ip0/(rm.Vspike-*v-rm.Beta*isyn) + rm.Ip1
	case *v < rm.Ip2 && *preV <= 0:
		*preV = *v
		*v = rm.Ip2
	default:
		*preV = *v
		*v = -rm.Vspike
	}
	return *v >= rm.Ip2
}
