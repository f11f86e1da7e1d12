// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import "github.com/chewxy/math32"

// Gates are the gating variables of the Traub & Miles (1991) sodium and
// potassium channels.  Rate functions are in 1/msec with Vm in mV.
type Gates struct {
	M float32 `desc:"sodium activation"`
	H float32 `desc:"sodium inactivation"`
	N float32 `desc:"potassium activation"`
}

// Init sets the gates to their standard initial values
func (gt *Gates) Init() {
	gt.M = 0.0529324
	gt.H = 0.3176767
	gt.N = 0.5961207
}

// MRates returns the opening and closing rates of the m gate.
// The singular point at -52 mV is replaced by its limit.
func MRates(vm float32) (a, b float32) {
	if vm == -52 {
		a = 1.28
	} else {
		a = 0.32 * (-52 - vm) / (math32.Exp((-52-vm)/4) - 1)
	}
	if vm == -25 {
		b = 1.4
	} else {
		b = 0.28 * (vm + 25) / (math32.Exp((vm+25)/5) - 1)
	}
	return
}

// HRates returns the opening and closing rates of the h gate
func HRates(vm float32) (a, b float32) {
	a = 0.128 * math32.Exp((-48-vm)/18)
	b = 4 / (math32.Exp((-25-vm)/5) + 1)
	return
}

// NRates returns the opening and closing rates of the n gate.
// The singular point at -50 mV is replaced by its limit.
func NRates(vm float32) (a, b float32) {
	if vm == -50 {
		a = 0.16
	} else {
		a = 0.032 * (-50 - vm) / (math32.Exp((-50-vm)/5) - 1)
	}
	b = 0.5 * math32.Exp((-55-vm)/40)
	return
}

// Step integrates the gates over dt (msec) at membrane potential vm,
// using forward Euler on each gate in turn
func (gt *Gates) Step(vm, dt float32) {
	a, b := MRates(vm)
	gt.M += (a*(1-gt.M) - b*gt.M) * dt
	a, b = HRates(vm)
	gt.H += (a*(1-gt.H) - b*gt.H) * dt
	a, b = NRates(vm)
	gt.N += (a*(1-gt.N) - b*gt.N) * dt
}

// Conductances returns the gated conductances given the maximal conductances gbar
func (gt *Gates) Conductances(gbar Chans) Chans {
	return Chans{
		Na: gbar.Na * gt.M * gt.M * gt.M * gt.H,
		K:  gbar.K * gt.N * gt.N * gt.N * gt.N,
		L:  gbar.L,
	}
}
