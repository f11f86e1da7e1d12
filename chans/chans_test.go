// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import (
	"testing"

	"github.com/chewxy/math32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-4)

func TestSingularLimits(t *testing.T) {
	// the rate functions are continuous through their removable singularities
	for _, tc := range []struct {
		name string
		fun  func(float32) (float32, float32)
		vm   float32
		a    bool
	}{
		{"m alpha", MRates, -52, true},
		{"m beta", MRates, -25, false},
		{"n alpha", NRates, -50, true},
	} {
		at0, bt0 := tc.fun(tc.vm)
		at1, bt1 := tc.fun(tc.vm + 0.001)
		v0, v1 := bt0, bt1
		if tc.a {
			v0, v1 = at0, at1
		}
		if dif := math32.Abs(v0 - v1); dif > 1.0e-3 {
			t.Errorf("%s discontinuous at %v: %v vs %v, dif: %v", tc.name, tc.vm, v0, v1, dif)
		}
	}
}

func TestRates(t *testing.T) {
	vms := []float32{-80, -60, -40, 0}
	// m alpha = 0.32 * (-52 - v) / (exp((-52 - v) / 4) - 1)
	coram := []float32{0.0081779197, 0.40068517, 4.0411995, 16.640038}
	for i, vm := range vms {
		am, _ := MRates(vm)
		if dif := math32.Abs(am-coram[i]) / coram[i]; dif > difTol {
			t.Errorf("m alpha err: idx: %v, vm: %v, am: %v, coram: %v, dif: %v\n", i, vm, am, coram[i], dif)
		}
	}
	// all rates are positive
	for vm := float32(-100); vm <= 50; vm += 0.5 {
		ma, mb := MRates(vm)
		ha, hb := HRates(vm)
		na, nb := NRates(vm)
		if ma <= 0 || mb <= 0 || ha <= 0 || hb <= 0 || na <= 0 || nb <= 0 {
			t.Errorf("non-positive rate at vm: %v: %v %v %v %v %v %v", vm, ma, mb, ha, hb, na, nb)
		}
	}
}

func TestGatesConductances(t *testing.T) {
	var gt Gates
	gt.Init()
	gbar := Chans{}
	gbar.SetAll(7.15, 1.43, 0.02672)
	g := gt.Conductances(gbar)
	cor := gbar.Na * math32.Pow(gt.M, 3) * gt.H
	if dif := math32.Abs(g.Na - cor); dif > 1.0e-7 {
		t.Errorf("Na conductance: %v, cor: %v", g.Na, cor)
	}
	var df Chans
	df.SetFmMinusOther(-60, Chans{Na: 50, K: -95, L: -63.563})
	if df.Na != -110 || df.K != 35 {
		t.Errorf("driving force: %+v", df)
	}
	if i := Current(g, df); math32.IsNaN(i) {
		t.Errorf("current is NaN")
	}
	gt.Step(-60, 0.004)
	if gt.M <= 0 || gt.M >= 1 || gt.H <= 0 || gt.H >= 1 || gt.N <= 0 || gt.N >= 1 {
		t.Errorf("gates out of (0, 1): %+v", gt)
	}
}
