// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuron

import (
	"encoding/json"
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/spikegen/chans"
	"github.com/emer/spikegen/hashacc"
	"github.com/emer/spikegen/rng"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-3)

func TestLIFDecay(t *testing.T) {
	lf := &LIF{}
	lf.Defaults()
	dt := float32(0.1)
	etc := lf.ExpTC(dt)
	v, rf := float32(-60), float32(0)
	for i := 0; i < 100; i++ {
		if lf.Step(etc, dt, &v, &rf, 0) {
			t.Fatalf("spike at step %d with zero input", i)
		}
	}
	corv := lf.Vrest + 5*math32.Exp(-0.5)
	if dif := math32.Abs(v - corv); dif > difTol {
		t.Errorf("V err: v: %v, corv: %v, dif: %v", v, corv, dif)
	}
}

func TestLIFSpikeRefrac(t *testing.T) {
	lf := &LIF{}
	lf.Defaults()
	lf.TauRefrac = 2
	lf.Update()
	dt := float32(0.1)
	etc := lf.ExpTC(dt)
	v, rf := lf.Vrest, float32(0)
	first := -1
	for i := 0; i < 400; i++ {
		if lf.Step(etc, dt, &v, &rf, 1) {
			first = i
			break
		}
	}
	// alpha = -45: V crosses -55 at t = 20 ln 2 = 13.86 msec
	if first != 138 {
		t.Errorf("first spike step: %v, correct: %v", first, 138)
	}
	if v != lf.Vreset || rf != lf.TauRefrac {
		t.Errorf("reset: v: %v rf: %v", v, rf)
	}
	// V is clamped while refractory
	for i := 0; i < 19; i++ {
		lf.Step(etc, dt, &v, &rf, 1)
		if v != lf.Vreset {
			t.Fatalf("V changed during refractory step %d: %v", i, v)
		}
	}
}

func TestPoisson(t *testing.T) {
	ps := &Poisson{}
	ps.Defaults()
	ps.Rate = 100
	dt := float32(1)
	isi := ps.ISI(dt)
	if isi != 10 {
		t.Errorf("isi: %v, correct: 10", isi)
	}
	st := rng.NewStream(42, 0)
	tts := float32(0)
	nspk := 0
	for i := 0; i < 10000; i++ {
		if ps.Step(isi, &tts, st.Uniform()) {
			nspk++
		}
	}
	// mean interval is isi plus about half a step of discretization
	if nspk < 850 || nspk > 1050 {
		t.Errorf("poisson spike count: %v, expected about 950", nspk)
	}

	ps.Rate = 0
	tts = 0
	for i := 0; i < 100; i++ {
		if ps.Step(ps.ISI(dt), &tts, 0.5) {
			t.Fatalf("rate 0 spiked")
		}
	}
}

func TestSpikeSourceArray(t *testing.T) {
	sa := &SpikeSourceArray{SpikeTimes: []float32{1, 2, 5, 3}}
	start, end := float32(0), float32(3)
	var spks []int
	for ti := 0; ti < 8; ti++ {
		if sa.Step(float32(ti), &start, end) {
			spks = append(spks, ti)
		}
	}
	cor := []int{1, 2, 5}
	if len(spks) != len(cor) {
		t.Fatalf("spikes: %v, correct: %v", spks, cor)
	}
	for i := range cor {
		if spks[i] != cor[i] {
			t.Errorf("spike err: idx: %v, t: %v, cor: %v", i, spks[i], cor[i])
		}
	}
	if start != end {
		t.Errorf("start: %v, end: %v", start, end)
	}
}

func TestRulkovMap(t *testing.T) {
	rm := &RulkovMap{}
	rm.Defaults()
	if dif := math32.Abs(rm.Ip2 - 31.92); dif > difTol {
		t.Errorf("ip2: %v", rm.Ip2)
	}
	corv := []float32{-58.08, -56.61659, -55.46883, -54.54826, -53.7966, -53.17383}
	iv := rm.InitVals()
	v, pv := iv[RulkovV], iv[RulkovPreV]
	for i := range corv {
		if rm.Step(&v, &pv, 0) {
			t.Errorf("unexpected spike at %d", i)
		}
		if dif := math32.Abs(v - corv[i]); dif > difTol {
			t.Errorf("V err: idx: %v, v: %v, corv: %v, dif: %v", i, v, corv[i], dif)
		}
	}
	// depolarized with negative previous value: jump to the spike
	v, pv = 10, -1
	if !rm.Step(&v, &pv, 0) || v != rm.Ip2 {
		t.Errorf("spike branch: v: %v", v)
	}
	if rm.Step(&v, &pv, 0) || v != -rm.Vspike {
		t.Errorf("after spike: v: %v", v)
	}
}

func TestIzhikevich(t *testing.T) {
	iz := &Izhikevich{}
	iz.Defaults()
	corv := []float32{-50.72, -25.2908, 30, -60.4785, -55.5994, -48.1852, -31.1707, 30}
	corspk := []bool{false, false, true, false, false, false, false, true}
	v, u := float32(-65), float32(-20)
	for i := range corv {
		spk := iz.Step(1, &v, &u, 10)
		if dif := math32.Abs(v - corv[i]); dif > difTol {
			t.Errorf("V err: idx: %v, v: %v, corv: %v, dif: %v", i, v, corv[i], dif)
		}
		if spk != corspk[i] {
			t.Errorf("spike err: idx: %v, spk: %v, corspk: %v", i, spk, corspk[i])
		}
	}

	// the variable version with the same per-neuron values is identical
	iv := &IzhikevichVariable{}
	iv.Defaults()
	vals := iv.InitVals()
	v0, u0 := float32(-65), float32(-20)
	v1, u1 := vals[IzhV], vals[IzhU]
	for i := 0; i < 50; i++ {
		s0 := iz.Step(1, &v0, &u0, 10)
		s1 := iv.Step(1, &v1, &u1, vals[IzhA], vals[IzhB], vals[IzhC], vals[IzhD], 10)
		if v0 != v1 || u0 != u1 || s0 != s1 {
			t.Fatalf("variable model differs at %d: %v %v vs %v %v", i, v0, u0, v1, u1)
		}
	}
}

func TestTraubMiles(t *testing.T) {
	tm := &TraubMiles{}
	tm.Defaults()
	run := func(isyn float32) (first, n int) {
		iv := tm.InitVals()
		v := iv[TMV]
		gt := chans.Gates{M: iv[TMM], H: iv[TMH], N: iv[TMN]}
		first = -1
		for i := 0; i < 1000; i++ {
			if tm.Step(0.1, &v, &gt, isyn) {
				n++
				if first < 0 {
					first = i
				}
			}
			if math32.IsNaN(v) {
				t.Fatalf("V is NaN at step %d", i)
			}
		}
		return
	}
	if _, n := run(0); n != 0 {
		t.Errorf("spikes with zero input: %v", n)
	}
	first, n := run(1)
	if first < 30 || first > 45 || n == 0 {
		t.Errorf("first spike with input 1: %v, n: %v", first, n)
	}
}

func TestNewAndHash(t *testing.T) {
	for mod := LIFModel; mod < CustomModel; mod++ {
		pr := New(mod)
		if pr == nil || pr.Model() != mod {
			t.Errorf("New(%v): %v", mod, pr)
			continue
		}
		if len(pr.Vars()) != len(pr.InitVals()) {
			t.Errorf("%v: %d vars, %d init vals", mod, len(pr.Vars()), len(pr.InitVals()))
		}
	}
	if New(CustomModel) != nil {
		t.Errorf("New(CustomModel) should be nil")
	}
	if VarIndex(New(TraubMilesModel), "N") != TMN {
		t.Errorf("VarIndex N")
	}

	a := New(LIFModel).(*LIF)
	b := New(LIFModel).(*LIF)
	if hashacc.Of(a) != hashacc.Of(b) {
		t.Errorf("equal LIF params hash differently")
	}
	b.TauRefrac = 1
	if hashacc.Of(a) == hashacc.Of(b) {
		t.Errorf("different LIF params hash equal")
	}
	b2, err := json.Marshal(TraubMilesModel)
	if err != nil || string(b2) != `"TraubMilesModel"` {
		t.Errorf("json: %s %v", b2, err)
	}
}
