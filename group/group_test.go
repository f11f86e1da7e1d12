// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package group

import (
	"errors"
	"testing"

	"github.com/emer/spikegen/neuron"
)

func expectInvalid(t *testing.T, name string, fun func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		var he *InvalidHandleError
		if !ok || !errors.As(err, &he) {
			t.Errorf("%s: expected *InvalidHandleError panic, got %v", name, r)
		}
	}()
	fun()
}

func TestNeuronInit(t *testing.T) {
	prm := neuron.New(neuron.TraubMilesModel)
	ng := NewNeuron("_CPU", "tm", 0, prm, 5, 2, 2)
	if len(ng.Vars) != 4 {
		t.Fatalf("vars: %d", len(ng.Vars))
	}
	if ng.Var(neuron.TMV).Dim(0) != 2 || ng.Var(neuron.TMV).Dim(1) != 5 {
		t.Errorf("var shape: %v x %v", ng.Var(neuron.TMV).Dim(0), ng.Var(neuron.TMV).Dim(1))
	}
	iv := prm.InitVals()
	for vi, vt := range ng.Vars {
		for i, v := range vt.Values {
			if v != iv[vi] {
				t.Errorf("var %d idx %d: %v, want %v", vi, i, v, iv[vi])
			}
		}
	}
	for _, v := range ng.PrevSpikeTime.Values {
		if v != TimeMin {
			t.Fatalf("prev spike time: %v", v)
		}
	}
	if ng.VarByName("H") != ng.Vars[neuron.TMH] || ng.VarByName("X") != nil {
		t.Errorf("VarByName")
	}
	if ng.HasEvents() {
		t.Errorf("events enabled by default")
	}
	if !ng.SetEvents("V", -20) || ng.EventVar != neuron.TMV {
		t.Errorf("SetEvents V")
	}
	if ng.SetEvents("Q", 0) {
		t.Errorf("SetEvents of unknown var")
	}
	st := ng.SrcStateFor(3)
	if st.Dim(2) != 3 || len(st.Values) != 2*5*3 {
		t.Errorf("src state shape")
	}
	if ng.SrcStateFor(3) != st {
		t.Errorf("src state reallocated for same size")
	}
}

func TestCheck(t *testing.T) {
	ng := NewNeuron("_CPU", "lif", 0, neuron.New(neuron.LIFModel), 10, 2, 2)
	ng.Check("test", "_CPU", 10, 2)
	ng.Check("test", "_CPU", 0, 0)
	var nilg *Neuron
	expectInvalid(t, "nil", func() { nilg.Check("test", "_CPU", 1, 1) })
	expectInvalid(t, "foreign", func() { ng.Check("test", "_CUDA", 10, 2) })
	expectInvalid(t, "neurons", func() { ng.Check("test", "_CPU", 11, 2) })
	expectInvalid(t, "batch", func() { ng.Check("test", "_CPU", 10, 3) })
	expectInvalid(t, "model", func() { ng.CheckModel("test", neuron.PoissonModel) })

	sg := NewSynapse("_CPU", "syn", []string{"g", "d"}, 3, 4, 1)
	sg.Check("test", "_CPU", 3, 4, 1)
	if sg.VarIndex("d") != 1 || sg.VarIndex("x") != -1 {
		t.Errorf("synapse VarIndex")
	}
	var nils *Synapse
	expectInvalid(t, "nil synapse", func() { nils.Check("test", "_CPU", 1, 1, 1) })
	expectInvalid(t, "synapse size", func() { sg.Check("test", "_CPU", 3, 5, 1) })
	expectInvalid(t, "synapse foreign", func() { sg.Check("test", "_ISPC", 3, 4, 1) })
}

func TestParamsUpdated(t *testing.T) {
	lif := &neuron.LIF{C: 2, TauM: 20, Vrest: -65, Vreset: -70, Vthresh: -55}
	NewNeuron("_CPU", "lif", 0, lif, 4, 1, 2)
	if lif.Rm != 10 {
		t.Errorf("Rm not derived from literal params: %v, cor: 10", lif.Rm)
	}
}
