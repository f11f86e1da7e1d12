// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"testing"

	"github.com/emer/spikegen/backend/cpu"
	"github.com/emer/spikegen/custom"
	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/neuron"
	"github.com/emer/spikegen/prefs"
)

func testNet() *Network {
	nt := NewNetwork("test")
	nt.AddGroup("in", neuron.New(neuron.PoissonModel), 20)
	out := nt.AddGroup("out", neuron.New(neuron.LIFModel), 10)
	out.Source = &custom.DC{Amp: 0.5}
	nt.AddSynapses("in_out", "in", "out", "G")
	return nt
}

func TestDigest(t *testing.T) {
	a, b := testNet(), testNet()
	if Digest(a) != Digest(b) {
		t.Errorf("equal networks hash differently")
	}
	if a.Describe() != b.Describe() {
		t.Errorf("equal networks describe differently")
	}
	b.Groups[1].N = 11
	if Digest(a) == Digest(b) {
		t.Errorf("group size not hashed")
	}
	c := testNet()
	c.Groups[1].Source = &custom.DC{Amp: 0.6}
	if Digest(a) == Digest(c) {
		t.Errorf("current source not hashed")
	}
	d := testNet()
	d.Groups[0].Params.(*neuron.Poisson).Rate = 20
	if Digest(a) == Digest(d) || a.Describe() == d.Describe() {
		t.Errorf("params not hashed and described")
	}
}

func TestValidate(t *testing.T) {
	nt := testNet()
	if err := nt.Validate(); err != nil {
		t.Errorf("valid network: %v", err)
	}
	nt.AddGroup("in", neuron.New(neuron.LIFModel), 1)
	nt.AddSynapses("bad", "in", "nowhere")
	nt.Groups[1].EventVar = "X"
	err := nt.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	var ej interface{ Unwrap() []error }
	if !errors.As(err, &ej) || len(ej.Unwrap()) != 3 {
		t.Errorf("expected 3 errors, got: %v", err)
	}
}

func TestBuild(t *testing.T) {
	nt := testNet()
	nt.BatchSize = 2
	ss := kernel.NewSession("test", cpu.New(prefs.NewSingleThreadedCPU()))
	bl, err := nt.Build(ss, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(bl.Neurons) != 2 || len(bl.Syns) != 1 {
		t.Fatalf("built %d neuron and %d synapse groups", len(bl.Neurons), len(bl.Syns))
	}
	if sg := bl.Syns[0]; sg.NPre != 20 || sg.NPost != 10 || sg.NBatch != 2 {
		t.Errorf("synapse group shape: %d x %d x %d", sg.NBatch, sg.NPre, sg.NPost)
	}
	for i := 0; i < 5; i++ {
		nt.Step(ss, bl)
	}
	if ss.Time.Step != 5 {
		t.Errorf("steps: %d", ss.Time.Step)
	}
	// DC input depolarizes the output group
	for i, v := range bl.Neurons[1].Vars[neuron.LIFV].Values {
		if !(v > -65) {
			t.Errorf("out v %d: %v", i, v)
		}
	}
	ss.Finalize()
}
