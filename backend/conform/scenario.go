// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conform

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/spikegen/custom"
	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/model"
	"github.com/emer/spikegen/neuron"
)

// FloatTol is the tolerance on state variables between backends
const FloatTol = 1e-6

// MixedNetwork returns a network with a group of every model, most with
// a current source, and 3 batch elements
func MixedNetwork() *model.Network {
	nt := model.NewNetwork("mixed")
	nt.BatchSize = 3

	ps := &neuron.Poisson{}
	ps.Defaults()
	ps.Rate = 40
	nt.AddGroup("poisson", ps, 33)

	nt.AddGroup("ssa", &neuron.SpikeSourceArray{}, 5)

	lif := &neuron.LIF{}
	lif.Defaults()
	lif.TauRefrac = 2
	lg := nt.AddGroup("lif", lif, 37)
	lg.Source = &custom.GaussianNoise{Mean: 0.8, Sd: 0.5}

	rg := nt.AddGroup("rulkov", neuron.New(neuron.RulkovMapModel), 17)
	rg.Source = &custom.GaussianNoise{Mean: 0, Sd: 0.2}

	ig := nt.AddGroup("izh", neuron.New(neuron.IzhikevichModel), 29)
	ig.Source = &custom.PoissonExp{Weight: 4, TauSyn: 5, Rate: 800}

	vg := nt.AddGroup("izhvar", neuron.New(neuron.IzhikevichVariableModel), 11)
	vg.Source = &custom.DC{Amp: 10}

	tg := nt.AddGroup("tm", neuron.New(neuron.TraubMilesModel), 9)
	tg.Source = &custom.GaussianNoise{Mean: 1, Sd: 0.3}

	qf := &custom.QIF{}
	qf.Defaults()
	qf.Noise = 2
	qg := nt.AddGroup("qif", qf, 13)
	qg.Source = &custom.DC{Amp: 1.5}
	qg.EventVar = "V"
	qg.EventThresh = -60

	nt.AddSynapses("lif_izh", "lif", "izh", "G")
	return nt
}

// Trace is the state of a network after every step
type Trace struct {

	// variable values per group, all variables of all steps in order
	Vars [][]float32

	// spikes per group, per step and batch element
	Spikes [][][]uint32

	// spike events per group, per step and batch element
	Events [][][]uint32

	// previous spike times per group after the last step
	PrevSpikeTimes [][]float32
}

// Scenario runs MixedNetwork on kn for nSteps steps and returns its trace.
// The session is finalized, which closes kn.
func Scenario(kn kernel.Kernels, seed uint32, nSteps int) (*Trace, error) {
	nt := MixedNetwork()
	ss := kernel.NewSession(nt.Nm, kn)
	defer ss.Finalize()
	bl, err := nt.Build(ss, seed)
	if err != nil {
		return nil, err
	}
	sg := bl.Neurons[1]
	sa := sg.Params.(*neuron.SpikeSourceArray)
	sa.SpikeTimes = []float32{0.5, 1, 1.5, 2, 2.5, 3}
	st := sg.Vars[neuron.SSAStartSpike].Values
	en := sg.Vars[neuron.SSAEndSpike].Values
	for i := range st {
		st[i] = float32(i % 3)
		en[i] = float32(len(sa.SpikeTimes))
	}

	tr := &Trace{}
	ng := len(bl.Neurons)
	tr.Vars = make([][]float32, ng)
	tr.Spikes = make([][][]uint32, ng)
	tr.Events = make([][][]uint32, ng)
	for s := 0; s < nSteps; s++ {
		nt.Step(ss, bl)
		for gi, gp := range bl.Neurons {
			for _, vt := range gp.Vars {
				tr.Vars[gi] = append(tr.Vars[gi], vt.Values...)
			}
			for b := 0; b < gp.NBatch; b++ {
				tr.Spikes[gi] = append(tr.Spikes[gi], copyList(gp.Spk.Read(b)))
				tr.Events[gi] = append(tr.Events[gi], copyList(gp.SpkEvnt.Read(b)))
			}
		}
	}
	for _, gp := range bl.Neurons {
		tr.PrevSpikeTimes = append(tr.PrevSpikeTimes, append([]float32{}, gp.PrevSpikeTime.Values...))
	}
	return tr, nil
}

// NSpikes returns the total number of spikes of group gi
func (tr *Trace) NSpikes(gi int) int {
	n := 0
	for _, sl := range tr.Spikes[gi] {
		n += len(sl)
	}
	return n
}

func floatsEqual(a, b []float32) (int, bool) {
	if len(a) != len(b) {
		return -1, false
	}
	for i := range a {
		if math32.Abs(a[i]-b[i]) > FloatTol*math32.Max(1, math32.Abs(a[i])) {
			return i, false
		}
	}
	return 0, true
}

func listsEqual(a, b [][]uint32) (int, bool) {
	if len(a) != len(b) {
		return -1, false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return i, false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return i, false
			}
		}
	}
	return 0, true
}

// CompareTraces reports every group in which a and b differ: spikes and
// spike events exactly, state within FloatTol
func CompareTraces(t *testing.T, nm string, a, b *Trace) {
	t.Helper()
	names := []string{}
	for _, gp := range MixedNetwork().Groups {
		names = append(names, gp.Name)
	}
	for gi, gn := range names {
		if i, ok := listsEqual(a.Spikes[gi], b.Spikes[gi]); !ok {
			t.Errorf("%s: group %s: spikes differ at step/batch %d", nm, gn, i)
		}
		if i, ok := listsEqual(a.Events[gi], b.Events[gi]); !ok {
			t.Errorf("%s: group %s: spike events differ at step/batch %d", nm, gn, i)
		}
		if i, ok := floatsEqual(a.Vars[gi], b.Vars[gi]); !ok {
			t.Errorf("%s: group %s: state differs at %d", nm, gn, i)
		}
		if i, ok := floatsEqual(a.PrevSpikeTimes[gi], b.PrevSpikeTimes[gi]); !ok {
			t.Errorf("%s: group %s: prev spike times differ at %d", nm, gn, i)
		}
	}
}
