// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"testing"

	"github.com/emer/spikegen/custom"
	"github.com/emer/spikegen/group"
	"github.com/emer/spikegen/neuron"
	"github.com/emer/spikegen/prefs"
	"github.com/emer/spikegen/record"
	"github.com/emer/spikegen/spikeq"
)

// seqExec runs everything in order, in the calling goroutine
type seqExec struct{}

func (ex seqExec) Neurons(k prefs.Kernels, nNeurons, nBatch int, body Body, spk, evt *spikeq.Queue) {
	for b := 0; b < nBatch; b++ {
		for n := 0; n < nNeurons; n++ {
			Emit(spk, evt, b, n, body(b, n))
		}
	}
}

func (ex seqExec) Elements(k prefs.Kernels, n, nBatch int, fn func(b, i int)) {
	for b := 0; b < nBatch; b++ {
		for i := 0; i < n; i++ {
			fn(b, i)
		}
	}
}

type testKernels struct {
	Base
}

func newTestSession() *Session {
	kn := &testKernels{}
	kn.Init("_test", seqExec{})
	return NewSession("test", kn)
}

func expectPanic[T error](t *testing.T, nm string, fun func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(T); !ok {
			t.Errorf("%s: expected %T panic, got: %v", nm, *new(T), r)
		}
	}()
	fun()
}

func TestSessionOrder(t *testing.T) {
	ss := newTestSession()
	lif := neuron.New(neuron.LIFModel)
	ng := ss.AddNeurons("lif", lif, 10, 2)

	expectPanic[*StateError](t, "update before seed", func() { ss.Update(ng) })
	ss.Seed(1)
	if st := ss.State(ng); st != Seeded {
		t.Errorf("state after seed: %v", st)
	}
	expectPanic[*StateError](t, "record before update", func() {
		ss.RecordVar(ng, neuron.LIFV, record.NewBuffer(1, 2, 10), 0)
	})
	expectPanic[*StateError](t, "rotate before update", func() { ss.RotateSpikeQueue(ng) })

	ss.Update(ng)
	expectPanic[*StateError](t, "update twice", func() { ss.Update(ng) })
	expectPanic[*StateError](t, "prev spike time before rotation", func() { ss.UpdatePrevSpikeTime(ng) })
	ss.RotateSpikeQueue(ng)
	expectPanic[*StateError](t, "rotate twice", func() { ss.RotateSpikeQueue(ng) })
	ss.UpdatePrevSpikeTime(ng)
	ss.RecordVar(ng, neuron.LIFV, record.NewBuffer(1, 2, 10), 0)
	if st := ss.State(ng); st != Recorded {
		t.Errorf("state after record: %v", st)
	}
	ss.Update(ng)

	other := newTestSession()
	og := other.AddNeurons("other", neuron.New(neuron.LIFModel), 10, 1)
	other.Seed(1)
	expectPanic[*group.InvalidHandleError](t, "foreign group", func() { ss.Update(og) })

	ss.Finalize()
	expectPanic[*StateError](t, "update after finalize", func() { ss.Update(ng) })
	if st := ss.State(ng); st != Finalized {
		t.Errorf("state after finalize: %v", st)
	}
}

func TestEntryChecks(t *testing.T) {
	kn := &testKernels{}
	kn.Init("_test", seqExec{})
	ng := group.NewNeuron("_test", "lif", 0, neuron.New(neuron.LIFModel), 5, 1, 2)
	iz := group.NewNeuron("_test", "izh", 1, neuron.New(neuron.IzhikevichModel), 5, 1, 2)
	foreign := group.NewNeuron("_cuda", "lif", 0, neuron.New(neuron.LIFModel), 5, 1, 2)

	expectPanic[*group.InvalidHandleError](t, "nil group", func() { kn.UpdateLIFNeurons(0.1, nil, 5, 1) })
	expectPanic[*group.InvalidHandleError](t, "foreign group", func() { kn.UpdateLIFNeurons(0.1, foreign, 5, 1) })
	expectPanic[*group.InvalidHandleError](t, "too many neurons", func() { kn.UpdateLIFNeurons(0.1, ng, 6, 1) })
	expectPanic[*group.InvalidHandleError](t, "too many batch", func() { kn.UpdateLIFNeurons(0.1, ng, 5, 2) })
	expectPanic[*group.InvalidHandleError](t, "wrong model", func() { kn.UpdateLIFNeurons(0.1, iz, 5, 1) })
	expectPanic[*group.InvalidHandleError](t, "bad tIdx", func() {
		kn.RecordNeuronVariable(ng, 0, record.NewBuffer(2, 1, 5), 5, 2, 1)
	})
	expectPanic[*group.InvalidHandleError](t, "small buffer", func() {
		kn.RecordNeuronVariable(ng, 0, record.NewBuffer(2, 1, 4), 5, 0, 1)
	})

	// zero counts are no-ops, even on the wrong model
	kn.UpdateLIFNeurons(0.1, iz, 0, 1)
	kn.UpdateLIFNeurons(0.1, ng, 5, 0)
	kn.RecordNeuronVariable(ng, 0, nil, 0, 0, 1)
}

func TestEventsAndPrevTime(t *testing.T) {
	ss := newTestSession()
	ng := ss.AddNeurons("lif", neuron.New(neuron.LIFModel), 8, 2)
	if !ng.SetEvents("V", -66) {
		t.Fatalf("SetEvents failed")
	}
	ss.Seed(5)
	for i := 0; i < 3; i++ {
		ss.Step()
	}
	for b := 0; b < 2; b++ {
		evs := ng.SpkEvnt.Read(b)
		if len(evs) != 8 {
			t.Errorf("batch %d: %d spike events, expected 8", b, len(evs))
		}
		for i, n := range evs {
			if int(n) != i {
				t.Errorf("event %d: neuron %d, not in ascending order", i, n)
			}
		}
		if len(ng.Spk.Read(b)) != 0 {
			t.Errorf("batch %d: spikes at rest", b)
		}
	}
	// last step ran at time 2 * Dt
	cor := 2 * ss.Time.Dt
	for i, pt := range ng.PrevSpikeEventTime.Values {
		if pt != cor {
			t.Errorf("prev spike event time %d: %v, cor: %v", i, pt, cor)
		}
	}
	for i, pt := range ng.PrevSpikeTime.Values {
		if pt != group.TimeMin {
			t.Errorf("prev spike time %d: %v, not TimeMin", i, pt)
		}
	}
	if ss.Time.Step != 3 {
		t.Errorf("step: %d", ss.Time.Step)
	}
}

func TestCurrentSourceConsumed(t *testing.T) {
	ss := newTestSession()
	ng := ss.AddNeurons("lif", neuron.New(neuron.LIFModel), 4, 1)
	ss.Seed(2)
	ss.InjectCurrent(ng, &custom.DC{Amp: 1})
	for i, v := range ng.ISrc.Values {
		if v != 1 {
			t.Errorf("isrc %d: %v", i, v)
		}
	}
	ss.Step(ng)
	for i, v := range ng.ISrc.Values {
		if v != 0 {
			t.Errorf("isrc %d not consumed: %v", i, v)
		}
	}
	for i, v := range ng.Vars[neuron.LIFV].Values {
		if !(v > -65 && v < -64.8) {
			t.Errorf("v %d after DC input: %v", i, v)
		}
	}
	v0 := ng.Vars[neuron.LIFV].Values[0]
	ss.Step(ng)
	// without input V decays back toward rest
	if v1 := ng.Vars[neuron.LIFV].Values[0]; !(v1 < v0) {
		t.Errorf("input not consumed: %v -> %v", v0, v1)
	}
}

func TestRecordLayout(t *testing.T) {
	ss := newTestSession()
	ng := ss.AddNeurons("ssa", &neuron.SpikeSourceArray{SpikeTimes: []float32{0, 0.1, 0.2}}, 3, 2)
	sg := ss.AddSynapses("syn", []string{"G"}, 2, 3, 2)
	ss.Seed(3)

	// neuron 1 of batch 0 fires spike times 0 and 1 (step 0 and 1)
	st := ng.Vars[neuron.SSAStartSpike].Values
	en := ng.Vars[neuron.SSAEndSpike].Values
	for i := range st {
		st[i], en[i] = 0, 0
	}
	st[1], en[1] = 0, 2
	st[3+2], en[3+2] = 2, 3

	for i := range sg.Vars[0].Values {
		sg.Vars[0].Values[i] = float32(i)
	}

	cnt := record.NewCountBuffer(3, 2)
	sbuf := record.NewBuffer(3, 2, 6)
	for ti := 0; ti < 3; ti++ {
		ss.Update(ng)
		ss.RecordSpikeCount(ng, cnt, ti)
		ss.RotateSpikeQueue(ng)
		ss.UpdatePrevSpikeTime(ng)
		ss.RecordSynVar(sg, 0, sbuf, ti)
		ss.Time.StepInc()
	}
	cor := [][]int{{1, 0}, {1, 0}, {0, 1}}
	for ti := range cor {
		for b, c := range cor[ti] {
			if n := cnt.At(ti, b); n != c {
				t.Errorf("count t %d b %d: %d, cor: %d", ti, b, n, c)
			}
		}
	}
	if tot := cnt.Total(); tot != 3 {
		t.Errorf("total spikes: %d", tot)
	}
	for b := 0; b < 2; b++ {
		for e := 0; e < 6; e++ {
			if v := sbuf.At(2, b, e); v != float32(b*6+e) {
				t.Errorf("syn b %d e %d: %v", b, e, v)
			}
		}
	}
	if pt := ng.PrevSpikeTime.Values[1]; pt != ss.Time.Dt {
		t.Errorf("prev spike time neuron 1: %v", pt)
	}
}

func TestLiteralParams(t *testing.T) {
	ss := newTestSession()
	lif := &neuron.LIF{C: 1, TauM: 20, Vrest: -65, Vreset: -70, Vthresh: -55}
	ng := ss.AddNeurons("lif", lif, 3, 1)
	ss.Seed(4)
	ss.InjectCurrent(ng, &custom.DC{Amp: 1})
	ss.Step(ng)
	for i, v := range ng.Vars[neuron.LIFV].Values {
		if !(v > -65) {
			t.Errorf("v %d ignores input current: %v", i, v)
		}
	}
}
