// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package conform is the conformance suite for kernel.Kernels backends.
Each backend runs Run from its own tests; Scenario and CompareTraces
check that different backends produce the same state for every model.
*/
package conform

import (
	"reflect"
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/spikegen/custom"
	"github.com/emer/spikegen/group"
	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/neuron"
	"github.com/emer/spikegen/record"
)

// Maker returns new kernels of the backend under test
type Maker func() kernel.Kernels

// LIFTol is the tolerance of the LIF decay scenario against the analytic solution
const LIFTol = 0.01

// Run runs the whole suite on the backend made by mk
func Run(t *testing.T, mk Maker) {
	t.Run("QueueRotation", func(t *testing.T) { QueueRotation(t, mk) })
	t.Run("LIFDecay", func(t *testing.T) { LIFDecay(t, mk) })
	t.Run("ScalarReference", func(t *testing.T) { ScalarReference(t, mk) })
	t.Run("Recording", func(t *testing.T) { Recording(t, mk) })
	t.Run("RecordingOrder", func(t *testing.T) { RecordingOrder(t, mk) })
	t.Run("PrevSpikeTime", func(t *testing.T) { PrevSpikeTime(t, mk) })
	t.Run("InvalidHandles", func(t *testing.T) { InvalidHandles(t, mk) })
	t.Run("Determinism", func(t *testing.T) { Determinism(t, mk) })
	t.Run("ConcurrentGroups", func(t *testing.T) { ConcurrentGroups(t, mk) })
}

func newSession(mk Maker) *kernel.Session {
	return kernel.NewSession("conform", mk())
}

// spikeSources sets up a spike source array group so that neuron n of
// batch element b fires once, at step (n+b) % period
func spikeSources(ng *group.Neuron, dt float32, period int) {
	sa := ng.Params.(*neuron.SpikeSourceArray)
	sa.SpikeTimes = make([]float32, period)
	for s := range sa.SpikeTimes {
		sa.SpikeTimes[s] = float32(s) * dt
	}
	st := ng.Vars[neuron.SSAStartSpike].Values
	en := ng.Vars[neuron.SSAEndSpike].Values
	for b := 0; b < ng.NBatch; b++ {
		for n := 0; n < ng.NNeurons; n++ {
			i := b*ng.NNeurons + n
			st[i] = float32((n + b) % period)
			en[i] = st[i] + 1
		}
	}
}

// firing returns the neurons that fire at step s per spikeSources
func firing(nNeurons, b, s, period int) []uint32 {
	var ns []uint32
	for n := 0; n < nNeurons; n++ {
		if (n+b)%period == s {
			ns = append(ns, uint32(n))
		}
	}
	return ns
}

func copyList(ns []uint32) []uint32 {
	return append([]uint32{}, ns...)
}

// QueueRotation checks that what is read after a rotation is exactly what
// was written before it, and that double rotation loses nothing
func QueueRotation(t *testing.T, mk Maker) {
	ss := newSession(mk)
	defer ss.Finalize()
	ss.NSlots = 3
	const nn, nb, period = 45, 2, 4
	ng := ss.AddNeurons("ssa", &neuron.SpikeSourceArray{}, nn, nb)
	ss.Seed(1)
	spikeSources(ng, ss.Time.Dt, period)

	var prev [nb][]uint32
	for s := 0; s < period; s++ {
		ss.Update(ng)
		var wrote [nb][]uint32
		for b := 0; b < nb; b++ {
			wrote[b] = copyList(ng.Spk.Write(b))
			if cor := firing(nn, b, s, period); !reflect.DeepEqual(wrote[b], cor) {
				t.Errorf("step %d batch %d: wrote %v, cor: %v", s, b, wrote[b], cor)
			}
		}
		ss.RotateSpikeQueue(ng)
		ss.UpdatePrevSpikeTime(ng)
		for b := 0; b < nb; b++ {
			if rd := ng.Spk.Read(b); !reflect.DeepEqual(copyList(rd), wrote[b]) {
				t.Errorf("step %d batch %d: read %v after rotation, wrote %v", s, b, rd, wrote[b])
			}
			if len(ng.Spk.Write(b)) != 0 {
				t.Errorf("step %d batch %d: write slot not empty after rotation", s, b)
			}
			if s > 0 {
				if rd := ng.Spk.ReadDelayed(b, 1); !reflect.DeepEqual(copyList(rd), prev[b]) {
					t.Errorf("step %d batch %d: delayed read %v, cor: %v", s, b, rd, prev[b])
				}
			}
		}
		prev = wrote
		ss.Time.StepInc()
	}
}

// LIFDecay runs 100 LIF neurons with no input for 1000 steps from evenly
// spaced initial potentials, against the analytic exponential decay
func LIFDecay(t *testing.T, mk Maker) {
	ss := newSession(mk)
	defer ss.Finalize()
	const nn, nSteps = 100, 1000
	lif := &neuron.LIF{}
	lif.Defaults()
	ng := ss.AddNeurons("lif", lif, nn, 1)
	ss.Seed(42)
	ss.Time.Dt = 0.1
	v := ng.Vars[neuron.LIFV].Values
	v0 := make([]float32, nn)
	for n := range v0 {
		v0[n] = -70 + 10*float32(n)/float32(nn-1)
		v[n] = v0[n]
	}
	vbuf := record.NewBuffer(nSteps, 1, nn)
	cnt := record.NewCountBuffer(nSteps, 1)
	for s := 0; s < nSteps; s++ {
		ss.Step(ng)
		ss.RecordVar(ng, neuron.LIFV, vbuf, s)
		ss.RecordSpikeCount(ng, cnt, s)
	}
	for s := 99; s < nSteps; s += 100 {
		tm := float32(s+1) * ss.Time.Dt
		for n := 0; n < nn; n++ {
			cor := lif.Vrest + (v0[n]-lif.Vrest)*math32.Exp(-tm/lif.TauM)
			if vr := vbuf.At(s, 0, n); math32.Abs(vr-cor) > LIFTol {
				t.Errorf("step %d neuron %d: v %v, cor: %v", s, n, vr, cor)
			}
		}
	}
	if tot := cnt.Total(); tot != 0 {
		t.Errorf("%d spikes below threshold", tot)
	}
}

// izhInput is a deterministic input current that drives some neurons to spike
func izhInput(b, n, s int) float32 {
	return float32((n*7+b*3+s)%13) - 2
}

// ScalarReference checks Izhikevich neurons against the model equations
// evaluated directly, neuron by neuron, in the test
func ScalarReference(t *testing.T, mk Maker) {
	ss := newSession(mk)
	defer ss.Finalize()
	const nn, nb, nSteps = 37, 3, 300
	iz := &neuron.Izhikevich{}
	iz.Defaults()
	ng := ss.AddNeurons("izh", iz, nn, nb)
	ss.Seed(7)
	ss.Time.Dt = 0.5
	rv := append([]float32{}, ng.Vars[neuron.IzhV].Values...)
	ru := append([]float32{}, ng.Vars[neuron.IzhU].Values...)
	nspk := 0
	for s := 0; s < nSteps; s++ {
		var cor [nb][]uint32
		for b := 0; b < nb; b++ {
			for n := 0; n < nn; n++ {
				i := b*nn + n
				isyn := izhInput(b, n, s)
				ng.ISyn.Values[i] = isyn
				if iz.Step(ss.Time.Dt, &rv[i], &ru[i], isyn) {
					cor[b] = append(cor[b], uint32(n))
				}
			}
		}
		ss.Step(ng)
		for b := 0; b < nb; b++ {
			spk := copyList(ng.Spk.Read(b))
			nspk += len(spk)
			if !reflect.DeepEqual(spk, copyList(cor[b])) {
				t.Fatalf("step %d batch %d: spikes %v, cor: %v", s, b, spk, cor[b])
			}
		}
		v := ng.Vars[neuron.IzhV].Values
		for i := range v {
			if math32.Abs(v[i]-rv[i]) > 1e-4 {
				t.Fatalf("step %d element %d: v %v, cor: %v", s, i, v[i], rv[i])
			}
		}
	}
	if nspk == 0 {
		t.Errorf("no spikes: input too weak to test anything")
	}
}

// Recording checks buffer layout, partial neuron counts, out of order
// timestep indexes, and that the last write to an index wins
func Recording(t *testing.T, mk Maker) {
	ss := newSession(mk)
	defer ss.Finalize()
	const nn, nb, nSteps, period = 20, 2, 6, 3
	ng := ss.AddNeurons("ssa", &neuron.SpikeSourceArray{}, nn, nb)
	sg := ss.AddSynapses("syn", []string{"G", "D"}, 3, 4, nb)
	ss.Seed(2)
	spikeSources(ng, ss.Time.Dt, period)
	for i := range sg.Vars[1].Values {
		sg.Vars[1].Values[i] = float32(i) + 0.5
	}

	st := record.NewBuffer(nSteps, nb, nn)
	cnt := record.NewCountBuffer(nSteps, nb)
	part := record.NewCountBuffer(nSteps, nb)
	sbuf := record.NewBuffer(nSteps, nb, 12)
	kn := ss.Kern
	for s := 0; s < nSteps; s++ {
		ss.Update(ng)
		ti := nSteps - 1 - s // record backwards
		ss.RecordSpikeCount(ng, cnt, ti)
		kn.RecordNeuronSpikeCount(ng, part, 10, ti, nb)
		ss.RecordVar(ng, neuron.SSAStartSpike, st, ti)
		ss.RecordSynVar(sg, 1, sbuf, ti)
		ss.RotateSpikeQueue(ng)
		ss.UpdatePrevSpikeTime(ng)
		ss.Time.StepInc()
	}
	for s := 0; s < nSteps; s++ {
		ti := nSteps - 1 - s
		for b := 0; b < nb; b++ {
			cor := 0
			pcor := 0
			if s < period {
				fr := firing(nn, b, s, period)
				cor = len(fr)
				for _, n := range fr {
					if n < 10 {
						pcor++
					}
				}
			}
			if c := cnt.At(ti, b); c != cor {
				t.Errorf("step %d batch %d: count %d, cor: %d", s, b, c, cor)
			}
			if c := part.At(ti, b); c != pcor {
				t.Errorf("step %d batch %d: count of first 10 %d, cor: %d", s, b, c, pcor)
			}
			for n := 0; n < nn; n++ {
				// start index after the update of step s
				scor := float32((n + b) % period)
				if (n+b)%period <= s {
					scor++
				}
				if v := st.At(ti, b, n); v != scor {
					t.Errorf("step %d batch %d neuron %d: StartSpike %v, cor: %v", s, b, n, v, scor)
				}
			}
			for e := 0; e < 12; e++ {
				if v := sbuf.At(ti, b, e); v != float32(b*12+e)+0.5 {
					t.Errorf("step %d batch %d synapse %d: %v", s, b, e, v)
				}
			}
		}
	}

	// last write wins; partial batch leaves the rest
	ss.Update(ng)
	sg.Vars[1].Values[0] = -1
	sg.Vars[1].Values[12] = -2
	kn.RecordSynapticVariable(sg, 1, sbuf, 3, 4, 0, 1)
	if v := sbuf.At(0, 0, 0); v != -1 {
		t.Errorf("last write: %v", v)
	}
	if v := sbuf.At(0, 1, 0); v != 12.5 {
		t.Errorf("batch 1 overwritten: %v", v)
	}
	// partial synapse ranges record pre * nPost + post
	kn.RecordSynapticVariable(sg, 1, sbuf, 2, 2, 1, nb)
	for b := 0; b < nb; b++ {
		for pre := 0; pre < 2; pre++ {
			for post := 0; post < 2; post++ {
				cor := sg.Vars[1].Values[(b*3+pre)*4+post]
				if v := sbuf.At(1, b, pre*2+post); v != cor {
					t.Errorf("partial b %d pre %d post %d: %v, cor: %v", b, pre, post, v, cor)
				}
			}
		}
	}
}

// PrevSpikeTime checks that only spiking neurons are stamped
func PrevSpikeTime(t *testing.T, mk Maker) {
	ss := newSession(mk)
	defer ss.Finalize()
	const nn, nb, period = 30, 3, 5
	ng := ss.AddNeurons("ssa", &neuron.SpikeSourceArray{}, nn, nb)
	ss.Seed(3)
	spikeSources(ng, ss.Time.Dt, period)
	const nSteps = 3
	for s := 0; s < nSteps; s++ {
		ss.Step(ng)
	}
	for b := 0; b < nb; b++ {
		for n := 0; n < nn; n++ {
			fs := (n + b) % period
			cor := group.TimeMin
			if fs < nSteps {
				cor = float32(fs) * ss.Time.Dt
			}
			if pt := ng.PrevSpikeTime.Values[b*nn+n]; pt != cor {
				t.Errorf("batch %d neuron %d: prev spike time %v, cor: %v", b, n, pt, cor)
			}
		}
	}
}

func expectInvalid(t *testing.T, nm string, fun func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*group.InvalidHandleError); !ok {
			t.Errorf("%s: expected InvalidHandleError panic, got: %v", nm, r)
		}
	}()
	fun()
}

// InvalidHandles checks that bad handles panic and zero counts are no-ops
func InvalidHandles(t *testing.T, mk Maker) {
	kn := mk()
	defer kn.Close()
	sfx := kn.ImportSuffix()
	lif := group.NewNeuron(sfx, "lif", 0, neuron.New(neuron.LIFModel), 8, 2, 2)
	iz := group.NewNeuron(sfx, "izh", 1, neuron.New(neuron.IzhikevichModel), 8, 2, 2)
	other := group.NewNeuron(sfx+"_other", "lif", 0, neuron.New(neuron.LIFModel), 8, 2, 2)
	sg := group.NewSynapse(sfx, "syn", []string{"G"}, 2, 2, 1)
	buf := record.NewBuffer(2, 2, 8)

	expectInvalid(t, "nil group", func() { kn.UpdateLIFNeurons(0.1, nil, 8, 2) })
	expectInvalid(t, "foreign group", func() { kn.UpdateLIFNeurons(0.1, other, 8, 2) })
	expectInvalid(t, "foreign rotate", func() { kn.UpdateNeuronSpikeQueue(other, 2) })
	expectInvalid(t, "wrong model", func() { kn.UpdateIzhikevichNeurons(0.1, lif, 8, 2) })
	expectInvalid(t, "custom on builtin", func() { kn.UpdateCustomNeuron(lif, &custom.QIF{}, 0.1, 8, 2) })
	expectInvalid(t, "too many neurons", func() { kn.UpdateIzhikevichNeurons(0.1, iz, 9, 2) })
	expectInvalid(t, "record out of range", func() { kn.RecordNeuronVariable(lif, 0, buf, 8, 2, 2) })
	expectInvalid(t, "bad variable", func() { kn.RecordNeuronVariable(lif, 5, buf, 8, 0, 2) })
	expectInvalid(t, "nil synapses", func() { kn.RecordSynapticVariable(nil, 0, buf, 2, 2, 0, 1) })
	expectInvalid(t, "synapse batch", func() { kn.RecordSynapticVariable(sg, 0, buf, 2, 2, 0, 2) })

	v := append([]float32{}, lif.Vars[neuron.LIFV].Values...)
	kn.UpdateLIFNeurons(0.1, lif, 0, 2)
	kn.UpdateLIFNeurons(0.1, lif, 8, 0)
	kn.UpdateIzhikevichNeurons(0.1, lif, 0, 0)
	kn.RecordNeuronVariable(lif, 0, nil, 0, 0, 0)
	kn.UpdateNeuronSpikeQueue(lif, 0)
	if !reflect.DeepEqual(v, lif.Vars[neuron.LIFV].Values) {
		t.Errorf("zero count update changed state")
	}
	if lif.Spk.Ptr != 0 {
		t.Errorf("zero batch rotation rotated")
	}
}

// Determinism checks that random neurons repeat exactly for the same seed,
// and differ between seeds and between batch elements
func Determinism(t *testing.T, mk Maker) {
	run := func(seed uint32) [][]uint32 {
		ss := newSession(mk)
		defer ss.Finalize()
		ps := &neuron.Poisson{Rate: 200}
		qf := &custom.QIF{}
		qf.Defaults()
		qf.Noise = 3
		pg := ss.AddNeurons("poisson", ps, 50, 2)
		qg := ss.AddNeurons("qif", qf, 21, 2)
		ss.Seed(seed)
		src := &custom.GaussianNoise{Mean: 1, Sd: 1}
		var lists [][]uint32
		for s := 0; s < 200; s++ {
			ss.InjectCurrent(qg, src)
			ss.Step()
			for b := 0; b < 2; b++ {
				lists = append(lists, copyList(pg.Spk.Read(b)), copyList(qg.Spk.Read(b)))
			}
		}
		return lists
	}
	a, b, c := run(11), run(11), run(12)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed gives different spikes")
	}
	if reflect.DeepEqual(a, c) {
		t.Errorf("different seeds give the same spikes")
	}
	same := true
	nspk := 0
	for s := 0; s < len(a); s += 4 {
		nspk += len(a[s]) + len(a[s+1])
		if !reflect.DeepEqual(a[s], a[s+2]) {
			same = false
		}
	}
	if same {
		t.Errorf("batch elements give the same poisson spikes")
	}
	if nspk == 0 {
		t.Errorf("no spikes")
	}
}

// RecordingOrder checks that recording entity ranges in either order gives
// the same buffer: neurons 0..5 then 0..2, against 0..2 then 0..5, and the
// same for synapse rows
func RecordingOrder(t *testing.T, mk Maker) {
	ss := newSession(mk)
	defer ss.Finalize()
	const nn, nb = 8, 2
	ng := ss.AddNeurons("lif", neuron.New(neuron.LIFModel), nn, nb)
	sg := ss.AddSynapses("syn", []string{"G"}, 3, 4, nb)
	ss.Seed(6)
	for i := range ng.ISrc.Values {
		ng.ISrc.Values[i] = float32(i) * 0.1
	}
	for i := range sg.Vars[0].Values {
		sg.Vars[0].Values[i] = float32(i) - 7
	}
	ss.Update(ng)
	kn := ss.Kern

	fwd := record.NewBuffer(1, nb, nn)
	rev := record.NewBuffer(1, nb, nn)
	kn.RecordNeuronVariable(ng, neuron.LIFV, fwd, 6, 0, nb)
	kn.RecordNeuronVariable(ng, neuron.LIFV, fwd, 3, 0, nb)
	kn.RecordNeuronVariable(ng, neuron.LIFV, rev, 3, 0, nb)
	kn.RecordNeuronVariable(ng, neuron.LIFV, rev, 6, 0, nb)
	if !reflect.DeepEqual(fwd.Values.Values, rev.Values.Values) {
		t.Errorf("neuron recording depends on order: %v vs %v", fwd.Values.Values, rev.Values.Values)
	}
	for b := 0; b < nb; b++ {
		for n := 0; n < nn; n++ {
			cor := float32(0)
			if n < 6 {
				cor = ng.Vars[neuron.LIFV].Values[b*nn+n]
			}
			if v := fwd.At(0, b, n); v != cor {
				t.Errorf("b %d neuron %d: %v, cor: %v", b, n, v, cor)
			}
		}
	}

	sfwd := record.NewBuffer(1, nb, 12)
	srev := record.NewBuffer(1, nb, 12)
	kn.RecordSynapticVariable(sg, 0, sfwd, 3, 4, 0, nb)
	kn.RecordSynapticVariable(sg, 0, sfwd, 1, 4, 0, nb)
	kn.RecordSynapticVariable(sg, 0, srev, 1, 4, 0, nb)
	kn.RecordSynapticVariable(sg, 0, srev, 3, 4, 0, nb)
	if !reflect.DeepEqual(sfwd.Values.Values, srev.Values.Values) {
		t.Errorf("synapse recording depends on order: %v vs %v", sfwd.Values.Values, srev.Values.Values)
	}
	for b := 0; b < nb; b++ {
		for e := 0; e < 12; e++ {
			if v := sfwd.At(0, b, e); v != float32(b*12+e)-7 {
				t.Errorf("b %d synapse %d: %v", b, e, v)
			}
		}
	}
}

// ConcurrentGroups updates two independent groups from two goroutines on
// the same kernels: one group spikes on every step, the other never does,
// and neither may see the other's spikes
func ConcurrentGroups(t *testing.T, mk Maker) {
	kn := mk()
	defer kn.Close()
	const nn, nb, nSteps = 37, 2, 200
	hot := neuron.New(neuron.LIFModel).(*neuron.LIF)
	hot.Ioffset = 1000
	hg := group.NewNeuron(kn.ImportSuffix(), "hot", 0, hot, nn, nb, 2)
	cg := group.NewNeuron(kn.ImportSuffix(), "cold", 1, neuron.New(neuron.LIFModel), nn, nb, 2)
	hg.Seed(1)
	cg.Seed(1)

	run := func(ng *group.Neuron, cor int) {
		for s := 0; s < nSteps; s++ {
			kn.UpdateLIFNeurons(0.1, ng, nn, nb)
			for b := 0; b < nb; b++ {
				spk := ng.Spk.Latest(b)
				if len(spk) != cor {
					t.Errorf("%s step %d batch %d: %d spikes, cor: %d", ng.Name, s, b, len(spk), cor)
					return
				}
				for i, n := range spk {
					if int(n) != i {
						t.Errorf("%s step %d batch %d: spike %d is neuron %d", ng.Name, s, b, i, n)
						return
					}
				}
			}
			kn.UpdateNeuronSpikeQueue(ng, nb)
			kn.UpdatePrevSpikeTime(float32(s)*0.1, ng, nb)
		}
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		run(hg, nn)
	}()
	go func() {
		defer wg.Done()
		run(cg, 0)
	}()
	wg.Wait()
}
