// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/emer/spikegen/chans"
	"github.com/emer/spikegen/custom"
	"github.com/emer/spikegen/group"
	"github.com/emer/spikegen/neuron"
	"github.com/emer/spikegen/prefs"
	"github.com/emer/spikegen/record"
	"github.com/emer/spikegen/rng"
)

// Base implements every entry point of Kernels on top of an Executor:
// it checks handles, builds the per-neuron bodies and hands them to
// the Executor.  Backends embed Base and supply their Executor.
type Base struct {

	// import suffix of the backend
	Suffix string

	// execution strategy of the backend
	Exec Executor
}

// Init sets the suffix and executor
func (kb *Base) Init(suffix string, ex Executor) {
	kb.Suffix = suffix
	kb.Exec = ex
}

func (kb *Base) ImportSuffix() string { return kb.Suffix }

func (kb *Base) Close() {}

// params returns the parameters of grp as concrete type P, panicking
// with *group.InvalidHandleError if they are of another type
func params[P neuron.Params](op string, grp *group.Neuron) P {
	pr, ok := grp.Params.(P)
	if !ok {
		group.Invalid(op, grp.Name, "group parameters of type %T", grp.Params)
	}
	return pr
}

// input returns the total input current of element i, consuming the
// current source input
func input(grp *group.Neuron, i int) float32 {
	isyn := grp.ISyn.Values[i] + grp.ISrc.Values[i]
	grp.ISrc.Values[i] = 0
	return isyn
}

// withEvents adds the Evented flag to body when the event variable of
// grp is at or above threshold after the update
func withEvents(grp *group.Neuron, body Body) Body {
	if !grp.HasEvents() {
		return body
	}
	ev := grp.Vars[grp.EventVar].Values
	thr := grp.EventThresh
	nn := grp.NNeurons
	return func(b, n int) Flags {
		fl := body(b, n)
		if ev[b*nn+n] >= thr {
			fl |= Evented
		}
		return fl
	}
}

// updateNeurons runs one neuron update launch.  mk returns the body for
// the launch, and the number of random draws per neuron it makes.
func (kb *Base) updateNeurons(op string, grp *group.Neuron, nNeurons, nBatch int, mk func(ln rng.Launch) (Body, uint32)) {
	grp.Check(op, kb.Suffix, nNeurons, nBatch)
	if nNeurons == 0 || nBatch == 0 {
		return
	}
	body, nDraws := mk(grp.Rand.Launch())
	grp.Spk.Begin()
	grp.SpkEvnt.Begin()
	kb.Exec.Neurons(prefs.KernelNeuronUpdate, nNeurons, nBatch, withEvents(grp, body), grp.Spk, grp.SpkEvnt)
	grp.Rand.Advance(nDraws)
}

func (kb *Base) UpdateLIFNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int) {
	op := "UpdateLIFNeurons"
	kb.updateNeurons(op, grp, nNeurons, nBatch, func(ln rng.Launch) (Body, uint32) {
		lf := params[*neuron.LIF](op, grp)
		etc := lf.ExpTC(dt)
		v := grp.Vars[neuron.LIFV].Values
		rf := grp.Vars[neuron.LIFRefracTime].Values
		nn := grp.NNeurons
		return func(b, n int) Flags {
			i := b*nn + n
			return spikeIf(lf.Step(etc, dt, &v[i], &rf[i], input(grp, i)))
		}, 0
	})
}

func (kb *Base) UpdatePoissonNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int) {
	op := "UpdatePoissonNeurons"
	kb.updateNeurons(op, grp, nNeurons, nBatch, func(ln rng.Launch) (Body, uint32) {
		ps := params[*neuron.Poisson](op, grp)
		isi := ps.ISI(dt)
		tts := grp.Vars[neuron.PoissonTimeStepToSpike].Values
		nn := grp.NNeurons
		return func(b, n int) Flags {
			i := b*nn + n
			input(grp, i) // no input current, but consumed all the same
			return spikeIf(ps.Step(isi, &tts[i], ln.Uniform(uint32(i), 0)))
		}, neuron.PoissonDraws
	})
}

func (kb *Base) UpdateSpikeSourceArrayNeurons(t float32, grp *group.Neuron, nNeurons, nBatch int) {
	op := "UpdateSpikeSourceArrayNeurons"
	kb.updateNeurons(op, grp, nNeurons, nBatch, func(ln rng.Launch) (Body, uint32) {
		sa := params[*neuron.SpikeSourceArray](op, grp)
		st := grp.Vars[neuron.SSAStartSpike].Values
		en := grp.Vars[neuron.SSAEndSpike].Values
		nn := grp.NNeurons
		return func(b, n int) Flags {
			i := b*nn + n
			input(grp, i)
			return spikeIf(sa.Step(t, &st[i], en[i]))
		}, 0
	})
}

func (kb *Base) UpdateRulkovMapNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int) {
	op := "UpdateRulkovMapNeurons"
	kb.updateNeurons(op, grp, nNeurons, nBatch, func(ln rng.Launch) (Body, uint32) {
		rm := params[*neuron.RulkovMap](op, grp)
		v := grp.Vars[neuron.RulkovV].Values
		pv := grp.Vars[neuron.RulkovPreV].Values
		nn := grp.NNeurons
		return func(b, n int) Flags {
			i := b*nn + n
			return spikeIf(rm.Step(&v[i], &pv[i], input(grp, i)))
		}, 0
	})
}

func (kb *Base) UpdateIzhikevichNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int) {
	op := "UpdateIzhikevichNeurons"
	kb.updateNeurons(op, grp, nNeurons, nBatch, func(ln rng.Launch) (Body, uint32) {
		iz := params[*neuron.Izhikevich](op, grp)
		v := grp.Vars[neuron.IzhV].Values
		u := grp.Vars[neuron.IzhU].Values
		nn := grp.NNeurons
		return func(b, n int) Flags {
			i := b*nn + n
			return spikeIf(iz.Step(dt, &v[i], &u[i], input(grp, i)))
		}, 0
	})
}

func (kb *Base) UpdateIzhikevichVariableNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int) {
	op := "UpdateIzhikevichVariableNeurons"
	kb.updateNeurons(op, grp, nNeurons, nBatch, func(ln rng.Launch) (Body, uint32) {
		iv := params[*neuron.IzhikevichVariable](op, grp)
		v := grp.Vars[neuron.IzhV].Values
		u := grp.Vars[neuron.IzhU].Values
		a := grp.Vars[neuron.IzhA].Values
		bv := grp.Vars[neuron.IzhB].Values
		c := grp.Vars[neuron.IzhC].Values
		d := grp.Vars[neuron.IzhD].Values
		nn := grp.NNeurons
		return func(b, n int) Flags {
			i := b*nn + n
			return spikeIf(iv.Step(dt, &v[i], &u[i], a[i], bv[i], c[i], d[i], input(grp, i)))
		}, 0
	})
}

func (kb *Base) UpdateTraubMilesNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int) {
	op := "UpdateTraubMilesNeurons"
	kb.updateNeurons(op, grp, nNeurons, nBatch, func(ln rng.Launch) (Body, uint32) {
		tm := params[*neuron.TraubMiles](op, grp)
		v := grp.Vars[neuron.TMV].Values
		m := grp.Vars[neuron.TMM].Values
		h := grp.Vars[neuron.TMH].Values
		nv := grp.Vars[neuron.TMN].Values
		nn := grp.NNeurons
		return func(b, n int) Flags {
			i := b*nn + n
			gt := chans.Gates{M: m[i], H: h[i], N: nv[i]}
			spk := tm.Step(dt, &v[i], &gt, input(grp, i))
			m[i], h[i], nv[i] = gt.M, gt.H, gt.N
			return spikeIf(spk)
		}, 0
	})
}

func (kb *Base) UpdateCustomNeuron(grp *group.Neuron, prm custom.Neuron, dt float32, nNeurons, nBatch int) {
	op := "UpdateCustomNeuron"
	kb.updateNeurons(op, grp, nNeurons, nBatch, func(ln rng.Launch) (Body, uint32) {
		if prm == nil {
			group.Invalid(op, grp.Name, "nil custom neuron model")
		}
		grp.CheckModel(op, neuron.CustomModel)
		vars := grp.Vars
		if len(prm.Vars()) != len(vars) {
			group.Invalid(op, grp.Name, "model has %d variables, group has %d", len(prm.Vars()), len(vars))
		}
		nn := grp.NNeurons
		return func(b, n int) Flags {
			i := b*nn + n
			st := make([]float32, len(vars))
			for vi, vt := range vars {
				st[vi] = vt.Values[i]
			}
			spk := prm.Step(dt, st, input(grp, i), ln.Elem(uint32(i)))
			for vi, vt := range vars {
				vt.Values[i] = st[vi]
			}
			return spikeIf(spk)
		}, prm.NDraws()
	})
}

func (kb *Base) UpdateCustomCurrentSource(grp *group.Neuron, src custom.CurrentSource, dt float32, nNeurons, nBatch int) {
	op := "UpdateCustomCurrentSource"
	grp.Check(op, kb.Suffix, nNeurons, nBatch)
	if nNeurons == 0 || nBatch == 0 {
		return
	}
	if src == nil {
		group.Invalid(op, grp.Name, "nil current source")
	}
	ns := src.NState()
	st := grp.SrcStateFor(ns)
	isrc := grp.ISrc.Values
	nn := grp.NNeurons
	ln := grp.Rand.Launch()
	kb.Exec.Elements(prefs.KernelCustomUpdate, nNeurons, nBatch, func(b, n int) {
		i := b*nn + n
		var sv []float32
		if st != nil {
			sv = st.Values[i*ns : (i+1)*ns]
		}
		isrc[i] += src.Inject(dt, sv, ln.Elem(uint32(i)))
	})
	grp.Rand.Advance(src.NDraws())
}

// UpdateNeuronSpikeQueue rotates the spike queue.  The queue pointer is
// shared by all batch elements, so any nBatch > 0 rotates all of them.
func (kb *Base) UpdateNeuronSpikeQueue(grp *group.Neuron, nBatch int) {
	grp.Check("UpdateNeuronSpikeQueue", kb.Suffix, 0, nBatch)
	if nBatch == 0 {
		return
	}
	grp.Spk.Rotate()
}

func (kb *Base) UpdateNeuronSpikeEventQueue(grp *group.Neuron, nBatch int) {
	grp.Check("UpdateNeuronSpikeEventQueue", kb.Suffix, 0, nBatch)
	if nBatch == 0 {
		return
	}
	grp.SpkEvnt.Rotate()
}

func (kb *Base) UpdatePrevSpikeTime(t float32, grp *group.Neuron, nBatch int) {
	grp.Check("UpdatePrevSpikeTime", kb.Suffix, 0, nBatch)
	kb.prevTime(t, grp, grp.Spk.Latest, grp.PrevSpikeTime.Values, nBatch)
}

func (kb *Base) UpdatePrevSpikeEventTime(t float32, grp *group.Neuron, nBatch int) {
	grp.Check("UpdatePrevSpikeEventTime", kb.Suffix, 0, nBatch)
	kb.prevTime(t, grp, grp.SpkEvnt.Latest, grp.PrevSpikeEventTime.Values, nBatch)
}

// prevTime stamps t into pst for the neurons in latest(b)
func (kb *Base) prevTime(t float32, grp *group.Neuron, latest func(b int) []uint32, pst []float32, nBatch int) {
	if nBatch == 0 {
		return
	}
	nn := grp.NNeurons
	kb.Exec.Elements(prefs.KernelPrevSpikeTimeUpdate, 1, nBatch, func(b, _ int) {
		for _, n := range latest(b) {
			pst[b*nn+int(n)] = t
		}
	})
}

// checkBuffer panics with *group.InvalidHandleError unless buf can hold
// nEntities at (tIdx, b) for b < nBatch
func checkBuffer(op, name string, buf *record.Buffer, tIdx, nBatch, nEntities int) {
	switch {
	case buf == nil || buf.Values == nil:
		group.Invalid(op, name, "nil recording buffer")
	case tIdx < 0 || tIdx >= buf.Steps():
		group.Invalid(op, name, "timestep index %d outside buffer of %d steps", tIdx, buf.Steps())
	case buf.Batch() < nBatch:
		group.Invalid(op, name, "buffer batch size %d < %d", buf.Batch(), nBatch)
	case buf.Entities() < nEntities:
		group.Invalid(op, name, "buffer has %d entities, %d needed", buf.Entities(), nEntities)
	}
}

func (kb *Base) RecordNeuronVariable(grp *group.Neuron, varID int, buf *record.Buffer, nNeurons, tIdx, nBatch int) {
	op := "RecordNeuronVariable"
	grp.Check(op, kb.Suffix, nNeurons, nBatch)
	if nNeurons == 0 || nBatch == 0 {
		return
	}
	if varID < 0 || varID >= len(grp.Vars) {
		group.Invalid(op, grp.Name, "variable %d of %d", varID, len(grp.Vars))
	}
	checkBuffer(op, grp.Name, buf, tIdx, nBatch, nNeurons)
	vals := grp.Vars[varID].Values
	nn := grp.NNeurons
	kb.Exec.Elements(prefs.KernelRecord, nNeurons, nBatch, func(b, n int) {
		buf.Row(tIdx, b)[n] = vals[b*nn+n]
	})
}

func (kb *Base) RecordNeuronSpikeCount(grp *group.Neuron, buf *record.CountBuffer, nNeurons, tIdx, nBatch int) {
	op := "RecordNeuronSpikeCount"
	grp.Check(op, kb.Suffix, nNeurons, nBatch)
	if nNeurons == 0 || nBatch == 0 {
		return
	}
	switch {
	case buf == nil || buf.Values == nil:
		group.Invalid(op, grp.Name, "nil spike count buffer")
	case tIdx < 0 || tIdx >= buf.Steps():
		group.Invalid(op, grp.Name, "timestep index %d outside buffer of %d steps", tIdx, buf.Steps())
	case buf.Batch() < nBatch:
		group.Invalid(op, grp.Name, "buffer batch size %d < %d", buf.Batch(), nBatch)
	}
	kb.Exec.Elements(prefs.KernelRecord, 1, nBatch, func(b, _ int) {
		cnt := 0
		for _, n := range grp.Spk.Latest(b) {
			if int(n) < nNeurons {
				cnt++
			}
		}
		buf.Set(tIdx, b, cnt)
	})
}

func (kb *Base) RecordSynapticVariable(sg *group.Synapse, varID int, buf *record.Buffer, nPre, nPost, tIdx, nBatch int) {
	op := "RecordSynapticVariable"
	sg.Check(op, kb.Suffix, nPre, nPost, nBatch)
	if nPre == 0 || nPost == 0 || nBatch == 0 {
		return
	}
	if varID < 0 || varID >= len(sg.Vars) {
		group.Invalid(op, sg.Name, "variable %d of %d", varID, len(sg.Vars))
	}
	checkBuffer(op, sg.Name, buf, tIdx, nBatch, nPre*nPost)
	vals := sg.Vars[varID].Values
	np, nq := sg.NPre, sg.NPost
	kb.Exec.Elements(prefs.KernelRecord, nPre*nPost, nBatch, func(b, e int) {
		pre, post := e/nPost, e%nPost
		buf.Row(tIdx, b)[e] = vals[(b*np+pre)*nq+post]
	})
}
