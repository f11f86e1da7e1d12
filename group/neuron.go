// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package group provides the typed handles through which kernel entry points
reach the state of neuron and synapse groups.

A handle is tagged with the import suffix of the backend that owns its
state, and every entry point checks the tag: a nil handle, a handle of a
different backend, or counts larger than the group are programming errors
and panic with *InvalidHandleError.  State arrays are etensor tensors
shaped [batch, neuron], owned by the runtime; kernels only read and write
them through the handle during a call.
*/
package group

import (
	"math"

	"github.com/emer/etable/v2/etensor"
	"github.com/emer/spikegen/neuron"
	"github.com/emer/spikegen/rng"
	"github.com/emer/spikegen/spikeq"
)

// TimeMin is the previous spike time of a neuron that has not yet spiked
var TimeMin = float32(-math.MaxFloat32)

// Neuron is the handle of one neuron group
type Neuron struct {

	// name of the group
	Name string

	// import suffix of the backend owning this state
	Suffix string

	// index of the group within its session, used to derive its kernel RNG stream
	Index int

	// number of neurons
	NNeurons int

	// number of batch elements
	NBatch int

	// model parameters, with the concrete type of the model
	Params neuron.Params

	// state variables in Params.Vars() order, each [batch, neuron]
	Vars []*etensor.Float32

	// synaptic input current for the coming update, [batch, neuron]
	ISyn *etensor.Float32

	// current source input, accumulated by current source updates and
	// consumed (zeroed) by the next neuron update, [batch, neuron]
	ISrc *etensor.Float32

	// state of the attached current source, [batch, neuron, state]
	SrcState *etensor.Float32

	// spike queue
	Spk *spikeq.Queue

	// spike event queue
	SpkEvnt *spikeq.Queue

	// time of the last spike, [batch, neuron]
	PrevSpikeTime *etensor.Float32

	// time of the last spike event, [batch, neuron]
	PrevSpikeEventTime *etensor.Float32

	// index of the state variable tested for spike events, -1 for none
	EventVar int

	// spike event threshold on EventVar
	EventThresh float32

	// kernel random number stream, independent of processing order
	Rand rng.KernelStream
}

// NewNeuron returns a new neuron group owned by the backend with given
// import suffix, with nSlots spike queue slots.  The derived values of
// prm are updated first.
func NewNeuron(suffix, name string, idx int, prm neuron.Params, nNeurons, nBatch, nSlots int) *Neuron {
	prm.Update()
	ng := &Neuron{Name: name, Suffix: suffix, Index: idx, Params: prm, EventVar: -1}
	ng.Alloc(nNeurons, nBatch, nSlots)
	ng.Init()
	return ng
}

func batchTensor(nBatch, nNeurons int) *etensor.Float32 {
	return etensor.NewFloat32([]int{nBatch, nNeurons}, nil, []string{"Batch", "Neuron"})
}

// Alloc allocates all state for given sizes
func (ng *Neuron) Alloc(nNeurons, nBatch, nSlots int) {
	ng.NNeurons = nNeurons
	ng.NBatch = nBatch
	nv := len(ng.Params.Vars())
	ng.Vars = make([]*etensor.Float32, nv)
	for vi := range ng.Vars {
		ng.Vars[vi] = batchTensor(nBatch, nNeurons)
	}
	ng.ISyn = batchTensor(nBatch, nNeurons)
	ng.ISrc = batchTensor(nBatch, nNeurons)
	ng.SrcState = nil
	ng.PrevSpikeTime = batchTensor(nBatch, nNeurons)
	ng.PrevSpikeEventTime = batchTensor(nBatch, nNeurons)
	ng.Spk = spikeq.New(nSlots, nBatch, nNeurons)
	ng.SpkEvnt = spikeq.New(nSlots, nBatch, nNeurons)
}

// Init sets state variables to the initial values of the model, and
// clears inputs, queues and previous spike times
func (ng *Neuron) Init() {
	ivs := ng.Params.InitVals()
	for vi, vt := range ng.Vars {
		iv := ivs[vi]
		for i := range vt.Values {
			vt.Values[i] = iv
		}
	}
	ng.ISyn.SetZeros()
	ng.ISrc.SetZeros()
	if ng.SrcState != nil {
		ng.SrcState.SetZeros()
	}
	for i := range ng.PrevSpikeTime.Values {
		ng.PrevSpikeTime.Values[i] = TimeMin
		ng.PrevSpikeEventTime.Values[i] = TimeMin
	}
	ng.Spk.Reset()
	ng.SpkEvnt.Reset()
}

// Seed restarts the kernel random number stream of the group
func (ng *Neuron) Seed(seed uint32) {
	ng.Rand.Seed(seed, ng.Index)
}

// SetEvents enables spike events when the named variable is >= thr.
// Returns false if there is no such variable.
func (ng *Neuron) SetEvents(varNm string, thr float32) bool {
	vi := neuron.VarIndex(ng.Params, varNm)
	if vi < 0 {
		return false
	}
	ng.EventVar = vi
	ng.EventThresh = thr
	return true
}

// HasEvents returns true if spike events are enabled
func (ng *Neuron) HasEvents() bool {
	return ng.EventVar >= 0
}

// Var returns state variable tensor by index
func (ng *Neuron) Var(vi int) *etensor.Float32 {
	return ng.Vars[vi]
}

// VarByName returns the state variable tensor of given name, or nil
func (ng *Neuron) VarByName(nm string) *etensor.Float32 {
	vi := neuron.VarIndex(ng.Params, nm)
	if vi < 0 {
		return nil
	}
	return ng.Vars[vi]
}

// SrcStateFor makes sure there are nState current source state values per
// neuron, reallocating (and zeroing) if the size changed
func (ng *Neuron) SrcStateFor(nState int) *etensor.Float32 {
	if nState == 0 {
		return nil
	}
	if ng.SrcState == nil || ng.SrcState.Dim(2) != nState {
		ng.SrcState = etensor.NewFloat32([]int{ng.NBatch, ng.NNeurons, nState}, nil, []string{"Batch", "Neuron", "State"})
	}
	return ng.SrcState
}

// Check panics with *InvalidHandleError unless ng is a valid handle of the
// backend with given suffix covering nNeurons x nBatch
func (ng *Neuron) Check(op, suffix string, nNeurons, nBatch int) {
	if ng == nil {
		Invalid(op, "", "nil neuron group")
	}
	if ng.Suffix != suffix {
		Invalid(op, ng.Name, "group belongs to backend %q, not %q", ng.Suffix, suffix)
	}
	if nNeurons < 0 || nNeurons > ng.NNeurons {
		Invalid(op, ng.Name, "%d neurons requested of %d", nNeurons, ng.NNeurons)
	}
	if nBatch < 0 || nBatch > ng.NBatch {
		Invalid(op, ng.Name, "batch size %d of %d", nBatch, ng.NBatch)
	}
}

// CheckModel panics with *InvalidHandleError unless the group has the given model
func (ng *Neuron) CheckModel(op string, mod neuron.Models) {
	if ng.Params.Model() != mod {
		Invalid(op, ng.Name, "group has model %v, not %v", ng.Params.Model(), mod)
	}
}

// MemBytes returns the memory used by the state of the group
func (ng *Neuron) MemBytes() int {
	nf := len(ng.Vars) + 4
	mem := nf * ng.NBatch * ng.NNeurons * 4
	if ng.SrcState != nil {
		mem += len(ng.SrcState.Values) * 4
	}
	return mem + ng.Spk.MemBytes() + ng.SpkEvnt.MemBytes()
}
