// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/emer/spikegen/custom"
	"github.com/emer/spikegen/group"
	"github.com/emer/spikegen/prefs"
	"github.com/emer/spikegen/record"
	"github.com/emer/spikegen/spikeq"
)

// Kernels is the fixed set of entry points that every backend implements,
// with identical observable effects on group state.
//
// Neuron updates advance every neuron of every batch element by one step,
// reading only the state of the previous step, and write spikes into the
// write slot of the group spike queue.  Spike queue updates rotate the
// queue, once per step.  Previous spike time updates stamp t on the
// neurons that spiked in the last update.  Recording copies values into a
// buffer at (tIdx, batch, entity), with the last write winning.
//
// Zero neuron or batch counts are no-ops.  A nil or foreign handle, or
// counts larger than the group, panic with *group.InvalidHandleError.
// Entry points are synchronous: all effects are visible when they return.
type Kernels interface {

	// ImportSuffix returns the suffix of the backend, which tags its groups
	ImportSuffix() string

	UpdateLIFNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int)
	UpdatePoissonNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int)
	UpdateSpikeSourceArrayNeurons(t float32, grp *group.Neuron, nNeurons, nBatch int)
	UpdateRulkovMapNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int)
	UpdateIzhikevichNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int)
	UpdateIzhikevichVariableNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int)
	UpdateTraubMilesNeurons(dt float32, grp *group.Neuron, nNeurons, nBatch int)

	// UpdateNeuronSpikeQueue rotates the spike queue of the group
	UpdateNeuronSpikeQueue(grp *group.Neuron, nBatch int)

	// UpdateNeuronSpikeEventQueue rotates the spike event queue of the group
	UpdateNeuronSpikeEventQueue(grp *group.Neuron, nBatch int)

	// UpdatePrevSpikeTime sets the previous spike time of neurons that
	// spiked in the last update to t
	UpdatePrevSpikeTime(t float32, grp *group.Neuron, nBatch int)

	// UpdatePrevSpikeEventTime sets the previous spike event time of neurons
	// that had a spike event in the last update to t
	UpdatePrevSpikeEventTime(t float32, grp *group.Neuron, nBatch int)

	// RecordNeuronVariable records state variable varID of the first
	// nNeurons neurons at timestep index tIdx
	RecordNeuronVariable(grp *group.Neuron, varID int, buf *record.Buffer, nNeurons, tIdx, nBatch int)

	// RecordNeuronSpikeCount records the number of spikes among the first
	// nNeurons neurons in the last update, per batch element
	RecordNeuronSpikeCount(grp *group.Neuron, buf *record.CountBuffer, nNeurons, tIdx, nBatch int)

	// RecordSynapticVariable records synaptic variable varID of the first
	// nPre x nPost synapses, as entity pre * nPost + post
	RecordSynapticVariable(sg *group.Synapse, varID int, buf *record.Buffer, nPre, nPost, tIdx, nBatch int)

	// UpdateCustomNeuron advances a group of a user-defined model
	UpdateCustomNeuron(grp *group.Neuron, prm custom.Neuron, dt float32, nNeurons, nBatch int)

	// UpdateCustomCurrentSource adds the current of src to the current
	// source input of the group, consumed by its next neuron update
	UpdateCustomCurrentSource(grp *group.Neuron, src custom.CurrentSource, dt float32, nNeurons, nBatch int)

	// Close releases any resources held by the backend
	Close()
}

// Flags are the outputs of one neuron update
type Flags uint8

const (
	// Spiked is set when the neuron spiked
	Spiked Flags = 1 << iota

	// Evented is set when the neuron had a spike event
	Evented
)

// spikeIf returns Spiked if spk
func spikeIf(spk bool) Flags {
	if spk {
		return Spiked
	}
	return 0
}

// Body updates neuron n of batch element b, and returns its flags.
// Calls for different (b, n) touch disjoint state and may run in any
// order or concurrently.
type Body func(b, n int) Flags

// Executor is the execution strategy of a backend
type Executor interface {

	// Neurons runs body on every neuron n < nNeurons of every batch
	// element b < nBatch, then appends flagged neurons to the write slots
	// of spk and evt in ascending neuron order per batch element.
	Neurons(k prefs.Kernels, nNeurons, nBatch int, body Body, spk, evt *spikeq.Queue)

	// Elements runs fn(b, i) for every i < n of every batch element b < nBatch.
	// Calls for different (b, i) must be independent.
	Elements(k prefs.Kernels, n, nBatch int, fn func(b, i int))
}

// Emit appends neuron n of batch element b to spk and / or evt according to fl
func Emit(spk, evt *spikeq.Queue, b, n int, fl Flags) {
	if fl&Spiked != 0 {
		spk.Push(b, uint32(n))
	}
	if fl&Evented != 0 {
		evt.Push(b, uint32(n))
	}
}
