// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spikeq provides the per-group spike queue: a ring of NSlots spike
buffers per batch element, one of which is the write slot for the current
timestep.

Neuron updates append spiking neuron indexes to the write slot.  Rotate,
called exactly once per timestep after all updates, makes the write slot
the read slot and clears the next slot for writing.  Older slots remain
readable through ReadDelayed until they are reused, which is how
synaptic delays see spikes from earlier steps.
*/
package spikeq

import (
	"fmt"
)

// Queue is the ring of spike buffers of one neuron group
type Queue struct {

	// number of slots in the ring, at least 2
	NSlots int

	// number of batch elements
	NBatch int

	// number of neurons in the group, which bounds the spikes per slot
	NNeurons int

	// index of the current write slot
	Ptr int

	// spike count per slot and batch element, [slot][batch]
	Cnt []int

	// spiking neuron indexes, [slot][batch][neuron]
	Spk []uint32

	// true if the queue has been rotated since the last write step started
	rotated bool
}

// New returns a new queue with given number of slots (minimum 2)
func New(nSlots, nBatch, nNeurons int) *Queue {
	q := &Queue{}
	q.Alloc(nSlots, nBatch, nNeurons)
	return q
}

// Alloc allocates the queue for given sizes, and resets it
func (q *Queue) Alloc(nSlots, nBatch, nNeurons int) {
	if nSlots < 2 {
		nSlots = 2
	}
	q.NSlots = nSlots
	q.NBatch = nBatch
	q.NNeurons = nNeurons
	q.Cnt = make([]int, nSlots*nBatch)
	q.Spk = make([]uint32, nSlots*nBatch*nNeurons)
	q.Reset()
}

// Reset clears all slots and sets the write slot to 0
func (q *Queue) Reset() {
	for i := range q.Cnt {
		q.Cnt[i] = 0
	}
	q.Ptr = 0
	q.rotated = true
}

// slot returns the ring slot d steps before the write slot
func (q *Queue) slot(d int) int {
	return ((q.Ptr-d)%q.NSlots + q.NSlots) % q.NSlots
}

func (q *Queue) list(sl, b int) []uint32 {
	ci := sl*q.NBatch + b
	st := ci * q.NNeurons
	return q.Spk[st : st+q.Cnt[ci]]
}

// Begin starts a new write step: the write slot is cleared.
// Called by neuron updates before any Push.
func (q *Queue) Begin() {
	wi := q.Ptr * q.NBatch
	for b := 0; b < q.NBatch; b++ {
		q.Cnt[wi+b] = 0
	}
	q.rotated = false
}

// Push appends spiking neuron n to the write slot of batch element b.
// Different batch elements may be pushed concurrently; pushes within
// one batch element must be serialized by the caller.
func (q *Queue) Push(b int, n uint32) {
	ci := q.Ptr*q.NBatch + b
	c := q.Cnt[ci]
	if c >= q.NNeurons {
		panic(fmt.Sprintf("spikeq: more than %d spikes in one step for batch %d", q.NNeurons, b))
	}
	q.Spk[ci*q.NNeurons+c] = n
	q.Cnt[ci] = c + 1
}

// Append pushes a list of spiking neurons, in order
func (q *Queue) Append(b int, ns []uint32) {
	for _, n := range ns {
		q.Push(b, n)
	}
}

// Write returns the spikes written so far in the current step for batch element b
func (q *Queue) Write(b int) []uint32 {
	return q.list(q.Ptr, b)
}

// Read returns the spikes of the previous (completed) step for batch element b
func (q *Queue) Read(b int) []uint32 {
	return q.list(q.slot(1), b)
}

// ReadDelayed returns the spikes emitted d+1 steps ago for batch element b,
// so ReadDelayed(b, 0) == Read(b).  d must be in [0, NSlots-2].
func (q *Queue) ReadDelayed(b, d int) []uint32 {
	if d < 0 || d > q.NSlots-2 {
		panic(fmt.Sprintf("spikeq: delay %d out of range for %d slots", d, q.NSlots))
	}
	return q.list(q.slot(d+1), b)
}

// Latest returns the spikes of the most recent neuron update of batch
// element b, whether or not the queue has been rotated since
func (q *Queue) Latest(b int) []uint32 {
	if q.rotated {
		return q.Read(b)
	}
	return q.Write(b)
}

// Rotate makes the write slot the read slot and clears the next slot for
// writing.  Must be called exactly once per timestep.
func (q *Queue) Rotate() {
	q.Ptr = (q.Ptr + 1) % q.NSlots
	wi := q.Ptr * q.NBatch
	for b := 0; b < q.NBatch; b++ {
		q.Cnt[wi+b] = 0
	}
	q.rotated = true
}

// Rotated returns true if the queue has been rotated since the last write step started
func (q *Queue) Rotated() bool {
	return q.rotated
}

// MemBytes returns the memory used by the queue
func (q *Queue) MemBytes() int {
	return len(q.Cnt)*8 + len(q.Spk)*4
}
