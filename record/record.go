// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package record provides recording buffers addressed by (timestep, batch,
entity).  Kernel entry points only write to them; reading the recorded
data is up to the runtime.
*/
package record

import (
	"github.com/emer/etable/v2/etensor"
)

// Buffer records float32 values of neurons or synapses,
// as a tensor shaped [timesteps, batch, entities]
type Buffer struct {
	Values *etensor.Float32
}

// NewBuffer returns a zeroed buffer for given sizes
func NewBuffer(nSteps, nBatch, nEntities int) *Buffer {
	return &Buffer{Values: etensor.NewFloat32([]int{nSteps, nBatch, nEntities}, nil, []string{"Time", "Batch", "Entity"})}
}

// Steps returns the number of timesteps
func (rb *Buffer) Steps() int { return rb.Values.Dim(0) }

// Batch returns the number of batch elements
func (rb *Buffer) Batch() int { return rb.Values.Dim(1) }

// Entities returns the number of entities per batch element
func (rb *Buffer) Entities() int { return rb.Values.Dim(2) }

// Row returns the values of timestep ti and batch element b
func (rb *Buffer) Row(ti, b int) []float32 {
	ne := rb.Entities()
	st := (ti*rb.Batch() + b) * ne
	return rb.Values.Values[st : st+ne]
}

// At returns the value recorded for timestep ti, batch b and entity e
func (rb *Buffer) At(ti, b, e int) float32 {
	return rb.Row(ti, b)[e]
}

// CountBuffer records spike counts as a tensor shaped [timesteps, batch]
type CountBuffer struct {
	Values *etensor.Int
}

// NewCountBuffer returns a zeroed spike count buffer for given sizes
func NewCountBuffer(nSteps, nBatch int) *CountBuffer {
	return &CountBuffer{Values: etensor.NewInt([]int{nSteps, nBatch}, nil, []string{"Time", "Batch"})}
}

// Steps returns the number of timesteps
func (cb *CountBuffer) Steps() int { return cb.Values.Dim(0) }

// Batch returns the number of batch elements
func (cb *CountBuffer) Batch() int { return cb.Values.Dim(1) }

// At returns the count recorded for timestep ti and batch b
func (cb *CountBuffer) At(ti, b int) int {
	return cb.Values.Values[ti*cb.Batch()+b]
}

// Set sets the count for timestep ti and batch b
func (cb *CountBuffer) Set(ti, b, n int) {
	cb.Values.Values[ti*cb.Batch()+b] = n
}

// Total returns the sum of all recorded counts
func (cb *CountBuffer) Total() int {
	tot := 0
	for _, n := range cb.Values.Values {
		tot += n
	}
	return tot
}
