// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rng

import (
	"github.com/emer/gosl/v2/slrand"
	"github.com/emer/gosl/v2/sltype"
)

// groupWord returns the high counter word of the kernel stream of group
// index gi.  The seed is xored with an odd multiple of the golden ratio
// constant, which is never 0 and distinct for every gi < 2^31, so for any
// seed the kernel streams differ from each other and from the batch and
// scalar streams, whose high word is the seed itself.
func groupWord(seed uint32, gi int) uint32 {
	return seed ^ (uint32(2*gi+1) * 0x9E3779B9)
}

// KernelStream provides random numbers inside a kernel launch that do not
// depend on the order in which neurons are processed.  A launch takes a
// snapshot of the counter, and each (batch, neuron) element draws from the
// Philox stream keyed by its flat index b*N+n at that counter, offset by
// its own draw number.  After the launch the counter is advanced by the
// maximum number of draws per element.  This is the same on every backend,
// so a scalar loop, vector lanes and thread blocks all see identical values.
type KernelStream struct {
	ctr sltype.Uint2
}

// Seed restarts the kernel stream of group index gi
func (ks *KernelStream) Seed(seed uint32, gi int) {
	ks.ctr = sltype.Uint2{X: 0, Y: groupWord(seed, gi)}
}

// Launch returns the counter snapshot for one kernel launch
func (ks *KernelStream) Launch() Launch {
	return Launch{base: ks.ctr}
}

// Advance moves the counter past a launch in which each element made at
// most nDraws draws
func (ks *KernelStream) Advance(nDraws uint32) {
	addCounter(&ks.ctr, nDraws)
}

// Counter returns the current counter
func (ks *KernelStream) Counter() sltype.Uint2 {
	return ks.ctr
}

// Launch is the counter snapshot of one kernel launch.  It is a value
// type and safe to share between lanes and goroutines.
type Launch struct {
	base sltype.Uint2
}

func (ln Launch) at(draw uint32) sltype.Uint2 {
	ctr := ln.base
	addCounter(&ctr, draw)
	return ctr
}

// Uniform returns draw number draw of element idx, in [0, 1)
func (ln Launch) Uniform(idx, draw uint32) float32 {
	ctr := ln.at(draw)
	return unitFloat(&ctr, idx)
}

// Normal returns standard normal draw number draw of element idx
func (ln Launch) Normal(idx, draw uint32) float32 {
	ctr := ln.at(draw)
	return slrand.NormFloat(&ctr, idx)
}

// Elem returns the draws of element idx on this launch
func (ln Launch) Elem(idx uint32) Elem {
	return Elem{Ln: ln, Idx: idx}
}

// Elem is one element of a kernel launch, as seen by model code
type Elem struct {
	Ln  Launch
	Idx uint32
}

// Uniform returns draw number draw of the element, in [0, 1)
func (el Elem) Uniform(draw uint32) float32 { return el.Ln.Uniform(el.Idx, draw) }

// Normal returns standard normal draw number draw of the element
func (el Elem) Normal(draw uint32) float32 { return el.Ln.Normal(el.Idx, draw) }
