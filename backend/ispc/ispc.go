// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ispc is the vectorized CPU backend.  Each batch element runs as a
single control flow over gangs of ISA.Lanes() program instances: a gang
evaluates its lanes together under an execution mask, and the tail gang
of a group is masked off past the last neuron.  Spikes of a gang are
written with a packed store in lane order, so spike lists come out in
ascending neuron order exactly as on the scalar backend.

Parameters and per-launch constants are uniform across the gang (shared
by all lanes), whatever MaximizeUniforms is set to: that preference only
selects how the generated code is compiled.
*/
package ispc

import (
	"fmt"

	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/prefs"
	"github.com/emer/spikegen/spikeq"
)

// Kernels implements kernel.Kernels over gangs of SIMD lanes
type Kernels struct {
	kernel.Base

	// preferences the kernels were built with
	Prefs *prefs.ISPC

	// gang executor
	Gang *Gang
}

// New returns new vectorized kernels for given preferences
func New(pf *prefs.ISPC) *Kernels {
	kn := &Kernels{Prefs: pf}
	kn.Gang = NewGang(pf.TargetISA.Lanes())
	kn.Init(pf.ImportSuffix(), kn.Gang)
	return kn
}

// Factory validates ISPC preferences and returns new kernels
func Factory(pf prefs.Preferences) (kernel.Kernels, error) {
	ip, ok := pf.(*prefs.ISPC)
	if !ok {
		return nil, &prefs.ConfigurationError{Backend: "ispc", Field: "Preferences", Reason: fmt.Sprintf("%T are not ISPC preferences", pf)}
	}
	if err := ip.Validate(); err != nil {
		return nil, err
	}
	return New(ip), nil
}

// Mask is the execution mask of a gang: bit l is set if lane l is active
type Mask uint32

// MaskFor returns the mask with the first nActive lanes on
func MaskFor(nActive int) Mask {
	return Mask(uint32(1)<<uint(nActive) - 1)
}

// On returns true if lane l is active
func (m Mask) On(l int) bool {
	return m&(1<<uint(l)) != 0
}

// MaxLanes is the widest gang supported
const MaxLanes = 32

// Gang executes kernel bodies over gangs of Lanes program instances.
// It holds no per-launch state, so launches on different groups may run
// concurrently.
type Gang struct {

	// number of program instances per gang, at most MaxLanes
	Lanes int
}

// NewGang returns a gang executor of given width
func NewGang(lanes int) *Gang {
	return &Gang{Lanes: min(lanes, MaxLanes)}
}

// mask returns the execution mask of the gang starting at program index base
func (gg *Gang) mask(base, n int) Mask {
	return MaskFor(min(gg.Lanes, n-base))
}

func (gg *Gang) Neurons(k prefs.Kernels, nNeurons, nBatch int, body kernel.Body, spk, evt *spikeq.Queue) {
	// per-lane results of the current gang
	var flags [MaxLanes]kernel.Flags
	for b := 0; b < nBatch; b++ {
		for base := 0; base < nNeurons; base += gg.Lanes {
			m := gg.mask(base, nNeurons)
			for l := 0; l < gg.Lanes; l++ {
				if m.On(l) {
					flags[l] = body(b, base+l)
				}
			}
			// packed store of the active lanes
			for l := 0; l < gg.Lanes; l++ {
				if m.On(l) {
					kernel.Emit(spk, evt, b, base+l, flags[l])
				}
			}
		}
	}
}

func (gg *Gang) Elements(k prefs.Kernels, n, nBatch int, fn func(b, i int)) {
	for b := 0; b < nBatch; b++ {
		for base := 0; base < n; base += gg.Lanes {
			m := gg.mask(base, n)
			for l := 0; l < gg.Lanes; l++ {
				if m.On(l) {
					fn(b, base+l)
				}
			}
		}
	}
}
