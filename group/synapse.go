// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package group

import (
	"github.com/emer/etable/v2/etensor"
)

// Synapse is the handle of one synapse group with dense connectivity
type Synapse struct {

	// name of the group
	Name string

	// import suffix of the backend owning this state
	Suffix string

	// number of presynaptic neurons
	NPre int

	// number of postsynaptic neurons
	NPost int

	// number of batch elements
	NBatch int

	// names of the synaptic state variables
	VarNames []string

	// synaptic state variables, each [batch, pre, post]
	Vars []*etensor.Float32
}

// NewSynapse returns a new synapse group owned by the backend with given import suffix
func NewSynapse(suffix, name string, varNames []string, nPre, nPost, nBatch int) *Synapse {
	sg := &Synapse{Name: name, Suffix: suffix, NPre: nPre, NPost: nPost, NBatch: nBatch}
	sg.VarNames = append([]string(nil), varNames...)
	sg.Vars = make([]*etensor.Float32, len(varNames))
	for vi := range sg.Vars {
		sg.Vars[vi] = etensor.NewFloat32([]int{nBatch, nPre, nPost}, nil, []string{"Batch", "Pre", "Post"})
	}
	return sg
}

// VarIndex returns the index of the named variable, or -1
func (sg *Synapse) VarIndex(nm string) int {
	for i, vn := range sg.VarNames {
		if vn == nm {
			return i
		}
	}
	return -1
}

// Check panics with *InvalidHandleError unless sg is a valid handle of the
// backend with given suffix covering nPre x nPost x nBatch
func (sg *Synapse) Check(op, suffix string, nPre, nPost, nBatch int) {
	if sg == nil {
		Invalid(op, "", "nil synapse group")
	}
	if sg.Suffix != suffix {
		Invalid(op, sg.Name, "group belongs to backend %q, not %q", sg.Suffix, suffix)
	}
	if nPre < 0 || nPre > sg.NPre || nPost < 0 || nPost > sg.NPost {
		Invalid(op, sg.Name, "%d x %d synapses requested of %d x %d", nPre, nPost, sg.NPre, sg.NPost)
	}
	if nBatch < 0 || nBatch > sg.NBatch {
		Invalid(op, sg.Name, "batch size %d of %d", nBatch, sg.NBatch)
	}
}

// MemBytes returns the memory used by the state of the group
func (sg *Synapse) MemBytes() int {
	return len(sg.Vars) * sg.NBatch * sg.NPre * sg.NPost * 4
}
