// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package model describes simulation models as the code generator front end
hands them to the dispatcher: anything with a name, a digest and a
canonical description.  Network is a simple description listing neuron
and synapse groups, which can also build its groups into a kernel.Session.
*/
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emer/spikegen/custom"
	"github.com/emer/spikegen/group"
	"github.com/emer/spikegen/hashacc"
	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/neuron"
)

// Description is a model description, as produced by the front end.
// Equal descriptions must hash equal and have the same Describe text.
type Description interface {
	hashacc.Hasher

	// Name returns the name of the model
	Name() string

	// Describe returns canonical text listing everything that is hashed,
	// used to detect digest collisions in the build cache
	Describe() string
}

// Digest returns the digest of a model description
func Digest(md Description) hashacc.Digest {
	return hashacc.Of(md)
}

// Group is one neuron group of a Network
type Group struct {

	// name of the group, unique within the network
	Name string

	// number of neurons
	N int

	// model parameters
	Params neuron.Params

	// name of the variable tested for spike events, empty for none
	EventVar string

	// spike event threshold on EventVar
	EventThresh float32

	// optional current source injecting into the group every step
	Source custom.CurrentSource
}

// Synapses is one dense synapse group of a Network
type Synapses struct {

	// name of the group, unique within the network
	Name string

	// names of the presynaptic and postsynaptic neuron groups
	Pre, Post string

	// names of the synaptic state variables
	Vars []string
}

// Network is a Description of a set of neuron and synapse groups
type Network struct {

	// name of the network
	Nm string

	// simulation time step, msec
	Dt float32 `def:"0.1"`

	// number of batch elements simulated in parallel
	BatchSize int `def:"1"`

	// neuron groups, in order
	Groups []*Group

	// synapse groups, in order
	Syns []*Synapses
}

// NewNetwork returns a new empty network with default Dt and BatchSize
func NewNetwork(name string) *Network {
	return &Network{Nm: name, Dt: 0.1, BatchSize: 1}
}

func (nt *Network) Name() string { return nt.Nm }

// AddGroup adds a neuron group of n neurons
func (nt *Network) AddGroup(name string, prm neuron.Params, n int) *Group {
	gp := &Group{Name: name, N: n, Params: prm}
	nt.Groups = append(nt.Groups, gp)
	return gp
}

// AddSynapses adds a dense synapse group from pre to post
func (nt *Network) AddSynapses(name, pre, post string, vars ...string) *Synapses {
	sy := &Synapses{Name: name, Pre: pre, Post: post, Vars: vars}
	nt.Syns = append(nt.Syns, sy)
	return sy
}

// GroupByName returns the neuron group of given name, or nil
func (nt *Network) GroupByName(name string) *Group {
	for _, gp := range nt.Groups {
		if gp.Name == name {
			return gp
		}
	}
	return nil
}

// Validate checks that groups are well formed and uniquely named
func (nt *Network) Validate() error {
	var errs []error
	if nt.Dt <= 0 {
		errs = append(errs, fmt.Errorf("model %s: Dt %v must be > 0", nt.Nm, nt.Dt))
	}
	if nt.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("model %s: BatchSize %d must be >= 1", nt.Nm, nt.BatchSize))
	}
	names := map[string]bool{}
	for _, gp := range nt.Groups {
		if names[gp.Name] {
			errs = append(errs, fmt.Errorf("model %s: duplicate group name %q", nt.Nm, gp.Name))
		}
		names[gp.Name] = true
		if gp.Params == nil {
			errs = append(errs, fmt.Errorf("model %s: group %s has no parameters", nt.Nm, gp.Name))
			continue
		}
		if gp.N < 0 {
			errs = append(errs, fmt.Errorf("model %s: group %s has %d neurons", nt.Nm, gp.Name, gp.N))
		}
		if gp.EventVar != "" && neuron.VarIndex(gp.Params, gp.EventVar) < 0 {
			errs = append(errs, fmt.Errorf("model %s: group %s has no event variable %q", nt.Nm, gp.Name, gp.EventVar))
		}
	}
	for _, sy := range nt.Syns {
		if names[sy.Name] {
			errs = append(errs, fmt.Errorf("model %s: duplicate group name %q", nt.Nm, sy.Name))
		}
		names[sy.Name] = true
		if nt.GroupByName(sy.Pre) == nil || nt.GroupByName(sy.Post) == nil {
			errs = append(errs, fmt.Errorf("model %s: synapses %s connect unknown groups %q -> %q", nt.Nm, sy.Name, sy.Pre, sy.Post))
		}
	}
	return errors.Join(errs...)
}

// UpdateHash folds the network, then each group in order
func (nt *Network) UpdateHash(ac *hashacc.Accum) {
	ac.String(nt.Nm)
	ac.Float32(nt.Dt)
	ac.Int(nt.BatchSize)
	ac.Int(len(nt.Groups))
	for _, gp := range nt.Groups {
		ac.String(gp.Name)
		ac.Int(gp.N)
		hashacc.Enum(ac, gp.Params.Model())
		gp.Params.UpdateHash(ac)
		ac.String(gp.EventVar)
		ac.Float32(gp.EventThresh)
		ac.Bool(gp.Source != nil)
		if gp.Source != nil {
			gp.Source.UpdateHash(ac)
		}
	}
	ac.Int(len(nt.Syns))
	for _, sy := range nt.Syns {
		ac.String(sy.Name)
		ac.String(sy.Pre)
		ac.String(sy.Post)
		ac.Strings(sy.Vars)
	}
}

// Describe lists the network and its groups, one per line
func (nt *Network) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "network=%q dt=%v batch=%d\n", nt.Nm, nt.Dt, nt.BatchSize)
	for _, gp := range nt.Groups {
		fmt.Fprintf(&b, "group=%q n=%d model=%v params=%+v", gp.Name, gp.N, gp.Params.Model(), gp.Params)
		if gp.EventVar != "" {
			fmt.Fprintf(&b, " events=%s>=%v", gp.EventVar, gp.EventThresh)
		}
		if gp.Source != nil {
			fmt.Fprintf(&b, " source=%T%+v", gp.Source, gp.Source)
		}
		b.WriteString("\n")
	}
	for _, sy := range nt.Syns {
		fmt.Fprintf(&b, "synapses=%q %q->%q vars=%q\n", sy.Name, sy.Pre, sy.Post, sy.Vars)
	}
	return b.String()
}

// Built are the groups of a Network built into a Session
type Built struct {

	// neuron groups, in Network.Groups order
	Neurons []*group.Neuron

	// synapse groups, in Network.Syns order
	Syns []*group.Synapse
}

// Build adds the groups of the network to ss, sets its time step, and
// seeds it.  The network must be valid.
func (nt *Network) Build(ss *kernel.Session, seed uint32) (*Built, error) {
	if err := nt.Validate(); err != nil {
		return nil, err
	}
	ss.Time.Dt = nt.Dt
	bl := &Built{}
	for _, gp := range nt.Groups {
		ng := ss.AddNeurons(gp.Name, gp.Params, gp.N, nt.BatchSize)
		if gp.EventVar != "" {
			ng.SetEvents(gp.EventVar, gp.EventThresh)
		}
		bl.Neurons = append(bl.Neurons, ng)
	}
	for _, sy := range nt.Syns {
		pre, post := nt.GroupByName(sy.Pre), nt.GroupByName(sy.Post)
		bl.Syns = append(bl.Syns, ss.AddSynapses(sy.Name, sy.Vars, pre.N, post.N, nt.BatchSize))
	}
	ss.Seed(seed)
	return bl, nil
}

// Step runs one step of the built network on ss: current sources
// inject first, then the canonical Session step
func (nt *Network) Step(ss *kernel.Session, bl *Built) {
	for gi, gp := range nt.Groups {
		if gp.Source != nil {
			ss.InjectCurrent(bl.Neurons[gi], gp.Source)
		}
	}
	ss.Step(bl.Neurons...)
}
