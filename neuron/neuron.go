// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package neuron provides the reference equations of the built-in spiking
neuron models: leaky integrate-and-fire, Poisson, spike source array,
Rulkov map, Izhikevich (fixed and per-neuron parameters) and Traub & Miles.

Each model has a params struct with Defaults / Update methods, a list of
per-neuron state variables in storage order, and a Step method that
advances the state of one neuron by one timestep and returns true if the
neuron spiked.  Step methods operate on individual values so that every
backend runs exactly the same arithmetic whatever its execution strategy.
*/
package neuron

import (
	"github.com/emer/spikegen/hashacc"
	"github.com/goki/ki/kit"
)

// Models are the neuron model types
type Models int32

//go:generate stringer -type=Models

var KiT_Models = kit.Enums.AddEnum(ModelsN, kit.NotBitFlag, nil)

func (ev Models) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Models) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// LIFModel is the leaky integrate-and-fire neuron with refractory period
	LIFModel Models = iota

	// PoissonModel emits Poisson spike trains at a fixed rate
	PoissonModel

	// SpikeSourceArrayModel emits spikes at times given in an array
	SpikeSourceArrayModel

	// RulkovMapModel is the Rulkov map-based neuron
	RulkovMapModel

	// IzhikevichModel is the Izhikevich neuron with group-level parameters
	IzhikevichModel

	// IzhikevichVariableModel is the Izhikevich neuron with per-neuron parameters
	IzhikevichVariableModel

	// TraubMilesModel is the Hodgkin-Huxley type neuron of Traub & Miles
	TraubMilesModel

	// CustomModel is a user-defined model updated through a parameter block
	CustomModel

	ModelsN
)

// Params is the interface of the neuron model parameters
type Params interface {
	hashacc.Hasher

	// Model returns the model type
	Model() Models

	// Defaults sets default parameter values
	Defaults()

	// Update updates derived values after parameters change
	Update()

	// Vars returns the names of the per-neuron state variables, in storage order
	Vars() []string

	// InitVals returns the initial value of each state variable
	InitVals() []float32
}

// New returns default params for the given built-in model,
// or nil for CustomModel
func New(mod Models) Params {
	var pr Params
	switch mod {
	case LIFModel:
		pr = &LIF{}
	case PoissonModel:
		pr = &Poisson{}
	case SpikeSourceArrayModel:
		pr = &SpikeSourceArray{}
	case RulkovMapModel:
		pr = &RulkovMap{}
	case IzhikevichModel:
		pr = &Izhikevich{}
	case IzhikevichVariableModel:
		pr = &IzhikevichVariable{}
	case TraubMilesModel:
		pr = &TraubMiles{}
	default:
		return nil
	}
	pr.Defaults()
	return pr
}

// VarIndex returns the index of the named state variable of given params, or -1
func VarIndex(pr Params, nm string) int {
	for i, vn := range pr.Vars() {
		if vn == nm {
			return i
		}
	}
	return -1
}
