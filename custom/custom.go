// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package custom defines the parameter blocks of user-defined neuron models
and current sources, which kernels update through the custom entry points,
together with the standard current sources (DC, GaussianNoise, PoissonExp)
and one example neuron model (QIF).

Random numbers are drawn through the rng.Elem of the neuron being updated,
with draw numbers below NDraws, so that results do not depend on the order
in which a backend processes neurons.
*/
package custom

import (
	"github.com/emer/spikegen/hashacc"
	"github.com/emer/spikegen/neuron"
	"github.com/emer/spikegen/rng"
)

// Neuron is the parameter block of a user-defined neuron model
type Neuron interface {
	neuron.Params

	// NDraws returns the maximum number of random draws per neuron per step
	NDraws() uint32

	// Step advances one neuron by dt.  vars holds the state variables of the
	// neuron in Vars() order and is updated in place.  Returns true on a spike.
	Step(dt float32, vars []float32, isyn float32, rnd rng.Elem) bool
}

// CurrentSource is the parameter block of a current source that injects
// current into every neuron of a group
type CurrentSource interface {
	hashacc.Hasher

	// NState returns the number of state values per neuron
	NState() int

	// NDraws returns the maximum number of random draws per neuron per step
	NDraws() uint32

	// Inject returns the current to inject into one neuron this step,
	// updating its state st in place
	Inject(dt float32, st []float32, rnd rng.Elem) float32
}
