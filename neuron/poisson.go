// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuron

import (
	"github.com/chewxy/math32"
	"github.com/emer/spikegen/hashacc"
)

// Poisson state variable indexes
const (
	PoissonTimeStepToSpike = iota
)

// PoissonDraws is the number of uniform draws per neuron per step
const PoissonDraws = 1

// Poisson are the parameters of a Poisson spike source.  The number of
// timesteps to the next spike is drawn from an exponential distribution
// with mean ISI = 1000 / (Rate * dt).
type Poisson struct {

	// firing rate in Hz
	Rate float32 `def:"10"`
}

func (ps *Poisson) Model() Models { return PoissonModel }

func (ps *Poisson) Defaults() {
	ps.Rate = 10
	ps.Update()
}

func (ps *Poisson) Update() {
}

func (ps *Poisson) Vars() []string { return []string{"TimeStepToSpike"} }

func (ps *Poisson) InitVals() []float32 { return []float32{0} }

func (ps *Poisson) UpdateHash(ac *hashacc.Accum) {
	ac.Float32(ps.Rate)
}

// ISI returns the mean inter-spike interval in timesteps of dt msec
func (ps *Poisson) ISI(dt float32) float32 {
	return 1000 / (ps.Rate * dt)
}

// Step advances one neuron, given isi = ISI(dt) and a uniform draw u in
// [0, 1).  The draw is only used when a new interval starts.  A rate of 0
// never spikes.
func (ps *Poisson) Step(isi float32, tts *float32, u float32) bool {
	if !(ps.Rate > 0) {
		return false
	}
	if *tts <= 0 {
		*tts += isi * -math32.Log(1-u)
	}
	*tts -= 1
	return *tts <= 0
}
