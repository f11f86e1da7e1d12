// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package custom

import (
	"github.com/chewxy/math32"
	"github.com/emer/spikegen/hashacc"
	"github.com/emer/spikegen/rng"
)

// DC injects a constant current
type DC struct {

	// amplitude of the current, nA
	Amp float32
}

func (dc *DC) NState() int     { return 0 }
func (dc *DC) NDraws() uint32  { return 0 }
func (dc *DC) UpdateHash(ac *hashacc.Accum) {
	ac.String("DC")
	ac.Float32(dc.Amp)
}

func (dc *DC) Inject(dt float32, st []float32, rnd rng.Elem) float32 {
	return dc.Amp
}

// GaussianNoise injects normally distributed noise, drawn independently
// for each neuron and step
type GaussianNoise struct {

	// mean of the current, nA
	Mean float32

	// standard deviation of the current, nA
	Sd float32
}

func (gn *GaussianNoise) NState() int    { return 0 }
func (gn *GaussianNoise) NDraws() uint32 { return 1 }
func (gn *GaussianNoise) UpdateHash(ac *hashacc.Accum) {
	ac.String("GaussianNoise")
	ac.Float32(gn.Mean)
	ac.Float32(gn.Sd)
}

func (gn *GaussianNoise) Inject(dt float32, st []float32, rnd rng.Elem) float32 {
	return gn.Mean + rnd.Normal(0)*gn.Sd
}

// PoissonExp injects the current of an exponentially decaying synapse
// driven by a Poisson spike train.  The number of input spikes per step is
// drawn by inverse transform from a single uniform draw.
type PoissonExp struct {

	// synaptic weight, nA
	Weight float32

	// decay time constant of the synaptic current, msec
	TauSyn float32

	// rate of the input spike train, Hz
	Rate float32
}

// poissonMaxK bounds the inverse transform search
const poissonMaxK = 1000

func (pe *PoissonExp) NState() int    { return 1 }
func (pe *PoissonExp) NDraws() uint32 { return 1 }
func (pe *PoissonExp) UpdateHash(ac *hashacc.Accum) {
	ac.String("PoissonExp")
	ac.Float32(pe.Weight)
	ac.Float32(pe.TauSyn)
	ac.Float32(pe.Rate)
}

// Spikes returns the number of input spikes for uniform draw u, given
// the expected count lambda per step
func Spikes(lambda, u float32) int {
	p := math32.Exp(-lambda)
	cdf := p
	k := 0
	for u >= cdf && k < poissonMaxK {
		k++
		p *= lambda / float32(k)
		if p == 0 {
			break
		}
		cdf += p
	}
	return k
}

func (pe *PoissonExp) Inject(dt float32, st []float32, rnd rng.Elem) float32 {
	decay := math32.Exp(-dt / pe.TauSyn)
	init := pe.Weight * (1 - decay) * (pe.TauSyn / dt)
	lambda := pe.Rate / 1000 * dt
	st[0] += init * float32(Spikes(lambda, rnd.Uniform(0)))
	cur := st[0]
	st[0] *= decay
	return cur
}
