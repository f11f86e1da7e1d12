// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package custom

import (
	"github.com/chewxy/math32"
	"github.com/emer/spikegen/hashacc"
	"github.com/emer/spikegen/neuron"
	"github.com/emer/spikegen/rng"
)

// QIF is a noisy quadratic integrate-and-fire neuron:
// Tau dV/dt = (V - Vrest)(V - Vcrit) / (Vcrit - Vrest) + R I, plus
// membrane noise of standard deviation Noise mV per sqrt(msec).
type QIF struct {

	// membrane time constant, msec
	Tau float32 `def:"10"`

	// resting potential, mV
	Vrest float32 `def:"-65"`

	// critical potential above which V runs away, mV
	Vcrit float32 `def:"-50"`

	// spike peak, mV
	Vpeak float32 `def:"20"`

	// reset potential, mV
	Vreset float32 `def:"-70"`

	// membrane resistance, MOhm
	R float32 `def:"10"`

	// membrane noise
	Noise float32 `def:"0"`
}

func (qf *QIF) Model() neuron.Models { return neuron.CustomModel }

func (qf *QIF) Defaults() {
	qf.Tau = 10
	qf.Vrest = -65
	qf.Vcrit = -50
	qf.Vpeak = 20
	qf.Vreset = -70
	qf.R = 10
	qf.Noise = 0
}

func (qf *QIF) Update() {
}

func (qf *QIF) Vars() []string { return []string{"V"} }

func (qf *QIF) InitVals() []float32 { return []float32{qf.Vrest} }

func (qf *QIF) NDraws() uint32 { return 1 }

func (qf *QIF) UpdateHash(ac *hashacc.Accum) {
	ac.String("QIF")
	ac.Float32(qf.Tau)
	ac.Float32(qf.Vrest)
	ac.Float32(qf.Vcrit)
	ac.Float32(qf.Vpeak)
	ac.Float32(qf.Vreset)
	ac.Float32(qf.R)
	ac.Float32(qf.Noise)
}

func (qf *QIF) Step(dt float32, vars []float32, isyn float32, rnd rng.Elem) bool {
	v := vars[0]
	dv := ((v-qf.Vrest)*(v-qf.Vcrit)/(qf.Vcrit-qf.Vrest) + qf.R*isyn) / qf.Tau
	v += dv * dt
	if qf.Noise > 0 {
		v += qf.Noise * math32.Sqrt(dt) * rnd.Normal(0)
	}
	if v >= qf.Vpeak {
		vars[0] = qf.Vreset
		return true
	}
	vars[0] = v
	return false
}
