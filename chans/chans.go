// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package chans provides the Hodgkin-Huxley conductance channels used by the
Traub & Miles conductance-based neuron, based on the standard equivalent RC
circuit model of a neuron (i.e., basic Ohms law equations).
Includes fast sodium, delayed rectifier potassium, and leak channels.
*/
package chans

// Chans are the ion channels of a Hodgkin-Huxley point neuron
type Chans struct {
	Na float32 `desc:"fast sodium (Na) channels, gated by m^3 h"`
	K  float32 `desc:"delayed rectifier potassium (K+) channels, gated by n^4"`
	L  float32 `desc:"constant leak channels -- determines resting potential"`
}

// SetAll sets all the values
func (ch *Chans) SetAll(na, k, l float32) {
	ch.Na, ch.K, ch.L = na, k, l
}

// SetFmMinusOther sets all the values from given value minus other Chans.
// With minus = Vm and oth = reversal potentials this gives the driving force.
func (ch *Chans) SetFmMinusOther(minus float32, oth Chans) {
	ch.Na, ch.K, ch.L = minus-oth.Na, minus-oth.K, minus-oth.L
}

// Current returns the total membrane current flowing out through the
// channels, given conductances g and driving forces df.
func Current(g, df Chans) float32 {
	return g.Na*df.Na + g.K*df.K + g.L*df.L
}
