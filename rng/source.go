// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rng

import (
	"github.com/chewxy/math32"
	"github.com/emer/gosl/v2/slrand"
	"github.com/emer/gosl/v2/sltype"
	"golang.org/x/exp/rand"
)

// belowOne is the largest float32 less than 1
var belowOne = math32.Nextafter(1, 0)

// addCounter adds inc to the 64 bit counter held in ctr (X low, Y high)
func addCounter(ctr *sltype.Uint2, inc uint32) {
	lo := ctr.X + inc
	if lo < ctr.X {
		ctr.Y++
	}
	ctr.X = lo
}

// unitFloat returns a uniform float32 in [0, 1) from the Philox stream
// (ctr, key), incrementing ctr.
func unitFloat(ctr *sltype.Uint2, key uint32) float32 {
	u := slrand.Float(ctr, key)
	if u >= 1 {
		u = belowOne
	}
	return u
}

// Source adapts one Philox2x32 stream to the rand.Source interface,
// so that gonum distributions can draw from it.  Each Uint64 consumes
// two counter increments.
type Source struct {
	Ctr sltype.Uint2
	Key uint32
}

var _ rand.Source = (*Source)(nil)

// Uint64 returns the next 64 random bits of the stream
func (sr *Source) Uint64() uint64 {
	hi := slrand.Uint32(&sr.Ctr, sr.Key)
	lo := slrand.Uint32(&sr.Ctr, sr.Key)
	return uint64(hi)<<32 | uint64(lo)
}

// Seed restarts the stream at counter 0 with the low 32 bits of seed
// as the high counter word.  The key (stream index) is unchanged.
func (sr *Source) Seed(seed uint64) {
	sr.Ctr = sltype.Uint2{X: 0, Y: uint32(seed)}
}
