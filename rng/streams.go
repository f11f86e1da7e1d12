// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package rng provides the batched deterministic random number service used
by every backend.

Streams are Philox2x32 counter-based generators (gosl slrand).  The stream
derivation rule is fixed: batch stream i uses key i with counter
{X: draw index, Y: seed}, and the scalar stream uses key ScalarKey with the
same counter rule.  Stream i is therefore identical on every platform for
the same seed and i, regardless of the batch size it was created with.

Uniform and normal draws come directly from slrand; exponential, gamma and
binomial draws use gonum distuv distributions over a Source adapter on the
same stream.  Batch streams share no mutable state, so different batch ids
can be drawn from concurrently.  Init and InitBatch must not run
concurrently with draws.
*/
package rng

import (
	"github.com/chewxy/math32"
	"github.com/emer/gosl/v2/slrand"
	"github.com/emer/gosl/v2/sltype"
	"gonum.org/v1/gonum/stat/distuv"
)

// ScalarKey is the Philox key of the scalar (non-batch) stream
const ScalarKey = ^uint32(0)

// Stream is one reproducible Philox2x32 stream
type Stream struct {
	src Source
}

// NewStream returns a stream for given seed and key
func NewStream(seed, key uint32) *Stream {
	return &Stream{src: Source{Ctr: sltype.Uint2{X: 0, Y: seed}, Key: key}}
}

// Counter returns the current counter value, which identifies the
// position of the stream
func (sm *Stream) Counter() sltype.Uint2 {
	return sm.src.Ctr
}

// Uniform returns a float32 in [0, 1)
func (sm *Stream) Uniform() float32 {
	return unitFloat(&sm.src.Ctr, sm.src.Key)
}

// Normal returns a standard normal float32
func (sm *Stream) Normal() float32 {
	return slrand.NormFloat(&sm.src.Ctr, sm.src.Key)
}

// Exponential returns an exponential float32 with rate 1
func (sm *Stream) Exponential() float32 {
	return float32(distuv.Exponential{Rate: 1, Src: &sm.src}.Rand())
}

// LogNormal returns exp(mean + stdev * Normal())
func (sm *Stream) LogNormal(mean, stdev float32) (float32, error) {
	if !(stdev >= 0) || math32.IsInf(stdev, 0) {
		return 0, &NumericDomainError{Dist: "LogNormal", Param: "stdev", Value: float64(stdev), Want: "finite >= 0"}
	}
	if math32.IsNaN(mean) || math32.IsInf(mean, 0) {
		return 0, &NumericDomainError{Dist: "LogNormal", Param: "mean", Value: float64(mean), Want: "finite"}
	}
	return math32.Exp(mean + stdev*sm.Normal()), nil
}

// Gamma returns a gamma distributed float32 with given shape and scale 1.
// Shape must be > 0.
func (sm *Stream) Gamma(shape float32) (float32, error) {
	if !(shape > 0) || math32.IsInf(shape, 0) {
		return 0, &NumericDomainError{Dist: "Gamma", Param: "shape", Value: float64(shape), Want: "finite > 0"}
	}
	return float32(distuv.Gamma{Alpha: float64(shape), Beta: 1, Src: &sm.src}.Rand()), nil
}

// Binomial returns the number of successes in n trials with probability p,
// which is always in [0, n].  p must be in [0, 1].
func (sm *Stream) Binomial(n uint32, p float32) (uint32, error) {
	if !(p >= 0 && p <= 1) {
		return 0, &NumericDomainError{Dist: "Binomial", Param: "p", Value: float64(p), Want: "in [0, 1]"}
	}
	switch {
	case n == 0 || p == 0:
		return 0, nil
	case p == 1:
		return n, nil
	}
	k := distuv.Binomial{N: float64(n), P: float64(p), Src: &sm.src}.Rand()
	if k < 0 {
		k = 0
	}
	return min(uint32(k), n), nil
}

// Streams holds the scalar stream and the batch streams of one session
type Streams struct {
	seed   uint32
	scalar *Stream
	batch  []*Stream
}

// New returns uninitialized streams.  Call Init and / or InitBatch before drawing.
func New() *Streams {
	return &Streams{}
}

// Seed returns the seed of the last Init / InitBatch
func (st *Streams) Seed() uint32 {
	return st.seed
}

// BatchSize returns the number of batch streams
func (st *Streams) BatchSize() int {
	return len(st.batch)
}

// Init (re)starts the scalar stream from seed
func (st *Streams) Init(seed uint32) {
	st.seed = seed
	st.scalar = NewStream(seed, ScalarKey)
}

// InitBatch (re)starts batchSize independent batch streams from seed,
// stream i using key i.  The scalar stream is also restarted if it has
// not been initialized.
func (st *Streams) InitBatch(seed uint32, batchSize int) {
	st.seed = seed
	st.batch = make([]*Stream, batchSize)
	for i := range st.batch {
		st.batch[i] = NewStream(seed, uint32(i))
	}
	if st.scalar == nil {
		st.scalar = NewStream(seed, ScalarKey)
	}
}

// Scalar returns the scalar stream, or panics with ErrNotSeeded
func (st *Streams) Scalar() *Stream {
	if st.scalar == nil {
		panic(ErrNotSeeded)
	}
	return st.scalar
}

// Batch returns batch stream id, or a *BatchRangeError
func (st *Streams) Batch(id int) (*Stream, error) {
	if st.batch == nil {
		return nil, ErrNotSeeded
	}
	if id < 0 || id >= len(st.batch) {
		return nil, &BatchRangeError{BatchID: id, BatchSize: len(st.batch)}
	}
	return st.batch[id], nil
}

// Uniform draws from the scalar stream
func (st *Streams) Uniform() float32 { return st.Scalar().Uniform() }

// Normal draws from the scalar stream
func (st *Streams) Normal() float32 { return st.Scalar().Normal() }

// Exponential draws from the scalar stream
func (st *Streams) Exponential() float32 { return st.Scalar().Exponential() }

// LogNormal draws from the scalar stream
func (st *Streams) LogNormal(mean, stdev float32) (float32, error) {
	return st.Scalar().LogNormal(mean, stdev)
}

// Gamma draws from the scalar stream
func (st *Streams) Gamma(shape float32) (float32, error) {
	return st.Scalar().Gamma(shape)
}

// Binomial draws from the scalar stream
func (st *Streams) Binomial(n uint32, p float32) (uint32, error) {
	return st.Scalar().Binomial(n, p)
}

// BatchUniform draws from batch stream id
func (st *Streams) BatchUniform(id int) (float32, error) {
	sm, err := st.Batch(id)
	if err != nil {
		return 0, err
	}
	return sm.Uniform(), nil
}

// BatchNormal draws from batch stream id
func (st *Streams) BatchNormal(id int) (float32, error) {
	sm, err := st.Batch(id)
	if err != nil {
		return 0, err
	}
	return sm.Normal(), nil
}

// BatchExponential draws from batch stream id
func (st *Streams) BatchExponential(id int) (float32, error) {
	sm, err := st.Batch(id)
	if err != nil {
		return 0, err
	}
	return sm.Exponential(), nil
}

// BatchLogNormal draws from batch stream id
func (st *Streams) BatchLogNormal(id int, mean, stdev float32) (float32, error) {
	sm, err := st.Batch(id)
	if err != nil {
		return 0, err
	}
	return sm.LogNormal(mean, stdev)
}

// BatchGamma draws from batch stream id
func (st *Streams) BatchGamma(id int, shape float32) (float32, error) {
	sm, err := st.Batch(id)
	if err != nil {
		return 0, err
	}
	return sm.Gamma(shape)
}

// BatchBinomial draws from batch stream id
func (st *Streams) BatchBinomial(id int, n uint32, p float32) (uint32, error) {
	sm, err := st.Batch(id)
	if err != nil {
		return 0, err
	}
	return sm.Binomial(n, p)
}
