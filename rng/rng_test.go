// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rng

import (
	"errors"
	"math"
	"sync"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func drawSeq(st *Streams, id, n int) []float32 {
	vals := make([]float32, n)
	for i := range vals {
		v, err := st.BatchUniform(id)
		if err != nil {
			panic(err)
		}
		vals[i] = v
	}
	return vals
}

func TestBatchReproducible(t *testing.T) {
	const nb = 8
	const n = 200
	a := New()
	a.InitBatch(42, nb)
	b := New()
	b.InitBatch(42, nb)
	for id := 0; id < nb; id++ {
		av := drawSeq(a, id, n)
		bv := drawSeq(b, id, n)
		for i := range av {
			if av[i] != bv[i] {
				t.Fatalf("batch %d draw %d: %v != %v", id, i, av[i], bv[i])
			}
			if av[i] < 0 || av[i] >= 1 {
				t.Errorf("uniform out of [0,1): %v", av[i])
			}
		}
	}

	// reinitializing restarts the streams
	c := New()
	c.InitBatch(42, nb)
	first := drawSeq(c, 3, 5)
	c.InitBatch(42, nb)
	again := drawSeq(c, 3, 5)
	for i := range first {
		if first[i] != again[i] {
			t.Errorf("restart draw %d: %v != %v", i, again[i], first[i])
		}
	}
}

func TestStreamIndependentOfBatchSize(t *testing.T) {
	a := New()
	a.InitBatch(7, 2)
	b := New()
	b.InitBatch(7, 16)
	av := drawSeq(a, 1, 50)
	bv := drawSeq(b, 1, 50)
	for i := range av {
		if av[i] != bv[i] {
			t.Fatalf("stream 1 differs between batch sizes at draw %d", i)
		}
	}
	cv := drawSeq(b, 2, 50)
	same := 0
	for i := range av {
		if av[i] == cv[i] {
			same++
		}
	}
	if same > 2 {
		t.Errorf("streams 1 and 2 overlap in %d of 50 draws", same)
	}
}

func TestSeedsDiffer(t *testing.T) {
	a := New()
	a.InitBatch(1, 1)
	b := New()
	b.InitBatch(2, 1)
	if drawSeq(a, 0, 1)[0] == drawSeq(b, 0, 1)[0] {
		t.Errorf("different seeds gave the same first draw")
	}
}

func TestConcurrentBatchDraws(t *testing.T) {
	const nb = 16
	const n = 1000
	seq := New()
	seq.InitBatch(99, nb)
	want := make([][]float32, nb)
	for id := range want {
		want[id] = drawSeq(seq, id, n)
	}

	par := New()
	par.InitBatch(99, nb)
	got := make([][]float32, nb)
	var wg sync.WaitGroup
	for id := 0; id < nb; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			got[id] = drawSeq(par, id, n)
		}(id)
	}
	wg.Wait()
	for id := range want {
		for i := range want[id] {
			if got[id][i] != want[id][i] {
				t.Fatalf("concurrent batch %d draw %d: %v != %v", id, i, got[id][i], want[id][i])
			}
		}
	}
}

func TestBatchRange(t *testing.T) {
	st := New()
	if _, err := st.BatchUniform(0); !errors.Is(err, ErrNotSeeded) {
		t.Errorf("draw before InitBatch: got %v", err)
	}
	st.InitBatch(1, 4)
	var be *BatchRangeError
	if _, err := st.BatchNormal(4); !errors.As(err, &be) || be.BatchSize != 4 {
		t.Errorf("batch id 4 of 4: got %v", err)
	}
	if _, err := st.BatchGamma(-1, 1); !errors.As(err, &be) {
		t.Errorf("batch id -1: got %v", err)
	}
}

func TestScalarNotSeeded(t *testing.T) {
	defer func() {
		if r := recover(); r != ErrNotSeeded {
			t.Errorf("expected ErrNotSeeded panic, got %v", r)
		}
	}()
	New().Uniform()
}

func TestDomainErrors(t *testing.T) {
	st := New()
	st.Init(5)
	var de *NumericDomainError
	for _, shape := range []float32{0, -1, float32(math.NaN()), float32(math.Inf(1))} {
		if _, err := st.Gamma(shape); !errors.As(err, &de) {
			t.Errorf("Gamma(%v): got %v", shape, err)
		}
	}
	for _, p := range []float32{-0.01, 1.01, float32(math.NaN())} {
		if _, err := st.Binomial(10, p); !errors.As(err, &de) {
			t.Errorf("Binomial(10, %v): got %v", p, err)
		}
	}
	if _, err := st.LogNormal(0, -1); !errors.As(err, &de) {
		t.Errorf("LogNormal stdev -1: got %v", err)
	}
	// failed draws do not advance the stream
	a := New()
	a.Init(5)
	b := New()
	b.Init(5)
	a.Gamma(-1)
	if a.Uniform() != b.Uniform() {
		t.Errorf("domain error consumed random numbers")
	}
}

func TestBinomialMean(t *testing.T) {
	const n = 100000
	st := New()
	st.Init(42)
	vals := make([]float64, n)
	for i := range vals {
		k, err := st.Binomial(10, 0.5)
		if err != nil {
			t.Fatal(err)
		}
		if k > 10 {
			t.Fatalf("binomial out of range: %d", k)
		}
		vals[i] = float64(k)
	}
	mean, std := stat.MeanStdDev(vals, nil)
	// standard error of the mean is sqrt(2.5 / 1e5) = 0.005
	if math.Abs(mean-5) > 0.03 {
		t.Errorf("binomial(10, 0.5) mean: %v", mean)
	}
	if math.Abs(std-math.Sqrt(2.5)) > 0.05 {
		t.Errorf("binomial(10, 0.5) std: %v", std)
	}

	if k, _ := st.Binomial(7, 1); k != 7 {
		t.Errorf("binomial p=1: %d", k)
	}
	if k, _ := st.Binomial(7, 0); k != 0 {
		t.Errorf("binomial p=0: %d", k)
	}
	if k, _ := st.Binomial(0, 0.3); k != 0 {
		t.Errorf("binomial n=0: %d", k)
	}
}

func TestDistributionMoments(t *testing.T) {
	const n = 50000
	st := New()
	st.InitBatch(3, 2)
	nrm := make([]float64, n)
	exp := make([]float64, n)
	gam := make([]float64, n)
	lgn := make([]float64, n)
	for i := 0; i < n; i++ {
		v, _ := st.BatchNormal(1)
		nrm[i] = float64(v)
		v, _ = st.BatchExponential(1)
		exp[i] = float64(v)
		v, _ = st.BatchGamma(1, 3)
		gam[i] = float64(v)
		v, _ = st.BatchLogNormal(1, 0, 0.5)
		lgn[i] = float64(v)
	}
	check := func(name string, vals []float64, mean, tol float64) {
		m := stat.Mean(vals, nil)
		if math.Abs(m-mean) > tol {
			t.Errorf("%s mean: %v, want %v", name, m, mean)
		}
	}
	check("normal", nrm, 0, 0.03)
	check("exponential", exp, 1, 0.03)
	check("gamma(3)", gam, 3, 0.05)
	check("lognormal(0, 0.5)", lgn, math.Exp(0.125), 0.03)
	if v := stat.Variance(nrm, nil); math.Abs(v-1) > 0.05 {
		t.Errorf("normal variance: %v", v)
	}
}

func TestKernelLaunchOrder(t *testing.T) {
	var ks KernelStream
	ks.Seed(42, 3)
	ln := ks.Launch()
	const n = 64
	fwd := make([]float32, n)
	for i := 0; i < n; i++ {
		fwd[i] = ln.Uniform(uint32(i), 0)
	}
	for i := n - 1; i >= 0; i-- {
		if v := ln.Uniform(uint32(i), 0); v != fwd[i] {
			t.Fatalf("element %d depends on order: %v != %v", i, v, fwd[i])
		}
	}
	if ln.Uniform(0, 1) == fwd[0] {
		t.Errorf("second draw equals first")
	}
	ks.Advance(1)
	if ks.Launch().Uniform(0, 0) != ln.Uniform(0, 1) {
		t.Errorf("advance by 1 should shift draws by one")
	}

	var other KernelStream
	other.Seed(42, 4)
	if other.Launch().Uniform(0, 0) == fwd[0] {
		t.Errorf("different groups share a kernel stream")
	}
}

func TestKernelStreamsDisjoint(t *testing.T) {
	for _, seed := range []uint32{0, 1, 42, 1 << 31, 0x80000001, ^uint32(0)} {
		ys := map[uint32]int{}
		for gi := 0; gi < 4; gi++ {
			var ks KernelStream
			ks.Seed(seed, gi)
			y := ks.Counter().Y
			if y == seed {
				t.Errorf("seed %#x group %d: kernel stream shares the batch stream counter", seed, gi)
			}
			if og, has := ys[y]; has {
				t.Errorf("seed %#x: groups %d and %d share a kernel stream", seed, og, gi)
			}
			ys[y] = gi
			ln := ks.Launch()
			for k := uint32(0); k < 4; k++ {
				if ln.Uniform(k, 0) == NewStream(seed, k).Uniform() {
					t.Errorf("seed %#x group %d element %d: same draw as batch stream %d", seed, gi, k, k)
				}
			}
		}
	}
}
