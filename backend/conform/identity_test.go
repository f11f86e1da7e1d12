// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conform_test

import (
	"testing"

	"github.com/emer/spikegen/backend/conform"
	"github.com/emer/spikegen/backend/cpu"
	"github.com/emer/spikegen/backend/cuda"
	"github.com/emer/spikegen/backend/ispc"
	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/prefs"
)

const (
	seed   = 1234
	nSteps = 400
)

func trace(t *testing.T, kn kernel.Kernels) *conform.Trace {
	tr, err := conform.Scenario(kn, seed, nSteps)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestBackendsIdentical(t *testing.T) {
	ref := trace(t, cpu.New(prefs.NewSingleThreadedCPU()))
	// groups in conform.MixedNetwork order that must spike
	for _, gi := range []int{0, 1, 2, 4, 5, 7} {
		if ref.NSpikes(gi) == 0 {
			t.Errorf("group %d never spiked", gi)
		}
	}

	for _, isa := range []prefs.ISA{prefs.SSE2, prefs.AVX2, prefs.AVX512KNL} {
		pf := prefs.NewISPC()
		pf.TargetISA = isa
		conform.CompareTraces(t, "ispc "+isa.String(), ref, trace(t, ispc.New(pf)))
	}

	pf := prefs.NewCUDA()
	kn, err := cuda.New(pf)
	if err != nil {
		t.Fatal(err)
	}
	conform.CompareTraces(t, "cuda", ref, trace(t, kn))

	pf = prefs.NewCUDA()
	pf.BlockSizeSelectMethod = prefs.BlockManual
	pf.ManualBlockSizes[prefs.KernelNeuronUpdate] = 64
	kn, err = cuda.New(pf)
	if err != nil {
		t.Fatal(err)
	}
	conform.CompareTraces(t, "cuda manual", ref, trace(t, kn))
}

func TestSeedsDiffer(t *testing.T) {
	a, err := conform.Scenario(cpu.New(prefs.NewSingleThreadedCPU()), 1, 100)
	if err != nil {
		t.Fatal(err)
	}
	b, err := conform.Scenario(cpu.New(prefs.NewSingleThreadedCPU()), 2, 100)
	if err != nil {
		t.Fatal(err)
	}
	if a.NSpikes(0) == b.NSpikes(0) && a.NSpikes(2) == b.NSpikes(2) {
		t.Errorf("seeds 1 and 2 give the same spike counts")
	}
}
