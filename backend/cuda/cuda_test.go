// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cuda

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/emer/spikegen/backend/conform"
	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/prefs"
)

func mustNew(pf *prefs.CUDA) kernel.Kernels {
	kn, err := New(pf)
	if err != nil {
		panic(err)
	}
	return kn
}

func TestConform(t *testing.T) {
	t.Run("Occupancy", func(t *testing.T) {
		conform.Run(t, func() kernel.Kernels { return mustNew(prefs.NewCUDA()) })
	})
	t.Run("Manual32", func(t *testing.T) {
		conform.Run(t, func() kernel.Kernels {
			pf := prefs.NewCUDA()
			pf.BlockSizeSelectMethod = prefs.BlockManual
			return mustNew(pf)
		})
	})
}

func TestLaunch(t *testing.T) {
	pf := prefs.NewCUDA()
	pf.BlockSizeSelectMethod = prefs.BlockManual
	dv := NewDevice(0, 4, pf)
	defer dv.StopThreads()
	var cnt atomic.Int64
	ran := make([]int32, 1000)
	dv.Launch(len(ran), func(bi int) {
		atomic.AddInt32(&ran[bi], 1)
		cnt.Add(1)
	})
	if n := cnt.Load(); n != 1000 {
		t.Errorf("ran %d blocks", n)
	}
	for bi, r := range ran {
		if r != 1 {
			t.Errorf("block %d ran %d times", bi, r)
		}
	}
	dv.ThrTimerReset()
	for sm := range dv.SMTimes {
		if s := dv.SMTimes[sm].TotalSecs(); s != 0 {
			t.Errorf("sm %d timer not reset: %v", sm, s)
		}
	}

	// 70 elements in blocks of 32 over 2 batch elements
	gd := dv.grid(prefs.KernelRecord, 70)
	if gd.nx != 3 {
		t.Errorf("blocks per batch element: %d", gd.nx)
	}
	b, st, ed := gd.threads(5)
	if b != 1 || st != 64 || ed != 70 {
		t.Errorf("block 5: batch %d range [%d, %d)", b, st, ed)
	}
}

func TestFactory(t *testing.T) {
	pf := prefs.NewCUDA()
	pf.TargetISA = "sm_20"
	var ue *prefs.UnsupportedTargetError
	if _, err := Factory(pf); !errors.As(err, &ue) {
		t.Errorf("sm_20 accepted: %v", err)
	}
	pf = prefs.NewCUDA()
	pf.DeviceSelectMethod = prefs.DeviceManual
	pf.ManualDeviceID = NumDevices
	var ce *prefs.ConfigurationError
	if _, err := Factory(pf); !errors.As(err, &ce) {
		t.Errorf("missing device accepted: %v", err)
	}
	kn, err := Factory(prefs.NewCUDA())
	if err != nil {
		t.Fatal(err)
	}
	if bs := kn.(*Kernels).Dev.BlockSizes[prefs.KernelNeuronUpdate]; bs != 256 {
		t.Errorf("sm_80 occupancy block size: %d", bs)
	}
	kn.Close()
}
