// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cuda is the GPU backend.  Each kernel launch is a grid of thread
blocks, one thread per neuron (or element) and batch element, run on an
emulated Device whose streaming multiprocessors are worker goroutines.
Blocks collect their spikes locally and the lists are merged in block
order after the launch, so spike order is the same as on the scalar
backend.  Every entry point waits for its launch to complete before
returning.
*/
package cuda

import (
	"fmt"
	"log"
	"runtime"

	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/prefs"
)

// NumDevices is the number of devices available for selection
var NumDevices = 1

// Kernels implements kernel.Kernels on a Device
type Kernels struct {
	kernel.Base

	// preferences the kernels were built with
	Prefs *prefs.CUDA

	// the device the kernels run on
	Dev *Device
}

// New returns new GPU kernels on a device selected per pf, which must be valid
func New(pf *prefs.CUDA) (*Kernels, error) {
	id, err := SelectDevice(pf)
	if err != nil {
		return nil, err
	}
	kn := &Kernels{Prefs: pf}
	kn.Dev = NewDevice(id, runtime.NumCPU(), pf)
	kn.Init(pf.ImportSuffix(), kn.Dev)
	if pf.LogLevel >= 2 {
		log.Printf("cuda: device %d, %d SMs, target %s, block sizes %v\n", id, kn.Dev.NSM, pf.TargetISA, kn.Dev.BlockSizes)
	}
	return kn, nil
}

// Factory validates CUDA preferences and returns new kernels
func Factory(pf prefs.Preferences) (kernel.Kernels, error) {
	cp, ok := pf.(*prefs.CUDA)
	if !ok {
		return nil, &prefs.ConfigurationError{Backend: "cuda", Field: "Preferences", Reason: fmt.Sprintf("%T are not CUDA preferences", pf)}
	}
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return New(cp)
}

// SelectDevice returns the id of the device to run on
func SelectDevice(pf *prefs.CUDA) (int, error) {
	if pf.DeviceSelectMethod != prefs.DeviceManual {
		return 0, nil
	}
	if pf.ManualDeviceID >= NumDevices {
		return 0, &prefs.ConfigurationError{Backend: pf.Backend(), Field: "ManualDeviceID", Reason: fmt.Sprintf("device %d of %d", pf.ManualDeviceID, NumDevices)}
	}
	return pf.ManualDeviceID, nil
}

// Close stops the device workers, reporting their time first at LogLevel >= 2
func (kn *Kernels) Close() {
	if kn.Prefs.LogLevel >= 2 {
		kn.Dev.ThrTimerReport()
	}
	kn.Dev.StopThreads()
}
