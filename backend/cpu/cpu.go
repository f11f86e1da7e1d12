// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cpu is the scalar CPU backend: every entry point runs as plain
loops in the calling goroutine, batch elements outer and neurons inner.
It is the reference against which the other backends are checked.
*/
package cpu

import (
	"fmt"

	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/prefs"
	"github.com/emer/spikegen/spikeq"
)

// Kernels implements kernel.Kernels with sequential loops
type Kernels struct {
	kernel.Base

	// preferences the kernels were built with
	Prefs *prefs.SingleThreadedCPU
}

// New returns new scalar CPU kernels for given preferences
func New(pf *prefs.SingleThreadedCPU) *Kernels {
	kn := &Kernels{Prefs: pf}
	kn.Init(pf.ImportSuffix(), Exec{})
	return kn
}

// Factory validates scalar CPU preferences and returns new kernels
func Factory(pf prefs.Preferences) (kernel.Kernels, error) {
	cp, ok := pf.(*prefs.SingleThreadedCPU)
	if !ok {
		return nil, &prefs.ConfigurationError{Backend: "cpu", Field: "Preferences", Reason: fmt.Sprintf("%T are not scalar CPU preferences", pf)}
	}
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return New(cp), nil
}

// Exec is the sequential kernel.Executor
type Exec struct{}

func (ex Exec) Neurons(k prefs.Kernels, nNeurons, nBatch int, body kernel.Body, spk, evt *spikeq.Queue) {
	for b := 0; b < nBatch; b++ {
		for n := 0; n < nNeurons; n++ {
			kernel.Emit(spk, evt, b, n, body(b, n))
		}
	}
}

func (ex Exec) Elements(k prefs.Kernels, n, nBatch int, fn func(b, i int)) {
	for b := 0; b < nBatch; b++ {
		for i := 0; i < n; i++ {
			fn(b, i)
		}
	}
}
