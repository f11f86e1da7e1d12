// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prefs

import (
	"github.com/emer/spikegen/hashacc"
)

// SingleThreadedCPU are the preferences for the scalar CPU backend,
// which iterates over batch elements and neurons sequentially.
type SingleThreadedCPU struct {
	Base

	// extra compiler options for the generated code
	UserCxxFlags []string
}

// NewSingleThreadedCPU returns scalar CPU preferences with default values
func NewSingleThreadedCPU() *SingleThreadedCPU {
	pf := &SingleThreadedCPU{}
	pf.Defaults()
	return pf
}

// Defaults sets default values
func (pf *SingleThreadedCPU) Defaults() {
	pf.Base.Defaults()
	pf.UserCxxFlags = nil
}

func (pf *SingleThreadedCPU) Backend() string      { return "cpu" }
func (pf *SingleThreadedCPU) ImportSuffix() string { return "_SingleThreadedCPU" }

func (pf *SingleThreadedCPU) visit(fd fielder) {
	fd.Strings("UserCxxFlags", pf.UserCxxFlags)
}

// UpdateHash folds the base digest then UserCxxFlags
func (pf *SingleThreadedCPU) UpdateHash(ac *hashacc.Accum) {
	updateHash(ac, &pf.Base, pf.visit)
}

func (pf *SingleThreadedCPU) Describe() string {
	return describe(pf.Backend(), &pf.Base, pf.visit)
}

func (pf *SingleThreadedCPU) Clone() Preferences {
	cp := *pf
	cp.UserCxxFlags = append([]string(nil), pf.UserCxxFlags...)
	return &cp
}

func (pf *SingleThreadedCPU) Validate() error {
	return withBackend(pf.Base.Validate(), pf.Backend())
}
