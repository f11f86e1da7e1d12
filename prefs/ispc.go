// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prefs

import (
	"github.com/emer/spikegen/hashacc"
)

// ISPC are the preferences for the vectorized CPU backend, which runs
// each batch element as one control flow over gangs of SIMD lanes.
type ISPC struct {
	Base

	// instruction set to target, which also sets the gang width
	TargetISA ISA

	// prefer uniform (scalar) execution across the lanes of a gang
	// wherever the value is the same for every lane
	MaximizeUniforms bool `default:"true"`

	// trade runtime speed for smaller code.  Requires OptimizeCode.
	OptimizeForSize bool
}

// NewISPC returns ISPC preferences with default values
func NewISPC() *ISPC {
	pf := &ISPC{}
	pf.Defaults()
	return pf
}

// Defaults sets default values
func (pf *ISPC) Defaults() {
	pf.Base.Defaults()
	pf.TargetISA = Host
	pf.MaximizeUniforms = true
	pf.OptimizeForSize = false
}

func (pf *ISPC) Backend() string      { return "ispc" }
func (pf *ISPC) ImportSuffix() string { return "_ISPC" }

// visit reports the hashed ISPC fields, in fold order:
// TargetISA, MaximizeUniforms, DebugCode, OptimizeCode, OptimizeForSize.
// DebugCode and OptimizeCode are folded again here because they select
// the ISPC compiler flags in addition to the base code generator mode.
func (pf *ISPC) visit(fd fielder) {
	fd.Enum("TargetISA", int64(pf.TargetISA), pf.TargetISA.String())
	fd.Bool("MaximizeUniforms", pf.MaximizeUniforms)
	fd.Bool("DebugCode", pf.DebugCode)
	fd.Bool("OptimizeCode", pf.OptimizeCode)
	fd.Bool("OptimizeForSize", pf.OptimizeForSize)
}

// UpdateHash folds the base digest then the ISPC fields
func (pf *ISPC) UpdateHash(ac *hashacc.Accum) {
	updateHash(ac, &pf.Base, pf.visit)
}

func (pf *ISPC) Describe() string {
	return describe(pf.Backend(), &pf.Base, pf.visit)
}

func (pf *ISPC) Clone() Preferences {
	cp := *pf
	return &cp
}

// Validate checks the target ISA and flag combinations
func (pf *ISPC) Validate() error {
	if pf.TargetISA < 0 || pf.TargetISA >= ISAN {
		return &UnsupportedTargetError{Backend: pf.Backend(), Target: pf.TargetISA.String()}
	}
	if err := pf.Base.Validate(); err != nil {
		return withBackend(err, pf.Backend())
	}
	if pf.OptimizeForSize && !pf.OptimizeCode {
		return &ConfigurationError{Backend: pf.Backend(), Field: "OptimizeForSize", Reason: "requires OptimizeCode"}
	}
	return nil
}

// CompilerFlags returns the ispc command line flags these preferences select
func (pf *ISPC) CompilerFlags() []string {
	flags := []string{"--target=" + pf.TargetISA.Target()}
	switch {
	case pf.DebugCode:
		flags = append(flags, "-g", "-O0")
	case pf.OptimizeForSize:
		flags = append(flags, "-O1")
	case pf.OptimizeCode:
		flags = append(flags, "-O3")
	default:
		flags = append(flags, "-O2")
	}
	return flags
}
