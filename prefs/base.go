// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prefs

import (
	"github.com/emer/spikegen/hashacc"
)

// Base holds the preferences shared by all backends.
// Backend preferences embed Base and fold its Digest first.
type Base struct {

	// generate code with optimizations enabled
	OptimizeCode bool `default:"true"`

	// generate debuggable code: bounds-checked handles and instrumentation,
	// with aggressive optimization disabled.  Cannot be combined with OptimizeCode.
	DebugCode bool

	// copy state to and from the device automatically around each step,
	// rather than requiring explicit push / pull calls
	AutomaticCopy bool

	// use bitmask sparse connectivity where it is smaller than the
	// equivalent index lists
	EnableBitmaskOptimizations bool

	// generate push and pull functions for groups with no state,
	// so that user code can call them uniformly
	GenerateEmptyStatePushPull bool `default:"true"`

	// generate pull functions for extra global parameters
	GenerateExtraGlobalParamPull bool `default:"true"`

	// include the model name in the name of the generated library
	IncludeModelNameInDLL bool

	// verbosity of code generator logging: 0 = errors only, 1 = warnings, 2 = info.
	// Has no effect on the generated code so is not part of the digest.
	LogLevel int `default:"1"`
}

// Defaults sets default values
func (bp *Base) Defaults() {
	bp.OptimizeCode = true
	bp.DebugCode = false
	bp.AutomaticCopy = false
	bp.EnableBitmaskOptimizations = false
	bp.GenerateEmptyStatePushPull = true
	bp.GenerateExtraGlobalParamPull = true
	bp.IncludeModelNameInDLL = false
	bp.LogLevel = 1
}

// AsBase returns the base preferences
func (bp *Base) AsBase() *Base {
	return bp
}

// visit reports the hashed base fields, in fold order
func (bp *Base) visit(fd fielder) {
	fd.Bool("OptimizeCode", bp.OptimizeCode)
	fd.Bool("DebugCode", bp.DebugCode)
	fd.Bool("AutomaticCopy", bp.AutomaticCopy)
	fd.Bool("EnableBitmaskOptimizations", bp.EnableBitmaskOptimizations)
	fd.Bool("GenerateEmptyStatePushPull", bp.GenerateEmptyStatePushPull)
	fd.Bool("GenerateExtraGlobalParamPull", bp.GenerateExtraGlobalParamPull)
	fd.Bool("IncludeModelNameInDLL", bp.IncludeModelNameInDLL)
}

// Digest returns the digest of the base fields alone, which backend
// preferences fold into their own accumulator before their own fields.
func (bp *Base) Digest() hashacc.Digest {
	ac := hashacc.New()
	bp.visit(hashFielder{ac: ac})
	return ac.Sum()
}

// Validate checks for contradictory base settings
func (bp *Base) Validate() error {
	if bp.DebugCode && bp.OptimizeCode {
		return &ConfigurationError{Field: "DebugCode", Reason: "debug code disables optimization, so OptimizeCode must be off"}
	}
	if bp.LogLevel < 0 {
		return &ConfigurationError{Field: "LogLevel", Reason: "must be >= 0"}
	}
	return nil
}
