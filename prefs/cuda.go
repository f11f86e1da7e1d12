// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prefs

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/emer/spikegen/hashacc"
)

// MinComputeCapability is the oldest GPU architecture supported, as sm_XY
const MinComputeCapability = 35

var smRe = regexp.MustCompile(`^sm_([0-9]+)$`)

// CUDA are the preferences for the GPU backend, which runs one thread
// per neuron (and batch element) across many thread blocks.
type CUDA struct {
	Base

	// device class to generate for, as a compute capability such as sm_80
	TargetISA string `default:"sm_80"`

	// how to select the GPU device
	DeviceSelectMethod DeviceSelect

	// if DeviceSelectMethod is DeviceManual, id of device to use
	ManualDeviceID int

	// how to select the block size of each kernel
	BlockSizeSelectMethod BlockSizeSelect

	// if BlockSizeSelectMethod is BlockManual, block size to use for each kernel.
	// Each must be a positive multiple of the warp size (32).
	ManualBlockSizes [KernelsN]int

	// how much constant cache, in bytes, is already used and therefore cannot
	// be used by generated code
	ConstantCacheOverhead int `default:"360"`

	// display assembler information for each kernel during compilation
	ShowPtxInfo bool

	// include line info in the compiled kernels for debugging / profiling
	GenerateLineInfo bool

	// insert NVTX markers to make profiling easier
	EnableNVTX bool

	// extra compiler options for all GPU code
	UserNvccFlags []string
}

// NewCUDA returns CUDA preferences with default values
func NewCUDA() *CUDA {
	pf := &CUDA{}
	pf.Defaults()
	return pf
}

// Defaults sets default values
func (pf *CUDA) Defaults() {
	pf.Base.Defaults()
	pf.TargetISA = "sm_80"
	pf.DeviceSelectMethod = DeviceOptimal
	pf.ManualDeviceID = 0
	pf.BlockSizeSelectMethod = BlockOccupancy
	for k := range pf.ManualBlockSizes {
		pf.ManualBlockSizes[k] = 32
	}
	pf.ConstantCacheOverhead = 72 * 5
	pf.ShowPtxInfo = false
	pf.GenerateLineInfo = false
	pf.EnableNVTX = false
	pf.UserNvccFlags = nil
}

func (pf *CUDA) Backend() string      { return "cuda" }
func (pf *CUDA) ImportSuffix() string { return "_CUDA" }

// ComputeCapability returns the numeric architecture of TargetISA, e.g., 80 for sm_80
func (pf *CUDA) ComputeCapability() (int, error) {
	m := smRe.FindStringSubmatch(pf.TargetISA)
	if m == nil {
		return 0, &UnsupportedTargetError{Backend: pf.Backend(), Target: pf.TargetISA}
	}
	cc, err := strconv.Atoi(m[1])
	if err != nil || cc < MinComputeCapability {
		return 0, &UnsupportedTargetError{Backend: pf.Backend(), Target: pf.TargetISA}
	}
	return cc, nil
}

// visit reports the hashed CUDA fields, in fold order:
// TargetISA, DeviceSelectMethod, ManualDeviceID, BlockSizeSelectMethod,
// ManualBlockSizes, ConstantCacheOverhead, ShowPtxInfo, GenerateLineInfo,
// EnableNVTX, UserNvccFlags.
func (pf *CUDA) visit(fd fielder) {
	fd.String("TargetISA", pf.TargetISA)
	fd.Enum("DeviceSelectMethod", int64(pf.DeviceSelectMethod), pf.DeviceSelectMethod.String())
	fd.Int("ManualDeviceID", pf.ManualDeviceID)
	fd.Enum("BlockSizeSelectMethod", int64(pf.BlockSizeSelectMethod), pf.BlockSizeSelectMethod.String())
	fd.Ints("ManualBlockSizes", pf.ManualBlockSizes[:])
	fd.Int("ConstantCacheOverhead", pf.ConstantCacheOverhead)
	fd.Bool("ShowPtxInfo", pf.ShowPtxInfo)
	fd.Bool("GenerateLineInfo", pf.GenerateLineInfo)
	fd.Bool("EnableNVTX", pf.EnableNVTX)
	fd.Strings("UserNvccFlags", pf.UserNvccFlags)
}

// UpdateHash folds the base digest then the CUDA fields
func (pf *CUDA) UpdateHash(ac *hashacc.Accum) {
	updateHash(ac, &pf.Base, pf.visit)
}

func (pf *CUDA) Describe() string {
	return describe(pf.Backend(), &pf.Base, pf.visit)
}

func (pf *CUDA) Clone() Preferences {
	cp := *pf
	cp.UserNvccFlags = append([]string(nil), pf.UserNvccFlags...)
	return &cp
}

// BlockSize returns the block size to use for given kernel.
// Occupancy selection uses the warp size scaled for the architecture.
func (pf *CUDA) BlockSize(k Kernels) int {
	if pf.BlockSizeSelectMethod == BlockManual {
		return pf.ManualBlockSizes[k]
	}
	cc, err := pf.ComputeCapability()
	if err != nil || cc < 70 {
		return 32 * 4
	}
	return 32 * 8
}

// Validate checks the target architecture and device / block settings
func (pf *CUDA) Validate() error {
	if _, err := pf.ComputeCapability(); err != nil {
		return err
	}
	if err := pf.Base.Validate(); err != nil {
		return withBackend(err, pf.Backend())
	}
	if pf.DeviceSelectMethod < 0 || pf.DeviceSelectMethod >= DeviceSelectN {
		return &ConfigurationError{Backend: pf.Backend(), Field: "DeviceSelectMethod", Reason: fmt.Sprintf("unknown method %d", pf.DeviceSelectMethod)}
	}
	if pf.DeviceSelectMethod == DeviceManual && pf.ManualDeviceID < 0 {
		return &ConfigurationError{Backend: pf.Backend(), Field: "ManualDeviceID", Reason: "must be >= 0"}
	}
	if pf.BlockSizeSelectMethod < 0 || pf.BlockSizeSelectMethod >= BlockSizeSelectN {
		return &ConfigurationError{Backend: pf.Backend(), Field: "BlockSizeSelectMethod", Reason: fmt.Sprintf("unknown method %d", pf.BlockSizeSelectMethod)}
	}
	if pf.BlockSizeSelectMethod == BlockManual {
		for k, bs := range pf.ManualBlockSizes {
			if bs <= 0 || bs%32 != 0 {
				return &ConfigurationError{Backend: pf.Backend(), Field: "ManualBlockSizes", Reason: fmt.Sprintf("%v block size %d is not a positive multiple of 32", Kernels(k), bs)}
			}
		}
	}
	if pf.ConstantCacheOverhead < 0 {
		return &ConfigurationError{Backend: pf.Backend(), Field: "ConstantCacheOverhead", Reason: "must be >= 0"}
	}
	return nil
}
