// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prefs

import (
	"github.com/goki/ki/kit"
)

//////////////////////////////////////////////////////////////////////
// ISA

// ISA is the vector instruction set targeted by the vectorized CPU backend
type ISA int32

//go:generate stringer -type=ISA

var KiT_ISA = kit.Enums.AddEnum(ISAN, kit.NotBitFlag, nil)

func (ev ISA) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ISA) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Host targets the widest instruction set of the build machine
	Host ISA = iota

	// SSE2 with 4 x 32 bit lanes
	SSE2

	// SSE4 with 4 x 32 bit lanes
	SSE4

	// AVX1 with 8 x 32 bit lanes
	AVX1

	// AVX2 with 8 x 32 bit lanes
	AVX2

	// AVX512KNL is AVX-512 as found on Knights Landing, 16 lanes
	AVX512KNL

	// AVX512SKX is AVX-512 as found on Skylake server, 16 lanes
	AVX512SKX

	// NEON is ARM Advanced SIMD with 4 x 32 bit lanes
	NEON

	ISAN
)

// Lanes returns the number of 32 bit lanes in one gang for this ISA.
// Host resolves to the AVX2 width.
func (ev ISA) Lanes() int {
	switch ev {
	case SSE2, SSE4, NEON:
		return 4
	case AVX512KNL, AVX512SKX:
		return 16
	default:
		return 8
	}
}

// Target returns the compiler target string for this ISA
func (ev ISA) Target() string {
	switch ev {
	case SSE2:
		return "sse2-i32x4"
	case SSE4:
		return "sse4-i32x4"
	case AVX1:
		return "avx1-i32x8"
	case AVX2:
		return "avx2-i32x8"
	case AVX512KNL:
		return "avx512knl-x16"
	case AVX512SKX:
		return "avx512skx-x16"
	case NEON:
		return "neon-i32x4"
	}
	return "host"
}

//////////////////////////////////////////////////////////////////////
// DeviceSelect

// DeviceSelect are methods for selecting the GPU device
type DeviceSelect int32

//go:generate stringer -type=DeviceSelect

var KiT_DeviceSelect = kit.Enums.AddEnum(DeviceSelectN, kit.NotBitFlag, nil)

func (ev DeviceSelect) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *DeviceSelect) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// DeviceOptimal picks the device on which the kernels achieve the best occupancy
	DeviceOptimal DeviceSelect = iota

	// DeviceMostMemory picks the device with the most global memory
	DeviceMostMemory

	// DeviceManual uses the device given by ManualDeviceID
	DeviceManual

	DeviceSelectN
)

//////////////////////////////////////////////////////////////////////
// BlockSizeSelect

// BlockSizeSelect are methods for selecting GPU kernel block sizes
type BlockSizeSelect int32

//go:generate stringer -type=BlockSizeSelect

var KiT_BlockSizeSelect = kit.Enums.AddEnum(BlockSizeSelectN, kit.NotBitFlag, nil)

func (ev BlockSizeSelect) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *BlockSizeSelect) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// BlockOccupancy picks the block size of each kernel based on occupancy
	BlockOccupancy BlockSizeSelect = iota

	// BlockManual uses ManualBlockSizes
	BlockManual

	BlockSizeSelectN
)

//////////////////////////////////////////////////////////////////////
// Kernels

// Kernels identify the GPU kernels that have a configurable block size
type Kernels int32

//go:generate stringer -type=Kernels

var KiT_Kernels = kit.Enums.AddEnum(KernelsN, kit.NotBitFlag, nil)

func (ev Kernels) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Kernels) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	KernelNeuronUpdate Kernels = iota
	KernelSpikeQueueUpdate
	KernelPrevSpikeTimeUpdate
	KernelCustomUpdate
	KernelRecord

	KernelsN
)
