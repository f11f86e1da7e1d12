// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rng

import (
	"errors"
	"fmt"
)

// ErrNotSeeded is returned for draws before Init / InitBatch
var ErrNotSeeded = errors.New("rng: stream drawn from before initialization")

// NumericDomainError reports a distribution parameter outside its domain,
// e.g., Gamma with shape <= 0.  Values are never clamped, as that would
// silently break reproducibility: the run must abort instead.
type NumericDomainError struct {
	Dist  string
	Param string
	Value float64
	Want  string
}

func (de *NumericDomainError) Error() string {
	return fmt.Sprintf("rng: %s: %s = %g, want %s", de.Dist, de.Param, de.Value, de.Want)
}

// BatchRangeError reports a batch stream id outside the range
// established by the last InitBatch.
type BatchRangeError struct {
	BatchID   int
	BatchSize int
}

func (be *BatchRangeError) Error() string {
	return fmt.Sprintf("rng: batch id %d out of range for batch size %d", be.BatchID, be.BatchSize)
}
