// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package record

import "testing"

func TestBufferLayout(t *testing.T) {
	rb := NewBuffer(4, 2, 3)
	if rb.Steps() != 4 || rb.Batch() != 2 || rb.Entities() != 3 {
		t.Fatalf("shape: %d %d %d", rb.Steps(), rb.Batch(), rb.Entities())
	}
	rb.Row(2, 1)[2] = 7
	if rb.At(2, 1, 2) != 7 {
		t.Errorf("At: %v", rb.At(2, 1, 2))
	}
	// row major: time, then batch, then entity
	if rb.Values.Values[(2*2+1)*3+2] != 7 {
		t.Errorf("flat layout mismatch")
	}
	if rb.Values.Value([]int{2, 1, 2}) != 7 {
		t.Errorf("tensor index mismatch")
	}

	cb := NewCountBuffer(3, 2)
	cb.Set(1, 1, 4)
	cb.Set(2, 0, 1)
	if cb.At(1, 1) != 4 || cb.Total() != 5 {
		t.Errorf("count buffer: %d %d", cb.At(1, 1), cb.Total())
	}
}
