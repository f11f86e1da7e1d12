// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeq

import (
	"testing"
)

func sameList(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRotateReadEqualsWrite(t *testing.T) {
	q := New(2, 3, 10)
	q.Begin()
	q.Push(0, 4)
	q.Push(0, 7)
	q.Push(2, 1)
	w0 := append([]uint32(nil), q.Write(0)...)
	w1 := append([]uint32(nil), q.Write(1)...)
	w2 := append([]uint32(nil), q.Write(2)...)
	q.Rotate()
	if !sameList(q.Read(0), w0) || !sameList(q.Read(1), w1) || !sameList(q.Read(2), w2) {
		t.Errorf("read after rotate: %v %v %v, want %v %v %v", q.Read(0), q.Read(1), q.Read(2), w0, w1, w2)
	}
	if len(q.Write(0)) != 0 {
		t.Errorf("write slot not cleared after rotate: %v", q.Write(0))
	}

	// second rotation without an update must not duplicate the spikes
	q.Rotate()
	if len(q.Read(0)) != 0 || len(q.Read(2)) != 0 {
		t.Errorf("double rotation duplicated spikes: %v %v", q.Read(0), q.Read(2))
	}
}

func TestDoubleRotateKeepsDelayed(t *testing.T) {
	q := New(3, 1, 8)
	q.Begin()
	q.Append(0, []uint32{1, 2, 5})
	q.Rotate()
	q.Rotate()
	if len(q.Read(0)) != 0 {
		t.Errorf("read after double rotation: %v", q.Read(0))
	}
	if got := q.ReadDelayed(0, 1); !sameList(got, []uint32{1, 2, 5}) {
		t.Errorf("delayed read lost spikes: %v", got)
	}
	q.Rotate()
	if got := q.ReadDelayed(0, 1); len(got) != 0 {
		t.Errorf("slot reused without clearing: %v", got)
	}
}

func TestLatest(t *testing.T) {
	q := New(2, 1, 4)
	if len(q.Latest(0)) != 0 {
		t.Errorf("latest of new queue: %v", q.Latest(0))
	}
	q.Begin()
	q.Push(0, 3)
	if got := q.Latest(0); !sameList(got, []uint32{3}) {
		t.Errorf("latest before rotation: %v", got)
	}
	q.Rotate()
	if got := q.Latest(0); !sameList(got, []uint32{3}) {
		t.Errorf("latest after rotation: %v", got)
	}
}

func TestMinSlots(t *testing.T) {
	q := New(0, 1, 1)
	if q.NSlots != 2 {
		t.Errorf("NSlots: %d, want 2", q.NSlots)
	}
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for delay beyond the ring")
		}
	}()
	q.ReadDelayed(0, 1)
}
