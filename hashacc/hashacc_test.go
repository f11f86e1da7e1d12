// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hashacc

import (
	"testing"
)

func TestDeterministic(t *testing.T) {
	fold := func() Digest {
		ac := New()
		ac.Bool(true)
		ac.Int(42)
		ac.Float32(0.25)
		ac.String("avx2-i32x8")
		ac.Strings([]string{"-O3", "-g"})
		return ac.Sum()
	}
	d1, d2 := fold(), fold()
	if d1 != d2 {
		t.Errorf("same folds gave different digests: %v vs %v", d1, d2)
	}
	if d1.IsZero() {
		t.Errorf("digest should not be zero")
	}
}

func TestNoAliasing(t *testing.T) {
	a := New()
	a.String("ab")
	a.String("c")
	b := New()
	b.String("a")
	b.String("bc")
	if a.Sum() == b.Sum() {
		t.Errorf("adjacent strings aliased")
	}

	a = New()
	a.Int(1)
	b = New()
	b.Bool(true)
	if a.Sum() == b.Sum() {
		t.Errorf("int 1 and bool true aliased")
	}

	a = New()
	a.Float32(1)
	b = New()
	b.Float64(1)
	if a.Sum() == b.Sum() {
		t.Errorf("float32 and float64 aliased")
	}

	a = New()
	a.Strings([]string{"a", "b"})
	a.Strings(nil)
	b = New()
	b.Strings([]string{"a"})
	b.Strings([]string{"b"})
	if a.Sum() == b.Sum() {
		t.Errorf("string lists aliased")
	}
}

func TestOrderMatters(t *testing.T) {
	a := New()
	a.Bool(true)
	a.Bool(false)
	b := New()
	b.Bool(false)
	b.Bool(true)
	if a.Sum() == b.Sum() {
		t.Errorf("fold order should change the digest")
	}
}

func TestSumNotConsuming(t *testing.T) {
	ac := New()
	ac.Int(3)
	d1 := ac.Sum()
	d2 := ac.Sum()
	if d1 != d2 {
		t.Errorf("Sum changed accumulator state")
	}
	ac.Int(4)
	if ac.Sum() == d1 {
		t.Errorf("fold after Sum had no effect")
	}
	ac.Reset()
	ac.Int(3)
	if ac.Sum() != d1 {
		t.Errorf("Reset did not restore initial state")
	}
}

type isa int32

func TestEnumAndDigest(t *testing.T) {
	a := New()
	Enum(a, isa(2))
	b := New()
	b.Int64(2)
	if a.Sum() != b.Sum() {
		t.Errorf("Enum should fold as int64")
	}

	base := New()
	base.Bool(true)
	a = New()
	a.Digest(base.Sum())
	b = New()
	b.Digest(New().Sum())
	if a.Sum() == b.Sum() {
		t.Errorf("different base digests folded identically")
	}
}

func TestDigestText(t *testing.T) {
	ac := New()
	ac.String("round trip")
	d := ac.Sum()
	txt, err := d.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if len(txt) != 2*Size {
		t.Errorf("hex length: %d", len(txt))
	}
	var rd Digest
	if err := rd.UnmarshalText(txt); err != nil {
		t.Fatal(err)
	}
	if rd != d {
		t.Errorf("round trip: %v != %v", rd, d)
	}
	if _, err := ParseDigest("abc"); err == nil {
		t.Errorf("short digest should not parse")
	}
	if _, err := ParseDigest(string(make([]byte, 2*Size))); err == nil {
		t.Errorf("non-hex digest should not parse")
	}
}
