// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hashacc provides a digest accumulator that folds typed primitive
values into a stable 160-bit fingerprint.  It is used to build build-cache
keys from configuration state: the same sequence of folds always produces
the same Digest, on any machine and in any run.

Every fold writes a one-byte type tag followed by a fixed-width little-endian
payload (strings and slices are length-prefixed), so that adjacent fields can
never alias each other: folding "ab" then "c" differs from "a" then "bc",
and folding an int 1 differs from folding a bool true.
*/
package hashacc

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"math"
)

// Size is the number of bytes in a Digest
const Size = sha1.Size

// type tags written ahead of each folded value
const (
	tagBool byte = iota + 1
	tagInt
	tagUint
	tagFloat32
	tagFloat64
	tagString
	tagDigest
	tagSlice
)

// Digest is a fixed-width fingerprint produced by an Accum
type Digest [Size]byte

// String returns the lower-case hex form of the digest
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero returns true if the digest has never been set
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalText encodes the digest as hex, for toml / json persistence
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a hex digest
func (d *Digest) UnmarshalText(b []byte) error {
	pd, err := ParseDigest(string(b))
	if err != nil {
		return err
	}
	*d = pd
	return nil
}

// ParseDigest parses the hex form returned by Digest.String
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if len(s) != 2*Size {
		return d, fmt.Errorf("hashacc: digest %q has length %d, want %d", s, len(s), 2*Size)
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("hashacc: digest %q: %w", s, err)
	}
	return d, nil
}

// Accum accumulates typed values into a digest.
// The zero value is not usable -- use New.
type Accum struct {
	h   hash.Hash
	buf [9]byte
}

// New returns a new empty accumulator
func New() *Accum {
	return &Accum{h: sha1.New()}
}

// Sum returns the digest of everything folded so far.
// The accumulator remains usable after Sum.
func (ac *Accum) Sum() Digest {
	var d Digest
	copy(d[:], ac.h.Sum(nil))
	return d
}

// Reset clears all folded state
func (ac *Accum) Reset() {
	ac.h.Reset()
}

func (ac *Accum) word(tag byte, v uint64) {
	ac.buf[0] = tag
	binary.LittleEndian.PutUint64(ac.buf[1:], v)
	ac.h.Write(ac.buf[:])
}

// Bool folds a boolean
func (ac *Accum) Bool(v bool) {
	var u uint64
	if v {
		u = 1
	}
	ac.word(tagBool, u)
}

// Int folds an int, widened to 64 bits so the digest does not depend on
// the platform int size.
func (ac *Accum) Int(v int) {
	ac.word(tagInt, uint64(int64(v)))
}

// Int64 folds an int64
func (ac *Accum) Int64(v int64) {
	ac.word(tagInt, uint64(v))
}

// Uint32 folds a uint32
func (ac *Accum) Uint32(v uint32) {
	ac.word(tagUint, uint64(v))
}

// Uint64 folds a uint64
func (ac *Accum) Uint64(v uint64) {
	ac.word(tagUint, v)
}

// Float32 folds the IEEE bits of a float32.
// Note that 0 and -0 hash differently, as do distinct NaN payloads.
func (ac *Accum) Float32(v float32) {
	ac.word(tagFloat32, uint64(math.Float32bits(v)))
}

// Float64 folds the IEEE bits of a float64
func (ac *Accum) Float64(v float64) {
	ac.word(tagFloat64, math.Float64bits(v))
}

// String folds a length-prefixed string
func (ac *Accum) String(v string) {
	ac.word(tagString, uint64(len(v)))
	ac.h.Write([]byte(v))
}

// Strings folds a length-prefixed list of strings, in the given order
func (ac *Accum) Strings(vs []string) {
	ac.word(tagSlice, uint64(len(vs)))
	for _, v := range vs {
		ac.String(v)
	}
}

// Ints folds a length-prefixed list of ints, in the given order
func (ac *Accum) Ints(vs []int) {
	ac.word(tagSlice, uint64(len(vs)))
	for _, v := range vs {
		ac.Int(v)
	}
}

// Digest folds another digest, e.g., the digest of a base configuration
func (ac *Accum) Digest(d Digest) {
	ac.buf[0] = tagDigest
	ac.h.Write(ac.buf[:1])
	ac.h.Write(d[:])
}

// Enum folds any integer-kinded enum value
func Enum[E ~int | ~int32 | ~int64 | ~uint8 | ~uint32](ac *Accum, v E) {
	ac.Int64(int64(v))
}

// Hasher is anything that can fold its own state into an accumulator
type Hasher interface {
	UpdateHash(ac *Accum)
}

// Of returns the digest of a single Hasher
func Of(hs Hasher) Digest {
	ac := New()
	hs.UpdateHash(ac)
	return ac.Sum()
}
