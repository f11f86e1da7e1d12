// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package prefs defines the per-backend preferences that control code
generation, and the deterministic hashing of those preferences that keys
the build cache.

Every backend's preferences embed Base.  Hashing uses explicit
composition: the digest of the Base fields is computed first and folded
into the backend's own accumulator, followed by the backend fields in a
fixed order that is written down in each UpdateHash method.  The order in
which a caller assigns fields therefore never affects the digest.

Preferences are treated as immutable once hashed for a build: the
dispatcher takes a Clone before hashing, and a configuration change
replaces the whole object.
*/
package prefs

import (
	"fmt"
	"strings"

	"github.com/emer/spikegen/hashacc"
)

// Preferences is the interface satisfied by every backend's preferences
type Preferences interface {
	hashacc.Hasher

	// AsBase returns the shared base preferences
	AsBase() *Base

	// Backend returns the name of the backend these preferences configure,
	// e.g., "ispc", as used for dispatcher registration.
	Backend() string

	// ImportSuffix returns a short token identifying the backend, used to
	// disambiguate generated artifacts in a shared cache namespace.
	ImportSuffix() string

	// Validate checks for unsupported targets and contradictory settings.
	// Returns *UnsupportedTargetError or *ConfigurationError.
	Validate() error

	// Clone returns a deep copy
	Clone() Preferences

	// Describe returns a canonical text listing of every hashed field,
	// in fold order.  Two preferences with equal Describe text hash equal.
	Describe() string
}

// Digest returns the full digest of given preferences
func Digest(pf Preferences) hashacc.Digest {
	return hashacc.Of(pf)
}

// fielder receives every hashed field in fold order.
// The same visit methods drive hashing and Describe, so they cannot disagree.
type fielder interface {
	Bool(name string, v bool)
	Int(name string, v int)
	String(name string, v string)
	Strings(name string, v []string)
	Ints(name string, v []int)
	Enum(name string, v int64, label string)
}

type hashFielder struct {
	ac *hashacc.Accum
}

func (hf hashFielder) Bool(name string, v bool)        { hf.ac.Bool(v) }
func (hf hashFielder) Int(name string, v int)          { hf.ac.Int(v) }
func (hf hashFielder) String(name string, v string)    { hf.ac.String(v) }
func (hf hashFielder) Strings(name string, v []string) { hf.ac.Strings(v) }
func (hf hashFielder) Ints(name string, v []int)       { hf.ac.Ints(v) }
func (hf hashFielder) Enum(name string, v int64, label string) {
	hf.ac.Int64(v)
}

type textFielder struct {
	b      *strings.Builder
	prefix string
}

func (tf textFielder) line(name string, v any) {
	fmt.Fprintf(tf.b, "%s%s=%v\n", tf.prefix, name, v)
}

func (tf textFielder) Bool(name string, v bool)        { tf.line(name, v) }
func (tf textFielder) Int(name string, v int)          { tf.line(name, v) }
func (tf textFielder) String(name string, v string)    { tf.line(name, fmt.Sprintf("%q", v)) }
func (tf textFielder) Strings(name string, v []string) { tf.line(name, fmt.Sprintf("%q", v)) }
func (tf textFielder) Ints(name string, v []int)       { tf.line(name, v) }
func (tf textFielder) Enum(name string, v int64, label string) {
	tf.line(name, label)
}

// describe renders base and backend fields as canonical text
func describe(backend string, base *Base, visit func(fd fielder)) string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend=%s\n", backend)
	base.visit(textFielder{b: &b, prefix: "Base."})
	visit(textFielder{b: &b})
	return b.String()
}

// updateHash implements the base-then-derived composition
func updateHash(ac *hashacc.Accum, base *Base, visit func(fd fielder)) {
	ac.Digest(base.Digest())
	visit(hashFielder{ac: ac})
}
