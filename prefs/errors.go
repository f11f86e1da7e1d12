// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prefs

import "fmt"

// ConfigurationError reports an unsupported or contradictory combination of
// preferences.  It is reported before any hashing or generation happens and
// is recoverable: fix the preferences and select again.
type ConfigurationError struct {
	Backend string
	Field   string
	Reason  string
}

func (ce *ConfigurationError) Error() string {
	if ce.Backend == "" {
		return fmt.Sprintf("prefs: invalid %s: %s", ce.Field, ce.Reason)
	}
	return fmt.Sprintf("prefs: %s backend: invalid %s: %s", ce.Backend, ce.Field, ce.Reason)
}

// UnsupportedTargetError reports a target instruction set or device class
// that the backend cannot generate code for.
type UnsupportedTargetError struct {
	Backend string
	Target  string
}

func (ue *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("prefs: %s backend does not support target %q", ue.Backend, ue.Target)
}

// withBackend tags a base ConfigurationError with the backend name
func withBackend(err error, backend string) error {
	if ce, ok := err.(*ConfigurationError); ok && ce.Backend == "" {
		ce.Backend = backend
	}
	return err
}
