// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"errors"
	"fmt"
)

// ErrNoCacheDir is returned by New when Config.CacheDir is empty
var ErrNoCacheDir = errors.New("dispatch: no cache directory configured")

// CollisionError reports a cache entry whose key matches the request but
// whose recorded description does not: two different configurations
// produced the same digests.  The entry is discarded and the artifact
// regenerated, so this is logged rather than returned.
type CollisionError struct {
	Key Key

	// description recorded with the cached entry
	Have string

	// description of the request
	Want string
}

func (ce *CollisionError) Error() string {
	return fmt.Sprintf("dispatch: digest collision for %v: cached description differs from request (%d vs %d bytes)", ce.Key, len(ce.Have), len(ce.Want))
}

// FormatError reports a cached artifact written in an incompatible format
type FormatError struct {
	Path   string
	Format string
}

func (fe *FormatError) Error() string {
	return fmt.Sprintf("dispatch: artifact %s has format %q, incompatible with %s", fe.Path, fe.Format, ArtifactFormat)
}
