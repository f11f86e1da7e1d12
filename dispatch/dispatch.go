// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package dispatch selects a backend for a model and its preferences, and
reuses previously generated artifacts through a persistent build cache.

Select validates the preferences, takes a private clone, and keys the
cache by (model digest, preference digest, import suffix).  A hit reuses
the artifact when its recorded description matches the request and its
format is compatible; anything else regenerates.  Configuration errors
are returned before any hashing or generation happens.
*/
package dispatch

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/c2h5oh/datasize"
	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/model"
	"github.com/emer/spikegen/prefs"
)

// Config configures a Dispatcher
type Config struct {

	// directory holding generated artifacts and the cache manifest
	CacheDir string

	// maximum total size of cached artifacts, 0 for no limit
	MaxSize datasize.ByteSize

	// log cache hits, misses and evictions
	Verbose bool
}

// Factory makes the kernels of a backend from validated preferences
type Factory func(pf prefs.Preferences) (kernel.Kernels, error)

// Build is the result of a selection
type Build struct {
	Key Key

	// the generated artifact
	Artifact Artifact

	// the preferences the build was made with: a private clone
	Prefs prefs.Preferences

	// kernels of the selected backend
	Kernels kernel.Kernels

	// true if the artifact came from the cache
	Reused bool
}

// Stats counts cache outcomes
type Stats struct {
	Hits       int
	Misses     int
	Collisions int
	Evictions  int
}

// Dispatcher selects backends and caches their builds.
// Select calls are serialized.
type Dispatcher struct {
	Config Config

	// generator called on cache misses
	Gen Generator

	mu        sync.Mutex
	factories map[string]Factory
	cache     *Cache
	stats     Stats
}

// New returns a dispatcher over the cache in cfg.CacheDir, loading its manifest
func New(cfg Config, gen Generator) (*Dispatcher, error) {
	if cfg.CacheDir == "" {
		return nil, ErrNoCacheDir
	}
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return nil, err
	}
	d := &Dispatcher{Config: cfg, Gen: gen, factories: make(map[string]Factory)}
	d.cache = NewCache(cfg.CacheDir, cfg.MaxSize)
	if err := d.cache.Load(); err != nil {
		return nil, err
	}
	return d, nil
}

// Register makes backend name available to Select
func (d *Dispatcher) Register(name string, f Factory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.factories[name] = f
}

// Backends returns the registered backend names, sorted
func (d *Dispatcher) Backends() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	nms := make([]string, 0, len(d.factories))
	for nm := range d.factories {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// Stats returns the cache outcome counts so far
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Cached returns the number of cached builds
func (d *Dispatcher) Cached() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cache.Len()
}

// Select returns the build of md for target with preferences pf,
// reusing a cached artifact where possible
func (d *Dispatcher) Select(ctx context.Context, target string, pf prefs.Preferences, md model.Description) (*Build, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.factories[target]
	if !ok {
		return nil, &prefs.UnsupportedTargetError{Backend: "dispatch", Target: target}
	}
	if pf == nil {
		return nil, &prefs.ConfigurationError{Backend: target, Field: "Preferences", Reason: "no preferences"}
	}
	if pf.Backend() != target {
		return nil, &prefs.ConfigurationError{Backend: target, Field: "Preferences", Reason: fmt.Sprintf("preferences are for backend %q", pf.Backend())}
	}
	if err := pf.Validate(); err != nil {
		return nil, err
	}
	cp := pf.Clone()
	key := Key{ModelDigest: model.Digest(md), PrefsDigest: prefs.Digest(cp), ImportSuffix: cp.ImportSuffix()}
	desc := md.Describe() + cp.Describe()

	bl := &Build{Key: key, Prefs: cp}
	if en := d.lookup(key, desc); en != nil {
		bl.Artifact = Artifact{Path: en.Path, Size: en.Size, Format: en.Format}
		bl.Reused = true
		d.stats.Hits++
		if d.Config.Verbose {
			log.Printf("dispatch: reusing %v: %s\n", key, en.Path)
		}
	} else {
		d.stats.Misses++
		art, err := d.Gen.Generate(ctx, Request{Key: key, Model: md, Prefs: cp, Target: target, Dir: d.Config.CacheDir})
		if err != nil {
			return nil, fmt.Errorf("dispatch: generating %v: %w", key, err)
		}
		if d.Config.Verbose {
			log.Printf("dispatch: generated %v: %s (%v)\n", key, art.Path, datasize.ByteSize(art.Size).HumanReadable())
		}
		d.cache.Put(&Entry{ModelDigest: key.ModelDigest, PrefsDigest: key.PrefsDigest, ImportSuffix: key.ImportSuffix,
			Path: art.Path, Size: art.Size, Format: art.Format, Describe: desc})
		if n := d.cache.Evict(key); n > 0 {
			d.stats.Evictions += n
			if d.Config.Verbose {
				log.Printf("dispatch: evicted %d builds, cache now %v\n", n, d.cache.TotalSize().HumanReadable())
			}
		}
		bl.Artifact = art
	}
	if err := d.cache.Save(); err != nil {
		return nil, err
	}
	kn, err := f(cp)
	if err != nil {
		return nil, err
	}
	bl.Kernels = kn
	return bl, nil
}

// lookup returns the reusable entry for key, discarding entries that
// collide with desc or have an incompatible format
func (d *Dispatcher) lookup(key Key, desc string) *Entry {
	en := d.cache.Get(key)
	if en == nil {
		return nil
	}
	if en.Describe != desc {
		d.stats.Collisions++
		log.Println(&CollisionError{Key: key, Have: en.Describe, Want: desc})
		d.cache.Remove(key)
		return nil
	}
	if !Compatible(en.Format) {
		log.Println(&FormatError{Path: en.Path, Format: en.Format})
		d.cache.Remove(key)
		return nil
	}
	if _, err := os.Stat(en.Path); err != nil {
		log.Println(err)
		d.cache.Remove(key)
		return nil
	}
	d.cache.Touch(en)
	return en
}
