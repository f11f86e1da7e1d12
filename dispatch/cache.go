// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/c2h5oh/datasize"
	"github.com/emer/spikegen/hashacc"
	"golang.org/x/mod/semver"
)

// ManifestFile is the name of the cache manifest within the cache directory
const ManifestFile = "cache.toml"

// Key identifies a build: the same model, preferences and backend give
// the same key
type Key struct {
	ModelDigest  hashacc.Digest
	PrefsDigest  hashacc.Digest
	ImportSuffix string
}

func (ky Key) String() string {
	return fmt.Sprintf("%s/%s%s", ky.ModelDigest.String()[:12], ky.PrefsDigest.String()[:12], ky.ImportSuffix)
}

// Entry is one cached build, as recorded in the manifest
type Entry struct {
	ModelDigest  hashacc.Digest
	PrefsDigest  hashacc.Digest
	ImportSuffix string

	// artifact location, size and format
	Path   string
	Size   int64
	Format string

	// model and preference descriptions the artifact was built from
	Describe string

	// use sequence number: the least recently used entry has the lowest
	Seq uint64
}

// Key returns the key of the entry
func (en *Entry) Key() Key {
	return Key{ModelDigest: en.ModelDigest, PrefsDigest: en.PrefsDigest, ImportSuffix: en.ImportSuffix}
}

// Manifest is the persistent form of the cache
type Manifest struct {

	// last use sequence number handed out
	Seq uint64

	// entries in no particular order
	Entries []*Entry `toml:"entry"`
}

// Cache maps keys to built artifacts, bounded in total artifact size.
// It is not safe for concurrent use: the Dispatcher serializes access.
type Cache struct {

	// directory holding the manifest
	Dir string

	// maximum total size of artifacts, 0 for no limit
	MaxSize datasize.ByteSize

	seq     uint64
	entries map[Key]*Entry
}

// NewCache returns an empty cache in dir
func NewCache(dir string, maxSize datasize.ByteSize) *Cache {
	return &Cache{Dir: dir, MaxSize: maxSize, entries: make(map[Key]*Entry)}
}

// ManifestPath returns the path of the manifest file
func (ch *Cache) ManifestPath() string {
	return filepath.Join(ch.Dir, ManifestFile)
}

// Load reads the manifest, if there is one.  A missing manifest is an
// empty cache, and so is one that cannot be decoded: it is logged and
// replaced on the next Save.  Only failures to read the file are errors.
func (ch *Cache) Load() error {
	ch.seq = 0
	ch.entries = make(map[Key]*Entry)
	data, err := os.ReadFile(ch.ManifestPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dispatch: reading cache manifest: %w", err)
	}
	var mf Manifest
	if _, err := toml.Decode(string(data), &mf); err != nil {
		log.Printf("dispatch: discarding unreadable cache manifest %s: %v\n", ch.ManifestPath(), err)
		return nil
	}
	ch.seq = mf.Seq
	ch.entries = make(map[Key]*Entry, len(mf.Entries))
	for _, en := range mf.Entries {
		ch.entries[en.Key()] = en
	}
	return nil
}

// Save writes the manifest, entries ordered from least to most recently
// used.  It is written to a temporary file in Dir which then replaces the
// manifest, so an interrupted Save leaves the previous manifest intact.
func (ch *Cache) Save() error {
	mf := Manifest{Seq: ch.seq, Entries: ch.byAge()}
	fp, err := os.CreateTemp(ch.Dir, ManifestFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("dispatch: writing cache manifest: %w", err)
	}
	tmp := fp.Name()
	err = toml.NewEncoder(fp).Encode(mf)
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, ch.ManifestPath())
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("dispatch: writing cache manifest: %w", err)
	}
	return nil
}

func (ch *Cache) byAge() []*Entry {
	ens := make([]*Entry, 0, len(ch.entries))
	for _, en := range ch.entries {
		ens = append(ens, en)
	}
	sort.Slice(ens, func(i, j int) bool { return ens[i].Seq < ens[j].Seq })
	return ens
}

// Len returns the number of entries
func (ch *Cache) Len() int {
	return len(ch.entries)
}

// Get returns the entry for key, or nil
func (ch *Cache) Get(key Key) *Entry {
	return ch.entries[key]
}

// Touch marks the entry as most recently used
func (ch *Cache) Touch(en *Entry) {
	ch.seq++
	en.Seq = ch.seq
}

// Put records a new entry as most recently used
func (ch *Cache) Put(en *Entry) {
	ch.Touch(en)
	ch.entries[en.Key()] = en
}

// Remove drops the entry for key and deletes its artifact
func (ch *Cache) Remove(key Key) {
	en, ok := ch.entries[key]
	if !ok {
		return
	}
	delete(ch.entries, key)
	if en.Path == "" {
		return
	}
	if err := os.Remove(en.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Println(err)
	}
}

// TotalSize returns the total size of all artifacts
func (ch *Cache) TotalSize() datasize.ByteSize {
	var tot datasize.ByteSize
	for _, en := range ch.entries {
		tot += datasize.ByteSize(en.Size)
	}
	return tot
}

// Evict removes least recently used entries, other than keep, until the
// total size is within MaxSize.  Returns the number of entries evicted.
func (ch *Cache) Evict(keep Key) int {
	if ch.MaxSize == 0 {
		return 0
	}
	n := 0
	tot := ch.TotalSize()
	for _, en := range ch.byAge() {
		if tot <= ch.MaxSize {
			break
		}
		ky := en.Key()
		if ky == keep {
			continue
		}
		tot -= datasize.ByteSize(en.Size)
		ch.Remove(ky)
		n++
	}
	return n
}

// Compatible returns true if artifacts of given format can be reused
func Compatible(format string) bool {
	return semver.IsValid(format) && semver.Major(format) == semver.Major(ArtifactFormat)
}
