// Package cache records what earlier builds produced so unchanged work can
// be skipped.
//
// A Cache is an explicit handle: the build opens it, passes it to the
// pipeline, and saves it after a successful run. Entries are keyed by asset
// identifier and remember the content fingerprint and the artifact built
// from it. Atlas pages are tracked separately, keyed by page index, because
// one changed image forces its whole page to be rasterized again.
//
// Every entry is invalidated when the configuration fingerprint recorded in
// the file differs from the one the cache is opened with.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gogpu/assetpipe/internal/fsutil"
	"github.com/gogpu/assetpipe/internal/logging"
)

// FormatVersion is the cache file format version.
const FormatVersion = 1

// ErrCacheCorrupt is matched by the error Recovered returns when the cache
// file existed but could not be used.
var ErrCacheCorrupt = errors.New("cache: corrupt cache file")

// CorruptError describes a discarded cache file.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("cache: corrupt cache file %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCacheCorrupt.
func (e *CorruptError) Is(target error) bool { return target == ErrCacheCorrupt }

// Entry is the last successful build of one identifier.
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	Artifact    string    `json:"artifact"`
	BuiltAt     time.Time `json:"builtAt"`
}

// PageRecord is the last successful rasterization of one atlas page.
type PageRecord struct {
	Index   int       `json:"index"`
	Key     string    `json:"key"`
	File    string    `json:"file"`
	BuiltAt time.Time `json:"builtAt"`
}

type cacheFile struct {
	Version int              `json:"version"`
	Config  string           `json:"config"`
	Entries map[string]Entry `json:"entries"`
	Pages   []PageRecord     `json:"pages"`
}

// Cache is the build cache handle. All methods are safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	path      string
	config    string
	entries   map[string]Entry
	pages     map[int]PageRecord
	recovered error
	now       func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for build timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New returns an empty cache that is never persisted.
func New(configFingerprint string, opts ...Option) *Cache {
	c := &Cache{
		config:  configFingerprint,
		entries: make(map[string]Entry),
		pages:   make(map[int]PageRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open loads the cache file at path. A missing file yields an empty cache.
// A file that cannot be read or parsed is discarded: Open still returns an
// empty, usable cache and Recovered reports why.
func Open(path, configFingerprint string, opts ...Option) *Cache {
	c := New(configFingerprint, opts...)
	c.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c
	}
	if err == nil {
		err = c.load(data)
	}
	if err != nil {
		c.recovered = &CorruptError{Path: path, Err: err}
		c.entries = make(map[string]Entry)
		c.pages = make(map[int]PageRecord)
		logging.Logger().Warn("cache: discarding unreadable cache, rebuilding everything",
			"path", path, "err", err)
	}
	return c
}

func (c *Cache) load(data []byte) error {
	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Version != FormatVersion {
		return fmt.Errorf("version %d, want %d", f.Version, FormatVersion)
	}
	if f.Config != c.config {
		logging.Logger().Info("cache: configuration changed, rebuilding everything", "path", c.path)
		return nil
	}
	for id, e := range f.Entries {
		c.entries[id] = e
	}
	for _, p := range f.Pages {
		c.pages[p.Index] = p
	}
	return nil
}

// Recovered returns the *CorruptError for a discarded cache file, or nil.
func (c *Cache) Recovered() error {
	return c.recovered
}

// ShouldRebuild reports whether id must be rebuilt: it is new, its
// fingerprint changed, or its recorded artifact is gone.
func (c *Cache) ShouldRebuild(id, fingerprint string) bool {
	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()

	if !ok || e.Fingerprint != fingerprint {
		return true
	}
	return e.Artifact == "" || !fsutil.Exists(e.Artifact)
}

// Lookup returns the recorded entry for id.
func (c *Cache) Lookup(id string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e, ok
}

// Record stores a successful build of id.
func (c *Cache) Record(id, fingerprint, artifact string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = Entry{Fingerprint: fingerprint, Artifact: artifact, BuiltAt: c.now().UTC()}
}

// ShouldRebuildPage reports whether page index must be rasterized again:
// it was never built, its content key changed, or its file is gone.
func (c *Cache) ShouldRebuildPage(index int, key string) bool {
	c.mu.Lock()
	p, ok := c.pages[index]
	c.mu.Unlock()

	if !ok || p.Key != key {
		return true
	}
	return p.File == "" || !fsutil.Exists(p.File)
}

// RecordPage stores a successful rasterization of page index.
func (c *Cache) RecordPage(index int, key, file string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[index] = PageRecord{Index: index, Key: key, File: file, BuiltAt: c.now().UTC()}
}

// Prune drops entries whose identifier is not in live and returns them,
// sorted.
func (c *Cache) Prune(live []string) []string {
	keep := make(map[string]struct{}, len(live))
	for _, id := range live {
		keep[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string
	for id := range c.entries {
		if _, ok := keep[id]; !ok {
			delete(c.entries, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}

// PrunePages drops page records with index >= count and returns their
// files, ordered by index.
func (c *Cache) PrunePages(count int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var idx []int
	for i := range c.pages {
		if i >= count {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)

	files := make([]string, 0, len(idx))
	for _, i := range idx {
		files = append(files, c.pages[i].File)
		delete(c.pages, i)
	}
	return files
}

// Len returns the number of identifier entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save atomically writes the cache to the path it was opened from.
// Save on a cache created by New does nothing.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	f := cacheFile{
		Version: FormatVersion,
		Config:  c.config,
		Entries: make(map[string]Entry, len(c.entries)),
		Pages:   make([]PageRecord, 0, len(c.pages)),
	}
	for id, e := range c.entries {
		f.Entries[id] = e
	}
	for _, p := range c.pages {
		f.Pages = append(f.Pages, p)
	}
	c.mu.Unlock()

	sort.Slice(f.Pages, func(i, j int) bool { return f.Pages[i].Index < f.Pages[j].Index })

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	return fsutil.WriteFileAtomic(c.path, append(data, '\n'), 0o644)
}
