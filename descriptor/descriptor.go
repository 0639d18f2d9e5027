// Package descriptor defines the files the build step hands to the runtime:
// the atlas descriptor and the shader artifact manifest.
//
// Both are JSON documents with a format version. Readers reject any other
// version with ErrStaleDescriptor and ignore fields they do not know, so a
// descriptor can gain fields without a version bump. Writers replace files
// atomically; a failed build never leaves a partial descriptor behind.
package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/assetpipe/internal/fsutil"
)

// FormatVersion is the descriptor format this package reads and writes.
const FormatVersion = 1

// Sentinel errors for descriptor package.
var (
	// ErrStaleDescriptor is returned when a file's format version does not
	// match FormatVersion.
	ErrStaleDescriptor = errors.New("descriptor: stale descriptor")

	// ErrMalformed is returned for a structurally invalid descriptor.
	ErrMalformed = errors.New("descriptor: malformed descriptor")
)

// StaleError reports the version found in a stale file.
type StaleError struct {
	Path    string
	Version int
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("descriptor: stale descriptor %s: format version %d, want %d", e.Path, e.Version, FormatVersion)
}

// Is reports whether target is ErrStaleDescriptor.
func (e *StaleError) Is(target error) bool { return target == ErrStaleDescriptor }

// Page is the metadata of one atlas page.
type Page struct {
	Index  int    `json:"index"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	File   string `json:"file"` // relative to the descriptor's directory
}

// Entry maps an identifier to its rectangle.
type Entry struct {
	ID     string `json:"identifier"`
	Page   int    `json:"page"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Descriptor is the atlas layout consumed by the runtime.
type Descriptor struct {
	Version    int     `json:"version"`
	PageWidth  int     `json:"pageWidth"`
	PageHeight int     `json:"pageHeight"`
	Padding    int     `json:"padding"`
	Pages      []Page  `json:"pages"`
	Entries    []Entry `json:"entries"`
}

// Validate checks page indices, entry bounds, and identifier uniqueness.
func (d *Descriptor) Validate() error {
	for i, p := range d.Pages {
		if p.Index != i {
			return fmt.Errorf("%w: page %d has index %d", ErrMalformed, i, p.Index)
		}
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: page %d has size %dx%d", ErrMalformed, i, p.Width, p.Height)
		}
		if p.File == "" {
			return fmt.Errorf("%w: page %d has no file", ErrMalformed, i)
		}
	}
	seen := make(map[string]struct{}, len(d.Entries))
	for _, e := range d.Entries {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: identifier %q listed twice", ErrMalformed, e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.Page < 0 || e.Page >= len(d.Pages) {
			return fmt.Errorf("%w: %q references page %d of %d", ErrMalformed, e.ID, e.Page, len(d.Pages))
		}
		p := d.Pages[e.Page]
		if e.X < 0 || e.Y < 0 || e.Width <= 0 || e.Height <= 0 ||
			e.X+e.Width > p.Width || e.Y+e.Height > p.Height {
			return fmt.Errorf("%w: %q rect %d,%d %dx%d outside page %dx%d",
				ErrMalformed, e.ID, e.X, e.Y, e.Width, e.Height, p.Width, p.Height)
		}
	}
	return nil
}

// Encode returns the indented JSON form of d with entries sorted by
// identifier. d is not modified.
func (d *Descriptor) Encode() ([]byte, error) {
	out := *d
	out.Version = FormatVersion
	out.Entries = append([]Entry(nil), d.Entries...)
	sort.Slice(out.Entries, func(i, j int) bool { return out.Entries[i].ID < out.Entries[j].ID })
	if out.Pages == nil {
		out.Pages = []Page{}
	}
	if out.Entries == nil {
		out.Entries = []Entry{}
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("descriptor: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteAtlas validates d and atomically writes it to path.
func WriteAtlas(path string, d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	data, err := d.Encode()
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0o644)
}

// ReadAtlas reads and validates the descriptor at path.
func ReadAtlas(path string) (*Descriptor, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeAtlas(path, data)
}

// DecodeAtlas parses descriptor data. path only labels errors.
func DecodeAtlas(path string, data []byte) (*Descriptor, error) {
	if err := checkVersion(path, data); err != nil {
		return nil, err
	}
	if err := requireKeys(path, data, "pages", "entries"); err != nil {
		return nil, err
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// checkVersion probes only the version field so that a future format with
// a different shape still reports ErrStaleDescriptor, not ErrMalformed.
func checkVersion(path string, data []byte) error {
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if probe.Version == nil {
		return fmt.Errorf("%w: %s: missing version", ErrMalformed, path)
	}
	if *probe.Version != FormatVersion {
		return &StaleError{Path: path, Version: *probe.Version}
	}
	return nil
}

// requireKeys rejects documents missing any of the top-level keys, so that
// a shader manifest is never mistaken for an empty atlas.
func requireKeys(path string, data []byte, keys ...string) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	for _, k := range keys {
		if _, ok := top[k]; !ok {
			return fmt.Errorf("%w: %s: missing %q", ErrMalformed, path, k)
		}
	}
	return nil
}
