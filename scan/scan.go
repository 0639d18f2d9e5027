// Package scan discovers source assets under a set of root directories.
//
// Every file whose name ends in a recognized extension becomes an Asset.
// Its identifier is the root-relative path with forward slashes, in Unicode
// NFC form, so the same tree yields the same identifiers on every machine.
package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/assetpipe/internal/fsutil"
	"github.com/gogpu/assetpipe/internal/logging"
)

// ErrDuplicateIdentifier is returned when two files map to one identifier.
var ErrDuplicateIdentifier = errors.New("scan: duplicate identifier")

// DuplicateError names the two files that collided.
type DuplicateError struct {
	ID            string
	First, Second string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("scan: duplicate identifier %q: %s and %s", e.ID, e.First, e.Second)
}

// Is reports whether target is ErrDuplicateIdentifier.
func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicateIdentifier }

// Kind is the asset category.
type Kind uint8

// Asset kinds.
const (
	KindImage Kind = iota + 1
	KindShader
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindShader:
		return "shader"
	default:
		return "unknown"
	}
}

// Asset is one discovered source file. It is immutable for the run.
type Asset struct {
	ID   string
	Kind Kind

	// Ext is the matched extension, lowercase with the leading dot
	// (".png", ".frag.wgsl").
	Ext string

	// Path is the file path as found under its root.
	Path string

	Data []byte

	// Fingerprint is the hex SHA-256 of Data.
	Fingerprint string
}

// Config selects what Scan discovers.
type Config struct {
	Roots []string

	// Extensions maps lowercase extensions (with leading dot, possibly
	// multi-part such as ".vert.wgsl") to asset kinds.
	Extensions map[string]Kind
}

// Scan walks every root and returns the matching assets sorted by
// identifier. Hidden files and directories are skipped.
//
// Scan fails with a *DuplicateError when two files share an identifier,
// including identifiers that differ only in case or Unicode normalization,
// and with an I/O error naming the path when a file cannot be read.
func Scan(cfg Config) ([]Asset, error) {
	fold := cases.Fold()
	byKey := make(map[string]*Asset)
	var assets []*Asset

	for _, root := range cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fsutil.Wrap("walk", path, err)
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			ext, kind, ok := match(d.Name(), cfg.Extensions)
			if !ok {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return fsutil.Wrap("walk", path, err)
			}
			id := Identifier(rel)
			key := fold.String(id)
			if prev, dup := byKey[key]; dup {
				return &DuplicateError{ID: id, First: prev.Path, Second: path}
			}

			data, err := fsutil.ReadFile(path)
			if err != nil {
				return err
			}
			a := &Asset{
				ID:          id,
				Kind:        kind,
				Ext:         ext,
				Path:        path,
				Data:        data,
				Fingerprint: Fingerprint(data),
			}
			byKey[key] = a
			assets = append(assets, a)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })

	out := make([]Asset, len(assets))
	for i, a := range assets {
		out[i] = *a
	}
	logging.Logger().Debug("scan: discovered assets", "roots", len(cfg.Roots), "assets", len(out))
	return out, nil
}

// Identifier converts a root-relative path into an asset identifier.
func Identifier(rel string) string {
	return norm.NFC.String(filepath.ToSlash(filepath.Clean(rel)))
}

// Fingerprint returns the hex SHA-256 of data.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// match returns the longest extension in exts that name ends with.
func match(name string, exts map[string]Kind) (string, Kind, bool) {
	lower := strings.ToLower(name)
	best, bestKind := "", Kind(0)
	for ext, kind := range exts {
		if len(ext) > len(best) && len(lower) > len(ext) && strings.HasSuffix(lower, ext) {
			best, bestKind = ext, kind
		}
	}
	return best, bestKind, best != ""
}

// Filter returns the assets of kind k, preserving order.
func Filter(assets []Asset, k Kind) []Asset {
	var out []Asset
	for _, a := range assets {
		if a.Kind == k {
			out = append(out, a)
		}
	}
	return out
}
