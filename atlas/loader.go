package atlas

import (
	"crypto/sha256"
	"fmt"
	"image"
	"path/filepath"

	"github.com/gogpu/assetpipe/descriptor"
	"github.com/gogpu/assetpipe/internal/cache"
	"github.com/gogpu/assetpipe/internal/fsutil"
	"github.com/gogpu/assetpipe/internal/imageio"
	"github.com/gogpu/assetpipe/internal/logging"
)

// DefaultPageCacheSize is the number of decoded pages a Loader keeps.
const DefaultPageCacheSize = 16

// Loader loads atlases and keeps recently decoded pages, keyed by the
// SHA-256 of the page file, so that reloading after a rebuild decodes only
// pages whose files changed.
//
// A Loader is safe for concurrent use.
type Loader struct {
	pages *cache.Cache[[sha256.Size]byte, *image.NRGBA]
}

// NewLoader creates a Loader that keeps up to capacity decoded pages.
// A capacity of 0 or less uses DefaultPageCacheSize.
func NewLoader(capacity int) *Loader {
	if capacity <= 0 {
		capacity = DefaultPageCacheSize
	}
	return &Loader{pages: cache.New[[sha256.Size]byte, *image.NRGBA](capacity)}
}

// Stats reports page cache statistics.
func (l *Loader) Stats() cache.Stats { return l.pages.Stats() }

// Load reads the descriptor at path and the page images it references.
// Page file names are resolved relative to the descriptor's directory.
func (l *Loader) Load(path string) (*Atlas, error) {
	d, err := descriptor.ReadAtlas(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	pages := make([]*Page, len(d.Pages))
	for i, pd := range d.Pages {
		img, err := l.loadPage(filepath.Join(dir, filepath.FromSlash(pd.File)))
		if err != nil {
			return nil, err
		}
		if b := img.Bounds(); b.Dx() != pd.Width || b.Dy() != pd.Height {
			return nil, fmt.Errorf("%w: %s is %dx%d, descriptor says %dx%d",
				ErrPageMismatch, pd.File, b.Dx(), b.Dy(), pd.Width, pd.Height)
		}
		pages[i] = &Page{Index: pd.Index, File: pd.File, Image: img}
	}

	rects := make(map[string]Rect, len(d.Entries))
	for _, e := range d.Entries {
		rects[e.ID] = Rect{Page: e.Page, X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
	}

	logging.Logger().Debug("atlas: loaded", "path", path, "pages", len(pages), "entries", len(rects))
	return newAtlas(d.Version, pages, rects), nil
}

func (l *Loader) loadPage(path string) (*image.NRGBA, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key := sha256.Sum256(data)
	if img, ok := l.pages.Get(key); ok {
		return img, nil
	}
	img, err := imageio.DecodePNG(data)
	if err != nil {
		return nil, fmt.Errorf("atlas: page %s: %w", path, err)
	}
	l.pages.Set(key, img)
	return img, nil
}

// Load reads an atlas without page reuse.
func Load(path string) (*Atlas, error) {
	return NewLoader(1).Load(path)
}
