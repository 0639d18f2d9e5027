package atlas

import (
	"image"
	"sort"

	"github.com/gogpu/gputypes"
)

// UVRect is a normalized texture-coordinate rectangle. (U0, V0) is the
// top-left corner and (U1, V1) the bottom-right corner, all in [0, 1].
type UVRect struct {
	U0, V0, U1, V1 float32
}

// Rect is a pixel rectangle on a page.
type Rect struct {
	Page          int
	X, Y          int
	Width, Height int
}

// Page is one decoded atlas page.
type Page struct {
	Index int
	File  string
	Image *image.NRGBA
}

// Width returns the page width in pixels.
func (p *Page) Width() int { return p.Image.Bounds().Dx() }

// Height returns the page height in pixels.
func (p *Page) Height() int { return p.Image.Bounds().Dy() }

// Format returns the texture format matching the page's pixel layout.
func (p *Page) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Extent returns the page size as a texture extent.
func (p *Page) Extent() gputypes.Extent3D {
	return gputypes.Extent3D{
		Width:              uint32(p.Width()),
		Height:             uint32(p.Height()),
		DepthOrArrayLayers: 1,
	}
}

// Atlas is a loaded, immutable texture atlas.
type Atlas struct {
	version int
	pages   []*Page
	rects   map[string]Rect
	ids     []string
}

// Lookup returns the page index and normalized UV rectangle for id.
func (a *Atlas) Lookup(id string) (page int, uv UVRect, err error) {
	r, ok := a.rects[id]
	if !ok {
		return 0, UVRect{}, &unknownError{id: id}
	}
	p := a.pages[r.Page]
	w, h := float32(p.Width()), float32(p.Height())
	return r.Page, UVRect{
		U0: float32(r.X) / w,
		V0: float32(r.Y) / h,
		U1: float32(r.X+r.Width) / w,
		V1: float32(r.Y+r.Height) / h,
	}, nil
}

// Rect returns the pixel rectangle for id.
func (a *Atlas) Rect(id string) (Rect, error) {
	r, ok := a.rects[id]
	if !ok {
		return Rect{}, &unknownError{id: id}
	}
	return r, nil
}

// SubImage returns the pixels of id as a view into its page.
func (a *Atlas) SubImage(id string) (*image.NRGBA, error) {
	r, err := a.Rect(id)
	if err != nil {
		return nil, err
	}
	img := a.pages[r.Page].Image
	return img.SubImage(image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)).(*image.NRGBA), nil
}

// Pages returns the atlas pages in index order. The slice is a copy; the
// pages themselves are shared and must not be modified.
func (a *Atlas) Pages() []*Page {
	return append([]*Page(nil), a.pages...)
}

// Len returns the number of identifiers.
func (a *Atlas) Len() int { return len(a.ids) }

// IDs returns all identifiers in sorted order.
func (a *Atlas) IDs() []string {
	return append([]string(nil), a.ids...)
}

// Version returns the descriptor format version the atlas was loaded from.
func (a *Atlas) Version() int { return a.version }

func newAtlas(version int, pages []*Page, rects map[string]Rect) *Atlas {
	ids := make([]string, 0, len(rects))
	for id := range rects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Atlas{version: version, pages: pages, rects: rects, ids: ids}
}
