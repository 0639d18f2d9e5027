package pack

import (
	"fmt"
	"sort"
)

// Item is one image to place.
type Item struct {
	ID            string
	Width, Height int
}

// PackedRect is the placement of one item.
type PackedRect struct {
	ID            string
	Page          int
	X, Y          int
	Width, Height int
}

// Rect returns the placement as a Rect.
func (r PackedRect) Rect() Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Page is one atlas page of a Layout.
type Page struct {
	Index         int
	Width, Height int

	// Rects holds the page's placements in placement order.
	Rects []PackedRect

	usedArea int
}

// Utilization returns the fraction of the page covered by rectangles.
func (p *Page) Utilization() float64 {
	return float64(p.usedArea) / float64(p.Width*p.Height)
}

// IDs returns the identifiers on the page, sorted.
func (p *Page) IDs() []string {
	ids := make([]string, len(p.Rects))
	for i, r := range p.Rects {
		ids[i] = r.ID
	}
	sort.Strings(ids)
	return ids
}

// Layout is the result of Pack.
type Layout struct {
	Config Config
	Pages  []Page
	Rects  map[string]PackedRect
}

// Lookup returns the placement for id.
func (l *Layout) Lookup(id string) (PackedRect, bool) {
	r, ok := l.Rects[id]
	return r, ok
}

// Pack places every item on pages of the configured size.
//
// The result depends only on the item set: reordering items yields the same
// layout. Pack fails with an *OverflowError (matching ErrPackingOverflow)
// when an item does not fit within cfg.MaxPages pages.
func Pack(items []Item, cfg Config) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sorted, err := sortItems(items)
	if err != nil {
		return nil, err
	}

	// The allocators work in a (W+p)×(H+p) space with every item grown by
	// p, which leaves a gap of p between neighbours but none at the border.
	pad := cfg.Padding
	binW, binH := cfg.PageWidth+pad, cfg.PageHeight+pad

	layout := &Layout{
		Config: cfg,
		Rects:  make(map[string]PackedRect, len(sorted)),
	}
	var allocs []*GuillotineAllocator

	for _, it := range sorted {
		if it.Width > cfg.PageWidth || it.Height > cfg.PageHeight {
			return nil, overflow(it, cfg, true)
		}
		w, h := it.Width+pad, it.Height+pad

		// Pages are first-fit: best-area-fit applies within the earliest
		// page with room. A global best fit would let a change on a late
		// page pull items off earlier pages, and every such move forces
		// two pages to be rasterized again.
		page, x, y := -1, 0, 0
		for i, a := range allocs {
			if ax, ay, ok := a.Allocate(w, h); ok {
				page, x, y = i, ax, ay
				break
			}
		}
		if page < 0 {
			if len(allocs) == cfg.MaxPages {
				return nil, overflow(it, cfg, false)
			}
			a := NewGuillotineAllocator(binW, binH)
			allocs = append(allocs, a)
			layout.Pages = append(layout.Pages, Page{
				Index:  len(layout.Pages),
				Width:  cfg.PageWidth,
				Height: cfg.PageHeight,
			})
			page = len(allocs) - 1
			// An empty page always holds an item no larger than the page.
			x, y, _ = a.Allocate(w, h)
		}

		r := PackedRect{ID: it.ID, Page: page, X: x, Y: y, Width: it.Width, Height: it.Height}
		p := &layout.Pages[page]
		p.Rects = append(p.Rects, r)
		p.usedArea += it.Width * it.Height
		layout.Rects[it.ID] = r
	}

	return layout, nil
}

// sortItems validates items and returns them in packing order.
func sortItems(items []Item) ([]Item, error) {
	seen := make(map[string]struct{}, len(items))
	sorted := make([]Item, len(items))
	for i, it := range items {
		if it.Width <= 0 || it.Height <= 0 {
			return nil, fmt.Errorf("%w: %q has size %dx%d", ErrInvalidItem, it.ID, it.Width, it.Height)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("%w: %q listed twice", ErrInvalidItem, it.ID)
		}
		seen[it.ID] = struct{}{}
		sorted[i] = it
	}

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		if a.Width != b.Width {
			return a.Width > b.Width
		}
		return a.ID < b.ID
	})
	return sorted, nil
}

func overflow(it Item, cfg Config, tooLarge bool) error {
	return &OverflowError{
		ID:         it.ID,
		Width:      it.Width,
		Height:     it.Height,
		PageWidth:  cfg.PageWidth,
		PageHeight: cfg.PageHeight,
		MaxPages:   cfg.MaxPages,
		TooLarge:   tooLarge,
	}
}
