package pack

// Rect is an axis-aligned rectangle in page pixels.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Area returns Width*Height.
func (r Rect) Area() int { return r.Width * r.Height }

// Overlaps reports whether r and o share any pixel.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// GuillotineAllocator packs rectangles into one page by keeping a list of
// disjoint free rectangles.
//
// Each allocation takes the free rectangle with the least leftover area and
// cuts the remainder into two pieces along the shorter leftover axis. Free
// rectangles are never merged, so a given sequence of requests always
// produces the same placements.
type GuillotineAllocator struct {
	width, height int
	free          []Rect

	usedArea int
}

// NewGuillotineAllocator creates an allocator for a width×height page.
func NewGuillotineAllocator(width, height int) *GuillotineAllocator {
	return &GuillotineAllocator{
		width:  width,
		height: height,
		free:   []Rect{{X: 0, Y: 0, Width: width, Height: height}},
	}
}

// Allocate places a w×h rectangle. It returns the top-left corner and true,
// or -1, -1, false if no free rectangle can hold it. A failed call leaves
// the allocator unchanged.
func (a *GuillotineAllocator) Allocate(w, h int) (x, y int, ok bool) {
	idx := a.bestFit(w, h)
	if idx < 0 {
		return -1, -1, false
	}

	f := a.free[idx]
	a.free = append(a.free[:idx], a.free[idx+1:]...)
	a.split(f, w, h)
	a.usedArea += w * h
	return f.X, f.Y, true
}

// CanFit reports whether a w×h rectangle would currently fit.
func (a *GuillotineAllocator) CanFit(w, h int) bool {
	return a.bestFit(w, h) >= 0
}

// bestFit returns the index of the free rectangle with the smallest leftover
// area that holds w×h, or -1. Ties go to the smaller short-side leftover and
// then to the earlier rectangle in the list.
func (a *GuillotineAllocator) bestFit(w, h int) int {
	best := -1
	bestArea, bestShort := 0, 0
	for i, f := range a.free {
		if w > f.Width || h > f.Height {
			continue
		}
		area := f.Area() - w*h
		short := min(f.Width-w, f.Height-h)
		if best < 0 || area < bestArea || (area == bestArea && short < bestShort) {
			best, bestArea, bestShort = i, area, short
		}
	}
	return best
}

// split cuts the unused part of f around a w×h placement at f's corner.
//
// With the shorter-leftover-axis rule the cut runs along the axis with less
// space left, so the larger leftover keeps the full extent of f:
//
//	horizontal cut            vertical cut
//	+-----+-------+           +-----+-------+
//	| w×h | right |           | w×h |       |
//	+-----+-------+           +-----+ right |
//	|   bottom    |           | bot |       |
//	+-------------+           +-----+-------+
func (a *GuillotineAllocator) split(f Rect, w, h int) {
	leftW := f.Width - w
	leftH := f.Height - h

	var right, bottom Rect
	if leftW <= leftH {
		right = Rect{X: f.X + w, Y: f.Y, Width: leftW, Height: h}
		bottom = Rect{X: f.X, Y: f.Y + h, Width: f.Width, Height: leftH}
	} else {
		right = Rect{X: f.X + w, Y: f.Y, Width: leftW, Height: f.Height}
		bottom = Rect{X: f.X, Y: f.Y + h, Width: w, Height: leftH}
	}

	if right.Area() > 0 {
		a.free = append(a.free, right)
	}
	if bottom.Area() > 0 {
		a.free = append(a.free, bottom)
	}
}

// FreeRects returns a copy of the current free list.
func (a *GuillotineAllocator) FreeRects() []Rect {
	out := make([]Rect, len(a.free))
	copy(out, a.free)
	return out
}

// UsedArea returns the total area handed out by Allocate.
func (a *GuillotineAllocator) UsedArea() int {
	return a.usedArea
}

// Utilization returns the fraction of the page handed out (0.0 to 1.0).
func (a *GuillotineAllocator) Utilization() float64 {
	if a.width <= 0 || a.height <= 0 {
		return 0
	}
	return float64(a.usedArea) / float64(a.width*a.height)
}
