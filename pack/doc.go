// Package pack assigns source images to rectangles on fixed-size atlas pages.
//
// # Algorithm
//
// Pack sorts items by decreasing height, then decreasing width, then
// identifier, and places them one at a time with a guillotine allocator:
//
//  1. Each page keeps a list of free rectangles, initially the whole page.
//  2. Pages are tried in index order. On the first page that has room, the
//     free rectangle with the least wasted area is chosen (best-area-fit).
//  3. The chosen rectangle is split in two along the shorter leftover axis.
//  4. If no open page has room, a new page is opened, up to MaxPages.
//
// The output depends only on the set of (identifier, width, height) triples,
// never on input order, so identical sources always produce identical
// layouts.
//
// # Padding
//
// Padding pixels separate neighbouring rectangles so that bilinear sampling
// near a sprite edge never reads its neighbour. Rectangles may touch the
// page border.
//
//	layout, err := pack.Pack(items, pack.DefaultConfig())
//	if errors.Is(err, pack.ErrPackingOverflow) {
//	    // raise MaxPages or the page size
//	}
package pack
