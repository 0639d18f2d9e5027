package pack

import (
	"errors"
	"fmt"
)

// Sentinel errors for pack package.
var (
	// ErrPackingOverflow is returned when the items cannot fit within
	// MaxPages pages of the configured size.
	ErrPackingOverflow = errors.New("pack: packing overflow")

	// ErrInvalidItem is returned for items with a non-positive size or a
	// repeated identifier.
	ErrInvalidItem = errors.New("pack: invalid item")
)

// OverflowError names the first item that could not be placed.
type OverflowError struct {
	ID            string
	Width, Height int

	PageWidth, PageHeight int
	MaxPages              int

	// TooLarge is set when the item exceeds an empty page on its own.
	TooLarge bool
}

func (e *OverflowError) Error() string {
	if e.TooLarge {
		return fmt.Sprintf("pack: packing overflow: %q (%dx%d) is larger than a %dx%d page",
			e.ID, e.Width, e.Height, e.PageWidth, e.PageHeight)
	}
	return fmt.Sprintf("pack: packing overflow: %q (%dx%d) does not fit in %d page(s) of %dx%d",
		e.ID, e.Width, e.Height, e.MaxPages, e.PageWidth, e.PageHeight)
}

// Is reports whether target is ErrPackingOverflow.
func (e *OverflowError) Is(target error) bool { return target == ErrPackingOverflow }
