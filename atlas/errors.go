package atlas

import (
	"errors"
	"fmt"

	"github.com/gogpu/assetpipe/descriptor"
)

var (
	// ErrUnknownIdentifier is returned by Lookup and Rect for identifiers
	// that are not in the atlas.
	ErrUnknownIdentifier = errors.New("atlas: unknown identifier")

	// ErrStaleDescriptor is returned when the descriptor was written in a
	// different format version.
	ErrStaleDescriptor = descriptor.ErrStaleDescriptor

	// ErrPageMismatch is returned when a page image does not have the size
	// the descriptor declares.
	ErrPageMismatch = errors.New("atlas: page image does not match descriptor")

	// ErrNoTextureCreator is returned by UploadTo when the draw context has
	// no texture creator.
	ErrNoTextureCreator = errors.New("atlas: draw context has no texture creator")
)

type unknownError struct{ id string }

func (e *unknownError) Error() string {
	return fmt.Sprintf("atlas: unknown identifier %q", e.id)
}

func (e *unknownError) Is(target error) bool { return target == ErrUnknownIdentifier }
