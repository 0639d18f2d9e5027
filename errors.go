package assetpipe

import (
	"github.com/gogpu/assetpipe/atlas"
	"github.com/gogpu/assetpipe/cache"
	"github.com/gogpu/assetpipe/descriptor"
	"github.com/gogpu/assetpipe/internal/fsutil"
	"github.com/gogpu/assetpipe/pack"
	"github.com/gogpu/assetpipe/scan"
	"github.com/gogpu/assetpipe/shader"
)

// Errors produced by the pipeline and the runtime loader, re-exported so
// callers can match them with errors.Is without importing every package.
var (
	ErrDuplicateIdentifier = scan.ErrDuplicateIdentifier
	ErrPackingOverflow     = pack.ErrPackingOverflow
	ErrShaderCompile       = shader.ErrShaderCompile
	ErrUnknownIdentifier   = atlas.ErrUnknownIdentifier
	ErrStaleDescriptor     = descriptor.ErrStaleDescriptor
	ErrCacheCorrupt        = cache.ErrCacheCorrupt
	ErrIOFailure           = fsutil.ErrIO
)

// IOError describes a failed file operation.
type IOError = fsutil.IOError
