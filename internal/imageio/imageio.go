// Package imageio decodes source images and encodes atlas pages.
//
// Every supported raster format is a Format value resolved from the file
// extension through a fixed table; each table entry carries the decoder pair
// for that format, so callers never inspect image types at runtime.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when no decoder is registered for a path.
	ErrUnsupportedFormat = errors.New("imageio: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("imageio: empty data")
)

// Format identifies a raster source format.
type Format uint8

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatBMP
	FormatTIFF
	FormatWebP
)

// codec is the capability every format provides.
type codec struct {
	name         string
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var codecs = map[Format]codec{
	FormatPNG:  {"png", png.Decode, png.DecodeConfig},
	FormatJPEG: {"jpeg", jpeg.Decode, jpeg.DecodeConfig},
	FormatGIF:  {"gif", gif.Decode, gif.DecodeConfig},
	FormatBMP:  {"bmp", bmp.Decode, bmp.DecodeConfig},
	FormatTIFF: {"tiff", tiff.Decode, tiff.DecodeConfig},
	FormatWebP: {"webp", webp.Decode, webp.DecodeConfig},
}

var extensions = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".webp": FormatWebP,
}

// String returns the lowercase format name.
func (f Format) String() string {
	if c, ok := codecs[f]; ok {
		return c.name
	}
	return "unknown"
}

// FormatForPath resolves a format from the file extension (case-insensitive).
func FormatForPath(path string) (Format, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Extensions returns every recognized extension, sorted, with leading dots.
func Extensions() []string {
	out := make([]string, 0, len(extensions))
	for ext := range extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// DecodeConfig reads only the image header and returns its pixel size.
func DecodeConfig(f Format, data []byte) (width, height int, err error) {
	c, ok := codecs[f]
	if !ok {
		return 0, 0, ErrUnsupportedFormat
	}
	if len(data) == 0 {
		return 0, 0, ErrEmptyData
	}
	cfg, err := c.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("imageio: decode %s header: %w", c.name, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode decodes data with the codec for f and converts it to NRGBA with a
// zero origin.
func Decode(f Format, data []byte) (*image.NRGBA, error) {
	c, ok := codecs[f]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	img, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", c.name, err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA returns img as a tightly packed *image.NRGBA anchored at (0, 0).
// img is returned unchanged when it already has that shape.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if m, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && m.Stride == b.Dx()*4 {
		return m
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return dst
}

// EncodePNG encodes img as PNG. Output is deterministic for identical pixels.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imageio: encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes a PNG page image.
func DecodePNG(data []byte) (*image.NRGBA, error) {
	return Decode(FormatPNG, data)
}
