package atlas

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// TextureCreator creates a GPU texture from tightly packed 8-bit RGBA
// pixels. Renderers expose it through gpucontext.TextureDrawer.
type TextureCreator interface {
	NewTextureFromRGBA(width, height int, data []byte) (any, error)
}

// Upload creates one texture per page, in page order.
func (a *Atlas) Upload(tc TextureCreator) ([]any, error) {
	return upload(a.pages, tc.NewTextureFromRGBA)
}

// UploadTo creates one texture per page using the draw context's texture
// creator. The returned handles are whatever the renderer produced.
func (a *Atlas) UploadTo(dc gpucontext.TextureDrawer) ([]any, error) {
	creator := dc.TextureCreator()
	if creator == nil {
		return nil, ErrNoTextureCreator
	}
	return upload(a.pages, func(w, h int, data []byte) (any, error) {
		return creator.NewTextureFromRGBA(w, h, data)
	})
}

func upload(pages []*Page, create func(w, h int, data []byte) (any, error)) ([]any, error) {
	textures := make([]any, 0, len(pages))
	for _, p := range pages {
		tex, err := create(p.Width(), p.Height(), p.Image.Pix)
		if err != nil {
			return textures, fmt.Errorf("atlas: upload page %d: %w", p.Index, err)
		}
		textures = append(textures, tex)
	}
	return textures, nil
}
