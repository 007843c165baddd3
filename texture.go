package gfx

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // registers the PNG decoder
	"io/fs"

	_ "golang.org/x/image/bmp"  // registers the BMP decoder
	_ "golang.org/x/image/webp" // registers the WebP decoder
)

// Texture is a sampled image.
type Texture struct {
	resourceBase
	width, height int
	native        nativeTexture
	warned        bool
}

func (t *Texture) base() *resourceBase {
	if t == nil {
		return nil
	}
	return &t.resourceBase
}

// Size returns the texture dimensions in texels.
func (t *Texture) Size() (width, height int) { return t.width, t.height }

// LoadTexture reads and decodes name from fsys. PNG, BMP and WebP are
// supported.
func (d *Device) LoadTexture(fsys fs.FS, name string) (*Texture, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("gfx: load texture %s: %w", name, err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gfx: load texture %s: %w: %v", name, ErrUnsupportedFormat, err)
	}
	t, err := d.createTexture(img, name)
	if err != nil {
		return nil, err
	}
	Logger().Debug("gfx: texture loaded", "name", name, "format", format, "width", t.width, "height", t.height)
	return t, nil
}

// CreateTexture uploads img as a new texture.
func (d *Device) CreateTexture(img image.Image, name string) (*Texture, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	return d.createTexture(img, name)
}

func (d *Device) createTexture(img image.Image, name string) (*Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("gfx: create texture %s: %w", name, ErrEmptyBuffer)
	}
	native, err := d.backend.newTexture(img)
	if err != nil {
		return nil, fmt.Errorf("gfx: create texture %s: %w", name, err)
	}
	t := &Texture{width: b.Dx(), height: b.Dy(), native: native}
	d.register(&t.resourceBase, kindTexture, name)
	t.release = func() { d.deferRelease(native.dispose) }
	return t, nil
}

// magentaPixel is the 1x1 image drawn in place of a destroyed texture.
var magentaPixel = func() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 255, A: 255})
	return img
}()
