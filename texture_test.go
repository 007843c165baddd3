package gfx

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"golang.org/x/image/bmp"
)

func encodeTestImage(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	img.SetNRGBA(3, 4, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestLoadTexture(t *testing.T) {
	fsys := fstest.MapFS{
		"textures/a.png": {Data: encodeTestImage(t, func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) })},
		"textures/a.bmp": {Data: encodeTestImage(t, func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) })},
		"textures/a.txt": {Data: []byte("not an image")},
	}
	d := newTestDevice(t)

	for _, name := range []string{"textures/a.png", "textures/a.bmp"} {
		tex, err := d.LoadTexture(fsys, name)
		if err != nil {
			t.Fatalf("LoadTexture(%s): %v", name, err)
		}
		if w, h := tex.Size(); w != 16 || h != 8 {
			t.Errorf("%s size = %dx%d, want 16x8", name, w, h)
		}
		if tex.Name() != name {
			t.Errorf("Name = %q", tex.Name())
		}
	}

	if _, err := d.LoadTexture(fsys, "textures/a.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("bad format err = %v", err)
	}
	if _, err := d.LoadTexture(fsys, "textures/missing.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCreateTextureEmpty(t *testing.T) {
	d := newTestDevice(t)
	if _, err := d.CreateTexture(image.NewNRGBA(image.Rectangle{}), "empty"); !errors.Is(err, ErrEmptyBuffer) {
		t.Errorf("err = %v, want ErrEmptyBuffer", err)
	}
}
