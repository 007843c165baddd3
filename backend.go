package gfx

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// backend executes frames recorded by a Device.
type backend interface {
	newTexture(img image.Image) (nativeTexture, error)
	newProgram(src []byte) (nativeProgram, error)
	// placeholder returns the texture drawn in place of a destroyed one.
	placeholder() nativeTexture
	setVSync(on bool)
	// submit takes ownership of f until the next submit or shutdown.
	submit(f *frame)
	present(screen *ebiten.Image)
	shutdown()
}

type nativeTexture interface{ dispose() }

type nativeProgram interface{ dispose() }

// ebitenBackend draws through Ebitengine. Frames are presented from
// ebiten.Game.Draw, so the last submitted frame is kept until the next one
// replaces it.
type ebitenBackend struct {
	dev     *Device
	frame   *frame
	magenta *ebiten.Image
	white   *ebiten.Image
	images  [MaxTextureStages]*ebiten.Image
	triOp   ebiten.DrawTrianglesOptions
	shOp    ebiten.DrawTrianglesShaderOptions
}

type ebitenTexture struct{ img *ebiten.Image }

func (t *ebitenTexture) dispose() { t.img.Deallocate() }

type ebitenProgram struct{ shader *ebiten.Shader }

func (p *ebitenProgram) dispose() { p.shader.Deallocate() }

func newEbitenBackend(d *Device) *ebitenBackend {
	return &ebitenBackend{dev: d}
}

func (b *ebitenBackend) newTexture(img image.Image) (nativeTexture, error) {
	return &ebitenTexture{img: ebiten.NewImageFromImage(img)}, nil
}

func (b *ebitenBackend) newProgram(src []byte) (nativeProgram, error) {
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, err
	}
	return &ebitenProgram{shader: s}, nil
}

func (b *ebitenBackend) placeholder() nativeTexture {
	if b.magenta == nil {
		b.magenta = ebiten.NewImageFromImage(magentaPixel)
	}
	return &ebitenTexture{img: b.magenta}
}

func (b *ebitenBackend) whitePixel() *ebiten.Image {
	if b.white == nil {
		b.white = ebiten.NewImage(1, 1)
		b.white.Fill(color.White)
	}
	return b.white
}

func (b *ebitenBackend) setVSync(on bool) { ebiten.SetVsyncEnabled(on) }

func (b *ebitenBackend) submit(f *frame) {
	if b.frame != nil && b.frame != f {
		// The replaced frame may never have been drawn; its screenshots
		// wait for the next Draw.
		if len(b.frame.screenshots) > 0 {
			f.screenshots = slices.Insert(f.screenshots, 0, b.frame.screenshots...)
			b.frame.screenshots = b.frame.screenshots[:0]
		}
		b.frame.retire()
	}
	b.frame = f
}

func (b *ebitenBackend) present(screen *ebiten.Image) {
	f := b.frame
	if f == nil {
		return
	}
	bounds := screen.Bounds()
	next := 0
	for v := 0; v < MaxViews; v++ {
		if !f.active[v] {
			continue
		}
		vs := &f.views[v]
		target := screen
		if !vs.rect.Empty() {
			r := vs.rect.Intersect(bounds)
			if r.Empty() {
				continue
			}
			target = screen.SubImage(r).(*ebiten.Image)
		}
		if vs.clear&ClearColor != 0 {
			target.Fill(RGBA(vs.rgba))
		}
		for next < len(f.draws) && int(f.draws[next].view) < v {
			next++
		}
		for next < len(f.draws) && int(f.draws[next].view) == v {
			b.drawCall(target, f, &f.draws[next])
			next++
		}
	}
	b.drawDebug(screen, f)
	if len(f.screenshots) > 0 {
		flushScreenshots(screen, b.dev.ScreenshotDir, f.screenshots)
		f.screenshots = f.screenshots[:0]
	}
}

func (b *ebitenBackend) drawCall(target *ebiten.Image, f *frame, dc *drawCall) {
	vertices := f.vertices[dc.vStart:dc.vEnd]
	indices := f.indices[dc.iStart:dc.iEnd]
	for i, t := range dc.images {
		b.images[i] = nil
		if t != nil {
			b.images[i] = t.(*ebitenTexture).img
		}
	}
	if dc.program == nil {
		src := b.images[0]
		if src == nil {
			src = b.whitePixel()
		}
		b.triOp.Blend = dc.blend
		b.triOp.ColorScaleMode = ebiten.ColorScaleModeStraightAlpha
		target.DrawTriangles32(vertices, indices, src, &b.triOp)
		return
	}
	b.shOp.Blend = dc.blend
	b.shOp.Images = b.images
	b.shOp.Uniforms = dc.uniforms
	target.DrawTrianglesShader32(vertices, indices, dc.program.(*ebitenProgram).shader, &b.shOp)
}

func (b *ebitenBackend) shutdown() {
	if b.magenta != nil {
		b.magenta.Deallocate()
		b.magenta = nil
	}
	if b.white != nil {
		b.white.Deallocate()
		b.white = nil
	}
	b.frame = nil
}

// recordBackend is the noop renderer. It keeps CPU copies of resources and
// a summary of the last frame instead of drawing.
type recordBackend struct {
	vsync   bool
	frames  int
	last    frameRecord
	magenta *recordTexture
}

type frameRecord struct {
	num     uint32
	cleared []ViewID
	draws   []drawRecord
}

type drawRecord struct {
	view      ViewID
	program   string
	texture   *recordTexture
	vertices  []ebiten.Vertex
	indices   []uint32
	blend     ebiten.Blend
	uniforms  map[string]any
	triangles int
}

type recordTexture struct {
	img      image.Image
	disposed bool
}

func (t *recordTexture) dispose() { t.disposed = true }

type recordProgram struct {
	src      []byte
	disposed bool
}

func (p *recordProgram) dispose() { p.disposed = true }

func newRecordBackend() *recordBackend { return &recordBackend{} }

func (b *recordBackend) newTexture(img image.Image) (nativeTexture, error) {
	return &recordTexture{img: img}, nil
}

func (b *recordBackend) newProgram(src []byte) (nativeProgram, error) {
	return &recordProgram{src: src}, nil
}

func (b *recordBackend) placeholder() nativeTexture {
	if b.magenta == nil {
		b.magenta = &recordTexture{img: magentaPixel}
	}
	return b.magenta
}

func (b *recordBackend) setVSync(on bool) { b.vsync = on }

func (b *recordBackend) submit(f *frame) {
	rec := frameRecord{num: f.num}
	for v, a := range f.active {
		if a && f.views[v].clear&ClearColor != 0 {
			rec.cleared = append(rec.cleared, ViewID(v))
		}
	}
	for i := range f.draws {
		dc := &f.draws[i]
		dr := drawRecord{
			view:      dc.view,
			program:   dc.programName,
			vertices:  append([]ebiten.Vertex(nil), f.vertices[dc.vStart:dc.vEnd]...),
			indices:   make([]uint32, 0, dc.iEnd-dc.iStart),
			blend:     dc.blend,
			uniforms:  dc.uniforms,
			triangles: (dc.iEnd - dc.iStart) / 3,
		}
		for _, idx := range f.indices[dc.iStart:dc.iEnd] {
			dr.indices = append(dr.indices, idx-uint32(dc.vStart))
		}
		if t, ok := dc.images[0].(*recordTexture); ok {
			dr.texture = t
		}
		rec.draws = append(rec.draws, dr)
	}
	if len(f.screenshots) > 0 {
		Logger().Warn("gfx: screenshots are not supported by the noop renderer",
			"labels", fmt.Sprint(f.screenshots))
	}
	b.last = rec
	b.frames++
	f.retire()
}

func (b *recordBackend) present(*ebiten.Image) {}

func (b *recordBackend) shutdown() {}
