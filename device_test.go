package gfx

import (
	"errors"
	"image"
	"testing"
)

type testVertex struct {
	X, Y, U, V float32
}

// quad is a 10x10 square at (x, y), counter-clockwise on screen for both
// triangles of quadIndices.
func quad(x, y float32) []testVertex {
	return []testVertex{
		{x, y, 0, 0},
		{x, y + 10, 0, 1},
		{x + 10, y + 10, 1, 1},
		{x + 10, y, 1, 0},
	}
}

var quadIndices = []uint16{0, 1, 2, 2, 3, 0}

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	d := NewDevice()
	if err := d.Init(InitConfig{Type: RendererNoop, Resolution: Resolution{Width: 640, Height: 480}}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(d.Shutdown)
	return d
}

func recorder(t *testing.T, d *Device) *recordBackend {
	t.Helper()
	rb, ok := d.backend.(*recordBackend)
	if !ok {
		t.Fatalf("backend is %T, want *recordBackend", d.backend)
	}
	return rb
}

// quadBuffers creates a vertex buffer holding verts and a quad index buffer.
func quadBuffers(t *testing.T, d *Device, verts []testVertex, indices []uint16) (*DynamicVertexBuffer, *IndexBuffer) {
	t.Helper()
	vb, err := d.CreateDynamicVertexBuffer(len(verts), posUVLayout(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.UpdateDynamicVertexBuffer(vb, 0, Copy(verts)); err != nil {
		t.Fatal(err)
	}
	ib, err := d.CreateIndexBuffer(indices)
	if err != nil {
		t.Fatal(err)
	}
	return vb, ib
}

func submitQuad(d *Device, view ViewID, vb *DynamicVertexBuffer, ib *IndexBuffer, state State) {
	d.SetIndexBuffer(ib, 0, 0)
	d.SetVertexBuffer(0, vb, 0, 0)
	d.SetState(state)
	d.Submit(view, nil)
}

// --- Init / Shutdown ---

func TestInitTwice(t *testing.T) {
	d := newTestDevice(t)
	err := d.Init(InitConfig{Type: RendererNoop, Resolution: Resolution{Width: 1, Height: 1}})
	if !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("err = %v, want ErrAlreadyInitialized", err)
	}
}

func TestInitRejectsBadResolution(t *testing.T) {
	d := NewDevice()
	if err := d.Init(InitConfig{Type: RendererNoop}); err == nil {
		t.Error("expected error for zero resolution")
	}
	if d.Initialized() {
		t.Error("device should stay uninitialized")
	}
}

func TestCallsBeforeInit(t *testing.T) {
	d := NewDevice()
	if _, err := d.CreateIndexBuffer([]uint16{0, 1, 2}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CreateIndexBuffer err = %v", err)
	}
	if _, err := d.CreateUniform("s", UniformSampler, 1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CreateUniform err = %v", err)
	}
	d.Submit(0, nil)
	if d.Frame() != 0 {
		t.Error("Frame before Init should not advance")
	}
}

func TestShutdownReleasesLeaks(t *testing.T) {
	d := NewDevice()
	if err := d.Init(InitConfig{Type: RendererNoop, Resolution: Resolution{Width: 8, Height: 8}}); err != nil {
		t.Fatal(err)
	}
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	if d.LiveResources() != 2 {
		t.Fatalf("LiveResources = %d, want 2", d.LiveResources())
	}
	d.Shutdown()
	if d.LiveResources() != 0 {
		t.Errorf("LiveResources after Shutdown = %d", d.LiveResources())
	}
	if !vb.Destroyed() || !ib.Destroyed() {
		t.Error("leaked resources should be marked destroyed")
	}
	d.Shutdown() // no-op

	if err := d.Init(InitConfig{Type: RendererNoop, Resolution: Resolution{Width: 8, Height: 8}}); err != nil {
		t.Fatalf("re-Init: %v", err)
	}
	d.Shutdown()
}

func TestForceNoop(t *testing.T) {
	d := NewDevice()
	d.forceNoop = true
	if err := d.Init(InitConfig{Type: RendererOpenGL, Resolution: Resolution{Width: 8, Height: 8}}); err != nil {
		t.Fatal(err)
	}
	defer d.Shutdown()
	if d.RendererType() != RendererNoop {
		t.Errorf("RendererType = %v, want noop", d.RendererType())
	}
}

func TestResetVSync(t *testing.T) {
	d := NewDevice()
	err := d.Init(InitConfig{Type: RendererNoop, Resolution: Resolution{Width: 8, Height: 8, Reset: ResetVSync}})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Shutdown()
	rb := recorder(t, d)
	if !rb.vsync {
		t.Error("vsync should be on after Init")
	}
	d.Reset(100, 50, ResetNone)
	if rb.vsync {
		t.Error("vsync should be off after Reset")
	}
	if r := d.Resolution(); r.Width != 100 || r.Height != 50 {
		t.Errorf("Resolution = %+v", r)
	}
}

// --- Destroy ---

func TestDestroy(t *testing.T) {
	d := newTestDevice(t)
	ib, err := d.CreateIndexBuffer([]uint16{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Destroy(ib); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := d.Destroy(ib); !errors.Is(err, ErrDestroyed) {
		t.Errorf("second Destroy err = %v, want ErrDestroyed", err)
	}
	if err := d.Destroy(nil); err != nil {
		t.Errorf("Destroy(nil) = %v", err)
	}
	var none *Texture
	if err := d.Destroy(none); err != nil {
		t.Errorf("Destroy(typed nil) = %v", err)
	}

	other := newTestDevice(t)
	foreign, _ := other.CreateIndexBuffer([]uint16{0, 1, 2})
	if err := d.Destroy(foreign); !errors.Is(err, ErrForeignResource) {
		t.Errorf("foreign Destroy err = %v", err)
	}
}

func TestResourceIDsAndNames(t *testing.T) {
	d := newTestDevice(t)
	a, _ := d.CreateIndexBuffer([]uint16{0, 1, 2})
	u, _ := d.CreateUniform("s_tex", UniformSampler, 1)
	if a.ID() == u.ID() {
		t.Error("ids should be unique")
	}
	if u.Name() != "s_tex" {
		t.Errorf("Name = %q", u.Name())
	}
	if got := u.String(); got != "uniform #2 (s_tex)" {
		t.Errorf("String = %q", got)
	}
}

// --- Submit ---

func TestSubmitQuad(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(5, 5), quadIndices)
	tex, err := d.CreateTexture(image.NewNRGBA(image.Rect(0, 0, 64, 32)), "tex")
	if err != nil {
		t.Fatal(err)
	}

	d.SetTexture(0, nil, tex)
	submitQuad(d, 0, vb, ib, StateDefault|StateBlend(BlendNormal))
	if n := d.Frame(); n != 1 {
		t.Errorf("Frame = %d, want 1", n)
	}

	s := d.Stats()
	if s.Frame != 1 || s.NumDraw != 1 || s.NumTriangles != 2 || s.NumVertices != 4 || s.NumViews != 1 {
		t.Errorf("stats = %+v", s)
	}
	rec := recorder(t, d).last
	if len(rec.draws) != 1 {
		t.Fatalf("draws = %d", len(rec.draws))
	}
	dr := rec.draws[0]
	if dr.triangles != 2 {
		t.Errorf("triangles = %d", dr.triangles)
	}
	v := dr.vertices[2]
	if v.DstX != 15 || v.DstY != 15 || v.SrcX != 64 || v.SrcY != 32 {
		t.Errorf("vertex 2 = %+v", v)
	}
	if v.ColorR != 1 || v.ColorA != 1 {
		t.Errorf("missing Color0 should be white, got %+v", v)
	}
	if dr.texture == nil || dr.texture.img.Bounds().Dx() != 64 {
		t.Error("texture not recorded")
	}
}

func TestSubmitCulling(t *testing.T) {
	reversed := []uint16{0, 2, 1, 2, 0, 3}
	tests := []struct {
		name    string
		indices []uint16
		state   State
		culled  int
		drawn   int
	}{
		{"ccw kept by cull cw", quadIndices, StateDefault, 0, 2},
		{"cw dropped by cull cw", reversed, StateDefault, 2, 0},
		{"ccw dropped by cull ccw", quadIndices, StateWriteRGB | StateCullCCW, 2, 0},
		{"cw kept by cull ccw", reversed, StateWriteRGB | StateCullCCW, 0, 2},
		{"no culling", reversed, StateWriteRGB, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDevice(t)
			vb, ib := quadBuffers(t, d, quad(0, 0), tt.indices)
			submitQuad(d, 0, vb, ib, tt.state)
			d.Frame()
			s := d.Stats()
			if s.NumCulled != tt.culled || s.NumTriangles != tt.drawn {
				t.Errorf("culled %d drawn %d, want %d %d", s.NumCulled, s.NumTriangles, tt.culled, tt.drawn)
			}
		})
	}
}

func TestSubmitClipsOutOfRangeIndices(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	d.SetIndexBuffer(ib, 0, 0)
	d.SetVertexBuffer(0, vb, 0, 3)
	d.Submit(0, nil)
	d.Frame()
	s := d.Stats()
	if s.NumClipped != 1 || s.NumTriangles != 1 || s.NumVertices != 3 {
		t.Errorf("stats = %+v", s)
	}
}

func TestSubmitIndexRange(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	d.SetIndexBuffer(ib, 3, 3)
	d.SetVertexBuffer(0, vb, 0, 0)
	d.Submit(0, nil)
	d.Frame()
	rec := recorder(t, d).last
	if len(rec.draws) != 1 {
		t.Fatalf("draws = %d", len(rec.draws))
	}
	got := rec.draws[0].indices
	if len(got) != 3 || got[0] != 2 || got[1] != 3 || got[2] != 0 {
		t.Errorf("indices = %v, want [2 3 0]", got)
	}
}

func TestSubmitBaseVertex(t *testing.T) {
	d := newTestDevice(t)
	verts := append(quad(0, 0), quad(100, 0)...)
	vb, ib := quadBuffers(t, d, verts, quadIndices)
	d.SetIndexBuffer(ib, 0, 0)
	d.SetVertexBuffer(0, vb, 4, 4)
	d.Submit(0, nil)
	d.Frame()
	dr := recorder(t, d).last.draws[0]
	if dr.vertices[0].DstX != 100 {
		t.Errorf("first vertex x = %v, want 100", dr.vertices[0].DstX)
	}
}

func TestSubmitDropsInvalidDraws(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)

	d.SetVertexBuffer(0, vb, 0, 0)
	d.Submit(0, nil) // no index buffer

	d.SetIndexBuffer(ib, 0, 0)
	d.Submit(0, nil) // no vertex buffer

	d.SetIndexBuffer(ib, 0, 0)
	d.SetVertexBuffer(0, vb, 0, 0)
	d.SetState(StateCullCW)
	d.Submit(0, nil) // writes nothing

	d.SetIndexBuffer(ib, 99, 0)
	d.SetVertexBuffer(0, vb, 0, 0)
	d.Submit(0, nil) // index range

	d.Frame()
	s := d.Stats()
	if s.NumDropped != 4 || s.NumDraw != 0 {
		t.Errorf("stats = %+v", s)
	}
	if s.NumViews != 1 {
		t.Errorf("dropped draws still touch their view, NumViews = %d", s.NumViews)
	}
}

func TestSubmitResetsBoundState(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	submitQuad(d, 0, vb, ib, StateDefault)
	d.Submit(0, nil)
	d.Frame()
	if s := d.Stats(); s.NumDraw != 1 || s.NumDropped != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestSubmitSnapshotsVertexData(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	submitQuad(d, 0, vb, ib, StateDefault)
	if err := d.UpdateDynamicVertexBuffer(vb, 0, Copy(quad(50, 50))); err != nil {
		t.Fatal(err)
	}
	submitQuad(d, 0, vb, ib, StateDefault)
	d.Frame()
	draws := recorder(t, d).last.draws
	if len(draws) != 2 {
		t.Fatalf("draws = %d", len(draws))
	}
	if draws[0].vertices[0].DstX != 0 || draws[1].vertices[0].DstX != 50 {
		t.Errorf("x = %v, %v; want 0, 50", draws[0].vertices[0].DstX, draws[1].vertices[0].DstX)
	}
}

func TestDestroyedResourcesDropDraw(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	prog, err := d.CreateProgram([]byte("package main"), "p")
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Destroy(prog); err != nil {
		t.Fatal(err)
	}
	d.SetIndexBuffer(ib, 0, 0)
	d.SetVertexBuffer(0, vb, 0, 0)
	d.Submit(0, prog)
	d.Frame()
	if s := d.Stats(); s.NumDropped != 1 {
		t.Errorf("NumDropped = %d", s.NumDropped)
	}
}

func TestDestroyedTextureUsesPlaceholder(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	tex, _ := d.CreateTexture(image.NewNRGBA(image.Rect(0, 0, 4, 4)), "gone")
	d.Destroy(tex)

	d.SetTexture(0, nil, tex)
	submitQuad(d, 0, vb, ib, StateDefault)
	d.Frame()
	rec := recorder(t, d)
	dr := rec.last.draws[0]
	if dr.texture != rec.magenta {
		t.Error("destroyed texture should be replaced by the magenta placeholder")
	}
	if dr.vertices[2].SrcX != 1 {
		t.Errorf("placeholder uv scale = %v, want 1", dr.vertices[2].SrcX)
	}
}

func TestNativeReleaseDeferredToFrame(t *testing.T) {
	d := newTestDevice(t)
	tex, _ := d.CreateTexture(image.NewNRGBA(image.Rect(0, 0, 2, 2)), "t")
	native := tex.native.(*recordTexture)
	d.Destroy(tex)
	if native.disposed {
		t.Fatal("native texture released before the frame ended")
	}
	d.Frame()
	if !native.disposed {
		t.Error("native texture not released after Frame")
	}
}

// --- Views ---

func TestDrawsOrderedByView(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	submitQuad(d, 2, vb, ib, StateDefault)
	submitQuad(d, 0, vb, ib, StateDefault)
	submitQuad(d, 2, vb, ib, StateDefault|StateBlend(BlendAdd))
	d.Frame()
	draws := recorder(t, d).last.draws
	if len(draws) != 3 {
		t.Fatalf("draws = %d", len(draws))
	}
	if draws[0].view != 0 || draws[1].view != 2 || draws[2].view != 2 {
		t.Errorf("views = %d %d %d", draws[0].view, draws[1].view, draws[2].view)
	}
	if draws[2].blend == draws[1].blend {
		t.Error("submission order within a view not kept")
	}
}

func TestViewRectOffsetsVertices(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	d.SetViewRect(1, 100, 50, 200, 200)
	submitQuad(d, 1, vb, ib, StateDefault)
	d.Frame()
	v := recorder(t, d).last.draws[0].vertices[0]
	if v.DstX != 100 || v.DstY != 50 {
		t.Errorf("vertex = (%v, %v), want (100, 50)", v.DstX, v.DstY)
	}
}

func TestTouchClearsView(t *testing.T) {
	d := newTestDevice(t)
	d.SetViewClear(0, ClearColor|ClearDepth, 0x303030ff, 1, 0)
	d.SetViewClear(3, ClearColor, 0xff0000ff, 1, 0)
	d.Touch(0)
	d.Frame()
	rec := recorder(t, d).last
	if len(rec.cleared) != 1 || rec.cleared[0] != 0 {
		t.Errorf("cleared = %v, want [0]", rec.cleared)
	}
	if d.Stats().NumViews != 1 {
		t.Errorf("NumViews = %d", d.Stats().NumViews)
	}

	d.Frame()
	if rec := recorder(t, d).last; len(rec.cleared) != 0 {
		t.Errorf("touch should last one frame, cleared = %v", rec.cleared)
	}
}

// --- Uniforms ---

func TestUniformSnapshot(t *testing.T) {
	d := newTestDevice(t)
	vb, ib := quadBuffers(t, d, quad(0, 0), quadIndices)
	prog, err := d.CreateProgram([]byte("package main"), "tint")
	if err != nil {
		t.Fatal(err)
	}
	tint, err := d.CreateUniform("Tint", UniformVec4, 1)
	if err != nil {
		t.Fatal(err)
	}
	values := []float32{1, 0.5, 0.25, 1, 99}
	d.SetUniform(tint, values)
	values[0] = 0
	d.SetIndexBuffer(ib, 0, 0)
	d.SetVertexBuffer(0, vb, 0, 0)
	d.Submit(0, prog)
	d.Frame()

	dr := recorder(t, d).last.draws[0]
	if dr.program != "tint" {
		t.Errorf("program = %q", dr.program)
	}
	got, ok := dr.uniforms["Tint"].([]float32)
	if !ok || len(got) != 4 || got[0] != 1 || got[2] != 0.25 {
		t.Errorf("uniform = %v", dr.uniforms["Tint"])
	}
}

// --- Debug text ---

func TestDebugTextPrintf(t *testing.T) {
	d := newTestDevice(t)
	d.SetDebug(DebugText)
	d.DebugTextPrintf(0, 1, "hello %d", 1)
	d.DebugTextPrintf(0, 1, "hello %d", 2)
	d.DebugTextPrintf(4, 2, "x")
	if len(d.text) != 2 || d.text[0].text != "hello 2" {
		t.Errorf("text = %+v", d.text)
	}
	d.Frame()
	d.DebugTextClear()
	if len(d.text) != 0 {
		t.Error("DebugTextClear left text")
	}
}

func TestStatsLines(t *testing.T) {
	lines := statsLines(Stats{Frame: 7, NumDraw: 1, NumTriangles: 200}, 60, 60)
	if len(lines) == 0 || lines[0] != "frame 7  0x0" {
		t.Errorf("lines = %q", lines)
	}
}
