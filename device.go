package gfx

import (
	"fmt"
	"image"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// MaxTextureStages is the number of texture stages a draw can bind.
const MaxTextureStages = 4

// Resolution is the size and presentation mode of the back buffer.
type Resolution struct {
	Width, Height int
	Reset         ResetFlags
}

// InitConfig configures Device.Init.
type InitConfig struct {
	Type       RendererType
	Resolution Resolution
	Debug      DebugFlags
}

// Stats describes the last completed frame.
type Stats struct {
	Frame        uint32
	NumDraw      int // draws that reached the backend
	NumDropped   int // submissions rejected for missing or invalid state
	NumTriangles int
	NumCulled    int // triangles removed by StateCullCW / StateCullCCW
	NumClipped   int // triangles referencing vertices outside the bound range
	NumVertices  int
	NumViews     int
	SubmitTime   time.Duration
	Width        int
	Height       int
}

type viewState struct {
	clear   ClearFlags
	rgba    uint32
	depth   float32
	stencil uint8
	rect    image.Rectangle
}

type textureBinding struct {
	sampler *Uniform
	tex     *Texture
}

// drawState is the per-draw state bound between two submissions.
type drawState struct {
	ib             *IndexBuffer
	ibFirst, ibNum int
	vb             *DynamicVertexBuffer
	vbStart, vbNum int
	textures       [MaxTextureStages]textureBinding
	uniforms       map[string][]float32
	state          State
	stateSet       bool
}

// drawCall is a resolved submission. Vertex and index ranges point into the
// owning frame's arenas.
type drawCall struct {
	view         ViewID
	program      nativeProgram
	programName  string
	images       [MaxTextureStages]nativeTexture
	vStart, vEnd int
	iStart, iEnd int
	blend        ebiten.Blend
	uniforms     map[string]any
}

type debugLine struct {
	col, row int
	text     string
}

// frame holds everything a backend needs to present one frame.
type frame struct {
	num         uint32
	views       [MaxViews]viewState
	active      [MaxViews]bool
	draws       []drawCall
	vertices    []ebiten.Vertex
	indices     []uint32
	text        []debugLine
	debug       DebugFlags
	stats       Stats
	screenshots []string
	releases    []func()
}

func (f *frame) reset() {
	f.active = [MaxViews]bool{}
	f.draws = f.draws[:0]
	f.vertices = f.vertices[:0]
	f.indices = f.indices[:0]
	f.text = f.text[:0]
	f.stats = Stats{}
	f.screenshots = f.screenshots[:0]
	f.releases = f.releases[:0]
}

// retire runs the native releases deferred while the frame was recorded.
func (f *frame) retire() {
	for _, fn := range f.releases {
		fn()
	}
	f.releases = f.releases[:0]
}

// Device is the rendering device. Resources are created from it, per-draw
// state is bound on it and Submit/Frame drive it. A Device is not safe for
// concurrent use.
type Device struct {
	initialized bool
	forceNoop   bool
	typ         RendererType
	backend     backend
	res         Resolution
	debug       DebugFlags

	live   map[*resourceBase]struct{}
	nextID uint32

	views  [MaxViews]viewState
	draw   drawState
	frames [2]frame
	cur    int
	num    uint32
	text   []debugLine
	stats  Stats
	warned map[string]bool

	// ScreenshotDir is where RequestScreenshot writes PNG files.
	ScreenshotDir string
}

// NewDevice returns an uninitialized device.
func NewDevice() *Device {
	return &Device{
		live:          make(map[*resourceBase]struct{}),
		warned:        make(map[string]bool),
		ScreenshotDir: "screenshots",
	}
}

// Init selects the backend and prepares the device for use.
func (d *Device) Init(cfg InitConfig) error {
	if d.initialized {
		return ErrAlreadyInitialized
	}
	if cfg.Resolution.Width <= 0 || cfg.Resolution.Height <= 0 {
		return fmt.Errorf("gfx: init: invalid resolution %dx%d", cfg.Resolution.Width, cfg.Resolution.Height)
	}
	if cfg.Type > RendererNoop {
		return fmt.Errorf("gfx: init: %w: %v", ErrUnknownRenderer, cfg.Type)
	}
	typ := cfg.Type
	if d.forceNoop {
		typ = RendererNoop
	}
	if typ == RendererNoop {
		d.backend = newRecordBackend()
	} else {
		d.backend = newEbitenBackend(d)
	}
	d.typ = typ
	d.res = cfg.Resolution
	d.debug = cfg.Debug
	d.views = [MaxViews]viewState{}
	d.draw = drawState{}
	d.cur = 0
	d.num = 0
	d.stats = Stats{}
	for i := range d.frames {
		d.frames[i].reset()
	}
	d.backend.setVSync(cfg.Resolution.Reset&ResetVSync != 0)
	d.initialized = true
	Logger().Info("gfx: device initialized",
		"renderer", typ,
		"width", cfg.Resolution.Width,
		"height", cfg.Resolution.Height,
		"vsync", cfg.Resolution.Reset&ResetVSync != 0)
	return nil
}

// Initialized reports whether Init succeeded and Shutdown has not run.
func (d *Device) Initialized() bool { return d.initialized }

// Shutdown releases every live resource and the backend. Resources still
// alive are reported as leaks. Calling Shutdown again is a no-op.
func (d *Device) Shutdown() {
	if !d.initialized {
		return
	}
	leaked := make([]*resourceBase, 0, len(d.live))
	for r := range d.live {
		leaked = append(leaked, r)
	}
	slices.SortFunc(leaked, func(a, b *resourceBase) int { return int(a.id) - int(b.id) })
	for _, r := range leaked {
		Logger().Warn("gfx: leaked resource destroyed at shutdown", "resource", r.String())
		d.release(r)
	}
	d.backend.shutdown()
	for i := range d.frames {
		d.frames[i].retire()
		d.frames[i].reset()
	}
	d.backend = nil
	d.initialized = false
	Logger().Info("gfx: device shut down", "frames", d.num)
}

// Reset changes the back buffer size and presentation flags.
func (d *Device) Reset(width, height int, flags ResetFlags) {
	if !d.initialized {
		return
	}
	if width > 0 && height > 0 {
		d.res.Width, d.res.Height = width, height
	}
	if d.res.Reset&ResetVSync != flags&ResetVSync {
		d.backend.setVSync(flags&ResetVSync != 0)
	}
	d.res.Reset = flags
	Logger().Debug("gfx: reset", "width", d.res.Width, "height", d.res.Height, "flags", flags)
}

// Resolution returns the current back buffer description.
func (d *Device) Resolution() Resolution { return d.res }

// RendererType returns the backend in use.
func (d *Device) RendererType() RendererType { return d.typ }

// SetDebug replaces the debug flags.
func (d *Device) SetDebug(flags DebugFlags) { d.debug = flags }

// Debug returns the current debug flags.
func (d *Device) Debug() DebugFlags { return d.debug }

// Stats returns the statistics of the last completed frame.
func (d *Device) Stats() Stats { return d.stats }

// FrameNum returns the number of frames completed so far.
func (d *Device) FrameNum() uint32 { return d.num }

// deferRelease schedules fn to run once the frame being recorded is no
// longer used by the backend.
func (d *Device) deferRelease(fn func()) {
	if d.backend == nil {
		fn()
		return
	}
	d.frames[d.cur].releases = append(d.frames[d.cur].releases, fn)
}

// warnOnce logs msg at warn level the first time key is seen and at debug
// level afterwards.
func (d *Device) warnOnce(key, msg string, args ...any) {
	if d.warned[key] {
		Logger().Debug(msg, args...)
		return
	}
	d.warned[key] = true
	Logger().Warn(msg, args...)
}

// SetViewClear sets what view clears at the start of the frame. Depth and
// stencil values are kept but have no effect: Ebitengine render targets have
// neither attachment.
func (d *Device) SetViewClear(view ViewID, flags ClearFlags, rgba uint32, depth float32, stencil uint8) {
	v := &d.views[view]
	v.clear, v.rgba, v.depth, v.stencil = flags, rgba, depth, stencil
	if flags&(ClearDepth|ClearStencil) != 0 {
		d.warnOnce("clear-depth-stencil", "gfx: depth and stencil clears are ignored", "view", view)
	}
}

// SetViewRect sets the area of the back buffer view draws into. A zero size
// covers the whole back buffer. Vertex positions are relative to the rect
// origin.
func (d *Device) SetViewRect(view ViewID, x, y, width, height int) {
	if width <= 0 || height <= 0 {
		d.views[view].rect = image.Rectangle{}
		return
	}
	d.views[view].rect = image.Rect(x, y, x+width, y+height)
}

// Touch marks view as used this frame so it is cleared even without draws.
func (d *Device) Touch(view ViewID) {
	d.frames[d.cur].active[view] = true
}

// SetIndexBuffer binds num indices of ib starting at first for the next
// draw. num 0 binds every index from first on.
func (d *Device) SetIndexBuffer(ib *IndexBuffer, first, num int) {
	d.draw.ib, d.draw.ibFirst, d.draw.ibNum = ib, first, num
}

// SetVertexBuffer binds num vertices of vb starting at start for the next
// draw. Indices are relative to start. Only stream 0 exists.
func (d *Device) SetVertexBuffer(stream uint8, vb *DynamicVertexBuffer, start, num int) {
	if stream != 0 {
		d.warnOnce("vertex-stream", "gfx: only vertex stream 0 is supported", "stream", stream)
		return
	}
	d.draw.vb, d.draw.vbStart, d.draw.vbNum = vb, start, num
}

// SetTexture binds tex to stage for the next draw.
func (d *Device) SetTexture(stage uint8, sampler *Uniform, tex *Texture) {
	if int(stage) >= MaxTextureStages {
		d.warnOnce("texture-stage", "gfx: texture stage out of range", "stage", stage)
		return
	}
	if sampler != nil && sampler.typ != UniformSampler {
		d.warnOnce("sampler-type", "gfx: SetTexture with a value uniform", "uniform", sampler.String())
	}
	d.draw.textures[stage] = textureBinding{sampler: sampler, tex: tex}
}

// SetUniform sets the value of u for the next draw. Extra values are
// ignored; sampler uniforms are bound through SetTexture instead.
func (d *Device) SetUniform(u *Uniform, values []float32) {
	if u == nil || u.destroyed {
		d.warnOnce("uniform-destroyed", "gfx: SetUniform on a destroyed uniform")
		return
	}
	n := u.typ.floats() * u.num
	if n == 0 {
		d.warnOnce("uniform-sampler:"+u.name, "gfx: SetUniform on a sampler uniform", "uniform", u.String())
		return
	}
	if len(values) < n {
		d.warnOnce("uniform-short:"+u.name, "gfx: too few uniform values", "uniform", u.String(), "want", n, "got", len(values))
		return
	}
	if d.draw.uniforms == nil {
		d.draw.uniforms = make(map[string][]float32)
	}
	d.draw.uniforms[u.name] = append([]float32(nil), values[:n]...)
}

// SetState sets the render state for the next draw. Without a call the draw
// uses StateDefault.
func (d *Device) SetState(s State) {
	d.draw.state, d.draw.stateSet = s, true
}

// Submit records a draw into view with the bound state and program, then
// clears the bound state. The vertex data is read now, so the buffer may be
// updated again before Frame. A nil program draws the stage-0 texture
// modulated by the vertex color.
func (d *Device) Submit(view ViewID, prog *Program) {
	start := time.Now()
	ds := d.draw
	d.draw = drawState{}
	if !d.initialized {
		return
	}
	f := &d.frames[d.cur]
	f.active[view] = true
	defer func() { f.stats.SubmitTime += time.Since(start) }()

	if reason := validateDraw(&ds, prog); reason != "" {
		f.stats.NumDropped++
		d.warnOnce("drop:"+reason, "gfx: draw dropped", "view", view, "reason", reason)
		return
	}
	state := StateDefault
	if ds.stateSet {
		state = ds.state
	}
	blend, ok := state.ebitenBlend()
	if !ok {
		f.stats.NumDropped++
		d.warnOnce("drop:no-write", "gfx: draw dropped", "view", view, "reason", "state writes no channel")
		return
	}

	call := drawCall{view: view, blend: blend}
	if prog != nil {
		call.program = prog.native
		call.programName = prog.fragment
	}
	texW, texH := float32(1), float32(1)
	for stage, b := range ds.textures {
		if b.tex == nil {
			continue
		}
		if b.tex.destroyed {
			if !b.tex.warned {
				b.tex.warned = true
				Logger().Warn("gfx: destroyed texture replaced by placeholder", "texture", b.tex.String(), "stage", stage)
			}
			call.images[stage] = d.backend.placeholder()
			continue
		}
		call.images[stage] = b.tex.native
		if stage == 0 {
			texW, texH = float32(b.tex.width), float32(b.tex.height)
		}
	}
	if len(ds.uniforms) > 0 {
		call.uniforms = make(map[string]any, len(ds.uniforms))
		for k, v := range ds.uniforms {
			call.uniforms[k] = v
		}
	}

	// Vertices.
	vb := ds.vb
	vStart, vNum := ds.vbStart, ds.vbNum
	if vNum <= 0 || vStart+vNum > vb.numVertices {
		vNum = vb.numVertices - vStart
	}
	stride := vb.layout.Stride()
	call.vStart = len(f.vertices)
	for i := vStart; i < vStart+vNum; i++ {
		raw := vb.data[i*stride : (i+1)*stride]
		pos := vb.layout.decode(raw, AttribPosition, [4]float32{})
		uv := vb.layout.decode(raw, AttribTexCoord0, [4]float32{})
		col := vb.layout.decode(raw, AttribColor0, [4]float32{1, 1, 1, 1})
		f.vertices = append(f.vertices, ebiten.Vertex{
			DstX:   pos[0],
			DstY:   pos[1],
			SrcX:   uv[0] * texW,
			SrcY:   uv[1] * texH,
			ColorR: col[0],
			ColorG: col[1],
			ColorB: col[2],
			ColorA: col[3],
		})
	}
	call.vEnd = len(f.vertices)

	// Indices.
	indices := ds.ib.indices[ds.ibFirst:]
	if ds.ibNum > 0 && ds.ibNum < len(indices) {
		indices = indices[:ds.ibNum]
	}
	verts := f.vertices[call.vStart:call.vEnd]
	base := uint32(call.vStart)
	call.iStart = len(f.indices)
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		if int(i0) >= vNum || int(i1) >= vNum || int(i2) >= vNum {
			f.stats.NumClipped++
			continue
		}
		if culled(state, &verts[i0], &verts[i1], &verts[i2]) {
			f.stats.NumCulled++
			continue
		}
		f.indices = append(f.indices, base+i0, base+i1, base+i2)
	}
	call.iEnd = len(f.indices)

	if call.iEnd == call.iStart {
		f.vertices = f.vertices[:call.vStart]
		return
	}
	f.draws = append(f.draws, call)
	f.stats.NumDraw++
	f.stats.NumTriangles += (call.iEnd - call.iStart) / 3
	f.stats.NumVertices += vNum
}

// validateDraw returns why ds cannot be drawn, or "".
func validateDraw(ds *drawState, prog *Program) string {
	switch {
	case ds.vb == nil:
		return "no vertex buffer"
	case ds.vb.destroyed:
		return "vertex buffer destroyed"
	case ds.ib == nil:
		return "no index buffer"
	case ds.ib.destroyed:
		return "index buffer destroyed"
	case prog != nil && prog.destroyed:
		return "program destroyed"
	case ds.vbStart < 0 || ds.vbStart >= ds.vb.numVertices:
		return "vertex range out of bounds"
	case ds.ibFirst < 0 || ds.ibFirst >= len(ds.ib.indices) || ds.ibNum < 0:
		return "index range out of bounds"
	}
	return ""
}

// culled reports whether the screen-space winding of the triangle is
// removed by s. Screen y grows downward, so a positive cross product is
// clockwise as seen on screen.
func culled(s State, a, b, c *ebiten.Vertex) bool {
	if s&(StateCullCW|StateCullCCW) == 0 {
		return false
	}
	cross := (b.DstX-a.DstX)*(c.DstY-a.DstY) - (b.DstY-a.DstY)*(c.DstX-a.DstX)
	switch {
	case cross > 0:
		return s&StateCullCW != 0
	case cross < 0:
		return s&StateCullCCW != 0
	}
	return false
}

// Frame closes the frame being recorded, hands it to the backend and
// returns the number of the frame just completed.
func (d *Device) Frame() uint32 {
	if !d.initialized {
		return d.num
	}
	f := &d.frames[d.cur]
	d.num++
	f.num = d.num
	f.views = d.views
	f.debug = d.debug
	f.text = append(f.text[:0], d.text...)

	slices.SortStableFunc(f.draws, func(a, b drawCall) int { return int(a.view) - int(b.view) })
	for i := range f.draws {
		dc := &f.draws[i]
		off := f.views[dc.view].rect.Min
		if off.X == 0 && off.Y == 0 {
			continue
		}
		for v := dc.vStart; v < dc.vEnd; v++ {
			f.vertices[v].DstX += float32(off.X)
			f.vertices[v].DstY += float32(off.Y)
		}
	}

	for _, a := range f.active {
		if a {
			f.stats.NumViews++
		}
	}
	f.stats.Frame = d.num
	f.stats.Width, f.stats.Height = d.res.Width, d.res.Height
	d.stats = f.stats
	d.logStats()

	d.backend.submit(f)
	d.cur ^= 1
	d.frames[d.cur].reset()
	return d.num
}

// Present draws the last completed frame onto screen. It is called from
// ebiten.Game.Draw; the recording backend ignores it.
func (d *Device) Present(screen *ebiten.Image) {
	if !d.initialized {
		return
	}
	d.backend.present(screen)
}

// RequestScreenshot asks for the next presented frame to be written to
// ScreenshotDir as a PNG named after label.
func (d *Device) RequestScreenshot(label string) {
	f := &d.frames[d.cur]
	f.screenshots = append(f.screenshots, label)
}
