package hello

import (
	"fmt"
	"io/fs"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/gfx"
)

// SamplerName is the name of the atlas sampler uniform.
const SamplerName = "u_texture0"

// clearTweenSeconds is how long a reloaded clear color takes to fade in.
const clearTweenSeconds = 0.5

// RenderState is the state every frame is drawn with: straight alpha
// blending, color and alpha writes, clockwise triangles culled.
const RenderState = gfx.StateWriteRGB | gfx.StateWriteA | gfx.StateCullCW

// App draws the rotating sprite grid. It implements gfx.App.
type App struct {
	cfg    Config
	assets fs.FS

	dev           *gfx.Device
	events        *gfx.EventQueue
	width, height int
	angleStep     float32
	clear         uint32
	clearTween    *gfx.ColorTween

	layout  gfx.VertexLayout
	ibh     *gfx.IndexBuffer
	vbh     *gfx.DynamicVertexBuffer
	program *gfx.Program
	texture *gfx.Texture
	sampler *gfx.Uniform

	uvs        [NumCells][4]TextureCoord
	transforms []Transform
	vertices   []Vertex

	watcher *Watcher
}

// NewApp returns an app that loads its texture and shader from assets.
func NewApp(cfg Config, assets fs.FS) *App {
	return &App{cfg: cfg, assets: assets}
}

// Watch reloads the config from path whenever the file changes.
func (a *App) Watch(path string) error {
	w, err := NewWatcher(path)
	if err != nil {
		return fmt.Errorf("hello: watch %s: %w", path, err)
	}
	a.watcher = w
	gfx.Logger().Info("hello: watching config", "path", path)
	return nil
}

// Init creates the device and every resource the grid needs, then lays
// the sprites out.
func (a *App) Init(ctx *gfx.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	a.dev = ctx.Device
	a.events = ctx.Events
	a.width, a.height = ctx.Width, ctx.Height
	a.angleStep = a.cfg.AngleStep
	a.clear = a.cfg.ClearRGBA()

	err := a.dev.Init(gfx.InitConfig{
		Type: a.cfg.RendererType(),
		Resolution: gfx.Resolution{
			Width:  a.width,
			Height: a.height,
			Reset:  a.cfg.ResetFlags(),
		},
		Debug: a.cfg.DebugFlags(),
	})
	if err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	a.layout.Begin().
		Add(gfx.AttribPosition, 2, gfx.AttribFloat, false).
		Add(gfx.AttribTexCoord0, 2, gfx.AttribFloat, false).
		End()
	if err := a.layout.Err(); err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	if a.ibh, err = a.dev.CreateIndexBuffer(QuadIndices(RendererVertexMax / 4)); err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	if a.vbh, err = a.dev.CreateDynamicVertexBuffer(RendererVertexMax, &a.layout); err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	if a.program, err = a.dev.LoadProgram(a.assets, a.cfg.Assets.VertexShader, a.cfg.Assets.FragmentShader); err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	if a.texture, err = a.dev.LoadTexture(a.assets, a.cfg.Assets.Texture); err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	if a.sampler, err = a.dev.CreateUniform(SamplerName, gfx.UniformSampler, 1); err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	a.dev.SetViewClear(0, gfx.ClearColor|gfx.ClearDepth, a.clear, 1.0, 0)
	a.dev.SetViewRect(0, 0, 0, a.width, a.height)

	a.uvs = BuildUVTable()
	n := a.cfg.Grid * a.cfg.Grid
	a.transforms = Layout(a.cfg.Grid, a.width, a.height)
	a.vertices = make([]Vertex, 4*n)
	for i := 0; i < n; i++ {
		uv := &a.uvs[i%NumCells]
		for c := 0; c < 4; c++ {
			a.vertices[i*4+c].TexCoord = uv[c].UV
		}
	}

	gfx.Logger().Info("hello: initialized",
		"grid", a.cfg.Grid,
		"sprites", n,
		"renderer", a.dev.RendererType())
	return nil
}

// Update advances and draws one frame. It returns false, without drawing,
// once an exit has been requested.
func (a *App) Update() bool {
	if a.events.ProcessEvents() {
		return false
	}
	a.pollConfig()
	if w, h := a.events.Size(); w != a.width || h != a.height {
		a.resize(w, h)
	}
	if a.clearTween != nil {
		a.clear = a.clearTween.Update(1 / float32(ebiten.TPS()))
		a.dev.SetViewClear(0, gfx.ClearColor|gfx.ClearDepth, a.clear, 1.0, 0)
		if a.clearTween.Done {
			a.clearTween = nil
		}
	}

	w := SpriteWidth(a.cfg.Grid)
	for i := range a.transforms {
		t := &a.transforms[i]
		RotateQuad(a.vertices[i*4:i*4+4], *t, w)
		t.Angle += a.angleStep
	}

	a.dev.DebugTextClear()
	a.dev.DebugTextPrintf(0, 1, "gfx/examples/00-helloworld")
	a.dev.DebugTextPrintf(0, 2, "Description: Initialization and debug text.")
	a.dev.DebugTextPrintf(0, 3, "%d sprites, %v renderer", len(a.transforms), a.dev.RendererType())

	a.dev.Touch(0)
	if err := a.dev.UpdateDynamicVertexBuffer(a.vbh, 0, gfx.MakeRef(a.vertices)); err != nil {
		gfx.Logger().Error("hello: update vertices", "err", err)
	}
	a.dev.SetIndexBuffer(a.ibh, 0, len(a.transforms)*6)
	a.dev.SetVertexBuffer(0, a.vbh, 0, len(a.vertices))
	a.dev.SetTexture(0, a.sampler, a.texture)
	a.dev.SetState(RenderState | gfx.StateBlend(gfx.BlendNormal))
	a.dev.Submit(0, a.program)
	a.dev.Frame()
	return true
}

// Shutdown destroys every resource and the device.
func (a *App) Shutdown() int {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			gfx.Logger().Warn("hello: close watcher", "err", err)
		}
		a.watcher = nil
	}
	if a.dev == nil {
		return 0
	}
	for _, r := range []gfx.Resource{a.vbh, a.ibh, a.program, a.texture, a.sampler} {
		if err := a.dev.Destroy(r); err != nil {
			gfx.Logger().Warn("hello: destroy", "err", err)
		}
	}
	a.dev.Shutdown()
	return 0
}

// Transforms returns the sprite transforms.
func (a *App) Transforms() []Transform { return a.transforms }

// Vertices returns the vertex data uploaded by the last Update.
func (a *App) Vertices() []Vertex { return a.vertices }

// ClearColor returns the current view 0 clear color.
func (a *App) ClearColor() uint32 { return a.clear }

// Config returns the active settings.
func (a *App) Config() Config { return a.cfg }

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	a.dev.Reset(w, h, a.cfg.ResetFlags())
	a.dev.SetViewRect(0, 0, 0, w, h)
	LayoutInto(a.transforms, a.cfg.Grid, w, h)
	gfx.Logger().Debug("hello: resized", "width", w, "height", h)
}

func (a *App) pollConfig() {
	if a.watcher == nil {
		return
	}
	select {
	case path, ok := <-a.watcher.Events:
		if !ok {
			return
		}
		next, err := LoadConfig(path)
		if err != nil {
			gfx.Logger().Error("hello: reload config", "err", err)
			return
		}
		a.ApplyConfig(next)
	case err, ok := <-a.watcher.Errors:
		if ok {
			gfx.Logger().Warn("hello: config watcher", "err", err)
		}
	default:
	}
}

// ApplyConfig applies the settings that can change while running: angle
// step, debug flags, vsync and clear color (faded in). Other changes are
// kept at their current values and reported as needing a restart.
func (a *App) ApplyConfig(next Config) {
	var restart []string
	if next.Grid != a.cfg.Grid {
		restart = append(restart, "grid")
		next.Grid = a.cfg.Grid
	}
	if next.Renderer != a.cfg.Renderer {
		restart = append(restart, "renderer")
		next.Renderer = a.cfg.Renderer
	}
	if next.Window != a.cfg.Window {
		restart = append(restart, "window")
		next.Window = a.cfg.Window
	}
	if next.Assets != a.cfg.Assets {
		restart = append(restart, "assets")
		next.Assets = a.cfg.Assets
	}

	a.angleStep = next.AngleStep
	if !slices.Equal(next.Debug, a.cfg.Debug) {
		a.dev.SetDebug(next.DebugFlags())
	}
	if next.VSync != a.cfg.VSync {
		a.dev.Reset(a.width, a.height, next.ResetFlags())
	}
	if to := next.ClearRGBA(); to != a.cfg.ClearRGBA() {
		a.clearTween = gfx.NewColorTween(a.clear, to, clearTweenSeconds, ease.OutQuad)
	}
	a.cfg = next

	gfx.Logger().Info("hello: config reloaded", "angle_step", next.AngleStep, "debug", next.Debug)
	if len(restart) > 0 {
		gfx.Logger().Warn("hello: restart required to apply changes", "keys", restart)
	}
}
