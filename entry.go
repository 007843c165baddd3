package gfx

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// App is an application driven by Run.
type App interface {
	// Init creates the app's resources. It is called once, before the first
	// Update.
	Init(ctx *Context) error
	// Update renders one frame. Returning false ends the run.
	Update() bool
	// Shutdown releases the app's resources and returns the exit code. It is
	// called exactly once, also when Init fails.
	Shutdown() int
}

// Context is handed to App.Init.
type Context struct {
	Device        *Device
	Events        *EventQueue
	Args          []string
	Width, Height int
}

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
	Args          []string
	Resizable     bool

	// Headless runs without a window on the noop renderer. It needs Frames
	// or Script to know when to stop.
	Headless bool
	// Frames stops the run after this many frames when positive.
	Frames int
	// Script drives waits, resizes, screenshots and exit requests.
	Script *TestRunner
	// ScreenshotDir overrides where screenshots are written.
	ScreenshotDir string
}

const (
	defaultWidth  = 1280
	defaultHeight = 720
)

func (c RunConfig) withDefaults() RunConfig {
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.Title == "" {
		c.Title = "gfx"
	}
	return c
}

// Run initializes app, drives it until it stops or an exit is requested and
// shuts it down. The returned code is the one App.Shutdown returns, also
// when Init fails and the Init error is returned with it.
func Run(app App, cfg RunConfig) (code int, err error) {
	cfg = cfg.withDefaults()
	if cfg.Headless && cfg.Frames <= 0 && cfg.Script == nil {
		return 1, errors.New("gfx: headless run needs a frame count or a script")
	}

	dev := NewDevice()
	dev.forceNoop = cfg.Headless
	if cfg.ScreenshotDir != "" {
		dev.ScreenshotDir = cfg.ScreenshotDir
	}
	events := NewEventQueue(cfg.Width, cfg.Height)
	ctx := &Context{
		Device: dev,
		Events: events,
		Args:   cfg.Args,
		Width:  cfg.Width,
		Height: cfg.Height,
	}

	defer func() {
		code = app.Shutdown()
		if dev.Initialized() {
			Logger().Warn("gfx: app returned without shutting the device down")
			dev.Shutdown()
		}
	}()

	if err := app.Init(ctx); err != nil {
		return 1, fmt.Errorf("gfx: app init: %w", err)
	}

	g := &game{
		app:    app,
		dev:    dev,
		events: events,
		script: cfg.Script,
		frames: cfg.Frames,
		width:  cfg.Width,
		height: cfg.Height,
	}

	if cfg.Headless {
		g.runHeadless()
		return 0, nil
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowClosingHandled(true)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	op := &ebiten.RunGameOptions{GraphicsLibrary: dev.RendererType().graphicsLibrary()}
	if err := ebiten.RunGameWithOptions(g, op); err != nil {
		return 1, fmt.Errorf("gfx: run: %w", err)
	}
	return 0, nil
}

// game adapts an App to ebiten.Game.
type game struct {
	app           App
	dev           *Device
	events        *EventQueue
	script        *TestRunner
	frames        int
	count         int
	width, height int
}

// step runs one frame and reports whether the run continues.
func (g *game) step() bool {
	if g.script != nil {
		g.script.step(g.dev, g.events)
	}
	if !g.app.Update() {
		return false
	}
	g.count++
	return g.frames <= 0 || g.count < g.frames
}

func (g *game) runHeadless() {
	for g.step() {
		if g.frames <= 0 && g.script.Done() && g.events.Pending() == 0 {
			return
		}
	}
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.events.RequestExit()
	}
	if !g.step() {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.dev.Present(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.events.InjectResize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
