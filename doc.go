// Package gfx is a small handle-based rendering layer over [Ebitengine].
//
// It exposes the shape of a classic immediate-submission renderer: a
// [Device] that owns vertex layouts, static index buffers, dynamic vertex
// buffers, textures, Kage programs and uniforms, and a per-frame
// set-state / [Device.Submit] / [Device.Frame] cycle. Draw calls are resolved
// on the CPU at submit time (vertex decoding, index range clipping, winding
// culling, UV scaling) and handed to a backend when the frame is closed.
//
// # Quick start
//
// Implement [App] and hand it to [Run]:
//
//	type demo struct{ dev *gfx.Device; events *gfx.EventQueue }
//
//	func (d *demo) Init(ctx *gfx.Context) error {
//		d.dev, d.events = ctx.Device, ctx.Events
//		return d.dev.Init(gfx.InitConfig{Resolution: gfx.Resolution{Width: ctx.Width, Height: ctx.Height}})
//	}
//
//	func (d *demo) Update() bool {
//		if d.events.ProcessEvents() {
//			return false
//		}
//		d.dev.Touch(0)
//		d.dev.Frame()
//		return true
//	}
//
//	func (d *demo) Shutdown() int { d.dev.Shutdown(); return 0 }
//
//	gfx.Run(&demo{}, gfx.RunConfig{Title: "demo", Width: 1280, Height: 720})
//
// # Backends
//
// Every GPU [RendererType] dispatches to Ebitengine, which picks DirectX,
// OpenGL or Metal at startup. [RendererNoop] selects a recording backend that
// keeps the resolved frame in memory; it is what headless runs and tests use.
//
// # Logging
//
// gfx is silent by default. Install a logger with [SetLogger].
//
// [Ebitengine]: https://ebitengine.org
package gfx
