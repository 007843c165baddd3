package gfx

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// ViewID identifies a view. Views are rendered in ascending order.
type ViewID uint8

// MaxViews is the number of addressable views.
const MaxViews = 256

// RendererType selects the backend a Device dispatches to.
type RendererType uint8

const (
	RendererAuto       RendererType = iota // let Ebitengine pick the graphics library
	RendererDirect3D11                     // Ebitengine on DirectX
	RendererOpenGL                         // Ebitengine on OpenGL
	RendererMetal                          // Ebitengine on Metal
	RendererNoop                           // headless recording backend, no GPU
)

var rendererNames = [...]string{
	RendererAuto:       "auto",
	RendererDirect3D11: "direct3d11",
	RendererOpenGL:     "opengl",
	RendererMetal:      "metal",
	RendererNoop:       "noop",
}

func (t RendererType) String() string {
	if int(t) < len(rendererNames) {
		return rendererNames[t]
	}
	return fmt.Sprintf("RendererType(%d)", uint8(t))
}

// ParseRendererType maps a case-insensitive name ("auto", "direct3d11",
// "d3d11", "opengl", "gl", "metal", "noop") to a RendererType.
func ParseRendererType(name string) (RendererType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return RendererAuto, nil
	case "direct3d11", "d3d11", "directx":
		return RendererDirect3D11, nil
	case "opengl", "gl":
		return RendererOpenGL, nil
	case "metal":
		return RendererMetal, nil
	case "noop", "headless":
		return RendererNoop, nil
	}
	return RendererAuto, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
}

// graphicsLibrary returns the Ebitengine graphics library for t.
func (t RendererType) graphicsLibrary() ebiten.GraphicsLibrary {
	switch t {
	case RendererDirect3D11:
		return ebiten.GraphicsLibraryDirectX
	case RendererOpenGL:
		return ebiten.GraphicsLibraryOpenGL
	case RendererMetal:
		return ebiten.GraphicsLibraryMetal
	default:
		return ebiten.GraphicsLibraryAuto
	}
}

// ResetFlags control presentation behaviour.
type ResetFlags uint32

const (
	ResetVSync ResetFlags = 1 << iota // wait for vertical blank

	ResetNone ResetFlags = 0
)

// DebugFlags enable debug overlays.
type DebugFlags uint32

const (
	DebugText  DebugFlags = 1 << iota // draw the debug text buffer
	DebugStats                        // overlay and log per-frame statistics

	DebugNone DebugFlags = 0
)

// ParseDebugFlags maps names ("text", "stats") to flags.
func ParseDebugFlags(names []string) (DebugFlags, error) {
	var f DebugFlags
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "text":
			f |= DebugText
		case "stats":
			f |= DebugStats
		case "", "none":
		default:
			return f, fmt.Errorf("gfx: unknown debug flag %q", n)
		}
	}
	return f, nil
}

// ClearFlags select which attachments a view clears.
type ClearFlags uint8

const (
	ClearColor   ClearFlags = 1 << iota // fill the view rect with the clear color
	ClearDepth                          // accepted; Ebitengine targets have no depth attachment
	ClearStencil                        // accepted; Ebitengine targets have no stencil attachment

	ClearNone ClearFlags = 0
)

// RGBA unpacks a 0xRRGGBBAA value into a straight-alpha color.
func RGBA(rgba uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(rgba >> 24),
		G: uint8(rgba >> 16),
		B: uint8(rgba >> 8),
		A: uint8(rgba),
	}
}

// PackRGBA packs a straight-alpha color into 0xRRGGBBAA.
func PackRGBA(c color.NRGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// BlendMode selects a compositing operation. Each maps to an ebiten.Blend.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over; src alpha / inv src alpha on straight input
	BlendAdd                       // additive
	BlendMultiply                  // source * destination
	BlendScreen                    // 1 - (1-src)*(1-dst)
	BlendErase                     // destination-out
	BlendBelow                     // destination-over
)

// EbitenBlend returns the ebiten.Blend value for b.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendBelow:
		return ebiten.BlendDestinationOver
	default:
		return ebiten.BlendSourceOver
	}
}

// State is a packed render state: write masks, culling and blend mode.
type State uint64

const (
	StateWriteRGB State = 1 << iota // write color channels
	StateWriteA                     // write alpha channel
	StateCullCW                     // drop triangles that wind clockwise on screen
	StateCullCCW                    // drop triangles that wind counter-clockwise on screen
)

const (
	stateBlendShift = 8
	stateBlendMask  = State(0xff) << stateBlendShift
)

// StateDefault writes color and alpha, culls clockwise triangles and does not blend.
const StateDefault = StateWriteRGB | StateWriteA | StateCullCW

// StateBlend encodes a blend mode into a State. A State without blend bits
// draws opaque.
func StateBlend(m BlendMode) State {
	return State(uint64(m)+1) << stateBlendShift
}

// Blend returns the blend mode encoded in s, if any.
func (s State) Blend() (BlendMode, bool) {
	v := (s & stateBlendMask) >> stateBlendShift
	if v == 0 {
		return 0, false
	}
	return BlendMode(v - 1), true
}

// ebitenBlend resolves the blend and write masks of s. ok is false when s
// writes nothing.
func (s State) ebitenBlend() (blend ebiten.Blend, ok bool) {
	writeRGB := s&StateWriteRGB != 0
	writeA := s&StateWriteA != 0
	if !writeRGB && !writeA {
		return blend, false
	}
	if m, has := s.Blend(); has {
		blend = m.EbitenBlend()
	} else {
		blend = ebiten.BlendCopy
	}
	if !writeRGB {
		blend.BlendFactorSourceRGB = ebiten.BlendFactorZero
		blend.BlendFactorDestinationRGB = ebiten.BlendFactorOne
		blend.BlendOperationRGB = ebiten.BlendOperationAdd
	}
	if !writeA {
		blend.BlendFactorSourceAlpha = ebiten.BlendFactorZero
		blend.BlendFactorDestinationAlpha = ebiten.BlendFactorOne
		blend.BlendOperationAlpha = ebiten.BlendOperationAdd
	}
	return blend, true
}
