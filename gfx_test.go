package gfx

import (
	"errors"
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- RendererType ---

func TestParseRendererType(t *testing.T) {
	tests := []struct {
		in   string
		want RendererType
	}{
		{"", RendererAuto},
		{"auto", RendererAuto},
		{"Direct3D11", RendererDirect3D11},
		{"d3d11", RendererDirect3D11},
		{"opengl", RendererOpenGL},
		{" GL ", RendererOpenGL},
		{"metal", RendererMetal},
		{"noop", RendererNoop},
		{"headless", RendererNoop},
	}
	for _, tt := range tests {
		got, err := ParseRendererType(tt.in)
		if err != nil {
			t.Errorf("ParseRendererType(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRendererType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRendererTypeUnknown(t *testing.T) {
	_, err := ParseRendererType("vulkan")
	if !errors.Is(err, ErrUnknownRenderer) {
		t.Errorf("err = %v, want ErrUnknownRenderer", err)
	}
}

func TestRendererTypeGraphicsLibrary(t *testing.T) {
	if RendererOpenGL.graphicsLibrary() != ebiten.GraphicsLibraryOpenGL {
		t.Error("opengl should select GraphicsLibraryOpenGL")
	}
	if RendererDirect3D11.graphicsLibrary() != ebiten.GraphicsLibraryDirectX {
		t.Error("direct3d11 should select GraphicsLibraryDirectX")
	}
	if RendererNoop.graphicsLibrary() != ebiten.GraphicsLibraryAuto {
		t.Error("noop should fall back to GraphicsLibraryAuto")
	}
	if RendererType(42).String() != "RendererType(42)" {
		t.Errorf("String = %q", RendererType(42).String())
	}
}

// --- DebugFlags ---

func TestParseDebugFlags(t *testing.T) {
	f, err := ParseDebugFlags([]string{"text", "Stats"})
	if err != nil {
		t.Fatal(err)
	}
	if f != DebugText|DebugStats {
		t.Errorf("flags = %b, want text|stats", f)
	}
	if f, _ := ParseDebugFlags(nil); f != DebugNone {
		t.Errorf("nil names = %b, want none", f)
	}
	if _, err := ParseDebugFlags([]string{"wireframe"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

// --- Colors ---

func TestRGBARoundTrip(t *testing.T) {
	c := RGBA(0x303030ff)
	want := color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
	if c != want {
		t.Errorf("RGBA = %v, want %v", c, want)
	}
	if got := PackRGBA(color.NRGBA{R: 1, G: 2, B: 3, A: 4}); got != 0x01020304 {
		t.Errorf("PackRGBA = %#08x, want 0x01020304", got)
	}
}

// --- State ---

func TestStateBlendEncoding(t *testing.T) {
	if _, ok := StateDefault.Blend(); ok {
		t.Error("StateDefault should carry no blend mode")
	}
	for _, m := range []BlendMode{BlendNormal, BlendAdd, BlendMultiply, BlendScreen, BlendErase, BlendBelow} {
		s := StateWriteRGB | StateBlend(m)
		got, ok := s.Blend()
		if !ok || got != m {
			t.Errorf("StateBlend(%d).Blend() = %d, %v", m, got, ok)
		}
		if s&StateWriteRGB == 0 {
			t.Error("blend bits overwrote write bits")
		}
	}
}

func TestStateEbitenBlend(t *testing.T) {
	blend, ok := (StateWriteRGB | StateWriteA | StateBlend(BlendNormal)).ebitenBlend()
	if !ok || blend != ebiten.BlendSourceOver {
		t.Errorf("normal blend = %+v, %v", blend, ok)
	}

	blend, ok = (StateWriteRGB | StateWriteA).ebitenBlend()
	if !ok || blend != ebiten.BlendCopy {
		t.Errorf("no blend bits should copy, got %+v", blend)
	}

	blend, ok = (StateWriteRGB | StateBlend(BlendNormal)).ebitenBlend()
	if !ok {
		t.Fatal("RGB-only state should draw")
	}
	if blend.BlendFactorSourceAlpha != ebiten.BlendFactorZero || blend.BlendFactorDestinationAlpha != ebiten.BlendFactorOne {
		t.Errorf("alpha channel not masked: %+v", blend)
	}
	if blend.BlendFactorSourceRGB != ebiten.BlendFactorOne {
		t.Errorf("RGB factors changed: %+v", blend)
	}

	if _, ok := StateCullCW.ebitenBlend(); ok {
		t.Error("state without write bits should not draw")
	}
}
