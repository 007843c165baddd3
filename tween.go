package gfx

import (
	"image/color"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ColorTween animates a packed 0xRRGGBBAA color, one gween tween per
// channel. Call Update once per frame.
type ColorTween struct {
	tweens [4]*gween.Tween
	value  color.NRGBA
	Done   bool
}

// NewColorTween returns a tween from one packed color to another over
// duration seconds.
func NewColorTween(from, to uint32, duration float32, fn ease.TweenFunc) *ColorTween {
	a, b := RGBA(from), RGBA(to)
	t := &ColorTween{value: a}
	t.tweens[0] = gween.New(float32(a.R), float32(b.R), duration, fn)
	t.tweens[1] = gween.New(float32(a.G), float32(b.G), duration, fn)
	t.tweens[2] = gween.New(float32(a.B), float32(b.B), duration, fn)
	t.tweens[3] = gween.New(float32(a.A), float32(b.A), duration, fn)
	return t
}

// Update advances the tween by dt seconds and returns the current color.
func (t *ColorTween) Update(dt float32) uint32 {
	if t.Done {
		return PackRGBA(t.value)
	}
	done := true
	var ch [4]uint8
	for i, tw := range t.tweens {
		v, finished := tw.Update(dt)
		ch[i] = clampChannel(v)
		if !finished {
			done = false
		}
	}
	t.value = color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
	t.Done = done
	return PackRGBA(t.value)
}

// Value returns the current color without advancing.
func (t *ColorTween) Value() uint32 { return PackRGBA(t.value) }

func clampChannel(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
