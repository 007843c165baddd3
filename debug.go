package gfx

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Debug text cell size in pixels, matching ebitenutil's debug font.
const (
	debugCellWidth  = 6
	debugCellHeight = 16
)

// statsLogInterval is how many frames pass between DebugStats log lines.
const statsLogInterval = 60

// DebugTextClear removes all debug text.
func (d *Device) DebugTextClear() {
	d.text = d.text[:0]
}

// DebugTextPrintf writes formatted text at a character cell. Text printed
// at the same cell replaces the previous text. It is drawn over every view
// while DebugText is set.
func (d *Device) DebugTextPrintf(col, row int, format string, args ...any) {
	line := debugLine{col: col, row: row, text: fmt.Sprintf(format, args...)}
	for i := range d.text {
		if d.text[i].col == col && d.text[i].row == row {
			d.text[i] = line
			return
		}
	}
	d.text = append(d.text, line)
}

// logStats emits the frame statistics at debug level every
// statsLogInterval frames while DebugStats is set.
func (d *Device) logStats() {
	if d.debug&DebugStats == 0 || d.stats.Frame%statsLogInterval != 0 {
		return
	}
	s := d.stats
	Logger().Debug("gfx: frame stats",
		"frame", s.Frame,
		"draws", s.NumDraw,
		"dropped", s.NumDropped,
		"triangles", s.NumTriangles,
		"culled", s.NumCulled,
		"clipped", s.NumClipped,
		"vertices", s.NumVertices,
		"views", s.NumViews,
		"submit", s.SubmitTime)
}

// statsLines formats s for the on-screen overlay.
func statsLines(s Stats, fps, tps float64) []string {
	return []string{
		fmt.Sprintf("frame %d  %dx%d", s.Frame, s.Width, s.Height),
		fmt.Sprintf("FPS %.1f  TPS %.1f", fps, tps),
		fmt.Sprintf("draws %d  dropped %d  views %d", s.NumDraw, s.NumDropped, s.NumViews),
		fmt.Sprintf("tris %d  culled %d  clipped %d", s.NumTriangles, s.NumCulled, s.NumClipped),
		fmt.Sprintf("submit %v", s.SubmitTime),
	}
}

var statsBackground = color.RGBA{0, 0, 0, 160}

// drawDebug draws the debug text and stats overlays of f.
func (b *ebitenBackend) drawDebug(screen *ebiten.Image, f *frame) {
	if f.debug&DebugText != 0 {
		for _, l := range f.text {
			ebitenutil.DebugPrintAt(screen, l.text, l.col*debugCellWidth, l.row*debugCellHeight)
		}
	}
	if f.debug&DebugStats != 0 {
		lines := statsLines(f.stats, ebiten.ActualFPS(), ebiten.ActualTPS())
		h := screen.Bounds().Dy()
		y := h - len(lines)*debugCellHeight
		width := 0
		for _, l := range lines {
			width = max(width, len(l)*debugCellWidth)
		}
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(float64(width+2*debugCellWidth), float64(len(lines)*debugCellHeight))
		op.GeoM.Translate(0, float64(y))
		op.ColorScale.ScaleWithColor(statsBackground)
		screen.DrawImage(b.whitePixel(), &op)
		for i, l := range lines {
			ebitenutil.DebugPrintAt(screen, l, debugCellWidth, y+i*debugCellHeight)
		}
	}
}
