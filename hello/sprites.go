// Package hello is the sprite grid demo: a square grid of textured quads,
// each rotating about its own center, drawn with one dynamic vertex buffer,
// one shared index buffer and a single draw call per frame.
package hello

import (
	"image"
	"math"
)

const (
	// DefaultGrid is the default number of sprites per row and column.
	DefaultGrid = 10
	// RendererVertexMax is the capacity of the dynamic vertex buffer.
	RendererVertexMax = 65536
	// DefaultAngleStep is the rotation added to every sprite per frame, in radians.
	DefaultAngleStep = 0.05
)

// Atlas geometry, in texels.
const (
	AtlasSize   = 2048
	CellSize    = 128
	CellMargin  = 32 // left and top margin of the first cell
	CellPitch   = 192
	CellsRow0   = 10
	CellsRow1   = 8
	NumCells    = CellsRow0 + CellsRow1
	RowPitch    = 192
	spriteScale = 7.5 // sprite width at grid 1, in cells
)

// Transform is the placement of one sprite.
type Transform struct {
	Position [2]float32
	Angle    float32 // radians
}

// TextureCoord is a normalized atlas coordinate.
type TextureCoord struct {
	UV [2]float32
}

// Vertex is one quad corner as uploaded to the vertex buffer: Position then
// TexCoord0, both two floats.
type Vertex struct {
	Position [2]float32
	TexCoord [2]float32
}

// CellRect returns the texel rectangle of atlas cell i.
func CellRect(i int) image.Rectangle {
	row, k := 0, i
	if i >= CellsRow0 {
		row, k = 1, i-CellsRow0
	}
	x := CellMargin + k*CellPitch
	y := CellMargin + row*RowPitch
	return image.Rect(x, y, x+CellSize, y+CellSize)
}

// BuildUVTable returns the four corner coordinates of every atlas cell,
// ordered (u0,v0), (u0,v1), (u1,v1), (u1,v0).
func BuildUVTable() [NumCells][4]TextureCoord {
	var table [NumCells][4]TextureCoord
	for i := range table {
		r := CellRect(i)
		u0 := float32(r.Min.X) / AtlasSize
		v0 := float32(r.Min.Y) / AtlasSize
		u1 := float32(r.Max.X) / AtlasSize
		v1 := float32(r.Max.Y) / AtlasSize
		table[i] = [4]TextureCoord{
			{UV: [2]float32{u0, v0}},
			{UV: [2]float32{u0, v1}},
			{UV: [2]float32{u1, v1}},
			{UV: [2]float32{u1, v0}},
		}
	}
	return table
}

// QuadIndices returns the index list for maxQuads quads, two triangles
// each: 0,1,2 and 2,3,0 relative to the quad's first vertex.
func QuadIndices(maxQuads int) []uint16 {
	indices := make([]uint16, 0, maxQuads*6)
	for q := 0; q < maxQuads; q++ {
		b := uint16(q * 4)
		indices = append(indices, b, b+1, b+2, b+2, b+3, b)
	}
	return indices
}

// Layout places grid*grid sprites on a width x height target. Sprite
// x + y*grid sits at ((x+1)*width/(grid+1), (y+1)*height/(grid+1)).
func Layout(grid, width, height int) []Transform {
	transforms := make([]Transform, grid*grid)
	LayoutInto(transforms, grid, width, height)
	return transforms
}

// LayoutInto repositions transforms in place, keeping their angles.
func LayoutInto(transforms []Transform, grid, width, height int) {
	xSpace := float32(width) / float32(grid+1)
	ySpace := float32(height) / float32(grid+1)
	for y := 0; y < grid; y++ {
		for x := 0; x < grid; x++ {
			t := &transforms[x+y*grid]
			t.Position = [2]float32{xSpace * float32(x+1), ySpace * float32(y+1)}
		}
	}
}

// SpriteWidth is the edge length of a sprite for the given grid size.
func SpriteWidth(grid int) float32 {
	return CellSize * spriteScale / float32(grid)
}

// RotateQuad writes the corner positions of a w-wide sprite at t into out,
// rotated by t.Angle about t.Position. Texture coordinates are left alone.
func RotateQuad(out []Vertex, t Transform, w float32) {
	hw := w / 2
	x0 := -hw
	x1 := w - hw
	s64, c64 := math.Sincos(float64(t.Angle))
	s, c := float32(s64), float32(c64)
	px, py := t.Position[0], t.Position[1]

	out[0].Position = [2]float32{c*x0 - s*x0 + px, s*x0 + c*x0 + py}
	out[1].Position = [2]float32{c*x0 - s*x1 + px, s*x0 + c*x1 + py}
	out[2].Position = [2]float32{c*x1 - s*x1 + px, s*x1 + c*x1 + py}
	out[3].Position = [2]float32{c*x1 - s*x0 + px, s*x1 + c*x0 + py}
}
