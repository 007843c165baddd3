// Genatlas writes the sprite atlas used by the helloworld example: a
// 2048x2048 PNG with 18 colored cells at the positions the demo samples,
// each labelled with its index.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/phanxgames/gfx/hello"
)

// cellColors are picked to stay distinct when the cells spin.
var cellColors = []color.RGBA{
	colornames.Crimson, colornames.Darkorange, colornames.Gold, colornames.Yellowgreen,
	colornames.Seagreen, colornames.Lightseagreen, colornames.Deepskyblue, colornames.Royalblue,
	colornames.Slateblue, colornames.Mediumorchid, colornames.Hotpink, colornames.Sienna,
	colornames.Olivedrab, colornames.Teal, colornames.Steelblue, colornames.Indigo,
	colornames.Firebrick, colornames.Goldenrod,
}

const stripe = 12 // height of the white band marking each cell's top edge

func main() {
	out := flag.String("o", "atlas.png", "output file")
	flag.Parse()

	img := image.NewNRGBA(image.Rect(0, 0, hello.AtlasSize, hello.AtlasSize))
	for i := 0; i < hello.NumCells; i++ {
		drawCell(img, i)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		log.Fatalf("encode %s: %v", *out, err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", *out)
}

func drawCell(img draw.Image, i int) {
	r := hello.CellRect(i)
	draw.Draw(img, r, image.NewUniform(cellColors[i%len(cellColors)]), image.Point{}, draw.Src)

	band := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+stripe)
	draw.Draw(img, band, image.White, image.Point{}, draw.Src)

	label := fmt.Sprint(i)
	face := basicfont.Face7x13
	d := font.Drawer{Dst: img, Src: image.White, Face: face}
	w := d.MeasureString(label).Round()
	x := r.Min.X + (r.Dx()-w)/2
	y := r.Min.Y + (r.Dy()+face.Ascent)/2
	d.Dot = fixed.P(x, y)
	d.DrawString(label)
}
