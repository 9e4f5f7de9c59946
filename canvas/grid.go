package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

const (
	// GridCells is the number of logical cells per axis, one per sample pixel
	GridCells = 28
	// GridMajor is the spacing, in cells, of the heavier guide lines
	GridMajor = 7
)

var (
	minorLine = color.NRGBA{0, 0, 0, 20} // ~8% black
	majorLine = color.NRGBA{0, 0, 0, 41} // ~16% black
)

// DrawGrid paints the guide lines over dst: a faint line at every cell
// boundary and a heavier one every GridMajor cells.
func DrawGrid(dst *image.RGBA, dpr float64) {
	b := dst.Bounds()
	lineWidth := int(math.Max(1, math.Round(dpr)))
	stepX := float64(b.Dx()) / GridCells
	stepY := float64(b.Dy()) / GridCells

	for _, pass := range []struct {
		every int
		color color.NRGBA
	}{
		{1, minorLine},
		{GridMajor, majorLine},
	} {
		src := image.NewUniform(pass.color)
		for i := pass.every; i < GridCells; i += pass.every {
			x := b.Min.X + int(math.Round(float64(i)*stepX))
			draw.Draw(dst, image.Rect(x, b.Min.Y, x+lineWidth, b.Max.Y).Intersect(b), src, image.Point{}, draw.Over)

			y := b.Min.Y + int(math.Round(float64(i)*stepY))
			draw.Draw(dst, image.Rect(b.Min.X, y, b.Max.X, y+lineWidth).Intersect(b), src, image.Point{}, draw.Over)
		}
	}
}
