package canvas

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// pen rasterizes stroke segments onto one raster generation.
type pen struct {
	stroker *rasterx.Stroker
}

func newPen(dst *image.RGBA) *pen {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	return &pen{stroker: rasterx.NewStroker(b.Dx(), b.Dy(), scanner)}
}

// segment draws a round-capped line from a to b. Consecutive segments share
// their end points, so the caps also make the joins round.
func (p *pen) segment(a, b Point, width float64, c color.Color) {
	if a == b {
		return
	}

	p.stroker.Clear()
	p.stroker.SetStroke(toFixed(width), toFixed(4*width),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round)
	p.stroker.SetColor(c)

	p.stroker.Start(toFixedPoint(a))
	p.stroker.Line(toFixedPoint(b))
	p.stroker.Stop(false)
	p.stroker.Draw()
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func toFixedPoint(p Point) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed(p.X), Y: toFixed(p.Y)}
}
