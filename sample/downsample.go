package sample

import (
	"image"
	"math"
)

// tap is the share of one source row or column inside one output cell
type tap struct {
	index  int
	weight float64
}

// boxTaps splits the source range [0, src) into dst equal cells and lists,
// for each cell, the source indices it covers with their fractional coverage.
func boxTaps(src, dst int) [][]tap {
	scale := float64(src) / float64(dst)
	taps := make([][]tap, dst)
	for o := 0; o < dst; o++ {
		lo := float64(o) * scale
		hi := float64(o+1) * scale
		first := int(math.Floor(lo))
		last := int(math.Ceil(hi))
		if last > src {
			last = src
		}
		for i := first; i < last; i++ {
			w := math.Min(hi, float64(i+1)) - math.Max(lo, float64(i))
			if w > 0 {
				taps[o] = append(taps[o], tap{index: i, weight: w})
			}
		}
	}
	return taps
}

// Downsample resizes img to w x h with area averaging: every output pixel is
// the mean color of the source area it covers. Transparent source pixels are
// composited over white, and channels are rounded to 8 bits.
func Downsample(img image.Image, w, h int) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if b.Empty() {
		return out
	}

	cols := boxTaps(b.Dx(), w)
	rows := boxTaps(b.Dy(), h)

	// horizontal pass, one source row at a time
	tmp := make([][3]float64, b.Dy()*w)
	for y := 0; y < b.Dy(); y++ {
		for ox, taps := range cols {
			var acc [3]float64
			var total float64
			for _, t := range taps {
				r, g, bl := opaque(img, b.Min.X+t.index, b.Min.Y+y)
				acc[0] += r * t.weight
				acc[1] += g * t.weight
				acc[2] += bl * t.weight
				total += t.weight
			}
			for c := range acc {
				tmp[y*w+ox][c] = acc[c] / total
			}
		}
	}

	for oy, taps := range rows {
		for ox := 0; ox < w; ox++ {
			var acc [3]float64
			var total float64
			for _, t := range taps {
				px := tmp[t.index*w+ox]
				acc[0] += px[0] * t.weight
				acc[1] += px[1] * t.weight
				acc[2] += px[2] * t.weight
				total += t.weight
			}
			i := out.PixOffset(ox, oy)
			out.Pix[i+0] = to8(acc[0] / total)
			out.Pix[i+1] = to8(acc[1] / total)
			out.Pix[i+2] = to8(acc[2] / total)
			out.Pix[i+3] = 0xff
		}
	}

	return out
}

// opaque returns the pixel at x, y composited over white, channels in [0,255].
func opaque(img image.Image, x, y int) (r, g, b float64) {
	if rgba, ok := img.(*image.RGBA); ok {
		i := rgba.PixOffset(x, y)
		p := rgba.Pix[i : i+4 : i+4]
		bg := float64(0xff - p[3])
		return float64(p[0]) + bg, float64(p[1]) + bg, float64(p[2]) + bg
	}

	cr, cg, cb, ca := img.At(x, y).RGBA()
	bg := float64(0xffff-ca) / 257
	return float64(cr)/257 + bg, float64(cg)/257 + bg, float64(cb)/257 + bg
}

func to8(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
