// Package sample turns a drawing raster into the normalized 28x28 vector the
// classifier is trained on.
package sample

import (
	"image"
	"math"
)

const (
	// Side is the width and height of the downsampled grid
	Side = 28
	// Size is the number of values in a Sample
	Size = Side * Side
)

// Sample is a row-major 28x28 inverted grayscale image. Every value is in
// [0,1] and rounded to 4 decimals: 0 is background, 1 is full ink.
type Sample [Size]float64

// FromImage downsamples img to 28x28 and normalizes it. The result only
// depends on the pixels of img, so an unchanged raster always yields the same
// sample.
func FromImage(img image.Image) Sample {
	small := Downsample(img, Side, Side)

	var s Sample
	for i := 0; i < Size; i++ {
		p := small.Pix[i*4 : i*4+4 : i*4+4]
		gray := Luminosity(p[0], p[1], p[2])
		s[i] = normalize(1 - gray/255)
	}
	return s
}

// Luminosity is the weighted grayscale value of an 8-bit RGB triple, in [0,255].
func Luminosity(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

func normalize(v float64) float64 {
	v = roundFloat(v, 4)
	if v <= 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// roundFloat rounds val to the given number of decimal places
func roundFloat(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}

// Slice returns the values as a slice, for wire encoding.
func (s Sample) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, s[:])
	return out
}

// FromSlice copies values into a Sample. ok is false when the length is not Size.
func FromSlice(values []float64) (s Sample, ok bool) {
	if len(values) != Size {
		return s, false
	}
	copy(s[:], values)
	return s, true
}

// At returns the value at column x, row y.
func (s Sample) At(x, y int) float64 {
	return s[y*Side+x]
}

// IsBlank reports whether no cell carries any ink.
func (s Sample) IsBlank() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// Image renders the sample back as a 28x28 gray image, ink black on white.
func (s Sample) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Side, Side))
	for i, v := range s {
		img.Pix[i] = uint8(math.Round((1 - v) * 255))
	}
	return img
}

// Ink is the mean value over all cells.
func (s Sample) Ink() float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / Size
}
