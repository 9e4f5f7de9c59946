package sample

import (
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Preview upscales the sample by scale without smoothing, so every cell stays
// a crisp square.
func Preview(s Sample, scale int) image.Image {
	if scale < 1 {
		scale = 1
	}
	side := uint(Side * scale)
	return resize.Resize(side, side, s.Image(), resize.NearestNeighbor)
}

// SavePreview writes Preview(s, scale) as a PNG file.
func SavePreview(s Sample, scale int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "can't create preview")
	}
	defer f.Close()

	if err := png.Encode(f, Preview(s, scale)); err != nil {
		return errors.Wrap(err, "can't encode preview")
	}
	return nil
}

// LoadImage decodes a PNG or JPEG file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't decode %s", path)
	}
	return img, nil
}
