// Package face holds the face-detection collaborator contract.
package face

import (
	"image"
	"image/draw"
)

// Params are the detector thresholds. ScaleFactor trades sensitivity for
// speed, MinNeighbors suppresses false positives.
type Params struct {
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int
}

func DefaultParams() Params {
	return Params{ScaleFactor: 1.3, MinNeighbors: 5}
}

type Detector interface {
	Detect(gray *image.Gray, p Params) ([]image.Rectangle, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(gray *image.Gray, p Params) ([]image.Rectangle, error)

func (f DetectorFunc) Detect(gray *image.Gray, p Params) ([]image.Rectangle, error) {
	return f(gray, p)
}

// Grayscale converts any raster to 8-bit luma.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
