package face

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrayscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 13, 12))
	img.Set(10, 10, color.White)

	gray := Grayscale(img)

	assert.Equal(t, image.Rect(0, 0, 3, 2), gray.Bounds())
	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(1, 1).Y)
}

func TestGrayscalePassesThroughGray(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 2))
	assert.Same(t, g, Grayscale(g))
}

func TestDetectorFunc(t *testing.T) {
	var got Params
	d := DetectorFunc(func(_ *image.Gray, p Params) ([]image.Rectangle, error) {
		got = p
		return []image.Rectangle{image.Rect(0, 0, 1, 1)}, nil
	})

	faces, err := d.Detect(image.NewGray(image.Rect(0, 0, 1, 1)), DefaultParams())

	assert.NoError(t, err)
	assert.Len(t, faces, 1)
	assert.Equal(t, Params{ScaleFactor: 1.3, MinNeighbors: 5}, got)
}
