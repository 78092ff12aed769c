// Package cascade implements face.Detector on top of an OpenCV Haar cascade.
package cascade

import (
	"fmt"
	"image"
	"sync"

	"github.com/steveyiyo/moodlens-backend/internal/core/face"

	"gocv.io/x/gocv"
)

type Detector struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

// Load reads the cascade XML (haarcascade_frontalface_default.xml).
func Load(path string) (*Detector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load face cascade classifier from %s", path)
	}
	return &Detector{classifier: classifier}, nil
}

// Detect runs detectMultiScale. The OpenCV classifier is not safe for
// concurrent use, so calls are serialized.
func (d *Detector) Detect(gray *image.Gray, p face.Params) ([]image.Rectangle, error) {
	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("gray image to mat: %w", err)
	}
	defer mat.Close()

	minSize := image.Point{}
	if p.MinSize > 0 {
		minSize = image.Point{X: p.MinSize, Y: p.MinSize}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.DetectMultiScaleWithParams(mat, p.ScaleFactor, p.MinNeighbors, 0, minSize, image.Point{}), nil
}

func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}
