// Package oracle defines the contracts for the external ML models the
// pipeline consumes: a whole-image object detector and a per-pixel semantic
// segmenter. The core never instantiates a model itself; adapters live in
// subpackages and any conforming implementation can be substituted.
package oracle

import (
	"context"
	"image"

	"treemeter/pkg/geometry"
)

// Detection floor and cap applied by every adapter.
const (
	MinConfidence = 0.25
	TopK          = 20
)

// Detection is one detected object.
type Detection struct {
	Class string           `json:"class"`
	Score float64          `json:"score"` // 0-1
	Box   geometry.RectInt `json:"box"`
}

// Detector is the object-detection oracle contract.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// SegmentMap is a per-pixel class map produced by a semantic segmenter.
// Class IDs follow the ADE20K labeling used by DeepLab-style models.
type SegmentMap struct {
	Classes []int // row-major, len = Width*Height
	Width   int
	Height  int
}

// At returns the class ID at (x, y); out-of-bounds reads return 0 (background).
func (s *SegmentMap) At(x, y int) int {
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
		return 0
	}
	return s.Classes[y*s.Width+x]
}

// Segmenter is the semantic-segmentation oracle contract.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image) (*SegmentMap, error)
}

// VegetationFraction returns the fraction of pixels labeled as a
// vegetation class.
func (s *SegmentMap) VegetationFraction() float64 {
	if len(s.Classes) == 0 {
		return 0
	}
	count := 0
	for _, c := range s.Classes {
		if VegetationClasses[c] {
			count++
		}
	}
	return float64(count) / float64(len(s.Classes))
}
