package pipeline

import (
	"fmt"
	"math"

	"treemeter/internal/camera"
	"treemeter/internal/species"
	"treemeter/pkg/geometry"
)

// Manual-mode defaults when the user gives no distance and the image
// carries no usable metadata.
const (
	DefaultManualDistanceCm = 250
	manualMinSeparationPx   = 10
	manualConfidence        = 70
)

// ManualResult is the outcome of a user-tapped measurement.
type ManualResult struct {
	DiameterCm      float64            `json:"diameter_cm"`
	CircumferenceCm float64            `json:"circumference_cm"`
	Confidence      float64            `json:"confidence"`
	WidthPx         float64            `json:"width_px"`
	DistanceCm      float64            `json:"distance_cm"`
	Species         species.Descriptor `json:"species"`
	Adjusted        bool               `json:"adjusted"` // species clamp moved the estimate
}

// MeasureManual converts two user-tapped trunk edge points into a
// circumference using the pinhole model. distanceCm <= 0 selects the
// default subject distance. The points must be at least a few pixels
// apart to carry any signal.
func MeasureManual(imgW, imgH int, left, right geometry.PointInt, distanceCm float64, opts Options) (*ManualResult, error) {
	if imgW <= 0 || imgH <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrManualInput, imgW, imgH)
	}

	widthPx := math.Hypot(float64(right.X-left.X), float64(right.Y-left.Y))
	if widthPx < manualMinSeparationPx {
		return nil, fmt.Errorf("%w: points are only %.1f px apart", ErrManualInput, widthPx)
	}
	if distanceCm < 0 {
		return nil, fmt.Errorf("%w: negative distance", ErrManualInput)
	}
	if distanceCm == 0 {
		distanceCm = DefaultManualDistanceCm
	}

	cam := opts.Camera
	if cam == nil {
		m := camera.Default(imgW, imgH)
		if opts.Meta != nil {
			m = camera.FromMetadata(imgW, imgH, *opts.Meta)
		}
		cam = &m
	}

	diameter := cam.RealSizeCm(widthPx, distanceCm)
	sp := species.Lookup(opts.Species)

	adjusted := false
	if species.Known(opts.Species) {
		if d := sp.SoftClamp(diameter); d != diameter {
			diameter = d
			adjusted = true
		}
	}

	if c := math.Pi * diameter; c < MinCircumferenceCm || c > MaxCircumferenceCm {
		return nil, fmt.Errorf("%w: %.0f cm", ErrImplausibleResult, c)
	}

	return &ManualResult{
		DiameterCm:      diameter,
		CircumferenceCm: math.Pi * diameter,
		Confidence:      manualConfidence,
		WidthPx:         widthPx,
		DistanceCm:      distanceCm,
		Species:         sp,
		Adjusted:        adjusted,
	}, nil
}
