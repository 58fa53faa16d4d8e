package distance

import "fmt"

// groundPlane estimates distance from where the trunk meets the ground.
// For a handheld camera at breast height, the ground point of an object
// d centimeters away projects below the image center by
// focalPx × cameraHeight / d pixels; inverting that gives the distance.
// Only valid when the trunk base is visibly below the image center.
func groundPlane(in Input, p Params) (Hypothesis, bool) {
	baseRow := float64(in.Bounds.Box.Y + in.Bounds.Box.Height)
	centerRow := float64(in.Cam.Height) / 2

	drop := baseRow - centerRow
	if drop < 10 {
		// Base at or above center: the ground contact is not in frame.
		return Hypothesis{}, false
	}

	dist := p.CameraHeightCm * in.Cam.FocalPx / drop
	if dist <= 0 {
		return Hypothesis{}, false
	}

	return Hypothesis{
		Method:     MethodGroundPlane,
		DiameterCm: in.Cam.RealSizeCm(in.Bounds.WidthPx, dist),
		DistanceCm: dist,
		Weight:     p.GroundWeight,
		Confidence: p.GroundConfidence,
		Detail:     fmt.Sprintf("trunk base %.0f px below center → %.0f cm away", drop, dist),
	}, true
}
