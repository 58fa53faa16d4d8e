package distance

import "fmt"

// fovFallback assumes a fixed distance chosen from how much of the frame
// the tree fills. It is the safety net: always present, lowest weight, so
// a run with no working smart estimator still produces a low-confidence
// answer instead of nothing.
func fovFallback(in Input, p Params) Hypothesis {
	fill := float64(in.Bounds.Box.Height) / float64(in.Cam.Height)
	dist := fillToDistance(fill)

	return Hypothesis{
		Method:     MethodFOVFallback,
		DiameterCm: in.Cam.RealSizeCm(in.Bounds.WidthPx, dist),
		DistanceCm: dist,
		Weight:     p.FOVWeight,
		Confidence: p.FOVConfidence,
		Detail:     fmt.Sprintf("tree fills %.0f%% of frame height → assumed %.0f cm away", fill*100, dist),
	}
}

// fillToDistance is the fixed distance tier table.
func fillToDistance(fill float64) float64 {
	switch {
	case fill >= 0.85:
		return 180
	case fill >= 0.60:
		return 250
	case fill >= 0.35:
		return 350
	default:
		return 500
	}
}
