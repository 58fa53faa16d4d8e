package distance

import (
	"fmt"

	"treemeter/internal/oracle"
)

// referenceHypotheses derives one hypothesis per detected object of
// roughly known size: the object's pixel size fixes the distance, the
// distance fixes the trunk diameter. A user-flagged manual reference
// (card, sheet of paper) rides on the strongest non-vegetation detection.
func referenceHypotheses(in Input, p Params) []Hypothesis {
	var out []Hypothesis

	for _, det := range in.Detections {
		ref, ok := p.References[det.Class]
		if !ok {
			continue
		}
		px := float64(det.Box.Width)
		if ref.UseHeight {
			px = float64(det.Box.Height)
		}
		if px < 4 {
			continue
		}

		dist := in.Cam.DistanceCm(ref.SizeCm, px)
		if dist <= 0 {
			continue
		}
		out = append(out, Hypothesis{
			Method:     MethodReference,
			DiameterCm: in.Cam.RealSizeCm(in.Bounds.WidthPx, dist),
			DistanceCm: dist,
			Weight:     ref.Weight * det.Score,
			Confidence: det.Score * 100,
			Detail:     fmt.Sprintf("%s (%.0f cm) spans %.0f px → %.0f cm away", det.Class, ref.SizeCm, px, dist),
		})
	}

	if h, ok := manualReference(in, p); ok {
		out = append(out, h)
	}
	return out
}

// manualReference uses the user-flagged known-width object. The strongest
// detection that is not the tree itself supplies the pixel extent.
func manualReference(in Input, p Params) (Hypothesis, bool) {
	if in.ManualRef == nil || in.ManualRef.KnownWidthCm <= 0 {
		return Hypothesis{}, false
	}

	var best *oracle.Detection
	for i, det := range in.Detections {
		if det.Box.Width < 4 {
			continue
		}
		if best == nil || det.Score > best.Score {
			best = &in.Detections[i]
		}
	}
	if best == nil {
		return Hypothesis{}, false
	}

	dist := in.Cam.DistanceCm(in.ManualRef.KnownWidthCm, float64(best.Box.Width))
	if dist <= 0 {
		return Hypothesis{}, false
	}
	return Hypothesis{
		Method:     MethodReference,
		DiameterCm: in.Cam.RealSizeCm(in.Bounds.WidthPx, dist),
		DistanceCm: dist,
		Weight:     p.ManualRefWeight,
		Confidence: p.ManualRefConfidence,
		Detail:     fmt.Sprintf("manual %s reference (%.1f cm)", in.ManualRef.Type, in.ManualRef.KnownWidthCm),
	}, true
}
