package distance

import "fmt"

// speciesHeight backs out the distance from the species' average mature
// height. Only part of the tree is usually in frame, so a visible-fraction
// heuristic scales the assumed height by how much of the image the tree
// fills: a tree that barely fits is mostly visible, a distant one shows
// nearly all of itself.
func speciesHeight(in Input, p Params) (Hypothesis, bool) {
	if !in.SpeciesKnown || in.Species.AvgHeightM <= 0 {
		return Hypothesis{}, false
	}

	treeHeightPx := float64(in.Bounds.Box.Height)
	fill := treeHeightPx / float64(in.Cam.Height)
	if fill < p.SpeciesMinFillFrac || fill > p.SpeciesMaxFillFrac {
		return Hypothesis{}, false
	}

	visibleFrac := visibleFraction(fill)
	visibleHeightCm := in.Species.AvgHeightM * 100 * visibleFrac

	dist := visibleHeightCm * in.Cam.FocalPx / treeHeightPx
	if dist <= 0 {
		return Hypothesis{}, false
	}

	return Hypothesis{
		Method:     MethodSpeciesHeight,
		DiameterCm: in.Cam.RealSizeCm(in.Bounds.WidthPx, dist),
		DistanceCm: dist,
		Weight:     p.SpeciesWeight,
		Confidence: p.SpeciesConfidence,
		Detail: fmt.Sprintf("%s avg height %.0f m, %.0f%% visible → %.0f cm away",
			in.Species.Name, in.Species.AvgHeightM, visibleFrac*100, dist),
	}, true
}

// visibleFraction maps the image fill ratio to an assumed fraction of the
// tree's full height that is in frame.
func visibleFraction(fill float64) float64 {
	switch {
	case fill > 0.90:
		return 0.95
	case fill > 0.70:
		return 0.85
	case fill > 0.50:
		return 0.75
	case fill > 0.30:
		return 0.60
	default:
		return 0.50
	}
}
