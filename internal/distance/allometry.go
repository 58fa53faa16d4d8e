package distance

import (
	"fmt"
	"math"
)

// crownAllometry estimates DBH directly from the crown-to-trunk pixel
// ratio. The crown power law crownM = A × DBH^B implies the pixel ratio
// r = crownPx/trunkPx = 100·A·DBH^(B−1), which inverts to a DBH without
// knowing the distance at all; the distance is then re-derived from the
// pinhole relation for fusion bookkeeping.
func crownAllometry(in Input, p Params) (Hypothesis, bool) {
	b := in.Bounds
	sp := in.Species
	if sp.CrownCoeffA <= 0 || sp.CrownExpB >= 1 || b.WidthPx <= 0 {
		return Hypothesis{}, false
	}

	crownPx := crownWidthPx(in, p)
	if crownPx <= 0 {
		return Hypothesis{}, false
	}

	ratio := crownPx / b.WidthPx
	if ratio < p.CrownMinRatio {
		// Crown barely wider than the trunk: either occluded or not in frame.
		return Hypothesis{}, false
	}

	// ratio = 100·A·DBH^(B−1)  →  DBH = (ratio / (100·A))^(1/(B−1))
	dbh := math.Pow(ratio/(100*sp.CrownCoeffA), 1/(sp.CrownExpB-1))
	if dbh <= 0 || math.IsInf(dbh, 0) || math.IsNaN(dbh) {
		return Hypothesis{}, false
	}

	dist := in.Cam.DistanceCm(dbh, b.WidthPx)

	return Hypothesis{
		Method:     MethodCrownAllometry,
		DiameterCm: dbh,
		DistanceCm: dist,
		Weight:     p.CrownWeight,
		Confidence: p.CrownConfidence,
		Detail: fmt.Sprintf("crown/trunk ratio %.1f (%s allometry) → DBH %.0f cm",
			ratio, sp.Name, dbh),
	}, true
}

// crownWidthPx measures the canopy width at CrownRowFrac down from the
// bounding-box top: the extent of mask pixels above the threshold on that
// row, restricted to the box.
func crownWidthPx(in Input, p Params) float64 {
	if in.Mask == nil {
		return 0
	}
	box := in.Bounds.Box
	if box.Height <= 0 {
		return 0
	}
	y := box.Y + int(float64(box.Height)*p.CrownRowFrac)

	left, right := -1, -1
	for x := box.X; x < box.X+box.Width; x++ {
		if in.Mask.At(x, y) > p.MaskThreshold {
			if left < 0 {
				left = x
			}
			right = x
		}
	}
	if left < 0 {
		return 0
	}
	return float64(right - left + 1)
}
