package distance

import "fmt"

// barkTexture maps the sharpness of bark detail to a distance: bark close
// to the camera shows crisp high-frequency texture, distant bark smears
// to a smooth gradient. Sharpness is the Laplacian variance of a patch at
// breast height, normalized by trunk pixel width so thick nearby trunks
// and thin distant ones compare on the same scale. Purely empirical and
// the least reliable estimator.
func barkTexture(in Input, p Params) (Hypothesis, bool) {
	b := in.Bounds
	half := p.BarkPatchSize / 2
	if in.Img == nil || int(b.WidthPx) < 12 {
		return Hypothesis{}, false
	}
	if halfW := int(b.WidthPx) / 2; halfW < half {
		half = halfW
	}

	cx, cy := b.CenterX, b.BreastHeightY
	if cx-half < 1 || cx+half >= in.Img.Width-1 || cy-half < 1 || cy+half >= in.Img.Height-1 {
		return Hypothesis{}, false
	}

	variance := laplacianVariance(in, cx, cy, half)
	sharpness := variance / b.WidthPx

	dist := sharpnessToDistance(sharpness)

	return Hypothesis{
		Method:     MethodBarkTexture,
		DiameterCm: in.Cam.RealSizeCm(b.WidthPx, dist),
		DistanceCm: dist,
		Weight:     p.BarkWeight,
		Confidence: p.BarkConfidence,
		Detail:     fmt.Sprintf("bark sharpness %.2f → assumed %.0f cm away", sharpness, dist),
	}, true
}

// laplacianVariance computes the variance of the 4-neighbor Laplacian on
// luminance over the square patch.
func laplacianVariance(in Input, cx, cy, half int) float64 {
	var sum, sumSq float64
	var n int
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			x, y := cx+dx, cy+dy
			lap := 4*in.Img.Gray(x, y) - in.Img.Gray(x-1, y) - in.Img.Gray(x+1, y) -
				in.Img.Gray(x, y-1) - in.Img.Gray(x, y+1)
			sum += lap
			sumSq += lap * lap
			n++
		}
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

// sharpnessToDistance is the fixed empirical lookup: higher normalized
// sharpness means closer bark.
func sharpnessToDistance(sharpness float64) float64 {
	switch {
	case sharpness > 8.0:
		return 150
	case sharpness > 5.0:
		return 250
	case sharpness > 3.0:
		return 350
	case sharpness > 1.5:
		return 500
	default:
		return 700
	}
}
