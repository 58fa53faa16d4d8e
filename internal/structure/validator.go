// Package structure applies geometric sanity checks to a localized trunk:
// a real tree photographed at a sensible distance has a narrow trunk, a
// taller-than-wide silhouette, vertical continuity and a canopy.
package structure

import (
	"fmt"

	"treemeter/internal/raster"
	"treemeter/internal/trunk"
	"treemeter/pkg/colorutil"
)

// Params holds the validation thresholds.
type Params struct {
	MaxTrunkImageFrac    float64 // trunk width vs image width
	MaxTrunkImageFracSem float64 // relaxed limit when a semantic mask ran
	MaxTrunkBoxFrac      float64 // trunk width vs bounding box width
	MinAspectRatio       float64 // box height / width
	ContinuityTopFrac    float64 // scanned row span for vertical continuity
	ContinuityBottomFrac float64
	ContinuityRowStep    int
	ContinuityPixelFrac  float64 // trunk-colored pixels marking a row as trunk
	ContinuityRunFrac    float64 // required longest run over scanned rows
	MinCanopyGreenFrac   float64 // green fraction in the canopy region
	CanopyTopFrac        float64 // top region of the box checked for canopy
	MaxBoxCoverage       float64 // box fraction of both image dimensions
}

// DefaultParams returns the tuned validation defaults.
func DefaultParams() Params {
	return Params{
		MaxTrunkImageFrac:    0.30,
		MaxTrunkImageFracSem: 0.50,
		MaxTrunkBoxFrac:      0.60,
		MinAspectRatio:       0.60,
		ContinuityTopFrac:    0.30,
		ContinuityBottomFrac: 0.85,
		ContinuityRowStep:    3,
		ContinuityPixelFrac:  0.30,
		ContinuityRunFrac:    0.35,
		MinCanopyGreenFrac:   0.05,
		CanopyTopFrac:        0.35,
		MaxBoxCoverage:       0.85,
	}
}

// Check is the result of one structural test.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Validate runs the structural checks. When the segmentation mask came
// from the semantic oracle, only the relaxed trunk-width check applies:
// the oracle already ruled out non-tree content. The first failing check
// is returned; a nil error means all checks passed.
func Validate(img *raster.Image, b *trunk.Bounds, semantic bool, p Params, tp trunk.Params) ([]Check, error) {
	var checks []Check

	add := func(c Check) error {
		checks = append(checks, c)
		if !c.OK {
			return fmt.Errorf("structural rejection: %s", c.Reason)
		}
		return nil
	}

	if semantic {
		if err := add(checkTrunkWidth(img, b, p.MaxTrunkImageFracSem)); err != nil {
			return checks, err
		}
		return checks, nil
	}

	if err := add(checkTrunkWidth(img, b, p.MaxTrunkImageFrac)); err != nil {
		return checks, err
	}
	if err := add(checkTrunkVsBox(b, p)); err != nil {
		return checks, err
	}
	if err := add(checkAspect(b, p)); err != nil {
		return checks, err
	}
	if err := add(checkContinuity(img, b, p, tp)); err != nil {
		return checks, err
	}
	if err := add(checkCanopy(img, b, p)); err != nil {
		return checks, err
	}
	if err := add(checkCoverage(img, b, p)); err != nil {
		return checks, err
	}
	return checks, nil
}

func checkTrunkWidth(img *raster.Image, b *trunk.Bounds, maxFrac float64) Check {
	frac := b.WidthPx / float64(img.Width)
	if frac > maxFrac {
		return Check{Name: "trunk-width", Reason: fmt.Sprintf(
			"trunk fills %.0f%% of the image width (max %.0f%%): stand further back", frac*100, maxFrac*100)}
	}
	return Check{Name: "trunk-width", OK: true}
}

func checkTrunkVsBox(b *trunk.Bounds, p Params) Check {
	if b.Box.Width <= 0 {
		return Check{Name: "trunk-vs-box", Reason: "empty tree bounding box"}
	}
	frac := b.WidthPx / float64(b.Box.Width)
	if frac > p.MaxTrunkBoxFrac {
		return Check{Name: "trunk-vs-box", Reason: fmt.Sprintf(
			"trunk is %.0f%% of the tree region width (max %.0f%%): no visible crown", frac*100, p.MaxTrunkBoxFrac*100)}
	}
	return Check{Name: "trunk-vs-box", OK: true}
}

func checkAspect(b *trunk.Bounds, p Params) Check {
	if b.Box.Width <= 0 {
		return Check{Name: "aspect", Reason: "empty tree bounding box"}
	}
	aspect := float64(b.Box.Height) / float64(b.Box.Width)
	if aspect < p.MinAspectRatio {
		return Check{Name: "aspect", Reason: fmt.Sprintf(
			"tree region is wider than tall (aspect %.2f, min %.2f)", aspect, p.MinAspectRatio)}
	}
	return Check{Name: "aspect", OK: true}
}

// checkContinuity re-scans the trunk column region: sampling rows in steps,
// a row counts as trunk-colored when more than ContinuityPixelFrac of its
// sampled pixels match the tight trunk windows. The longest consecutive
// run of trunk rows must cover ContinuityRunFrac of the scanned rows.
func checkContinuity(img *raster.Image, b *trunk.Bounds, p Params, tp trunk.Params) Check {
	y0 := int(float64(img.Height) * p.ContinuityTopFrac)
	y1 := int(float64(img.Height) * p.ContinuityBottomFrac)

	left, right := b.LeftEdge, b.RightEdge
	if right <= left {
		left = b.CenterX - 2
		right = b.CenterX + 2
	}

	scanned, longest, current := 0, 0, 0
	for y := y0; y < y1; y += p.ContinuityRowStep {
		scanned++

		matched, sampled := 0, 0
		for x := left; x <= right; x += 2 {
			if x < 0 || x >= img.Width {
				continue
			}
			sampled++
			r, g, bl, _ := img.RGBA(x, y)
			if trunk.TrunkColored(r, g, bl, tp) {
				matched++
			}
		}
		if sampled > 0 && float64(matched)/float64(sampled) > p.ContinuityPixelFrac {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}

	if scanned == 0 || float64(longest)/float64(scanned) < p.ContinuityRunFrac {
		return Check{Name: "continuity", Reason: fmt.Sprintf(
			"trunk is not vertically continuous (%d of %d scanned rows)", longest, scanned)}
	}
	return Check{Name: "continuity", OK: true}
}

// checkCanopy requires green pixels in the top region of the tree box.
func checkCanopy(img *raster.Image, b *trunk.Bounds, p Params) Check {
	box := b.Box
	if box.Height <= 0 {
		return Check{Name: "canopy", Reason: "empty tree bounding box"}
	}
	topEnd := box.Y + int(float64(box.Height)*p.CanopyTopFrac)

	green, total := 0, 0
	for y := box.Y; y < topEnd && y < img.Height; y++ {
		for x := box.X; x < box.X+box.Width && x < img.Width; x++ {
			if x < 0 || y < 0 {
				continue
			}
			total++
			r, g, bl, _ := img.RGBA(x, y)
			h, s, v := colorutil.RGBToHSV(r, g, bl)
			if h >= 40 && h <= 170 && s > 15 && v > 20 {
				green++
			}
		}
	}
	if total == 0 || float64(green)/float64(total) < p.MinCanopyGreenFrac {
		return Check{Name: "canopy", Reason: "no canopy above the trunk: is the whole tree in frame?"}
	}
	return Check{Name: "canopy", OK: true}
}

// checkCoverage rejects when the tree box fills nearly the whole frame in
// both dimensions — the photographer is standing too close to measure.
func checkCoverage(img *raster.Image, b *trunk.Bounds, p Params) Check {
	wFrac := float64(b.Box.Width) / float64(img.Width)
	hFrac := float64(b.Box.Height) / float64(img.Height)
	if wFrac > p.MaxBoxCoverage && hFrac > p.MaxBoxCoverage {
		return Check{Name: "coverage", Reason: "the tree fills the whole frame: step back so the canopy and trunk base are visible"}
	}
	return Check{Name: "coverage", OK: true}
}
