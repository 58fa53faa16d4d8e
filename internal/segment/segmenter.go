// Package segment turns a photograph into a per-pixel tree-probability
// mask, using either an external semantic segmentation map or per-pixel
// color rules, and validates that the frame plausibly contains a tree at all.
package segment

import (
	"treemeter/internal/oracle"
	"treemeter/internal/raster"
	"treemeter/pkg/colorutil"
)

// Stats summarizes the pixel categories found while building a color mask.
type Stats struct {
	GreenFraction float64 // foliage-colored pixels
	BrownFraction float64 // trunk/bark-colored pixels
	GrayFraction  float64 // near-achromatic pixels
}

// Result is the segmentation output for one run.
type Result struct {
	Mask     *raster.Mask
	Semantic bool // mask came from the semantic oracle
	Stats    Stats
}

// FromSemantic converts an oracle class map into a binary tree mask and
// closes small gaps with a light dilation. Returns nil if the map's tree
// fraction is below the semantic threshold — callers then fall back to
// color rules.
func FromSemantic(seg *oracle.SegmentMap, p Params) *raster.Mask {
	if seg == nil || seg.VegetationFraction() < p.SemanticMinTreeFraction {
		return nil
	}

	mask := raster.NewMask(seg.Width, seg.Height)
	for y := 0; y < seg.Height; y++ {
		for x := 0; x < seg.Width; x++ {
			if oracle.VegetationClasses[seg.At(x, y)] {
				mask.Set(x, y, 1.0)
			}
		}
	}
	return mask.Dilate(p.SemanticDilateRadius)
}

// ColorRuleMask scores every pixel against the color rule table and
// returns the probability mask plus frame-level color statistics.
func ColorRuleMask(img *raster.Image, p Params) (*raster.Mask, Stats) {
	mask := raster.NewMask(img.Width, img.Height)

	var green, brown, gray int
	total := img.Width * img.Height

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b, _ := img.RGBA(x, y)
			h, s, v := colorutil.RGBToHSV(r, g, b)
			l, la, lb := colorutil.RGBToLab(r, g, b)

			var best float64
			var bestName string
			for _, rule := range p.Rules {
				if score := rule.Score(h, s, v, l, la, lb); score > best {
					best = score
					bestName = rule.Name
				}
			}
			mask.Set(x, y, best)

			switch bestName {
			case "green-foliage":
				green++
			case "brown-trunk", "dark-bark", "light-bark":
				brown++
			}
			if isGrayPixel(r, g, b) {
				gray++
			}
		}
	}

	stats := Stats{
		GreenFraction: float64(green) / float64(total),
		BrownFraction: float64(brown) / float64(total),
		GrayFraction:  float64(gray) / float64(total),
	}
	return mask, stats
}

// isGrayPixel marks near-achromatic pixels (flat channels), which indicate
// pavement, concrete or man-made surfaces rather than vegetation.
func isGrayPixel(r, g, b uint8) bool {
	return absDiff(r, g) < 5 && absDiff(g, b) < 5
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
