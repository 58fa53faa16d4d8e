package segment

import (
	"fmt"

	"treemeter/internal/raster"
	"treemeter/pkg/colorutil"
)

// Validation is the whole-frame tree/not-tree verdict from color evidence
// alone. Used only when no semantic mask is available.
type Validation struct {
	IsTree          bool
	Reason          string
	TextureVariance float64
	SupportSignals  int
}

// ValidateColors decides whether the frame plausibly shows a tree, from
// color statistics plus structural support signals:
//
//	primary evidence — one of:
//	  1. significant green and brown together
//	  2. dominant green (dense foliage fills the frame)
//	  3. high brown with strong bark texture and at least some green
//	support — at least 2 of 3:
//	  a. green sits above brown (canopy over trunk arrangement)
//	  b. low gray-pixel fraction (not pavement/indoor surfaces)
//	  c. natural bark texture variance
func ValidateColors(img *raster.Image, stats Stats, p Params) Validation {
	variance := barkTextureVariance(img, p)

	var primary bool
	var primaryName string
	switch {
	case stats.GreenFraction >= p.SignificantGreen && stats.BrownFraction >= p.SignificantBrown:
		primary = true
		primaryName = "green+brown"
	case stats.GreenFraction >= p.DominantGreen:
		primary = true
		primaryName = "dominant green"
	case stats.BrownFraction >= p.HighBrown && variance > p.TextureStrong && stats.GreenFraction >= p.SomeGreen:
		primary = true
		primaryName = "textured trunk"
	}

	signals := 0
	if canopyAboveTrunk(img, p) {
		signals++
	}
	if stats.GrayFraction <= p.MaxGrayFraction {
		signals++
	}
	if variance > p.TextureNatural {
		signals++
	}

	v := Validation{TextureVariance: variance, SupportSignals: signals}
	if !primary {
		v.Reason = fmt.Sprintf("insufficient tree colors (green %.1f%%, brown %.1f%%)",
			stats.GreenFraction*100, stats.BrownFraction*100)
		return v
	}
	if signals < 2 {
		v.Reason = fmt.Sprintf("tree colors present (%s) but only %d of 3 structural signals", primaryName, signals)
		return v
	}
	v.IsTree = true
	return v
}

// barkTextureVariance samples every 8th bark-colored pixel and averages the
// local 5x5 grayscale variance around it. Natural bark is rough; fabric,
// plastic and painted surfaces are flat.
func barkTextureVariance(img *raster.Image, p Params) float64 {
	var sum float64
	var count int

	idx := 0
	for y := 2; y < img.Height-2; y++ {
		for x := 2; x < img.Width-2; x++ {
			r, g, b, _ := img.RGBA(x, y)
			h, s, v := colorutil.RGBToHSV(r, g, b)
			if !isBarkColored(h, s, v) {
				continue
			}
			idx++
			if idx%8 != 0 {
				continue
			}
			sum += localVariance5(img, x, y)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// isBarkColored is a cheap HSV-only bark test for texture sampling. It is
// deliberately looser than the segmentation rules: texture sampling wants
// coverage, not precision.
func isBarkColored(h, s, v float64) bool {
	if h >= 10 && h <= 45 && s >= 10 && v >= 10 && v <= 80 {
		return true
	}
	// Dark or gray bark.
	return s <= 40 && v >= 8 && v <= 50
}

// localVariance5 computes the grayscale variance of the 5x5 neighborhood.
func localVariance5(img *raster.Image, cx, cy int) float64 {
	var sum, sumSq float64
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			g := img.Gray(cx+dx, cy+dy)
			sum += g
			sumSq += g * g
		}
	}
	const n = 25.0
	mean := sum / n
	return sumSq/n - mean*mean
}

// canopyAboveTrunk checks the vertical arrangement: the average row of
// green pixels should sit above the average row of brown pixels.
func canopyAboveTrunk(img *raster.Image, p Params) bool {
	var greenRowSum, brownRowSum float64
	var greenCount, brownCount int

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b, _ := img.RGBA(x, y)
			h, s, v := colorutil.RGBToHSV(r, g, b)
			switch {
			case h >= 40 && h <= 170 && s > 15 && v > 20:
				greenRowSum += float64(y)
				greenCount++
			case isBarkColored(h, s, v):
				brownRowSum += float64(y)
				brownCount++
			}
		}
	}
	if greenCount == 0 || brownCount == 0 {
		return false
	}
	return greenRowSum/float64(greenCount) < brownRowSum/float64(brownCount)
}
