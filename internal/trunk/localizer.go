package trunk

import (
	"errors"
	"math"
	"sort"

	"treemeter/internal/raster"
	"treemeter/pkg/colorutil"
	"treemeter/pkg/geometry"
)

// ErrNotFound is returned when no column accumulates enough trunk-colored
// evidence, or the measured width is below the minimum.
var ErrNotFound = errors.New("trunk not found")

// Localize finds the trunk in the image. The mask is the segmentation
// output and is only used for the tree bounding box; the trunk column and
// width come from the localizer's own tighter color analysis.
func Localize(img *raster.Image, mask *raster.Mask, p Params) (*Bounds, error) {
	likelihood := likelihoodGrid(img, p)

	centerX, peak := densityPeak(likelihood, img.Width, img.Height, p)
	if peak <= 0 {
		return nil, ErrNotFound
	}

	breastY := int(float64(img.Height) * p.BreastHeightFrac)
	medianWidth, left, right := medianEdgeWidth(likelihood, img.Width, img.Height, centerX, breastY, p)

	gradientWidth := gradientEdgeWidth(img, centerX, breastY, p)

	// The gradient search cross-validates the color edges: when it finds a
	// plausible pair, average the two measurements.
	width := medianWidth
	if gradientWidth > p.GradientMinWidth {
		width = (medianWidth + gradientWidth) / 2
	}
	if width < p.MinWidthPx {
		return nil, ErrNotFound
	}

	box := treeBox(mask, p)

	return &Bounds{
		Box:             box,
		CenterX:         centerX,
		LeftEdge:        left,
		RightEdge:       right,
		WidthPx:         width,
		BreastHeightY:   breastY,
		MedianWidthPx:   medianWidth,
		GradientWidthPx: gradientWidth,
	}, nil
}

// TrunkColored applies the tight trunk color windows to one pixel.
func TrunkColored(r, g, b uint8, p Params) bool {
	h, s, v := colorutil.RGBToHSV(r, g, b)
	l, la, lb := colorutil.RGBToLab(r, g, b)

	if h >= p.BrownHueMin && h <= p.BrownHueMax &&
		s >= p.BrownSatMin && s <= p.BrownSatMax &&
		v >= p.BrownValMin && v <= p.BrownValMax &&
		la >= p.BrownLabAMin && lb >= p.BrownLabBMin &&
		l >= p.BrownLabLMin && l <= p.BrownLabLMax {
		return true
	}
	return s <= p.DarkSatMax && v >= p.DarkValMin && v <= p.DarkValMax &&
		la >= p.DarkLabAMin && lb >= p.DarkLabBMin
}

// likelihoodGrid scans each column top to bottom, accumulating a
// consecutive-run counter: +1 on a trunk-colored pixel, −RunDecay
// otherwise (floored at 0). A row's trunk likelihood is
// min(1, run/RunSaturation), so isolated brown pixels score low while a
// sustained vertical run saturates.
func likelihoodGrid(img *raster.Image, p Params) []float64 {
	w, h := img.Width, img.Height
	grid := make([]float64, w*h)

	for x := 0; x < w; x++ {
		run := 0
		for y := 0; y < h; y++ {
			r, g, b, _ := img.RGBA(x, y)
			if TrunkColored(r, g, b, p) {
				run++
			} else {
				run -= p.RunDecay
				if run < 0 {
					run = 0
				}
			}
			v := float64(run) / float64(p.RunSaturation)
			if v > 1 {
				v = 1
			}
			grid[y*w+x] = v
		}
	}
	return grid
}

// densityPeak sums likelihood per column over the density row span,
// smooths with a centered moving average, and returns the peak column
// within the central search band.
func densityPeak(grid []float64, w, h int, p Params) (centerX int, peak float64) {
	y0 := int(float64(h) * p.DensityTopFrac)
	y1 := int(float64(h) * p.DensityBottomFrac)

	density := make([]float64, w)
	for x := 0; x < w; x++ {
		var sum float64
		for y := y0; y < y1; y++ {
			sum += grid[y*w+x]
		}
		density[x] = sum
	}

	smoothed := movingAverage(density, p.SmoothWindow)

	margin := int(float64(w) * (1 - p.SearchBandFrac) / 2)
	best := -1
	for x := margin; x < w-margin; x++ {
		if smoothed[x] > peak {
			peak = smoothed[x]
			best = x
		}
	}
	if best < 0 {
		return -1, 0
	}

	// A wide trunk produces a flat plateau after smoothing; take the
	// plateau midpoint rather than its first column.
	lo, hi := best, best
	for lo > margin && smoothed[lo-1] >= peak*0.995 {
		lo--
	}
	for hi < w-margin-1 && smoothed[hi+1] >= peak*0.995 {
		hi++
	}
	return (lo + hi) / 2, peak
}

// movingAverage smooths with a centered window, shrinking the window at
// the array ends.
func movingAverage(data []float64, window int) []float64 {
	half := window / 2
	out := make([]float64, len(data))
	for i := range data {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(data) {
			hi = len(data) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += data[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// medianEdgeWidth scans rows around breast height. In each row it walks
// left and right from the center until the trunk likelihood drops below
// the edge threshold, and takes the median width across valid rows —
// robust to a one-off occlusion like a branch or a hand.
func medianEdgeWidth(grid []float64, w, h, centerX, breastY int, p Params) (width float64, left, right int) {
	type edges struct{ l, r int }
	var rows []edges

	for dy := -p.EdgeScanRows; dy <= p.EdgeScanRows; dy++ {
		y := breastY + dy
		if y < 0 || y >= h {
			continue
		}
		if grid[y*w+centerX] < p.EdgeThreshold {
			continue
		}
		l := centerX
		for l > 0 && grid[y*w+l-1] >= p.EdgeThreshold {
			l--
		}
		r := centerX
		for r < w-1 && grid[y*w+r+1] >= p.EdgeThreshold {
			r++
		}
		rows = append(rows, edges{l, r})
	}
	if len(rows) == 0 {
		return 0, centerX, centerX
	}

	widths := make([]float64, len(rows))
	for i, e := range rows {
		widths[i] = float64(e.r - e.l + 1)
	}
	sort.Float64s(widths)
	width = widths[len(widths)/2]

	// Representative edges: the median row by width.
	sort.Slice(rows, func(i, j int) bool { return rows[i].r-rows[i].l < rows[j].r-rows[j].l })
	mid := rows[len(rows)/2]
	return width, mid.l, mid.r
}

// gradientEdgeWidth finds the strongest luminance edge pair around the
// center at breast height using a Sobel-style horizontal gradient. It is
// an independent cross-check on the color-based edges: bark against
// background usually produces a strong gradient even when the color
// windows misfire.
func gradientEdgeWidth(img *raster.Image, centerX, breastY int, p Params) float64 {
	w := img.Width
	span := int(float64(w) * p.GradientBandFrac)
	y := breastY
	if y < 1 {
		y = 1
	}
	if y > img.Height-2 {
		y = img.Height - 2
	}

	var bestLeft, bestRight int
	var bestLeftMag, bestRightMag float64

	lo := centerX - span
	if lo < 1 {
		lo = 1
	}
	hi := centerX + span
	if hi > w-2 {
		hi = w - 2
	}

	for x := lo; x <= hi; x++ {
		mag := math.Abs(sobelX(img, x, y))
		if x < centerX && mag > bestLeftMag {
			bestLeftMag = mag
			bestLeft = x
		}
		if x > centerX && mag > bestRightMag {
			bestRightMag = mag
			bestRight = x
		}
	}

	if bestLeftMag == 0 || bestRightMag == 0 {
		return 0
	}
	return float64(bestRight - bestLeft)
}

// sobelX computes the horizontal Sobel response at (x, y) on luminance.
func sobelX(img *raster.Image, x, y int) float64 {
	return (img.Gray(x+1, y-1) + 2*img.Gray(x+1, y) + img.Gray(x+1, y+1)) -
		(img.Gray(x-1, y-1) + 2*img.Gray(x-1, y) + img.Gray(x-1, y+1))
}

// treeBox computes the overall tree bounding box: the extent of the
// morphologically closed mask above the probability threshold, restricted
// to the central search band.
func treeBox(mask *raster.Mask, p Params) geometry.RectInt {
	if mask == nil {
		return geometry.RectInt{}
	}
	closed := mask.Close(p.CloseRadius)

	margin := int(float64(mask.Width) * (1 - p.SearchBandFrac) / 2)
	minX, minY := math.MaxInt32, math.MaxInt32
	maxX, maxY := -1, -1

	for y := 0; y < closed.Height; y++ {
		for x := margin; x < closed.Width-margin; x++ {
			if closed.At(x, y) <= p.MaskThreshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return geometry.RectInt{}
	}
	return geometry.RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}
