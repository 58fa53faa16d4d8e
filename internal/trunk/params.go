package trunk

// Params holds the trunk localization calibration. The color windows are
// deliberately tighter than the segmenter's: a column of fabric or plastic
// should not accumulate a trunk run.
type Params struct {
	// Tight trunk color windows (HSV in degrees/percent, Lab).
	BrownHueMin, BrownHueMax   float64
	BrownSatMin, BrownSatMax   float64
	BrownValMin, BrownValMax   float64
	BrownLabAMin               float64
	BrownLabBMin               float64
	BrownLabLMin, BrownLabLMax float64

	// Dark-bark variant (conifers, wet bark).
	DarkSatMax               float64
	DarkValMin, DarkValMax   float64
	DarkLabAMin, DarkLabBMin float64

	// Vertical run scoring.
	RunDecay      int // subtracted on a non-trunk pixel
	RunSaturation int // run length at which likelihood saturates to 1

	// Column density profile.
	DensityTopFrac    float64 // start of the row span summed per column
	DensityBottomFrac float64
	SmoothWindow      int     // centered moving-average window
	SearchBandFrac    float64 // central width fraction searched for the peak

	// Breast-height edge scan.
	BreastHeightFrac float64 // row as a fraction of image height
	EdgeScanRows     int     // rows scanned above and below breast height
	EdgeThreshold    float64 // likelihood below this ends the trunk

	// Gradient cross-validation.
	GradientBandFrac float64 // search span around the center, fraction of width
	GradientMinWidth float64 // gradient result below this is ignored

	// Bounding box.
	MaskThreshold float64 // closed-mask probability counted as tree
	CloseRadius   int

	// Rejection.
	MinWidthPx float64 // localized width below this → trunk not found
}

// DefaultParams returns the tuned localization defaults.
func DefaultParams() Params {
	return Params{
		BrownHueMin: 12, BrownHueMax: 42,
		BrownSatMin: 18, BrownSatMax: 72,
		BrownValMin: 15, BrownValMax: 70,
		BrownLabAMin: 0, BrownLabBMin: 8,
		BrownLabLMin: 15, BrownLabLMax: 68,

		DarkSatMax: 35,
		DarkValMin: 8, DarkValMax: 40,
		DarkLabAMin: -5, DarkLabBMin: 2,

		RunDecay:      3,
		RunSaturation: 40,

		DensityTopFrac:    0.35,
		DensityBottomFrac: 0.95,
		SmoothWindow:      15,
		SearchBandFrac:    0.70,

		BreastHeightFrac: 0.65,
		EdgeScanRows:     20,
		EdgeThreshold:    0.15,

		GradientBandFrac: 0.25,
		GradientMinWidth: 10,

		MaskThreshold: 0.3,
		CloseRadius:   2,

		MinWidthPx: 8,
	}
}
