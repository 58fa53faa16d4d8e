package distance

// RefObject describes a detectable object class with a roughly known
// real-world size. UseHeight selects which box dimension carries the
// size (a standing person's height is far more stable than their width).
type RefObject struct {
	SizeCm    float64
	UseHeight bool
	Weight    float64
}

// Params holds the estimation calibration: per-class reference sizes,
// reliability weights per method, the distance lookup tiers, and the
// empirical diameter corrections. All values are tuned, not derived.
type Params struct {
	References map[string]RefObject

	ManualRefWeight     float64
	ManualRefConfidence float64

	CameraHeightCm   float64 // assumed handheld camera height (breast height)
	GroundWeight     float64
	GroundConfidence float64

	SpeciesWeight      float64
	SpeciesConfidence  float64
	SpeciesMinFillFrac float64 // tree height as a fraction of image height
	SpeciesMaxFillFrac float64

	BarkWeight     float64
	BarkConfidence float64
	BarkPatchSize  int

	CrownWeight     float64
	CrownConfidence float64
	CrownRowFrac    float64 // canopy width sampled this far down from the box top
	CrownMinRatio   float64 // crown/trunk pixel ratio below this is no crown
	MaskThreshold   float64

	FOVWeight     float64
	FOVConfidence float64

	// Empirical diameter corrections (each ~0.9-1.0).
	DistanceOverestimate float64
	NonCircularSection   float64
	BarkThickness        float64
	Perspective          float64

	MinDiameterCm float64
	MaxDiameterCm float64
}

// DefaultParams returns the tuned estimation defaults.
func DefaultParams() Params {
	return Params{
		References: map[string]RefObject{
			"person":   {SizeCm: 170, UseHeight: true, Weight: 0.85},
			"bottle":   {SizeCm: 24, UseHeight: true, Weight: 0.90},
			"dog":      {SizeCm: 50, UseHeight: true, Weight: 0.40},
			"cat":      {SizeCm: 25, UseHeight: true, Weight: 0.35},
			"bicycle":  {SizeCm: 175, UseHeight: false, Weight: 0.70},
			"car":      {SizeCm: 445, UseHeight: false, Weight: 0.65},
			"bench":    {SizeCm: 150, UseHeight: false, Weight: 0.55},
			"cup":      {SizeCm: 10, UseHeight: true, Weight: 0.50},
			"backpack": {SizeCm: 45, UseHeight: true, Weight: 0.45},
		},

		ManualRefWeight:     0.95,
		ManualRefConfidence: 85,

		CameraHeightCm:   137,
		GroundWeight:     0.75,
		GroundConfidence: 70,

		SpeciesWeight:      0.55,
		SpeciesConfidence:  60,
		SpeciesMinFillFrac: 0.15,
		SpeciesMaxFillFrac: 0.98,

		BarkWeight:     0.30,
		BarkConfidence: 40,
		BarkPatchSize:  48,

		CrownWeight:     0.45,
		CrownConfidence: 55,
		CrownRowFrac:    0.25,
		CrownMinRatio:   1.2,
		MaskThreshold:   0.3,

		FOVWeight:     0.20,
		FOVConfidence: 35,

		DistanceOverestimate: 0.92,
		NonCircularSection:   0.96,
		BarkThickness:        0.985,
		Perspective:          0.99,

		MinDiameterCm: 3,
		MaxDiameterCm: 250,
	}
}

// Correct applies the empirical correction chain and clamps the result to
// the plausible diameter range.
func (p Params) Correct(diameterCm float64) float64 {
	d := diameterCm * p.DistanceOverestimate * p.NonCircularSection * p.BarkThickness * p.Perspective
	if d < p.MinDiameterCm {
		return p.MinDiameterCm
	}
	if d > p.MaxDiameterCm {
		return p.MaxDiameterCm
	}
	return d
}
