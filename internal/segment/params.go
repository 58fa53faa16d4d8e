package segment

import "math"

// Window is an inclusive value range. The zero window matches nothing;
// use Band, Above, Below or Open to build one.
type Window struct {
	Min, Max float64
}

// Band returns a closed window [min, max].
func Band(min, max float64) Window { return Window{Min: min, Max: max} }

// Above returns a window open on the high side.
func Above(min float64) Window { return Window{Min: min, Max: math.MaxFloat64} }

// Below returns a window open on the low side.
func Below(max float64) Window { return Window{Min: -math.MaxFloat64, Max: max} }

// Open returns a window matching everything.
func Open() Window { return Window{Min: -math.MaxFloat64, Max: math.MaxFloat64} }

// Contains reports whether v falls inside the window.
func (w Window) Contains(v float64) bool { return v >= w.Min && v <= w.Max }

// ColorRule scores a pixel against one color category. A pixel inside all
// windows scores the rule's ceiling; outside any window it scores zero.
// The ceiling reflects how diagnostic that color range is for tree tissue.
type ColorRule struct {
	Name    string
	Ceiling float64
	Hue     Window // degrees, 0-360
	Sat     Window // percent, 0-100
	Val     Window // percent, 0-100
	LabL    Window
	LabA    Window
	LabB    Window
}

// Score returns the rule ceiling if the pixel matches, else 0.
func (r ColorRule) Score(h, s, v, l, a, b float64) float64 {
	if r.Hue.Contains(h) && r.Sat.Contains(s) && r.Val.Contains(v) &&
		r.LabL.Contains(l) && r.LabA.Contains(a) && r.LabB.Contains(b) {
		return r.Ceiling
	}
	return 0
}

// Params holds the segmentation calibration. All thresholds here are
// empirically tuned; treat them as recalibration data, not derivable
// constants.
type Params struct {
	// Rules scored per pixel; the mask takes the max.
	Rules []ColorRule

	// Semantic strategy.
	SemanticMinTreeFraction float64 // tree pixels below this → color fallback
	SemanticDilateRadius    int

	// Hard gate.
	RejectTreeFraction float64 // semantic tree pixels below this → reject outright
	IndoorHighScore    float64 // detection score counted as high-confidence indoor
	IndoorCountReject  int     // this many high-confidence indoor classes → reject
	HardBlockScore     float64 // any hard-block class above this → reject

	// Whole-frame color validation.
	SignificantGreen float64 // green fraction for the green+brown path
	SignificantBrown float64
	DominantGreen    float64 // green fraction accepted on its own
	HighBrown        float64 // brown fraction for the textured-trunk path
	SomeGreen        float64
	MaxGrayFraction  float64 // gray-pixel fraction above this loses a support signal
	TextureNatural   float64 // local 5x5 variance marking natural texture
	TextureStrong    float64

	// Mask post-processing.
	MaskThreshold float64 // probability above this counts as tree for bbox/fractions
}

// DefaultParams returns the tuned segmentation defaults.
func DefaultParams() Params {
	return Params{
		Rules: []ColorRule{
			{
				Name:    "green-foliage",
				Ceiling: 0.8,
				Hue:     Band(40, 170),
				Sat:     Above(15),
				Val:     Above(20),
				LabL:    Open(), LabA: Open(), LabB: Open(),
			},
			{
				Name:    "brown-trunk",
				Ceiling: 0.9,
				Hue:     Band(10, 45),
				Sat:     Band(15, 80),
				Val:     Band(15, 75),
				LabL:    Band(15, 75),
				LabA:    Above(-5),
				LabB:    Above(5),
			},
			{
				Name:    "dark-bark",
				Ceiling: 0.6,
				Hue:     Open(),
				Sat:     Band(5, 40),
				Val:     Band(8, 45),
				LabL:    Band(8, 45),
				LabA:    Above(-8),
				LabB:    Above(0),
			},
			{
				Name:    "light-bark",
				Ceiling: 0.4,
				Hue:     Open(),
				Sat:     Band(5, 25),
				Val:     Band(55, 85),
				LabL:    Open(),
				LabA:    Band(-3, 12),
				LabB:    Band(3, 25),
			},
		},

		SemanticMinTreeFraction: 0.04,
		SemanticDilateRadius:    3,

		RejectTreeFraction: 0.02,
		IndoorHighScore:    0.50,
		IndoorCountReject:  2,
		HardBlockScore:     0.40,

		SignificantGreen: 0.12,
		SignificantBrown: 0.05,
		DominantGreen:    0.35,
		HighBrown:        0.15,
		SomeGreen:        0.03,
		MaxGrayFraction:  0.50,
		TextureNatural:   25,
		TextureStrong:    35,

		MaskThreshold: 0.3,
	}
}
