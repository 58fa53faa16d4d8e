// Package fusion combines independent diameter hypotheses into one
// confidence-scored estimate: IQR outlier rejection, reliability-weighted
// averaging, and a bonus-based confidence score.
package fusion

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"treemeter/internal/distance"
)

// Result is the terminal output of one measurement run.
type Result struct {
	DiameterCm      float64               `json:"diameter_cm"`
	CircumferenceCm float64               `json:"circumference_cm"`
	Confidence      float64               `json:"confidence"` // percent, 15-95
	DominantMethod  distance.Method       `json:"dominant_method"`
	CV              float64               `json:"cv"` // coefficient of variation of survivors
	Hypotheses      []distance.Hypothesis `json:"hypotheses"`
	Disagreed       bool                  `json:"disagreed"` // IQR filtering removed everything
}

// Params holds the fusion calibration: confidence bonuses per surviving
// method and the agreement thresholds. Empirically tuned.
type Params struct {
	BaseConfidence      float64
	ReferenceBonus      float64
	GroundBonus         float64
	SpeciesBonus        float64
	BarkBonus           float64
	CrownBonus          float64
	AgreementBonus      float64 // ≥3 tree-only methods within the agreement CV
	AgreementCV         float64
	FallbackOnlyMalus   float64
	DisagreedConfidence float64 // fixed confidence when IQR removes everything
	MinConfidence       float64
	MaxConfidence       float64
	IQRFactor           float64

	// Survivor-spread bonus tiers: the tighter the coefficient of
	// variation, the larger the bonus.
	CVTight       float64
	CVTightBonus  float64
	CVMedium      float64
	CVMediumBonus float64
	CVLoose       float64
	CVLooseBonus  float64
}

// DefaultParams returns the tuned fusion defaults.
func DefaultParams() Params {
	return Params{
		BaseConfidence:      50,
		ReferenceBonus:      25,
		GroundBonus:         10,
		SpeciesBonus:        12,
		BarkBonus:           8,
		CrownBonus:          10,
		AgreementBonus:      8,
		AgreementCV:         0.25,
		FallbackOnlyMalus:   15,
		DisagreedConfidence: 30,
		MinConfidence:       15,
		MaxConfidence:       95,
		IQRFactor:           1.5,
		CVTight:             0.10,
		CVTightBonus:        15,
		CVMedium:            0.20,
		CVMediumBonus:       8,
		CVLoose:             0.30,
		CVLooseBonus:        3,
	}
}

// Fuse combines the hypotheses. A nil result means there was nothing to
// fuse at all; callers treat that as a pipeline failure upstream.
func Fuse(hyps []distance.Hypothesis, p Params) *Result {
	if len(hyps) == 0 {
		return nil
	}

	survivors := filterIQR(hyps, p.IQRFactor)

	if len(survivors) == 0 {
		// Total disagreement: fall back to the unfiltered median with a
		// fixed low confidence.
		d := medianDiameter(hyps)
		return &Result{
			DiameterCm:      d,
			CircumferenceCm: math.Pi * d,
			Confidence:      p.DisagreedConfidence,
			DominantMethod:  dominant(hyps),
			CV:              diameterCV(hyps),
			Hypotheses:      hyps,
			Disagreed:       true,
		}
	}

	var weightedSum, weightTotal float64
	for _, h := range survivors {
		w := h.Weight * (h.Confidence / 100)
		weightedSum += w * h.DiameterCm
		weightTotal += w
	}
	if weightTotal <= 0 {
		// Degenerate weights: plain mean.
		for _, h := range survivors {
			weightedSum += h.DiameterCm
		}
		weightTotal = float64(len(survivors))
	}
	d := weightedSum / weightTotal
	cv := diameterCV(survivors)

	return &Result{
		DiameterCm:      d,
		CircumferenceCm: math.Pi * d,
		Confidence:      confidence(survivors, cv, p),
		DominantMethod:  dominant(survivors),
		CV:              cv,
		Hypotheses:      hyps,
	}
}

// filterIQR removes hypotheses whose diameter lies beyond factor×IQR from
// the quartiles.
func filterIQR(hyps []distance.Hypothesis, factor float64) []distance.Hypothesis {
	if len(hyps) < 3 {
		return hyps
	}

	diams := make([]float64, len(hyps))
	for i, h := range hyps {
		diams[i] = h.DiameterCm
	}
	sort.Float64s(diams)

	q1 := stat.Quantile(0.25, stat.Empirical, diams, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, diams, nil)
	iqr := q3 - q1
	lo := q1 - factor*iqr
	hi := q3 + factor*iqr

	var out []distance.Hypothesis
	for _, h := range hyps {
		if h.DiameterCm >= lo && h.DiameterCm <= hi {
			out = append(out, h)
		}
	}
	return out
}

// confidence starts from the base and accumulates bonuses per surviving
// smart method, an agreement bonus, a CV bonus, and a malus when only the
// fallback contributed.
func confidence(survivors []distance.Hypothesis, cv float64, p Params) float64 {
	c := p.BaseConfidence

	methods := map[distance.Method]bool{}
	for _, h := range survivors {
		methods[h.Method] = true
	}

	if methods[distance.MethodReference] {
		c += p.ReferenceBonus
	}
	if methods[distance.MethodGroundPlane] {
		c += p.GroundBonus
	}
	if methods[distance.MethodSpeciesHeight] {
		c += p.SpeciesBonus
	}
	if methods[distance.MethodBarkTexture] {
		c += p.BarkBonus
	}
	if methods[distance.MethodCrownAllometry] {
		c += p.CrownBonus
	}

	// Tree-only methods need no external object in frame; three of them
	// agreeing is strong evidence on its own.
	treeOnly := countTreeOnly(survivors)
	if treeOnly >= 3 && treeOnlyCV(survivors) < p.AgreementCV {
		c += p.AgreementBonus
	}

	switch {
	case cv < p.CVTight:
		c += p.CVTightBonus
	case cv < p.CVMedium:
		c += p.CVMediumBonus
	case cv < p.CVLoose:
		c += p.CVLooseBonus
	}

	smart := false
	for m := range methods {
		if m != distance.MethodFOVFallback {
			smart = true
		}
	}
	if !smart {
		c -= p.FallbackOnlyMalus
	}

	if c < p.MinConfidence {
		c = p.MinConfidence
	}
	if c > p.MaxConfidence {
		c = p.MaxConfidence
	}
	return c
}

func isTreeOnly(m distance.Method) bool {
	switch m {
	case distance.MethodGroundPlane, distance.MethodSpeciesHeight,
		distance.MethodBarkTexture, distance.MethodCrownAllometry:
		return true
	}
	return false
}

func countTreeOnly(hyps []distance.Hypothesis) int {
	seen := map[distance.Method]bool{}
	for _, h := range hyps {
		if isTreeOnly(h.Method) {
			seen[h.Method] = true
		}
	}
	return len(seen)
}

func treeOnlyCV(hyps []distance.Hypothesis) float64 {
	var diams []float64
	for _, h := range hyps {
		if isTreeOnly(h.Method) {
			diams = append(diams, h.DiameterCm)
		}
	}
	return cvOf(diams)
}

func diameterCV(hyps []distance.Hypothesis) float64 {
	diams := make([]float64, len(hyps))
	for i, h := range hyps {
		diams[i] = h.DiameterCm
	}
	return cvOf(diams)
}

func cvOf(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

func medianDiameter(hyps []distance.Hypothesis) float64 {
	diams := make([]float64, len(hyps))
	for i, h := range hyps {
		diams[i] = h.DiameterCm
	}
	sort.Float64s(diams)
	n := len(diams)
	if n%2 == 1 {
		return diams[n/2]
	}
	return (diams[n/2-1] + diams[n/2]) / 2
}

// dominant returns the method with the highest effective weight.
func dominant(hyps []distance.Hypothesis) distance.Method {
	var best distance.Method
	bestW := -1.0
	for _, h := range hyps {
		if w := h.Weight * (h.Confidence / 100); w > bestW {
			bestW = w
			best = h.Method
		}
	}
	return best
}
