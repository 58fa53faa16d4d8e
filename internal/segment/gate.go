package segment

import (
	"fmt"

	"treemeter/internal/oracle"
)

// GateResult is the outcome of the pre-segmentation scene gate.
type GateResult struct {
	Rejected bool
	Reason   string
	Warnings []string
}

// ScanDetections inspects object-detection output for evidence the photo
// is an indoor or object scene rather than a tree. Two or more
// high-confidence indoor classes, or a single hard-block class above the
// block threshold, reject the photo outright. Other non-tree objects only
// produce soft warnings: a person or car in front of a tree is normal.
func ScanDetections(dets []oracle.Detection, p Params) GateResult {
	var result GateResult

	indoorCount := 0
	for _, d := range dets {
		if oracle.HardBlockClasses[d.Class] && d.Score > p.HardBlockScore {
			result.Rejected = true
			result.Reason = fmt.Sprintf("detected %s (%.0f%% confidence): this looks like an indoor or object scene, not a tree", d.Class, d.Score*100)
			return result
		}
		if oracle.IndoorClasses[d.Class] && d.Score >= p.IndoorHighScore {
			indoorCount++
		}
	}

	if indoorCount >= p.IndoorCountReject {
		result.Rejected = true
		result.Reason = fmt.Sprintf("detected %d indoor objects: this looks like an indoor scene, not a tree", indoorCount)
		return result
	}

	for _, d := range dets {
		if !oracle.IndoorClasses[d.Class] && d.Score >= p.IndoorHighScore {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("a %s is in frame; make sure the trunk is unobstructed", d.Class))
		}
	}
	return result
}

// CheckSemanticFraction rejects when a semantic segmentation ran and found
// almost no tree pixels.
func CheckSemanticFraction(seg *oracle.SegmentMap, p Params) GateResult {
	if seg == nil {
		return GateResult{}
	}
	if frac := seg.VegetationFraction(); frac < p.RejectTreeFraction {
		return GateResult{
			Rejected: true,
			Reason:   fmt.Sprintf("semantic segmentation found only %.1f%% tree pixels", frac*100),
		}
	}
	return GateResult{}
}
