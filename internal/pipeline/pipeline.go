// Package pipeline runs the full measurement sequence for one photo:
// scene gating, segmentation, trunk localization, structural validation,
// multi-method distance estimation, and fusion.
package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"treemeter/internal/camera"
	"treemeter/internal/distance"
	"treemeter/internal/fusion"
	"treemeter/internal/oracle"
	"treemeter/internal/raster"
	"treemeter/internal/segment"
	"treemeter/internal/species"
	"treemeter/internal/structure"
	"treemeter/internal/trunk"
)

// Plausible circumference range for a standing tree, in cm. Results
// outside this range indicate a localization or scale failure.
const (
	MinCircumferenceCm = 5
	MaxCircumferenceCm = 700
)

// Options configures one measurement run. The oracle fields are optional:
// a nil Detector skips the detection gate and reference-object estimator
// inputs, a nil Segmenter falls back to color-rule segmentation.
type Options struct {
	Detector  oracle.Detector
	Segmenter oracle.Segmenter

	Species   string                    // common species name, "" if unknown
	ManualRef *distance.ManualReference // user-flagged reference object

	Camera *camera.Model    // overrides EXIF/default intrinsics when set
	Meta   *camera.Metadata // EXIF metadata extracted by the caller

	// BlurRadius smooths the image before color analysis to damp sensor
	// noise and bark speckle. 0 disables preprocessing. The oracles always
	// see the raw image.
	BlurRadius int

	Segment   segment.Params
	Trunk     trunk.Params
	Structure structure.Params
	Distance  distance.Params
	Fusion    fusion.Params

	Log zerolog.Logger
}

// DefaultOptions returns an Options with every parameter set at its tuned
// default and no oracles wired.
func DefaultOptions() Options {
	return Options{
		BlurRadius: 2,
		Segment:    segment.DefaultParams(),
		Trunk:      trunk.DefaultParams(),
		Structure:  structure.DefaultParams(),
		Distance:   distance.DefaultParams(),
		Fusion:     fusion.DefaultParams(),
		Log:        zerolog.Nop(),
	}
}

// Result is the complete outcome of a successful measurement.
type Result struct {
	Fusion   *fusion.Result     `json:"fusion"`
	Bounds   *trunk.Bounds      `json:"bounds"`
	Checks   []structure.Check  `json:"checks"`
	Species  species.Descriptor `json:"species"`
	Semantic bool               `json:"semantic"` // mask came from the semantic oracle
	Warnings []string           `json:"warnings,omitempty"`
	Tips     []string           `json:"tips,omitempty"`
}

// Measure runs the pipeline on a decoded photo. Oracle failures degrade
// gracefully: the affected stage is skipped with a warning and the
// remaining estimators still run.
func Measure(ctx context.Context, img *raster.Image, opts Options) (*Result, error) {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("empty image")
	}
	log := opts.Log

	res := &Result{}
	goImg := img.ToImage()

	// Preprocess for the pixel analysis stages. Oracle models run on the
	// raw image: they were trained on unblurred photos.
	proc := img
	if opts.BlurRadius > 0 {
		proc = raster.GaussianBlur(img, opts.BlurRadius)
	}

	// Object-detection gate.
	var detections []oracle.Detection
	if opts.Detector != nil {
		dets, err := opts.Detector.Detect(ctx, goImg)
		if err != nil {
			log.Warn().Err(err).Msg("object detection failed; skipping scene gate")
			res.Warnings = append(res.Warnings, "object detection unavailable")
		} else {
			detections = dets
			gate := segment.ScanDetections(dets, opts.Segment)
			if gate.Rejected {
				return nil, fmt.Errorf("%w: %s", ErrNotATree, gate.Reason)
			}
			res.Warnings = append(res.Warnings, gate.Warnings...)
		}
	}

	// Segmentation: semantic oracle first, color rules as fallback.
	var mask *raster.Mask
	var stats segment.Stats
	if opts.Segmenter != nil {
		seg, err := opts.Segmenter.Segment(ctx, goImg)
		if err != nil {
			log.Warn().Err(err).Msg("semantic segmentation failed; using color rules")
			res.Warnings = append(res.Warnings, "semantic segmentation unavailable")
		} else {
			if gate := segment.CheckSemanticFraction(seg, opts.Segment); gate.Rejected {
				return nil, fmt.Errorf("%w: %s", ErrNotATree, gate.Reason)
			}
			mask = segment.FromSemantic(seg, opts.Segment)
			res.Semantic = mask != nil
		}
	}
	if mask == nil {
		mask, stats = segment.ColorRuleMask(proc, opts.Segment)
		v := segment.ValidateColors(proc, stats, opts.Segment)
		if !v.IsTree {
			return nil, fmt.Errorf("%w: %s", ErrColorValidation, v.Reason)
		}
		log.Debug().
			Float64("green", stats.GreenFraction).
			Float64("brown", stats.BrownFraction).
			Str("evidence", v.Reason).
			Msg("color validation passed")
	}
	if mask.Fraction(opts.Segment.MaskThreshold) == 0 {
		return nil, ErrSegmentationEmpty
	}

	// Trunk localization.
	bounds, err := trunk.Localize(proc, mask, opts.Trunk)
	if err != nil {
		return nil, fmt.Errorf("locating trunk: %w", err)
	}
	res.Bounds = bounds
	log.Debug().
		Int("center_x", bounds.CenterX).
		Float64("width_px", bounds.WidthPx).
		Int("breast_y", bounds.BreastHeightY).
		Msg("trunk localized")

	// Structural validation.
	checks, err := structure.Validate(proc, bounds, res.Semantic, opts.Structure, opts.Trunk)
	res.Checks = checks
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructuralRejection, err)
	}

	// Camera intrinsics.
	cam := cameraModel(img, opts)

	// Species profile.
	sp := species.Lookup(opts.Species)
	spKnown := species.Known(opts.Species)
	res.Species = sp

	// Distance estimation and fusion.
	hyps := distance.Estimate(distance.Input{
		Img:          proc,
		Mask:         mask,
		Bounds:       bounds,
		Cam:          cam,
		Detections:   detections,
		Species:      sp,
		SpeciesKnown: spKnown,
		ManualRef:    opts.ManualRef,
	}, opts.Distance)
	if len(hyps) == 0 {
		return nil, fmt.Errorf("no distance hypotheses: invalid camera model")
	}

	fused := fusion.Fuse(hyps, opts.Fusion)
	if fused == nil {
		return nil, fmt.Errorf("fusion produced no result")
	}
	if spKnown {
		d := sp.SoftClamp(fused.DiameterCm)
		if d != fused.DiameterCm {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("estimate adjusted toward the typical %s range", sp.Name))
			fused.DiameterCm = d
			fused.CircumferenceCm = math.Pi * d
		}
	}
	if fused.CircumferenceCm < MinCircumferenceCm || fused.CircumferenceCm > MaxCircumferenceCm {
		return nil, fmt.Errorf("%w: %.0f cm", ErrImplausibleResult, fused.CircumferenceCm)
	}
	res.Fusion = fused
	res.Tips = tips(res)

	log.Info().
		Float64("circumference_cm", fused.CircumferenceCm).
		Float64("confidence", fused.Confidence).
		Str("method", string(fused.DominantMethod)).
		Msg("measurement complete")
	return res, nil
}

func cameraModel(img *raster.Image, opts Options) camera.Model {
	if opts.Camera != nil {
		return *opts.Camera
	}
	if opts.Meta != nil {
		return camera.FromMetadata(img.Width, img.Height, *opts.Meta)
	}
	return camera.Default(img.Width, img.Height)
}
