package pipeline

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"treemeter/internal/oracle"
	"treemeter/internal/raster"
	"treemeter/pkg/geometry"
)

var (
	barkBrown    = [3]uint8{139, 90, 43}
	foliageGreen = [3]uint8{60, 140, 60}
	skyBlue      = [3]uint8{150, 180, 230}
	flatGray     = [3]uint8{128, 128, 128}
)

// treeScene paints a brown trunk band with a green canopy above canopyRow
// on a sky background.
func treeScene(w, h, bandX0, bandX1, canopyRow int) *raster.Image {
	img := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := skyBlue
			if x >= bandX0 && x < bandX1 {
				c = barkBrown
			} else if y < canopyRow {
				c = foliageGreen
			}
			img.SetRGBA(x, y, c[0], c[1], c[2], 255)
		}
	}
	return img
}

type fakeDetector struct {
	dets []oracle.Detection
	err  error
}

func (f fakeDetector) Detect(_ context.Context, _ image.Image) ([]oracle.Detection, error) {
	return f.dets, f.err
}

type fakeSegmenter struct {
	seg *oracle.SegmentMap
	err error
}

func (f fakeSegmenter) Segment(_ context.Context, _ image.Image) (*oracle.SegmentMap, error) {
	return f.seg, f.err
}

func TestMeasure_SyntheticTree(t *testing.T) {
	img := treeScene(400, 800, 180, 220, 300)

	res, err := Measure(context.Background(), img, DefaultOptions())
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if res.Fusion == nil {
		t.Fatal("missing fusion result")
	}
	if res.Fusion.CircumferenceCm < MinCircumferenceCm || res.Fusion.CircumferenceCm > MaxCircumferenceCm {
		t.Errorf("circumference = %.1f cm, outside the plausible range", res.Fusion.CircumferenceCm)
	}
	if math.Abs(res.Bounds.WidthPx-40) > 4 {
		t.Errorf("trunk width = %.1f px, want 40 +/- 4", res.Bounds.WidthPx)
	}
	if res.Semantic {
		t.Error("no segmenter configured; mask should come from color rules")
	}
	if len(res.Tips) == 0 {
		t.Error("a run with no reference object should produce at least one tip")
	}
}

// noisyTreeScene overlays checkerboard channel noise strong enough to break
// the tight trunk color windows on alternating pixels. Only the smoothing
// pass makes the trunk band coherent again.
func noisyTreeScene(w, h, bandX0, bandX1, canopyRow int) *raster.Image {
	img := treeScene(w, h, bandX0, bandX1, canopyRow)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := -35
			if (x+y)%2 == 0 {
				d = 35
			}
			r, g, b, a := img.RGBA(x, y)
			img.SetRGBA(x, y, clamp8(int(r)+d), clamp8(int(g)+d), clamp8(int(b)+d), a)
		}
	}
	return img
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func TestMeasure_NoisySceneSmoothed(t *testing.T) {
	opts := DefaultOptions()
	if opts.BlurRadius <= 0 {
		t.Fatal("preprocessing blur must be on by default")
	}
	img := noisyTreeScene(400, 800, 180, 220, 300)

	res, err := Measure(context.Background(), img, opts)
	if err != nil {
		t.Fatalf("Measure on a noisy scene: %v", err)
	}
	if math.Abs(res.Bounds.WidthPx-40) > 6 {
		t.Errorf("trunk width = %.1f px, want 40 +/- 6", res.Bounds.WidthPx)
	}
}

func TestMeasure_GrayScene(t *testing.T) {
	img := raster.New(200, 200)
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.SetRGBA(x, y, flatGray[0], flatGray[1], flatGray[2], 255)
		}
	}

	_, err := Measure(context.Background(), img, DefaultOptions())
	if !errors.Is(err, ErrColorValidation) {
		t.Errorf("gray frame error = %v, want ErrColorValidation", err)
	}
}

func TestMeasure_NilImage(t *testing.T) {
	if _, err := Measure(context.Background(), nil, DefaultOptions()); err == nil {
		t.Error("nil image must fail")
	}
}

func TestMeasure_DetectorHardBlock(t *testing.T) {
	img := treeScene(400, 800, 180, 220, 300)
	opts := DefaultOptions()
	opts.Detector = fakeDetector{dets: []oracle.Detection{
		{Class: "refrigerator", Score: 0.9},
	}}

	_, err := Measure(context.Background(), img, opts)
	if !errors.Is(err, ErrNotATree) {
		t.Errorf("hard-block scene error = %v, want ErrNotATree", err)
	}
}

func TestMeasure_DetectorFailureDegrades(t *testing.T) {
	img := treeScene(400, 800, 180, 220, 300)
	opts := DefaultOptions()
	opts.Detector = fakeDetector{err: errors.New("model not loaded")}

	res, err := Measure(context.Background(), img, opts)
	if err != nil {
		t.Fatalf("detector failure must not abort the run: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning about the unavailable detector")
	}
}

func TestMeasure_SemanticMask(t *testing.T) {
	w, h := 400, 800
	img := treeScene(w, h, 180, 220, 300)

	classes := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x >= 180 && x < 220) || y < 300 {
				classes[y*w+x] = 5 // tree
			}
		}
	}
	opts := DefaultOptions()
	opts.Segmenter = fakeSegmenter{seg: &oracle.SegmentMap{Classes: classes, Width: w, Height: h}}

	res, err := Measure(context.Background(), img, opts)
	if err != nil {
		t.Fatalf("Measure with semantic mask: %v", err)
	}
	if !res.Semantic {
		t.Error("semantic flag not set")
	}
	if len(res.Checks) != 1 {
		t.Errorf("semantic run should keep only the relaxed width check, got %d checks", len(res.Checks))
	}
}

func TestMeasure_SemanticRejectsNonTree(t *testing.T) {
	img := treeScene(400, 800, 180, 220, 300)
	opts := DefaultOptions()
	// Almost no vegetation in the class map.
	opts.Segmenter = fakeSegmenter{seg: &oracle.SegmentMap{
		Classes: make([]int, 400*800), Width: 400, Height: 800,
	}}

	_, err := Measure(context.Background(), img, opts)
	if !errors.Is(err, ErrNotATree) {
		t.Errorf("vegetation-free class map error = %v, want ErrNotATree", err)
	}
}

func TestMeasureManual_ClosedForm(t *testing.T) {
	// 800 px wide at the default 65 degree FOV: focal = 400 / tan(32.5 deg).
	focal := 400 / math.Tan(32.5*math.Pi/180)
	wantDiameter := 40 * 250 / focal

	res, err := MeasureManual(800, 600,
		geometry.PointInt{X: 100, Y: 400}, geometry.PointInt{X: 140, Y: 400},
		0, DefaultOptions())
	if err != nil {
		t.Fatalf("MeasureManual: %v", err)
	}
	if math.Abs(res.DiameterCm-wantDiameter) > 0.01 {
		t.Errorf("diameter = %.3f cm, want %.3f", res.DiameterCm, wantDiameter)
	}
	if math.Abs(res.CircumferenceCm-math.Pi*wantDiameter) > 0.01 {
		t.Errorf("circumference = %.3f cm, want %.3f", res.CircumferenceCm, math.Pi*wantDiameter)
	}
	if res.DistanceCm != DefaultManualDistanceCm {
		t.Errorf("distance = %.0f, want the %d cm default", res.DistanceCm, DefaultManualDistanceCm)
	}
	if res.Confidence != manualConfidence {
		t.Errorf("confidence = %.0f, want %d", res.Confidence, manualConfidence)
	}
}

func TestMeasureManual_BadInput(t *testing.T) {
	opts := DefaultOptions()

	_, err := MeasureManual(800, 600,
		geometry.PointInt{X: 100, Y: 400}, geometry.PointInt{X: 104, Y: 400}, 0, opts)
	if !errors.Is(err, ErrManualInput) {
		t.Errorf("close points error = %v, want ErrManualInput", err)
	}

	_, err = MeasureManual(800, 600,
		geometry.PointInt{X: 100, Y: 400}, geometry.PointInt{X: 200, Y: 400}, -5, opts)
	if !errors.Is(err, ErrManualInput) {
		t.Errorf("negative distance error = %v, want ErrManualInput", err)
	}

	_, err = MeasureManual(0, 0,
		geometry.PointInt{X: 100, Y: 400}, geometry.PointInt{X: 200, Y: 400}, 0, opts)
	if !errors.Is(err, ErrManualInput) {
		t.Errorf("zero image size error = %v, want ErrManualInput", err)
	}
}

func TestMeasureManual_SpeciesClamp(t *testing.T) {
	opts := DefaultOptions()
	opts.Species = "birch"

	// A tiny 12 px width at close range gives a diameter below the birch
	// minimum, so the soft clamp must pull it up.
	res, err := MeasureManual(800, 600,
		geometry.PointInt{X: 100, Y: 400}, geometry.PointInt{X: 112, Y: 400},
		100, opts)
	if err != nil {
		t.Fatalf("MeasureManual: %v", err)
	}
	if !res.Adjusted {
		t.Error("expected the species clamp to adjust the estimate")
	}
	if res.DiameterCm < res.Species.MinDBHCm/2 {
		t.Errorf("diameter = %.2f cm still far below the species minimum", res.DiameterCm)
	}
}
