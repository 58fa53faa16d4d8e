package distance

import (
	"math"
	"testing"

	"treemeter/internal/camera"
	"treemeter/internal/oracle"
	"treemeter/internal/raster"
	"treemeter/internal/species"
	"treemeter/internal/trunk"
	"treemeter/pkg/geometry"
)

func testInput() Input {
	cam := camera.Default(800, 600)
	return Input{
		Cam: cam,
		Bounds: &trunk.Bounds{
			Box:           geometry.RectInt{X: 200, Y: 30, Width: 400, Height: 540},
			CenterX:       400,
			LeftEdge:      380,
			RightEdge:     419,
			WidthPx:       40,
			BreastHeightY: 390,
		},
		Species:      species.Generic,
		SpeciesKnown: false,
	}
}

func TestReferenceHypotheses_Person(t *testing.T) {
	in := testInput()
	in.Detections = []oracle.Detection{
		{Class: "person", Score: 0.8, Box: geometry.RectInt{X: 50, Y: 100, Width: 80, Height: 400}},
	}
	p := DefaultParams()

	hyps := referenceHypotheses(in, p)
	if len(hyps) != 1 {
		t.Fatalf("got %d hypotheses, want 1", len(hyps))
	}
	h := hyps[0]

	// distance = 170cm × focalPx / 400px
	wantDist := 170 * in.Cam.FocalPx / 400
	if math.Abs(h.DistanceCm-wantDist) > 1e-9 {
		t.Errorf("DistanceCm = %f, want %f", h.DistanceCm, wantDist)
	}
	wantWeight := 0.85 * 0.8
	if math.Abs(h.Weight-wantWeight) > 1e-9 {
		t.Errorf("Weight = %f, want %f", h.Weight, wantWeight)
	}
}

func TestReferenceHypotheses_UnknownClassSkipped(t *testing.T) {
	in := testInput()
	in.Detections = []oracle.Detection{
		{Class: "bird", Score: 0.9, Box: geometry.RectInt{Width: 30, Height: 30}},
	}
	if hyps := referenceHypotheses(in, DefaultParams()); len(hyps) != 0 {
		t.Errorf("bird has no reliable known size; got %d hypotheses", len(hyps))
	}
}

func TestManualReference(t *testing.T) {
	in := testInput()
	in.ManualRef = &ManualReference{Type: "card", KnownWidthCm: 8.56}
	in.Detections = []oracle.Detection{
		{Class: "book", Score: 0.6, Box: geometry.RectInt{Width: 40, Height: 25}},
	}

	h, ok := manualReference(in, DefaultParams())
	if !ok {
		t.Fatal("manual reference with a detection should produce a hypothesis")
	}
	wantDist := 8.56 * in.Cam.FocalPx / 40
	if math.Abs(h.DistanceCm-wantDist) > 1e-9 {
		t.Errorf("DistanceCm = %f, want %f", h.DistanceCm, wantDist)
	}

	in.Detections = nil
	if _, ok := manualReference(in, DefaultParams()); ok {
		t.Error("manual reference without any detection should be skipped")
	}
}

func TestGroundPlane(t *testing.T) {
	in := testInput()
	p := DefaultParams()

	h, ok := groundPlane(in, p)
	if !ok {
		t.Fatal("trunk base below center should enable the ground-plane method")
	}
	// base row 570, center 300 → drop 270
	wantDist := 137 * in.Cam.FocalPx / 270
	if math.Abs(h.DistanceCm-wantDist) > 1e-9 {
		t.Errorf("DistanceCm = %f, want %f", h.DistanceCm, wantDist)
	}

	// Base above center: not usable.
	in.Bounds.Box.Height = 200 // base row 230 < 300
	if _, ok := groundPlane(in, p); ok {
		t.Error("trunk base above image center must disable the ground-plane method")
	}
}

func TestSpeciesHeight(t *testing.T) {
	in := testInput()
	in.Species = species.Lookup("oak")
	in.SpeciesKnown = true
	p := DefaultParams()

	h, ok := speciesHeight(in, p)
	if !ok {
		t.Fatal("known species with tree in frame should produce a hypothesis")
	}
	// fill = 540/600 = 0.9 → visible fraction 0.85
	wantDist := 21 * 100 * 0.85 * in.Cam.FocalPx / 540
	if math.Abs(h.DistanceCm-wantDist) > 1e-6 {
		t.Errorf("DistanceCm = %f, want %f", h.DistanceCm, wantDist)
	}

	in.SpeciesKnown = false
	if _, ok := speciesHeight(in, p); ok {
		t.Error("unknown species must not produce a species-height hypothesis")
	}
}

func TestCrownAllometry_InvertsPowerLaw(t *testing.T) {
	in := testInput()
	in.Species = species.Lookup("oak")
	p := DefaultParams()

	// Build a mask whose crown row has a known width.
	mask := raster.NewMask(800, 600)
	crownY := in.Bounds.Box.Y + int(float64(in.Bounds.Box.Height)*p.CrownRowFrac)
	for x := 250; x < 550; x++ { // 300 px crown
		mask.Set(x, crownY, 0.9)
	}
	in.Mask = mask

	h, ok := crownAllometry(in, p)
	if !ok {
		t.Fatal("crown wider than trunk should produce a hypothesis")
	}

	// The reported DBH must satisfy the forward power law:
	// ratio = 100·A·DBH^(B−1)
	ratio := 300.0 / 40.0
	sp := in.Species
	forward := 100 * sp.CrownCoeffA * math.Pow(h.DiameterCm, sp.CrownExpB-1)
	if math.Abs(forward-ratio) > 1e-6 {
		t.Errorf("inverted DBH %.2f does not satisfy the power law: ratio %f vs %f",
			h.DiameterCm, forward, ratio)
	}
}

func TestFOVFallback_Tiers(t *testing.T) {
	tests := []struct {
		fill float64
		want float64
	}{
		{0.90, 180},
		{0.70, 250},
		{0.40, 350},
		{0.20, 500},
	}
	for _, tt := range tests {
		if got := fillToDistance(tt.fill); got != tt.want {
			t.Errorf("fillToDistance(%.2f) = %f, want %f", tt.fill, got, tt.want)
		}
	}

	in := testInput()
	h := fovFallback(in, DefaultParams())
	if h.Weight != 0.20 {
		t.Errorf("fallback weight = %f, want 0.20", h.Weight)
	}
}

func TestEstimate_AlwaysHasFallback(t *testing.T) {
	in := testInput()
	hyps := Estimate(in, DefaultParams())
	if len(hyps) == 0 {
		t.Fatal("estimate produced no hypotheses")
	}
	found := false
	for _, h := range hyps {
		if h.Method == MethodFOVFallback {
			found = true
		}
		if h.DiameterCm < 3 || h.DiameterCm > 250 {
			t.Errorf("%s diameter %.1f outside [3, 250]", h.Method, h.DiameterCm)
		}
	}
	if !found {
		t.Error("FOV fallback missing from estimate output")
	}
}

func TestCorrect_Clamps(t *testing.T) {
	p := DefaultParams()
	if got := p.Correct(1); got != 3 {
		t.Errorf("Correct(1) = %f, want clamp to 3", got)
	}
	if got := p.Correct(1000); got != 250 {
		t.Errorf("Correct(1000) = %f, want clamp to 250", got)
	}
	// Correction chain shrinks slightly.
	if got := p.Correct(100); got >= 100 || got < 80 {
		t.Errorf("Correct(100) = %f, want slightly under 100", got)
	}
}
