package structure

import (
	"testing"

	"treemeter/internal/raster"
	"treemeter/internal/trunk"
	"treemeter/pkg/geometry"
)

var (
	barkBrown    = [3]uint8{139, 90, 43}
	foliageGreen = [3]uint8{60, 140, 60}
	skyBlue      = [3]uint8{150, 180, 230}
)

func sceneImage(w, h, bandX0, bandX1, canopyRow int) *raster.Image {
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

func goodBounds() *trunk.Bounds {
	return &trunk.Bounds{
		Box:           geometry.RectInt{X: 60, Y: 0, Width: 280, Height: 780},
		CenterX:       200,
		LeftEdge:      180,
		RightEdge:     219,
		WidthPx:       40,
		BreastHeightY: 520,
	}
}

func TestValidate_GoodTree(t *testing.T) {
	img := sceneImage(400, 800, 180, 220, 300)
	checks, err := Validate(img, goodBounds(), false, DefaultParams(), trunk.DefaultParams())
	if err != nil {
		t.Fatalf("good tree rejected: %v", err)
	}
	if len(checks) != 6 {
		t.Errorf("expected 6 checks, got %d", len(checks))
	}
}

func TestValidate_TrunkTooWide(t *testing.T) {
	img := sceneImage(400, 800, 100, 300, 300)
	b := goodBounds()
	b.WidthPx = 200 // 50% of image width
	b.LeftEdge, b.RightEdge = 100, 299

	_, err := Validate(img, b, false, DefaultParams(), trunk.DefaultParams())
	if err == nil {
		t.Fatal("trunk at 50% of image width must be rejected")
	}
}

func TestValidate_SemanticRelaxed(t *testing.T) {
	img := sceneImage(400, 800, 100, 300, 300)
	b := goodBounds()
	b.WidthPx = 180 // 45%: over the 30% limit, under the relaxed 50%
	b.LeftEdge, b.RightEdge = 110, 289

	if _, err := Validate(img, b, true, DefaultParams(), trunk.DefaultParams()); err != nil {
		t.Errorf("semantic run should relax the trunk width check: %v", err)
	}
	if _, err := Validate(img, b, false, DefaultParams(), trunk.DefaultParams()); err == nil {
		t.Error("color-only run should enforce the strict width check")
	}

	checks, _ := Validate(img, b, true, DefaultParams(), trunk.DefaultParams())
	if len(checks) != 1 {
		t.Errorf("semantic run should apply exactly one check, got %d", len(checks))
	}
}

func TestValidate_NoCanopy(t *testing.T) {
	// Trunk band only, no green anywhere.
	img := sceneImage(400, 800, 180, 220, 0)
	_, err := Validate(img, goodBounds(), false, DefaultParams(), trunk.DefaultParams())
	if err == nil {
		t.Fatal("tree without canopy must be rejected")
	}
}

func TestValidate_WideBox(t *testing.T) {
	img := sceneImage(400, 800, 180, 220, 300)
	b := goodBounds()
	b.Box = geometry.RectInt{X: 0, Y: 0, Width: 400, Height: 200} // aspect 0.5

	_, err := Validate(img, b, false, DefaultParams(), trunk.DefaultParams())
	if err == nil {
		t.Fatal("wider-than-tall tree region must be rejected")
	}

	b.Box = geometry.RectInt{X: 60, Y: 0, Width: 280, Height: 200} // aspect ~0.71
	if _, err := Validate(img, b, false, DefaultParams(), trunk.DefaultParams()); err != nil {
		t.Errorf("aspect above the minimum must pass: %v", err)
	}
}

func TestValidate_BrokenContinuity(t *testing.T) {
	// Trunk colored only in a short stretch of the scanned region.
	img := sceneImage(400, 800, 180, 220, 300)
	for y := 330; y < 800; y++ {
		for x := 180; x < 220; x++ {
			img.SetRGBA(x, y, skyBlue[0], skyBlue[1], skyBlue[2], 255)
		}
	}

	_, err := Validate(img, goodBounds(), false, DefaultParams(), trunk.DefaultParams())
	if err == nil {
		t.Fatal("discontinuous trunk must be rejected")
	}
}
