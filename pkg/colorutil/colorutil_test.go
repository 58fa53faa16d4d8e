package colorutil

import (
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestRGBToHSV_Anchors(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		h, s, v float64
	}{
		{"black", 0, 0, 0, 0, 0, 0},
		{"white", 255, 255, 255, 0, 0, 100},
		{"red", 255, 0, 0, 0, 100, 100},
		{"green", 0, 255, 0, 120, 100, 100},
		{"blue", 0, 0, 255, 240, 100, 100},
		{"mid gray", 128, 128, 128, 0, 0, 50.196},
		{"bark brown", 139, 90, 43, 29.375, 69.065, 54.510},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := RGBToHSV(tt.r, tt.g, tt.b)
			if math.Abs(h-tt.h) > 0.01 || math.Abs(s-tt.s) > 0.01 || math.Abs(v-tt.v) > 0.01 {
				t.Errorf("RGBToHSV(%d,%d,%d) = (%.3f, %.3f, %.3f), want (%.3f, %.3f, %.3f)",
					tt.r, tt.g, tt.b, h, s, v, tt.h, tt.s, tt.v)
			}
		})
	}
}

func TestRGBToHSV_HueRange(t *testing.T) {
	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 17 {
			for b := 0; b < 256; b += 17 {
				h, s, v := RGBToHSV(uint8(r), uint8(g), uint8(b))
				if h < 0 || h >= 360 {
					t.Fatalf("hue out of range for (%d,%d,%d): %f", r, g, b, h)
				}
				if s < 0 || s > 100 || v < 0 || v > 100 {
					t.Fatalf("sat/val out of range for (%d,%d,%d): %f %f", r, g, b, s, v)
				}
			}
		}
	}
}

// TestRGBToLab_CrossCheck verifies the hand-rolled Lab conversion against
// go-colorful's reference implementation (both use D65).
func TestRGBToLab_CrossCheck(t *testing.T) {
	samples := []struct{ r, g, b uint8 }{
		{0, 0, 0},
		{255, 255, 255},
		{255, 0, 0},
		{0, 128, 0},
		{139, 90, 43},   // brown bark
		{34, 139, 34},   // foliage green
		{190, 190, 185}, // light bark
	}

	for _, s := range samples {
		l, a, b := RGBToLab(s.r, s.g, s.b)

		c := colorful.Color{R: float64(s.r) / 255, G: float64(s.g) / 255, B: float64(s.b) / 255}
		wl, wa, wb := c.Lab()
		// go-colorful returns L in [0,1]; ours uses the conventional [0,100].
		wl *= 100
		wa *= 100
		wb *= 100

		if math.Abs(l-wl) > 0.5 || math.Abs(a-wa) > 0.5 || math.Abs(b-wb) > 0.5 {
			t.Errorf("RGBToLab(%d,%d,%d) = (%.2f, %.2f, %.2f), colorful says (%.2f, %.2f, %.2f)",
				s.r, s.g, s.b, l, a, b, wl, wa, wb)
		}
	}
}

func TestGray(t *testing.T) {
	if g := Gray(255, 255, 255); g != 255 {
		t.Errorf("Gray(white) = %d, want 255", g)
	}
	if g := Gray(0, 0, 0); g != 0 {
		t.Errorf("Gray(black) = %d, want 0", g)
	}
	// Green dominates luminance.
	if Gray(0, 255, 0) <= Gray(255, 0, 0) {
		t.Error("green should be brighter than red in luminance")
	}
}
