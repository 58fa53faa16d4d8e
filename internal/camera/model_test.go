package camera

import (
	"math"
	"testing"
)

func TestDefault_FocalFromFOV(t *testing.T) {
	m := Default(800, 600)

	if !m.Valid() {
		t.Fatal("default model should be valid")
	}
	// focalPx = (w/2) / tan(hfov/2)
	want := 400.0 / math.Tan(65.0/2*math.Pi/180)
	if math.Abs(m.FocalPx-want) > 1e-9 {
		t.Errorf("FocalPx = %f, want %f", m.FocalPx, want)
	}
	if m.FromEXIF {
		t.Error("default model must not claim EXIF origin")
	}
}

func TestFromMetadata_35mmEquivalent(t *testing.T) {
	// 26mm equivalent is a typical phone main camera.
	m := FromMetadata(4000, 3000, Metadata{FocalLength35MM: 26})

	wantHFOV := 2 * math.Atan(18.0/26.0) * 180 / math.Pi
	if math.Abs(m.HFOVDeg-wantHFOV) > 1e-9 {
		t.Errorf("HFOVDeg = %f, want %f", m.HFOVDeg, wantHFOV)
	}
	if !m.FromEXIF {
		t.Error("metadata-derived model should be flagged FromEXIF")
	}
}

func TestFromMetadata_NoUsableFocal(t *testing.T) {
	m := FromMetadata(800, 600, Metadata{FocalLengthMM: 4.2})
	if m.FromEXIF {
		t.Error("plain focal length without 35mm equivalent cannot fix the FOV")
	}
	if m.HFOVDeg != DefaultHFOVDegrees {
		t.Errorf("HFOVDeg = %f, want default %f", m.HFOVDeg, DefaultHFOVDegrees)
	}
}

func TestProjection_RoundTrip(t *testing.T) {
	m := Default(800, 600)

	// An object of 40cm at 250cm distance spans some pixels; reprojecting
	// must return the original size.
	px := 40.0 * m.FocalPx / 250.0
	if got := m.RealSizeCm(px, 250.0); math.Abs(got-40.0) > 1e-9 {
		t.Errorf("RealSizeCm round trip = %f, want 40", got)
	}
	if got := m.DistanceCm(40.0, px); math.Abs(got-250.0) > 1e-9 {
		t.Errorf("DistanceCm round trip = %f, want 250", got)
	}
}

func TestDistanceCm_ZeroPixels(t *testing.T) {
	m := Default(800, 600)
	if got := m.DistanceCm(40.0, 0); got != 0 {
		t.Errorf("DistanceCm with zero pixels = %f, want 0", got)
	}
}
