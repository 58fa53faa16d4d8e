// Package camera derives a pinhole camera model for a photograph, either
// from defaults or from embedded metadata, and provides the pixel↔real-world
// projection used by every distance estimator.
package camera

import "math"

// Default horizontal field of view for a phone main camera when no
// metadata is available.
const DefaultHFOVDegrees = 65.0

// Width of a full-frame (35mm equivalent) sensor in millimeters.
const fullFrameWidthMM = 36.0

// Model is a per-run pinhole camera model. Built once per measurement
// invocation and read-only afterwards.
type Model struct {
	FocalPx  float64 // focal length expressed in pixels
	HFOVDeg  float64 // horizontal field of view, degrees
	VFOVDeg  float64 // vertical field of view, degrees
	Width    int     // image width in pixels
	Height   int     // image height in pixels
	FromEXIF bool    // true when refined by embedded metadata
}

// Metadata holds the optional camera information extracted from an image
// file. Zero values mean "unknown".
type Metadata struct {
	FocalLengthMM   float64 // physical focal length
	FocalLength35MM float64 // 35mm-equivalent focal length
	ImageWidth      int     // recorded pixel width
	ImageHeight     int     // recorded pixel height
}

// Default builds a model from the image size alone, assuming
// DefaultHFOVDegrees.
func Default(width, height int) Model {
	return fromHFOV(width, height, DefaultHFOVDegrees, false)
}

// FromMetadata builds a model from extracted metadata, falling back to the
// default FOV when the metadata carries no usable focal length.
func FromMetadata(width, height int, meta Metadata) Model {
	f35 := meta.FocalLength35MM
	if f35 <= 0 && meta.FocalLengthMM > 0 && meta.ImageWidth > 0 {
		// Without a 35mm equivalent there is no way to know the sensor
		// size; the plain focal length alone is not enough.
		f35 = 0
	}
	if f35 <= 0 {
		return Default(width, height)
	}

	// 35mm-equivalent focal length fixes the horizontal FOV directly.
	hfov := 2 * math.Atan(fullFrameWidthMM/2/f35) * 180 / math.Pi
	return fromHFOV(width, height, hfov, true)
}

func fromHFOV(width, height int, hfovDeg float64, fromEXIF bool) Model {
	hfovRad := hfovDeg * math.Pi / 180
	focalPx := float64(width) / 2 / math.Tan(hfovRad/2)
	vfov := 2 * math.Atan(float64(height)/2/focalPx) * 180 / math.Pi
	return Model{
		FocalPx:  focalPx,
		HFOVDeg:  hfovDeg,
		VFOVDeg:  vfov,
		Width:    width,
		Height:   height,
		FromEXIF: fromEXIF,
	}
}

// Valid reports whether the model can be used for projection. Estimators
// that need the focal length are skipped when this is false.
func (m Model) Valid() bool {
	return m.FocalPx > 0 && !math.IsInf(m.FocalPx, 0) && !math.IsNaN(m.FocalPx)
}

// RealSizeCm converts a pixel extent at the given distance (cm) to a
// real-world size in centimeters.
func (m Model) RealSizeCm(pixels, distanceCm float64) float64 {
	return pixels * distanceCm / m.FocalPx
}

// DistanceCm returns the distance (cm) at which an object of known real
// size (cm) spans the given number of pixels.
func (m Model) DistanceCm(knownSizeCm, pixels float64) float64 {
	if pixels <= 0 {
		return 0
	}
	return knownSizeCm * m.FocalPx / pixels
}
