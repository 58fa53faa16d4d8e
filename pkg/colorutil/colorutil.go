// Package colorutil provides shared color-space primitives for the tree
// measurement pipeline. These run in per-pixel inner loops, so they avoid
// allocation and keep branching to a minimum.
package colorutil

import "math"

// RGBToHSV converts RGB (0-255) to HSV with H in [0, 360), S and V in [0, 100].
func RGBToHSV(r, g, b uint8) (h, s, v float64) {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	diff := maxC - minC

	v = maxC * 100.0

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 100.0
	}

	if diff == 0 {
		h = 0
	} else if maxC == rf {
		h = 60 * math.Mod((gf-bf)/diff, 6)
	} else if maxC == gf {
		h = 60 * ((bf-rf)/diff + 2)
	} else {
		h = 60 * ((rf-gf)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	return h, s, v
}

// D65 reference white in XYZ, scaled so Y=100.
const (
	refX = 95.047
	refY = 100.000
	refZ = 108.883
)

// RGBToLab converts sRGB (0-255) to CIE L*a*b* under D65.
// Piecewise inverse gamma uses the standard 0.04045 threshold.
func RGBToLab(r, g, b uint8) (l, a, bb float64) {
	rl := srgbToLinear(float64(r) / 255.0)
	gl := srgbToLinear(float64(g) / 255.0)
	bl := srgbToLinear(float64(b) / 255.0)

	// Linear RGB → XYZ (sRGB primaries, D65).
	x := (rl*0.4124564 + gl*0.3575761 + bl*0.1804375) * 100.0
	y := (rl*0.2126729 + gl*0.7151522 + bl*0.0721750) * 100.0
	z := (rl*0.0193339 + gl*0.1191920 + bl*0.9503041) * 100.0

	fx := labF(x / refX)
	fy := labF(y / refY)
	fz := labF(z / refZ)

	l = 116.0*fy - 16.0
	a = 500.0 * (fx - fy)
	bb = 200.0 * (fy - fz)
	return l, a, bb
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

// Gray returns the luminance (0-255) of an RGB pixel using Rec. 601 weights.
func Gray(r, g, b uint8) uint8 {
	return uint8((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}

// Grayf returns the luminance of an RGB pixel as a float64 in [0, 255].
func Grayf(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
