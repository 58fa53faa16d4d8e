package raster

import "math"

// GaussianBlur convolves the image with a normalized 2D Gaussian kernel of
// the given radius (sigma = radius/2) and returns the result as a new image.
//
// A border of `radius` pixels passes through unmodified. The trunk search
// region never touches the image border, so skipping the border is cheaper
// than any padding strategy and does not change measurement results.
func GaussianBlur(src *Image, radius int) *Image {
	if radius < 1 {
		return src.Clone()
	}

	kernel := gaussianKernel(radius)
	size := 2*radius + 1
	dst := src.Clone()

	w, h := src.Width, src.Height
	for y := radius; y < h-radius; y++ {
		for x := radius; x < w-radius; x++ {
			var sumR, sumG, sumB float64
			for ky := 0; ky < size; ky++ {
				for kx := 0; kx < size; kx++ {
					i := ((y+ky-radius)*w + (x + kx - radius)) * 4
					kv := kernel[ky*size+kx]
					sumR += kv * float64(src.Pix[i])
					sumG += kv * float64(src.Pix[i+1])
					sumB += kv * float64(src.Pix[i+2])
				}
			}
			o := (y*w + x) * 4
			dst.Pix[o] = uint8(sumR + 0.5)
			dst.Pix[o+1] = uint8(sumG + 0.5)
			dst.Pix[o+2] = uint8(sumB + 0.5)
		}
	}
	return dst
}

// gaussianKernel builds a normalized (2r+1)x(2r+1) Gaussian kernel with
// sigma = r/2.
func gaussianKernel(radius int) []float64 {
	size := 2*radius + 1
	sigma := float64(radius) / 2.0
	if sigma <= 0 {
		sigma = 0.5
	}
	kernel := make([]float64, size*size)

	var sum float64
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x - radius)
			dy := float64(y - radius)
			v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			kernel[y*size+x] = v
			sum += v
		}
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}
