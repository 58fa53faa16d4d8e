// Package raster provides the in-memory image and mask types the measurement
// pipeline operates on, plus the low-level raster operations (Gaussian blur,
// binary morphology) every later stage builds upon.
package raster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/tiff"

	"treemeter/pkg/colorutil"
)

// Image is an RGBA8 pixel buffer. The pipeline treats a caller-supplied
// Image as immutable: every operation that changes pixels returns a copy.
type Image struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = Width*Height*4
}

// New returns a zeroed image of the given size.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// FromImage copies a decoded image.Image into an RGBA8 buffer.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := New(w, h)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			dst.Pix[i] = uint8(r >> 8)
			dst.Pix[i+1] = uint8(g >> 8)
			dst.Pix[i+2] = uint8(b >> 8)
			dst.Pix[i+3] = uint8(a >> 8)
			i += 4
		}
	}
	return dst
}

// Load reads and decodes an image file (JPEG, PNG or TIFF).
func Load(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return FromImage(decoded), nil
}

// Decode decodes an image stream (JPEG, PNG or TIFF).
func Decode(r io.Reader) (*Image, error) {
	decoded, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(decoded), nil
}

// RGBA returns the channel values of the pixel at (x, y).
// The caller is responsible for bounds.
func (m *Image) RGBA(x, y int) (r, g, b, a uint8) {
	i := (y*m.Width + x) * 4
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]
}

// SetRGBA sets the pixel at (x, y).
func (m *Image) SetRGBA(x, y int, r, g, b, a uint8) {
	i := (y*m.Width + x) * 4
	m.Pix[i] = r
	m.Pix[i+1] = g
	m.Pix[i+2] = b
	m.Pix[i+3] = a
}

// Gray returns the luminance of the pixel at (x, y) in [0, 255].
func (m *Image) Gray(x, y int) float64 {
	i := (y*m.Width + x) * 4
	return colorutil.Grayf(m.Pix[i], m.Pix[i+1], m.Pix[i+2])
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := &Image{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// ToImage converts back to a standard library image for encoding or
// handoff to an oracle adapter.
func (m *Image) ToImage() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	copy(out.Pix, m.Pix)
	return out
}
