package raster

// Mask is a per-pixel probability grid in [0, 1]: the likelihood that a
// pixel belongs to tree tissue. A Mask is owned by a single pipeline run
// and never shared between runs.
type Mask struct {
	Width  int
	Height int
	Data   []float64
}

// NewMask returns a zeroed mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Data: make([]float64, width*height)}
}

// At returns the probability at (x, y); out-of-bounds reads return 0.
func (m *Mask) At(x, y int) float64 {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0
	}
	return m.Data[y*m.Width+x]
}

// Set writes the probability at (x, y). Out-of-bounds writes are ignored.
func (m *Mask) Set(x, y int, v float64) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	m.Data[y*m.Width+x] = v
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	out := &Mask{Width: m.Width, Height: m.Height, Data: make([]float64, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// Fraction returns the fraction of pixels with probability above the threshold.
func (m *Mask) Fraction(threshold float64) float64 {
	if len(m.Data) == 0 {
		return 0
	}
	count := 0
	for _, v := range m.Data {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(m.Data))
}

// Dilate max-filters the mask over a square structuring element of the
// given radius and returns a new mask.
func (m *Mask) Dilate(radius int) *Mask {
	return m.rankFilter(radius, true)
}

// Erode min-filters the mask over a square structuring element of the
// given radius and returns a new mask.
func (m *Mask) Erode(radius int) *Mask {
	return m.rankFilter(radius, false)
}

// Close performs a morphological close (dilate then erode), filling small
// gaps without growing the outer boundary.
func (m *Mask) Close(radius int) *Mask {
	return m.Dilate(radius).Erode(radius)
}

func (m *Mask) rankFilter(radius int, takeMax bool) *Mask {
	if radius < 1 {
		return m.Clone()
	}
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			best := m.Data[y*m.Width+x]
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= m.Height {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= m.Width {
						continue
					}
					v := m.Data[ny*m.Width+nx]
					if takeMax {
						if v > best {
							best = v
						}
					} else if v < best {
						best = v
					}
				}
			}
			out.Data[y*m.Width+x] = best
		}
	}
	return out
}
