package demosaic

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Image holds three reconstructed planes interleaved as R, G, B per cell.
// Known follows the same layout and keeps each plane's sample mask.
type Image struct {
	Rows  int
	Cols  int
	Pix   []float64
	Known []bool
}

// Assemble stacks three equal-size planes into an Image.
func Assemble(r, g, b *Plane) (*Image, error) {
	if err := checkPlanes(r, g, b); err != nil {
		return nil, err
	}
	n := r.Rows * r.Cols
	img := &Image{
		Rows:  r.Rows,
		Cols:  r.Cols,
		Pix:   make([]float64, 3*n),
		Known: make([]bool, 3*n),
	}
	for c, p := range [3]*Plane{r, g, b} {
		for i := 0; i < n; i++ {
			img.Pix[3*i+c] = p.Pix[i]
			img.Known[3*i+c] = p.Known[i]
		}
	}
	return img, nil
}

// Channel projects one plane back out of the image.
func (im *Image) Channel(c Channel) *Plane {
	p := NewPlane(im.Rows, im.Cols)
	for i := range p.Pix {
		p.Pix[i] = im.Pix[3*i+int(c)]
		p.Known[i] = im.Known[3*i+int(c)]
	}
	return p
}

// At returns the three channel values at (row, col).
func (im *Image) At(row, col int) (r, g, b float64) {
	i := 3 * (row*im.Cols + col)
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

// Dense reports whether every channel is sampled at every cell.
func (im *Image) Dense() bool {
	for _, k := range im.Known {
		if !k {
			return false
		}
	}
	return true
}

// Crop drops margin cells from every edge, typically Border after gradient
// correction.
func (im *Image) Crop(margin int) (*Image, error) {
	if margin < 0 || 2*margin >= im.Rows || 2*margin >= im.Cols {
		return nil, fmt.Errorf("%w: cannot crop %d from %dx%d", ErrInvalidGeometry, margin, im.Rows, im.Cols)
	}
	rows, cols := im.Rows-2*margin, im.Cols-2*margin
	out := &Image{
		Rows:  rows,
		Cols:  cols,
		Pix:   make([]float64, 3*rows*cols),
		Known: make([]bool, 3*rows*cols),
	}
	for y := 0; y < rows; y++ {
		src := 3 * ((y+margin)*im.Cols + margin)
		dst := 3 * y * cols
		copy(out.Pix[dst:dst+3*cols], im.Pix[src:src+3*cols])
		copy(out.Known[dst:dst+3*cols], im.Known[src:src+3*cols])
	}
	return out, nil
}

// RGBA64 converts to a 16-bit image for encoders. Values are clamped to
// [0, 1]; unsampled channels render as 0.
func (im *Image) RGBA64() *image.RGBA64 {
	dst := image.NewRGBA64(image.Rect(0, 0, im.Cols, im.Rows))
	for y := 0; y < im.Rows; y++ {
		for x := 0; x < im.Cols; x++ {
			i := 3 * (y*im.Cols + x)
			dst.SetRGBA64(x, y, color.RGBA64{
				R: im.quantize(i),
				G: im.quantize(i + 1),
				B: im.quantize(i + 2),
				A: 0xffff,
			})
		}
	}
	return dst
}

func (im *Image) quantize(i int) uint16 {
	if !im.Known[i] {
		return 0
	}
	return uint16(math.Round(clampFloat64(im.Pix[i], 0, 1) * 0xffff))
}

func clampFloat64(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
