package demosaic

import (
	"fmt"
	"math"
)

// NewRawFrame wraps raw sensor counts. The mosaic keeps the counts as read;
// bitDepth tells Pipeline the white level to assume when none is configured.
func NewRawFrame(pixels []uint16, bitDepth, rows, cols int) (*RawFrame, error) {
	if bitDepth <= 0 || bitDepth > 16 {
		return nil, fmt.Errorf("bit depth must be in [1, 16], got %d", bitDepth)
	}
	if len(pixels) != rows*cols {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrDimensionMismatch, len(pixels), rows, cols)
	}
	data := make([]float64, len(pixels))
	for i, p := range pixels {
		data[i] = float64(p)
	}
	m, err := NewMosaic(rows, cols, data)
	if err != nil {
		return nil, err
	}
	return &RawFrame{Mosaic: m, BitDepth: bitDepth, Metadata: NewFitsMetadata()}, nil
}

// WhiteLevel is the largest count representable in bitDepth bits.
func WhiteLevel(bitDepth int) float64 {
	return float64(uint64(1)<<uint(bitDepth) - 1)
}

// Normalize maps [black, white] to [0, 1]. Values outside the range are
// kept, not clipped.
func Normalize(m *Mosaic, black, white float64) (*Mosaic, error) {
	if !(white > black) {
		return nil, fmt.Errorf("%w: black=%g white=%g", ErrInvalidLevels, black, white)
	}
	out := &Mosaic{Rows: m.Rows, Cols: m.Cols, Pix: make([]float64, len(m.Pix))}
	scale := 1 / (white - black)
	for i, v := range m.Pix {
		out.Pix[i] = (v - black) * scale
	}
	return out, nil
}

// NormalizeMinMax stretches the mosaic's own range to [0, 1].
func NormalizeMinMax(m *Mosaic) (*Mosaic, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range m.Pix {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(m.Pix) == 0 || hi == lo {
		return nil, fmt.Errorf("%w: flat mosaic in [%g, %g]", ErrInvalidLevels, lo, hi)
	}
	return Normalize(m, lo, hi)
}

// Multipliers are per-channel white balance gains.
type Multipliers struct {
	R float64 `koanf:"R" yaml:"R"`
	G float64 `koanf:"G" yaml:"G"`
	B float64 `koanf:"B" yaml:"B"`
}

// Unity leaves the mosaic unchanged.
var Unity = Multipliers{R: 1, G: 1, B: 1}

func (w Multipliers) Validate() error {
	if !(w.R > 0 && w.G > 0 && w.B > 0) {
		return fmt.Errorf("white balance multipliers must be positive, got (%g, %g, %g)", w.R, w.G, w.B)
	}
	return nil
}

func (w Multipliers) For(c Channel) float64 {
	switch c {
	case Red:
		return w.R
	case Blue:
		return w.B
	default:
		return w.G
	}
}

// WhiteBalance scales each photosite by the multiplier of the color ColorAt
// assigns it.
func WhiteBalance(m *Mosaic, w Multipliers) (*Mosaic, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	out := &Mosaic{Rows: m.Rows, Cols: m.Cols, Pix: make([]float64, len(m.Pix))}
	for y := 0; y < m.Rows; y++ {
		rowOff := y * m.Cols
		for x := 0; x < m.Cols; x++ {
			out.Pix[rowOff+x] = m.Pix[rowOff+x] * w.For(ColorAt(y, x))
		}
	}
	return out, nil
}
