package demosaic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGeometry reports dimensions that are not positive and even,
	// or too small for the 5x5 correction neighborhood.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrDimensionMismatch reports planes of unequal size.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnclassifiedCell reports a missing interior sample that matches no
	// gradient-correction case while no fallback is configured.
	ErrUnclassifiedCell = errors.New("unclassified cell")

	ErrInvalidLevels      = errors.New("invalid black/white levels")
	ErrUnsupportedPattern = errors.New("unsupported CFA pattern")
	ErrUnknownMethod      = errors.New("unknown demosaic method")
)

const (
	// Border is the margin, in cells, that gradient correction never touches.
	Border = 2

	// MinSize is the smallest side a 5x5 neighborhood fits in.
	MinSize = 2*Border + 1
)

// Mosaic is a single-channel sensor readout sampled under the RGGB pattern.
// Pix is row-major with len(Pix) == Rows*Cols.
type Mosaic struct {
	Rows int
	Cols int
	Pix  []float64
}

// NewMosaic wraps pix as a mosaic after validating the geometry.
// pix is not copied.
func NewMosaic(rows, cols int, pix []float64) (*Mosaic, error) {
	if err := ValidateGeometry(rows, cols); err != nil {
		return nil, err
	}
	if len(pix) != rows*cols {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrDimensionMismatch, len(pix), rows, cols)
	}
	return &Mosaic{Rows: rows, Cols: cols, Pix: pix}, nil
}

// ValidateGeometry checks that a mosaic of rows x cols covers whole CFA tiles
// and is large enough for the 5x5 neighborhood.
func ValidateGeometry(rows, cols int) error {
	if rows <= 0 || cols <= 0 || rows%2 != 0 || cols%2 != 0 {
		return fmt.Errorf("%w: %dx%d is not positive and even", ErrInvalidGeometry, rows, cols)
	}
	if rows < MinSize || cols < MinSize {
		return fmt.Errorf("%w: %dx%d is smaller than %dx%d", ErrInvalidGeometry, rows, cols, MinSize, MinSize)
	}
	return nil
}

func (m *Mosaic) At(row, col int) float64 { return m.Pix[row*m.Cols+col] }

// Clone returns a deep copy.
func (m *Mosaic) Clone() *Mosaic {
	pix := make([]float64, len(m.Pix))
	copy(pix, m.Pix)
	return &Mosaic{Rows: m.Rows, Cols: m.Cols, Pix: pix}
}

// Plane is one color channel aligned with the mosaic. Known marks the cells
// that hold a sample; Pix is 0 wherever Known is false.
type Plane struct {
	Rows  int
	Cols  int
	Pix   []float64
	Known []bool
}

// NewPlane returns a plane with every cell unsampled.
func NewPlane(rows, cols int) *Plane {
	return &Plane{
		Rows:  rows,
		Cols:  cols,
		Pix:   make([]float64, rows*cols),
		Known: make([]bool, rows*cols),
	}
}

func (p *Plane) At(row, col int) float64 { return p.Pix[row*p.Cols+col] }

// Sampled reports whether (row, col) holds a value. Out-of-range cells are
// never sampled.
func (p *Plane) Sampled(row, col int) bool {
	if row < 0 || col < 0 || row >= p.Rows || col >= p.Cols {
		return false
	}
	return p.Known[row*p.Cols+col]
}

// Set stores v at (row, col) and marks it sampled.
func (p *Plane) Set(row, col int, v float64) {
	i := row*p.Cols + col
	p.Pix[i] = v
	p.Known[i] = true
}

// Clear marks (row, col) unsampled.
func (p *Plane) Clear(row, col int) {
	i := row*p.Cols + col
	p.Pix[i] = 0
	p.Known[i] = false
}

func (p *Plane) Clone() *Plane {
	c := &Plane{
		Rows:  p.Rows,
		Cols:  p.Cols,
		Pix:   make([]float64, len(p.Pix)),
		Known: make([]bool, len(p.Known)),
	}
	copy(c.Pix, p.Pix)
	copy(c.Known, p.Known)
	return c
}

// Dense reports whether every cell is sampled.
func (p *Plane) Dense() bool {
	for _, k := range p.Known {
		if !k {
			return false
		}
	}
	return true
}

// samples returns Pix with unsampled cells forced to zero, so window sums
// never see stray values behind a cleared mask.
func (p *Plane) samples() []float64 {
	out := make([]float64, len(p.Pix))
	for i, v := range p.Pix {
		if p.Known[i] {
			out[i] = v
		}
	}
	return out
}

func (p *Plane) sameSize(o *Plane) bool {
	return p.Rows == o.Rows && p.Cols == o.Cols
}

func checkPlanes(r, g, b *Plane) error {
	if r == nil || g == nil || b == nil {
		return fmt.Errorf("%w: nil plane", ErrDimensionMismatch)
	}
	if !r.sameSize(g) || !r.sameSize(b) {
		return fmt.Errorf("%w: R %dx%d, G %dx%d, B %dx%d",
			ErrDimensionMismatch, r.Rows, r.Cols, g.Rows, g.Cols, b.Rows, b.Cols)
	}
	for _, p := range []*Plane{r, g, b} {
		if len(p.Pix) != p.Rows*p.Cols || len(p.Known) != p.Rows*p.Cols {
			return fmt.Errorf("%w: plane backing has %d values for %dx%d",
				ErrDimensionMismatch, len(p.Pix), p.Rows, p.Cols)
		}
	}
	return nil
}
