package demosaic

// Bilinear fills missing samples with two convolution passes per channel.
//
// Green takes the PlusAverage of its four orthogonal neighbors. Red and blue
// first take the DiagonalAverage, which fills the opposite chroma site, then a
// PlusAverage of that intermediate result, which fills the green sites.
//
// Convolution is zero padded, so cells on the outer ring are under-averaged.
// That artifact is left in place.
type Bilinear struct {
	// Workers bounds the row ranges convolved in parallel by the pure Go
	// backend. Zero or one runs inline.
	Workers int
}

func (*Bilinear) Name() string { return MethodBilinear }

// Reconstruct accepts planes of any equal size and returns planes sampled
// at every cell.
func (bl *Bilinear) Reconstruct(r, g, b *Plane) (*Plane, *Plane, *Plane, error) {
	if err := checkPlanes(r, g, b); err != nil {
		return nil, nil, nil, err
	}
	rows, cols := g.Rows, g.Cols

	gs := g.samples()
	gOut := addInto(gs, convolveSame(gs, rows, cols, PlusAverage, bl.Workers))

	return bl.chroma(r), denseFrom(rows, cols, gOut), bl.chroma(b), nil
}

// chroma reconstructs a red or blue plane.
func (bl *Bilinear) chroma(p *Plane) *Plane {
	rows, cols := p.Rows, p.Cols
	s := p.samples()
	s = addInto(s, convolveSame(s, rows, cols, DiagonalAverage, bl.Workers))
	s = addInto(s, convolveSame(s, rows, cols, PlusAverage, bl.Workers))
	return denseFrom(rows, cols, s)
}

// addInto adds src to dst element-wise and returns dst.
func addInto(dst, src []float64) []float64 {
	for i := range dst {
		dst[i] += src[i]
	}
	return dst
}

func denseFrom(rows, cols int, pix []float64) *Plane {
	known := make([]bool, len(pix))
	for i := range known {
		known[i] = true
	}
	return &Plane{Rows: rows, Cols: cols, Pix: pix, Known: known}
}
