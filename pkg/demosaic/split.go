package demosaic

// Split decomposes an RGGB mosaic into three sparse planes. Each cell lands in
// exactly one plane, the one ColorAt names, and is unsampled in the other two.
//
// The mosaic must satisfy ValidateGeometry.
func Split(m *Mosaic) (r, g, b *Plane, err error) {
	if err := ValidateGeometry(m.Rows, m.Cols); err != nil {
		return nil, nil, nil, err
	}
	r = NewPlane(m.Rows, m.Cols)
	g = NewPlane(m.Rows, m.Cols)
	b = NewPlane(m.Rows, m.Cols)
	planes := [3]*Plane{r, g, b}

	for y := 0; y < m.Rows; y++ {
		rowOff := y * m.Cols
		for x := 0; x < m.Cols; x++ {
			planes[ColorAt(y, x)].Set(y, x, m.Pix[rowOff+x])
		}
	}
	return r, g, b, nil
}
