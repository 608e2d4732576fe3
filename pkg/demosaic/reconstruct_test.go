package demosaic

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func splitOf(t *testing.T, m *Mosaic) (r, g, b *Plane) {
	t.Helper()
	r, g, b, err := Split(m)
	if err != nil {
		t.Fatal(err)
	}
	return r, g, b
}

func randomMosaic(t *testing.T, rows, cols int, seed int64) *Mosaic {
	rng := rand.New(rand.NewSource(seed))
	return mosaicOf(t, rows, cols, func(int, int) float64 { return rng.Float64() })
}

// sparseByHand places samples with ColorAt without Split's parity check.
func sparseByHand(rows, cols int, f func(row, col int) float64) (r, g, b *Plane) {
	r, g, b = NewPlane(rows, cols), NewPlane(rows, cols), NewPlane(rows, cols)
	planes := [3]*Plane{r, g, b}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			planes[ColorAt(y, x)].Set(y, x, f(y, x))
		}
	}
	return r, g, b
}

func interior(rows, cols int, fn func(row, col int)) {
	for y := Border; y < rows-Border; y++ {
		for x := Border; x < cols-Border; x++ {
			fn(y, x)
		}
	}
}

func reconstructors() []Reconstructor {
	return []Reconstructor{
		&Bilinear{Workers: 1},
		&GradientCorrected{Workers: 1, Fallback: &Bilinear{Workers: 1}},
	}
}

func TestFlatFieldInterior(t *testing.T) {
	const v = 0.37
	m := mosaicOf(t, 12, 12, func(int, int) float64 { return v })
	for _, rec := range reconstructors() {
		r, g, b := splitOf(t, m)
		out := [3]*Plane{}
		var err error
		out[Red], out[Green], out[Blue], err = rec.Reconstruct(r, g, b)
		if err != nil {
			t.Fatalf("%s: %v", rec.Name(), err)
		}
		interior(12, 12, func(y, x int) {
			for _, c := range Channels {
				if !out[c].Sampled(y, x) {
					t.Fatalf("%s: %v unsampled at (%d, %d)", rec.Name(), c, y, x)
				}
				if got := out[c].At(y, x); math.Abs(got-v) > eps {
					t.Errorf("%s: %v(%d, %d) = %v, want %v", rec.Name(), c, y, x, got, v)
				}
			}
		})
	}
}

func TestBilinearUniformChannels(t *testing.T) {
	m := mosaicOf(t, 8, 8, perChannel(100, 150, 200))
	r, g, b := splitOf(t, m)
	ro, gO, bo, err := (&Bilinear{}).Reconstruct(r, g, b)
	if err != nil {
		t.Fatal(err)
	}
	img, err := Assemble(ro, gO, bo)
	if err != nil {
		t.Fatal(err)
	}
	interior(8, 8, func(y, x int) {
		rv, gv, bv := img.At(y, x)
		if math.Abs(rv-100) > eps || math.Abs(gv-150) > eps || math.Abs(bv-200) > eps {
			t.Errorf("(%d, %d) = (%v, %v, %v), want (100, 150, 200)", y, x, rv, gv, bv)
		}
	})
}

func TestBilinearIsDenseAndKeepsSamples(t *testing.T) {
	m := randomMosaic(t, 10, 12, 1)
	r, g, b := splitOf(t, m)
	out := [3]*Plane{}
	var err error
	out[Red], out[Green], out[Blue], err = (&Bilinear{Workers: 3}).Reconstruct(r, g, b)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range Channels {
		if !out[c].Dense() {
			t.Errorf("%v plane is not dense", c)
		}
	}
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			c := ColorAt(y, x)
			if got := out[c].At(y, x); math.Abs(got-m.At(y, x)) > eps {
				t.Errorf("%v(%d, %d) = %v, want sample %v", c, y, x, got, m.At(y, x))
			}
		}
	}
}

func TestBilinearEdgeIsUnderAveraged(t *testing.T) {
	m := mosaicOf(t, 8, 8, func(int, int) float64 { return 1 })
	r, g, b := splitOf(t, m)
	_, gO, _, err := (&Bilinear{}).Reconstruct(r, g, b)
	if err != nil {
		t.Fatal(err)
	}
	// R site in the corner has two of its four green neighbors
	if got := gO.At(0, 0); math.Abs(got-0.5) > eps {
		t.Errorf("G(0, 0) = %v, want 0.5", got)
	}
}

func TestReconstructDoesNotModifyInputs(t *testing.T) {
	m := randomMosaic(t, 10, 10, 2)
	for _, rec := range reconstructors() {
		r, g, b := splitOf(t, m)
		rc, gc, bc := r.Clone(), g.Clone(), b.Clone()
		if _, _, _, err := rec.Reconstruct(r, g, b); err != nil {
			t.Fatal(err)
		}
		for c, pair := range [][2]*Plane{{r, rc}, {g, gc}, {b, bc}} {
			for i := range pair[0].Pix {
				if pair[0].Pix[i] != pair[1].Pix[i] || pair[0].Known[i] != pair[1].Known[i] {
					t.Fatalf("%s modified input %v plane at %d", rec.Name(), Channel(c), i)
				}
			}
		}
	}
}

func TestReconstructDimensionMismatch(t *testing.T) {
	for _, rec := range reconstructors() {
		_, _, _, err := rec.Reconstruct(NewPlane(8, 8), NewPlane(8, 8), NewPlane(8, 6))
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("%s: got %v, want ErrDimensionMismatch", rec.Name(), err)
		}
	}
}

func TestGradientSingleRedSample(t *testing.T) {
	m := mosaicOf(t, 10, 10, func(row, col int) float64 {
		if row == 4 && col == 4 {
			return 255
		}
		return 0
	})
	r, g, b := splitOf(t, m)
	id, ref, ok := Classify(Green, r, g, b, 4, 4)
	if !ok || id != KernelGatRB || ref != Red {
		t.Fatalf("Classify(G, 4, 4) = %v, %v, %v; want GatRB, R, true", id, ref, ok)
	}
	_, gO, _, err := (&GradientCorrected{}).Reconstruct(r, g, b)
	if err != nil {
		t.Fatal(err)
	}
	got := gO.At(4, 4)
	if !(got > 0 && got < 255) {
		t.Fatalf("G(4, 4) = %v, want strictly inside (0, 255)", got)
	}
	if math.Abs(got-127.5) > eps {
		t.Errorf("G(4, 4) = %v, want 127.5", got)
	}
}

func TestGradientMinimumSize(t *testing.T) {
	const n = 7
	val := func(row, col int) float64 { return float64(1 + row*n + col) }
	r, g, b := sparseByHand(n, n, val)
	in := [3]*Plane{r, g, b}
	out := [3]*Plane{}
	var err error
	out[Red], out[Green], out[Blue], err = (&GradientCorrected{}).Reconstruct(r, g, b)
	if err != nil {
		t.Fatal(err)
	}
	filled := 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			inner := y >= Border && y < n-Border && x >= Border && x < n-Border
			for _, c := range Channels {
				switch {
				case inner:
					if !out[c].Sampled(y, x) {
						t.Errorf("%v(%d, %d) not filled", c, y, x)
					}
					if !in[c].Sampled(y, x) {
						filled++
					}
				case out[c].Sampled(y, x) != in[c].Sampled(y, x) || out[c].At(y, x) != in[c].At(y, x):
					t.Errorf("%v(%d, %d) on the border changed", c, y, x)
				}
			}
		}
	}
	// 9 interior cells, 2 missing channels each
	if filled != 18 {
		t.Errorf("filled %d interior samples, want 18", filled)
	}
}

func TestGradientTooSmall(t *testing.T) {
	_, _, _, err := (&GradientCorrected{}).Reconstruct(NewPlane(4, 6), NewPlane(4, 6), NewPlane(4, 6))
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("got %v, want ErrInvalidGeometry", err)
	}
}

func TestGradientKeepsSamplesAndZeros(t *testing.T) {
	m := mosaicOf(t, 8, 8, func(row, col int) float64 {
		if row%3 == 0 {
			return 0
		}
		return float64(row + col)
	})
	r, g, b := splitOf(t, m)
	out := [3]*Plane{}
	var err error
	out[Red], out[Green], out[Blue], err = (&GradientCorrected{}).Reconstruct(r, g, b)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			c := ColorAt(y, x)
			if !out[c].Sampled(y, x) || out[c].At(y, x) != m.At(y, x) {
				t.Errorf("%v(%d, %d) = %v (sampled %v), want sample %v", c, y, x, out[c].At(y, x), out[c].Sampled(y, x), m.At(y, x))
			}
		}
	}
	interior(m.Rows, m.Cols, func(y, x int) {
		for _, c := range Channels {
			if !out[c].Sampled(y, x) {
				t.Errorf("%v(%d, %d) not filled", c, y, x)
			}
		}
	})
}

func TestGradientUnclassified(t *testing.T) {
	// nothing sampled: no interior cell matches any case
	empty := func() (r, g, b *Plane) { return NewPlane(6, 6), NewPlane(6, 6), NewPlane(6, 6) }

	r, g, b := empty()
	if _, _, _, err := (&GradientCorrected{}).Reconstruct(r, g, b); !errors.Is(err, ErrUnclassifiedCell) {
		t.Fatalf("without fallback: got %v, want ErrUnclassifiedCell", err)
	}

	r, g, b = empty()
	out := [3]*Plane{}
	var err error
	gc := &GradientCorrected{Workers: 2, Fallback: &Bilinear{}}
	out[Red], out[Green], out[Blue], err = gc.Reconstruct(r, g, b)
	if err != nil {
		t.Fatalf("with fallback: %v", err)
	}
	for _, c := range Channels {
		if !out[c].Sampled(2, 3) || out[c].At(2, 3) != 0 {
			t.Errorf("%v(2, 3) not taken from fallback", c)
		}
		if out[c].Sampled(0, 0) {
			t.Errorf("%v(0, 0) on the border was filled", c)
		}
	}
}

type failingReconstructor struct{ calls int }

func (*failingReconstructor) Name() string { return "failing" }

func (f *failingReconstructor) Reconstruct(r, g, b *Plane) (*Plane, *Plane, *Plane, error) {
	f.calls++
	return nil, nil, nil, errors.New("boom")
}

func TestGradientFallbackOnlyWhenNeeded(t *testing.T) {
	fb := &failingReconstructor{}
	m := randomMosaic(t, 10, 10, 3)
	r, g, b := splitOf(t, m)
	if _, _, _, err := (&GradientCorrected{Fallback: fb}).Reconstruct(r, g, b); err != nil {
		t.Fatal(err)
	}
	if fb.calls != 0 {
		t.Errorf("fallback ran %d times on a fully classified mosaic", fb.calls)
	}

	r, g, b = NewPlane(6, 6), NewPlane(6, 6), NewPlane(6, 6)
	if _, _, _, err := (&GradientCorrected{Fallback: fb}).Reconstruct(r, g, b); err == nil {
		t.Fatal("fallback error was swallowed")
	}
	if fb.calls != 1 {
		t.Errorf("fallback ran %d times, want 1", fb.calls)
	}
}

func TestClassify(t *testing.T) {
	m := randomMosaic(t, 8, 8, 4)
	r, g, b := splitOf(t, m)
	tests := []struct {
		target   Channel
		row, col int
		id       KernelID
		ref      Channel
	}{
		{Green, 2, 2, KernelGatRB, Red},
		{Green, 3, 3, KernelGatRB, Blue},
		{Red, 2, 3, KernelRatGrow, Green},
		{Red, 3, 2, KernelRatGcol, Green},
		{Red, 3, 3, KernelRatB, Blue},
		{Blue, 3, 2, KernelBatGrow, Green},
		{Blue, 2, 3, KernelBatGcol, Green},
		{Blue, 2, 2, KernelBatR, Red},
	}
	for _, tt := range tests {
		id, ref, ok := Classify(tt.target, r, g, b, tt.row, tt.col)
		if !ok || id != tt.id || ref != tt.ref {
			t.Errorf("Classify(%v, %d, %d) = %v, %v, %v; want %v, %v, true",
				tt.target, tt.row, tt.col, id, ref, ok, tt.id, tt.ref)
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	m := randomMosaic(t, 32, 24, 5)
	for _, pair := range [][2]Reconstructor{
		{&Bilinear{Workers: 1}, &Bilinear{Workers: 5}},
		{&GradientCorrected{Workers: 1}, &GradientCorrected{Workers: -1}},
	} {
		a, err := Demosaic(m, pair[0])
		if err != nil {
			t.Fatal(err)
		}
		b, err := Demosaic(m, pair[1])
		if err != nil {
			t.Fatal(err)
		}
		for i := range a.Pix {
			if a.Pix[i] != b.Pix[i] || a.Known[i] != b.Known[i] {
				t.Fatalf("%s: parallel result differs at %d", pair[0].Name(), i)
			}
		}
	}
}

func TestNewReconstructor(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"bilinear", MethodBilinear},
		{" Gradient ", MethodGradient},
		{"malvar", MethodGradient},
		{"gradient-corrected", MethodGradient},
	}
	for _, tt := range tests {
		rec, err := NewReconstructor(tt.method, 1)
		if err != nil {
			t.Fatalf("NewReconstructor(%q): %v", tt.method, err)
		}
		if rec.Name() != tt.want {
			t.Errorf("NewReconstructor(%q).Name() = %q, want %q", tt.method, rec.Name(), tt.want)
		}
	}
	if _, err := NewReconstructor("ahd", 1); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("NewReconstructor(ahd) = %v, want ErrUnknownMethod", err)
	}
}
