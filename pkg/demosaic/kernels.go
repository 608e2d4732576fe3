package demosaic

import "fmt"

// Kernel is an immutable, centered, square matrix of coefficients.
type Kernel struct {
	size   int
	coef   []float64
	weight float64
}

func newKernel(rows [][]float64) *Kernel {
	size := len(rows)
	k := &Kernel{size: size, coef: make([]float64, 0, size*size)}
	for _, row := range rows {
		if len(row) != size {
			panic(fmt.Sprintf("kernel row has %d coefficients, want %d", len(row), size))
		}
		for _, v := range row {
			k.coef = append(k.coef, v)
			k.weight += v
		}
	}
	return k
}

func (k *Kernel) Size() int { return k.size }

// Radius is the distance from the center to an edge.
func (k *Kernel) Radius() int { return k.size / 2 }

func (k *Kernel) At(row, col int) float64 { return k.coef[row*k.size+col] }

// Weight is the sum of all coefficients.
func (k *Kernel) Weight() float64 { return k.weight }

// Coefficients returns a row-major copy.
func (k *Kernel) Coefficients() []float64 {
	out := make([]float64, len(k.coef))
	copy(out, k.coef)
	return out
}

var (
	// PlusAverage averages the four orthogonal neighbors.
	PlusAverage = newKernel([][]float64{
		{0, 1.0 / 4, 0},
		{1.0 / 4, 0, 1.0 / 4},
		{0, 1.0 / 4, 0},
	})

	// DiagonalAverage averages the four diagonal neighbors.
	DiagonalAverage = newKernel([][]float64{
		{1.0 / 4, 0, 1.0 / 4},
		{0, 0, 0},
		{1.0 / 4, 0, 1.0 / 4},
	})

	// GatRB estimates green at a red or blue site.
	GatRB = newKernel([][]float64{
		{0, 0, -1, 0, 0},
		{0, 0, 2, 0, 0},
		{-1, 2, 4, 2, -1},
		{0, 0, 2, 0, 0},
		{0, 0, -1, 0, 0},
	})

	// RatGrow estimates red at a green site whose row carries red.
	RatGrow = newKernel([][]float64{
		{0, 0, 1.0 / 2, 0, 0},
		{0, -1, 0, -1, 0},
		{-1, 4, 5, 4, -1},
		{0, -1, 0, -1, 0},
		{0, 0, 1.0 / 2, 0, 0},
	})

	// RatGcol estimates red at a green site whose column carries red.
	RatGcol = newKernel([][]float64{
		{0, 0, -1, 0, 0},
		{0, -1, 4, -1, 0},
		{1.0 / 2, 0, 5, 0, 1.0 / 2},
		{0, -1, 4, -1, 0},
		{0, 0, -1, 0, 0},
	})

	// RatB estimates red at a blue site.
	RatB = newKernel([][]float64{
		{0, 0, -3.0 / 2, 0, 0},
		{0, 2, 0, 2, 0},
		{-3.0 / 2, 0, 6, 0, -3.0 / 2},
		{0, 2, 0, 2, 0},
		{0, 0, -3.0 / 2, 0, 0},
	})

	// Blue mirrors red with the channels swapped; the coefficients are shared.
	BatGrow = RatGrow
	BatGcol = RatGcol
	BatR    = RatB
)

// KernelID names an entry of the kernel catalogue.
type KernelID int

const (
	KernelPlusAverage KernelID = iota
	KernelDiagonalAverage
	KernelGatRB
	KernelRatGrow
	KernelRatGcol
	KernelRatB
	KernelBatGrow
	KernelBatGcol
	KernelBatR
)

var catalogue = [...]struct {
	name   string
	kernel *Kernel
}{
	KernelPlusAverage:     {"PlusAverage", PlusAverage},
	KernelDiagonalAverage: {"DiagonalAverage", DiagonalAverage},
	KernelGatRB:           {"GatRB", GatRB},
	KernelRatGrow:         {"RatGrow", RatGrow},
	KernelRatGcol:         {"RatGcol", RatGcol},
	KernelRatB:            {"RatB", RatB},
	KernelBatGrow:         {"BatGrow", BatGrow},
	KernelBatGcol:         {"BatGcol", BatGcol},
	KernelBatR:            {"BatR", BatR},
}

// Kernel returns the catalogue entry, or nil for an unknown id.
func (id KernelID) Kernel() *Kernel {
	if id < 0 || int(id) >= len(catalogue) {
		return nil
	}
	return catalogue[id].kernel
}

func (id KernelID) String() string {
	if id < 0 || int(id) >= len(catalogue) {
		return "Unknown"
	}
	return catalogue[id].name
}
