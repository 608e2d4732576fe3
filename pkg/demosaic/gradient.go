package demosaic

import (
	"fmt"
	"sync"
)

// GradientCorrected fills missing samples with 5x5 kernels that borrow the
// local second derivative of a neighboring channel, so edges stay sharper
// than with plain averaging. This is the Malvar-He-Cutler scheme.
//
// Cells within Border of an edge are never corrected and keep their sparse
// value. Interior cells that match no classification case are taken from
// Fallback, or fail the call with ErrUnclassifiedCell when Fallback is nil.
type GradientCorrected struct {
	// Workers bounds the row ranges corrected in parallel. Zero or one runs
	// inline; negative uses GOMAXPROCS.
	Workers int

	Fallback Reconstructor
}

func (*GradientCorrected) Name() string { return MethodGradient }

// Reconstruct needs planes of equal size, at least MinSize on each side.
// Parity is not checked here.
func (gc *GradientCorrected) Reconstruct(r, g, b *Plane) (*Plane, *Plane, *Plane, error) {
	if err := checkPlanes(r, g, b); err != nil {
		return nil, nil, nil, err
	}
	rows, cols := g.Rows, g.Cols
	if rows < MinSize || cols < MinSize {
		return nil, nil, nil, fmt.Errorf("%w: %dx%d is smaller than %dx%d", ErrInvalidGeometry, rows, cols, MinSize, MinSize)
	}

	in := [3]*Plane{r, g, b}
	out := [3]*Plane{r.Clone(), g.Clone(), b.Clone()}
	fb := &lazyFallback{rec: gc.Fallback, r: r, g: g, b: b}

	err := forRowRanges(Border, rows-Border, gc.Workers, func(start, end int) error {
		for row := start; row < end; row++ {
			for col := Border; col < cols-Border; col++ {
				for _, target := range Channels {
					if in[target].Sampled(row, col) {
						continue
					}
					id, ref, ok := Classify(target, r, g, b, row, col)
					if ok {
						out[target].Set(row, col, correct(in[target], in[ref], row, col, id.Kernel()))
						continue
					}
					if gc.Fallback == nil {
						return fmt.Errorf("%w: %s at (%d, %d)", ErrUnclassifiedCell, target, row, col)
					}
					planes, err := fb.planes()
					if err != nil {
						return fmt.Errorf("fallback %s: %w", gc.Fallback.Name(), err)
					}
					if p := planes[target]; p.Sampled(row, col) {
						out[target].Set(row, col, p.At(row, col))
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return out[Red], out[Green], out[Blue], nil
}

// Classify picks the correction kernel for a missing target sample at
// (row, col) and the plane it is blended with. The cases are tried in order
// and the first match wins; ok is false when none applies.
func Classify(target Channel, r, g, b *Plane, row, col int) (id KernelID, ref Channel, ok bool) {
	switch target {
	case Green:
		if r.Sampled(row, col) {
			return KernelGatRB, Red, true
		}
		if b.Sampled(row, col) {
			return KernelGatRB, Blue, true
		}
	case Red:
		return classifyChroma(r, g, b, Blue, row, col, KernelRatGrow, KernelRatGcol, KernelRatB)
	case Blue:
		return classifyChroma(b, g, r, Red, row, col, KernelBatGrow, KernelBatGcol, KernelBatR)
	}
	return 0, 0, false
}

// classifyChroma handles red and blue: self is the target plane, opposite the
// other chroma plane.
func classifyChroma(self, g, opposite *Plane, oppositeCh Channel, row, col int, atRow, atCol, atOpposite KernelID) (KernelID, Channel, bool) {
	if g.Sampled(row, col) && self.Sampled(row, col-1) && self.Sampled(row, col+1) {
		return atRow, Green, true
	}
	if g.Sampled(row, col) && self.Sampled(row-1, col) && self.Sampled(row+1, col) {
		return atCol, Green, true
	}
	if opposite.Sampled(row, col) {
		return atOpposite, oppositeCh, true
	}
	return 0, 0, false
}

// correct blends the target's own samples with the reference channel over
// the kernel window centered on (row, col). Unsampled cells contribute zero.
// The window must lie inside the planes.
func correct(target, ref *Plane, row, col int, k *Kernel) float64 {
	half := k.Radius()
	var sum float64
	for kr := 0; kr < k.size; kr++ {
		off := (row+kr-half)*target.Cols + col - half
		for kc := 0; kc < k.size; kc++ {
			w := k.coef[kr*k.size+kc]
			if w == 0 {
				continue
			}
			i := off + kc
			if target.Known[i] {
				sum += w * target.Pix[i]
			}
			if ref.Known[i] {
				sum += w * ref.Pix[i]
			}
		}
	}
	return sum / k.weight
}

// lazyFallback runs the fallback reconstructor at most once, on first need.
type lazyFallback struct {
	rec     Reconstructor
	r, g, b *Plane

	once sync.Once
	out  [3]*Plane
	err  error
}

func (f *lazyFallback) planes() ([3]*Plane, error) {
	f.once.Do(func() {
		f.out[Red], f.out[Green], f.out[Blue], f.err = f.rec.Reconstruct(f.r, f.g, f.b)
	})
	return f.out, f.err
}
