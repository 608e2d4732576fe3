//go:build purego || js

package demosaic

// convolveSame is a zero-padded 2D convolution whose output has the size of
// src, as scipy's convolve2d(src, k, 'same') computes it.
func convolveSame(src []float64, rows, cols int, k *Kernel, workers int) []float64 {
	dst := make([]float64, rows*cols)
	half := k.Radius()
	size := k.Size()

	forRowRanges(0, rows, workers, func(start, end int) error {
		for r := start; r < end; r++ {
			dstOff := r * cols
			for c := 0; c < cols; c++ {
				var sum float64
				for kr := 0; kr < size; kr++ {
					// convolution flips the kernel
					sr := r + half - kr
					if sr < 0 || sr >= rows {
						continue
					}
					srcOff := sr * cols
					for kc := 0; kc < size; kc++ {
						w := k.At(kr, kc)
						if w == 0 {
							continue
						}
						sc := c + half - kc
						if sc < 0 || sc >= cols {
							continue
						}
						sum += src[srcOff+sc] * w
					}
				}
				dst[dstOff+c] = sum
			}
		}
		return nil
	})
	return dst
}
