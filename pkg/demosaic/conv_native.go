//go:build !purego && !js

package demosaic

import (
	"image"

	"gocv.io/x/gocv"
)

// convolveSame is a zero-padded 2D convolution whose output has the size of
// src, as scipy's convolve2d(src, k, 'same') computes it. OpenCV threads
// Filter2D internally, so workers is unused here.
func convolveSame(src []float64, rows, cols int, k *Kernel, _ int) []float64 {
	srcMat := newFloat64Mat(rows, cols, src)
	defer srcMat.Close()

	kernel := newFloat64Mat(k.Size(), k.Size(), k.coef)
	defer kernel.Close()
	// Filter2D correlates; flipping both axes turns it into convolution.
	flipped := gocv.NewMat()
	defer flipped.Close()
	gocv.Flip(kernel, &flipped, -1)

	dstMat := gocv.NewMat()
	defer dstMat.Close()
	gocv.Filter2D(srcMat, &dstMat, gocv.MatTypeCV64F, flipped, image.Pt(-1, -1), 0, gocv.BorderConstant)

	out := make([]float64, rows*cols)
	data, err := dstMat.DataPtrFloat64()
	if err != nil {
		panic("demosaic: reading Filter2D output: " + err.Error())
	}
	copy(out, data)
	return out
}

func newFloat64Mat(rows, cols int, values []float64) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV64F)
	data, err := m.DataPtrFloat64()
	if err != nil {
		m.Close()
		panic("demosaic: allocating CV_64F mat: " + err.Error())
	}
	copy(data, values)
	return m
}
