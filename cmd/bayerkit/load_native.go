//go:build !purego && !js

package main

import (
	"fmt"

	"gocv.io/x/gocv"

	dm "bayerkit/pkg/demosaic"
)

func loadNonFitsImage(path string) (*dm.RawFrame, error) {
	src := gocv.IMRead(path, gocv.IMReadUnchanged)
	if src.Empty() {
		return nil, fmt.Errorf("could not load image: %s", path)
	}
	defer src.Close()

	if src.Channels() != 1 {
		return nil, fmt.Errorf("%s: want a single-channel mosaic, got %d channels", path, src.Channels())
	}
	w, h := src.Cols(), src.Rows()
	n := w * h
	pixels := make([]uint16, n)

	switch src.Type() {
	case gocv.MatTypeCV16U:
		data, err := src.DataPtrUint16()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		copy(pixels, data[:n])
		return dm.NewRawFrame(pixels, 16, h, w)
	case gocv.MatTypeCV8U:
		data, err := src.DataPtrUint8()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		for i := 0; i < n; i++ {
			pixels[i] = uint16(data[i])
		}
		return dm.NewRawFrame(pixels, 8, h, w)
	default:
		return nil, fmt.Errorf("%s: unsupported pixel type %v", path, src.Type())
	}
}
