//go:build purego || js

package main

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	dm "bayerkit/pkg/demosaic"
)

func loadNonFitsImage(path string) (*dm.RawFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return dm.ReadTIFF(f)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]uint16, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Convert to grayscale luminance (uint16 range)
			gray := uint16((19595*r + 38470*g + 7471*b + 1<<15) >> 16)
			pixels[y*w+x] = gray
		}
	}

	return dm.NewRawFrame(pixels, 16, h, w)
}
