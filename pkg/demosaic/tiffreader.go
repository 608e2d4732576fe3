package demosaic

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/image/tiff"
)

// ReadTIFF decodes a single-channel TIFF mosaic, as written by dcraw -D -4.
// Gray images keep their raw counts; color images are reduced to luminance.
func ReadTIFF(r io.Reader) (*RawFrame, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding TIFF: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]float64, w*h)
	bitDepth := 16

	switch src := img.(type) {
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[y*w+x] = float64(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	case *image.Gray:
		bitDepth = 8
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[y*w+x] = float64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				data[y*w+x] = float64(g.Y)
			}
		}
	}

	mosaic, err := NewMosaic(h, w, data)
	if err != nil {
		return nil, fmt.Errorf("decoding TIFF: %w", err)
	}
	return &RawFrame{Mosaic: mosaic, BitDepth: bitDepth, Metadata: NewFitsMetadata()}, nil
}
