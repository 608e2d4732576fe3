package demosaic

import (
	"fmt"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/astrogo/fitsio"
	"golang.org/x/image/tiff"
)

// Output formats understood by WriteImage.
const (
	FormatPNG  = "png"
	FormatTIFF = "tiff"
	FormatFITS = "fits"
	FormatJPEG = "jpeg"
)

// WriteImage encodes img in the named format. JPEG goes through the preview
// renderer and is scaled to previewWidth when that is positive.
func WriteImage(w io.Writer, img *Image, format string, previewWidth int) error {
	switch strings.ToLower(format) {
	case FormatPNG:
		return WritePNG(w, img)
	case FormatTIFF, "tif":
		return WriteTIFF(w, img)
	case FormatFITS, "fit":
		return WriteFits(w, img, nil)
	case FormatJPEG, "jpg":
		b, err := RenderComparisonBytes([]Panel{{Image: img}}, previewWidth)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// ContentType returns the MIME type for an output format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatPNG:
		return "image/png"
	case FormatTIFF, "tif":
		return "image/tiff"
	case FormatFITS, "fit":
		return "image/fits"
	case FormatJPEG, "jpg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// WritePNG writes a 16-bit RGBA PNG clamped to [0, 1].
func WritePNG(w io.Writer, img *Image) error {
	return png.Encode(w, img.RGBA64())
}

// WriteTIFF writes a deflate-compressed 16-bit RGBA TIFF clamped to [0, 1].
func WriteTIFF(w io.Writer, img *Image) error {
	return tiff.Encode(w, img.RGBA64(), &tiff.Options{Compression: tiff.Deflate})
}

// WriteFits streams img as a BITPIX=-64 cube of three planes (R, G, B),
// unclamped. Unsampled cells are written as NaN.
func WriteFits(w io.Writer, img *Image, metadata []fitsio.Card) error {
	metadata = append(metadata,
		fitsio.Card{Name: "BAYERPAT", Value: Pattern, Comment: "source CFA"},
		fitsio.Card{Name: "CTYPE3", Value: "RGB", Comment: "plane order"},
	)
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()

	im := fitsio.NewImage(-64, []int{img.Cols, img.Rows, 3})
	defer im.Close()
	if err := im.Header().Append(metadata...); err != nil {
		return err
	}

	n := img.Rows * img.Cols
	planar := make([]float64, 3*n)
	for c := 0; c < 3; c++ {
		for i := 0; i < n; i++ {
			v := math.NaN()
			if img.Known[3*i+c] {
				v = img.Pix[3*i+c]
			}
			planar[c*n+i] = v
		}
	}
	if err := im.Write(planar); err != nil {
		return err
	}
	return fits.Write(im)
}
