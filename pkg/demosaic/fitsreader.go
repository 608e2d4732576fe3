package demosaic

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"
)

// FitsMetadata holds primary header cards as strings keyed by upper-case name.
type FitsMetadata struct {
	Headers map[string]string
}

// NewFitsMetadata creates an empty FitsMetadata.
func NewFitsMetadata() *FitsMetadata {
	return &FitsMetadata{Headers: make(map[string]string)}
}

func (m *FitsMetadata) GetString(key string) string {
	return m.Headers[strings.ToUpper(key)]
}

func (m *FitsMetadata) GetDouble(key string) (float64, bool) {
	v, ok := m.Headers[strings.ToUpper(key)]
	if !ok {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return d, true
}

func (m *FitsMetadata) GetInt(key string) (int, bool) {
	v, ok := m.Headers[strings.ToUpper(key)]
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return i, true
}

func (m *FitsMetadata) ObjectName() string   { return m.GetString("OBJECT") }
func (m *FitsMetadata) CameraName() string   { return m.GetString("INSTRUME") }
func (m *FitsMetadata) BayerPattern() string { return strings.ToUpper(strings.TrimSpace(m.GetString("BAYERPAT"))) }

func (m *FitsMetadata) ExposureTime() (float64, bool) {
	if v, ok := m.GetDouble("EXPTIME"); ok {
		return v, true
	}
	return m.GetDouble("EXPOSURE")
}

// RawFrame is a mosaic in physical sensor units with the header it came with.
type RawFrame struct {
	Mosaic   *Mosaic
	BitDepth int
	Metadata *FitsMetadata
}

// ReadFits reads the primary image HDU of a FITS file.
func ReadFits(filePath string) (*RawFrame, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening FITS file: %w", err)
	}
	defer f.Close()
	return ReadFitsFrom(f)
}

// ReadFitsFromBytes reads the primary image HDU from an in-memory FITS file.
func ReadFitsFromBytes(data []byte) (*RawFrame, error) {
	return ReadFitsFrom(bytes.NewReader(data))
}

// ReadFitsFrom reads the primary image HDU. BZERO and BSCALE are applied.
// A BAYERPAT card naming anything but RGGB, or a non-zero Bayer offset, is
// rejected with ErrUnsupportedPattern.
func ReadFitsFrom(r io.ReadSeeker) (*RawFrame, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("reading FITS: %w", err)
	}
	defer f.Close()

	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("reading FITS: primary HDU is not an image")
	}
	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) != 2 {
		return nil, fmt.Errorf("reading FITS: want a 2-D mosaic, got NAXIS=%d", len(axes))
	}
	cols, rows := axes[0], axes[1]

	metadata := NewFitsMetadata()
	for _, key := range hdr.Keys() {
		card := hdr.Get(key)
		if card == nil || card.Value == nil {
			continue
		}
		metadata.Headers[strings.ToUpper(key)] = strings.TrimSpace(fmt.Sprint(card.Value))
	}
	if pat := metadata.BayerPattern(); pat != "" && pat != Pattern {
		return nil, fmt.Errorf("%w: BAYERPAT=%s, want %s", ErrUnsupportedPattern, pat, Pattern)
	}
	for _, key := range []string{"XBAYROFF", "YBAYROFF"} {
		if off, ok := metadata.GetInt(key); ok && off%2 != 0 {
			return nil, fmt.Errorf("%w: %s=%d shifts the pattern", ErrUnsupportedPattern, key, off)
		}
	}

	data, err := readPixels(img, hdr.Bitpix(), rows*cols)
	if err != nil {
		return nil, fmt.Errorf("reading FITS pixel data: %w", err)
	}
	bzero := cardFloat(hdr, "BZERO", 0)
	bscale := cardFloat(hdr, "BSCALE", 1)
	if bzero != 0 || bscale != 1 {
		for i, v := range data {
			data[i] = v*bscale + bzero
		}
	}

	mosaic, err := NewMosaic(rows, cols, data)
	if err != nil {
		return nil, fmt.Errorf("reading FITS: %w", err)
	}
	return &RawFrame{
		Mosaic:   mosaic,
		BitDepth: effectiveBitDepth(hdr.Bitpix()),
		Metadata: metadata,
	}, nil
}

// readPixels reads n samples in the on-disk type BITPIX names and widens
// them to float64. Scaling is left to the caller.
func readPixels(img fitsio.Image, bitpix, n int) ([]float64, error) {
	out := make([]float64, n)
	switch bitpix {
	case 8:
		buf := make([]byte, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case 16:
		buf := make([]int16, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case 32:
		buf := make([]int32, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case 64:
		buf := make([]int64, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case -32:
		buf := make([]float32, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case -64:
		if err := img.Read(&out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
	return out, nil
}

// effectiveBitDepth maps BITPIX to the sensor range callers normalize by.
// Floating point and 32-bit data are treated as 16-bit counts.
func effectiveBitDepth(bitpix int) int {
	if bitpix == 8 {
		return 8
	}
	return 16
}

func cardFloat(hdr *fitsio.Header, name string, def float64) float64 {
	card := hdr.Get(name)
	if card == nil {
		return def
	}
	switch v := card.Value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case string:
		if d, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return d
		}
	}
	return def
}
