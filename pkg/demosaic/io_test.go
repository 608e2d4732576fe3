package demosaic

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/astrogo/fitsio"
	"golang.org/x/image/tiff"
)

// unsignedFits encodes counts as a 16-bit FITS with the BZERO offset
// cameras use for unsigned data.
func unsignedFits(t *testing.T, rows, cols int, counts []uint16, cards ...fitsio.Card) []byte {
	t.Helper()
	cards = append(cards, fitsio.Card{Name: "BZERO", Value: 32768}, fitsio.Card{Name: "BSCALE", Value: 1.0})
	var buf bytes.Buffer
	f, err := fitsio.Create(&buf)
	if err != nil {
		t.Fatal(err)
	}
	im := fitsio.NewImage(16, []int{cols, rows})
	if err := im.Header().Append(cards...); err != nil {
		t.Fatal(err)
	}
	ints := make([]int16, len(counts))
	for i, c := range counts {
		ints[i] = int16(int32(c) - 32768)
	}
	if err := im.Write(ints); err != nil {
		t.Fatal(err)
	}
	if err := f.Write(im); err != nil {
		t.Fatal(err)
	}
	im.Close()
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func countsOf(rows, cols int) []uint16 {
	counts := make([]uint16, rows*cols)
	for i := range counts {
		counts[i] = uint16(i * 1000)
	}
	return counts
}

func TestReadFits(t *testing.T) {
	const rows, cols = 6, 8
	counts := countsOf(rows, cols)
	data := unsignedFits(t, rows, cols, counts,
		fitsio.Card{Name: "BAYERPAT", Value: "RGGB"},
		fitsio.Card{Name: "OBJECT", Value: "M42"},
		fitsio.Card{Name: "EXPTIME", Value: 30.0},
	)
	frame, err := ReadFitsFromBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Mosaic.Rows != rows || frame.Mosaic.Cols != cols {
		t.Fatalf("size = %dx%d, want %dx%d", frame.Mosaic.Rows, frame.Mosaic.Cols, rows, cols)
	}
	if frame.BitDepth != 16 {
		t.Errorf("BitDepth = %d, want 16", frame.BitDepth)
	}
	for i, c := range counts {
		if frame.Mosaic.Pix[i] != float64(c) {
			t.Fatalf("pixel %d = %v, want %v", i, frame.Mosaic.Pix[i], c)
		}
	}
	if got := frame.Metadata.ObjectName(); got != "M42" {
		t.Errorf("ObjectName() = %q", got)
	}
	if exp, ok := frame.Metadata.ExposureTime(); !ok || exp != 30 {
		t.Errorf("ExposureTime() = %v, %v", exp, ok)
	}
}

func TestReadFitsRejectsPattern(t *testing.T) {
	tests := []struct {
		name string
		card fitsio.Card
	}{
		{"pattern", fitsio.Card{Name: "BAYERPAT", Value: "GRBG"}},
		{"x offset", fitsio.Card{Name: "XBAYROFF", Value: 1}},
		{"y offset", fitsio.Card{Name: "YBAYROFF", Value: 1}},
	}
	for _, tt := range tests {
		data := unsignedFits(t, 6, 6, countsOf(6, 6), tt.card)
		if _, err := ReadFitsFromBytes(data); !errors.Is(err, ErrUnsupportedPattern) {
			t.Errorf("%s: got %v, want ErrUnsupportedPattern", tt.name, err)
		}
	}
}

func TestReadFitsOddGeometry(t *testing.T) {
	data := unsignedFits(t, 7, 8, countsOf(7, 8))
	if _, err := ReadFitsFromBytes(data); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("got %v, want ErrInvalidGeometry", err)
	}
}

func testImage(t *testing.T) *Image {
	t.Helper()
	r, g, b := sparseByHand(6, 6, func(row, col int) float64 { return float64(row*6+col) / 36 })
	img, err := Assemble(r, g, b)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestWriteFitsCube(t *testing.T) {
	img := testImage(t)
	var buf bytes.Buffer
	if err := WriteFits(&buf, img, []fitsio.Card{{Name: "OBJECT", Value: "test"}}); err != nil {
		t.Fatal(err)
	}

	f, err := fitsio.Open(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	hdu := f.HDU(0).(fitsio.Image)
	axes := hdu.Header().Axes()
	if len(axes) != 3 || axes[0] != 6 || axes[1] != 6 || axes[2] != 3 {
		t.Fatalf("axes = %v, want [6 6 3]", axes)
	}
	if card := hdu.Header().Get("BAYERPAT"); card == nil || card.Value != Pattern {
		t.Errorf("BAYERPAT card = %v", card)
	}
	planar := make([]float64, 3*36)
	if err := hdu.Read(&planar); err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 3; c++ {
		for i := 0; i < 36; i++ {
			got := planar[c*36+i]
			if img.Known[3*i+c] {
				if got != img.Pix[3*i+c] {
					t.Fatalf("plane %d cell %d = %v, want %v", c, i, got, img.Pix[3*i+c])
				}
			} else if !math.IsNaN(got) {
				t.Fatalf("plane %d cell %d = %v, want NaN for an unsampled cell", c, i, got)
			}
		}
	}
}

func TestReadTIFF(t *testing.T) {
	src := image.NewGray16(image.Rect(0, 0, 8, 6))
	for i := 0; i < 48; i++ {
		src.Pix[2*i] = byte(i)
		src.Pix[2*i+1] = byte(3 * i)
	}
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}
	frame, err := ReadTIFF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if frame.BitDepth != 16 || frame.Mosaic.Rows != 6 || frame.Mosaic.Cols != 8 {
		t.Fatalf("frame = %d-bit %dx%d", frame.BitDepth, frame.Mosaic.Rows, frame.Mosaic.Cols)
	}
	for i := 0; i < 48; i++ {
		want := float64(uint16(i)<<8 | uint16(3*i))
		if frame.Mosaic.Pix[i] != want {
			t.Fatalf("pixel %d = %v, want %v", i, frame.Mosaic.Pix[i], want)
		}
	}
}

func TestReadTIFF8Bit(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 6, 6))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 7)
	}
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}
	frame, err := ReadTIFF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if frame.BitDepth != 8 || frame.Mosaic.At(1, 1) != 49 {
		t.Errorf("frame = %d-bit, (1, 1) = %v", frame.BitDepth, frame.Mosaic.At(1, 1))
	}
}

func TestWriteImage(t *testing.T) {
	img := testImage(t)
	tests := []struct {
		format string
		magic  []byte
	}{
		{FormatPNG, []byte("\x89PNG")},
		{FormatTIFF, []byte("II*\x00")},
		{FormatFITS, []byte("SIMPLE")},
		{FormatJPEG, []byte{0xff, 0xd8}},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := WriteImage(&buf, img, tt.format, 64); err != nil {
			t.Fatalf("%s: %v", tt.format, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), tt.magic) {
			t.Errorf("%s output starts with %q", tt.format, buf.Bytes()[:8])
		}
		if ContentType(tt.format) == "application/octet-stream" {
			t.Errorf("ContentType(%s) not registered", tt.format)
		}
	}
	if err := WriteImage(&bytes.Buffer{}, img, "webp", 0); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestWritePNGClamps(t *testing.T) {
	img := &Image{
		Rows:  1,
		Cols:  2,
		Pix:   []float64{-1, 0.5, 2, 1, 1, 1},
		Known: []bool{true, true, true, false, true, true},
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	dec, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := dec.At(0, 0).RGBA()
	if r != 0 || g != 0x8000 || b != 0xffff {
		t.Errorf("(0, 0) = %#x %#x %#x, want 0 0x8000 0xffff", r, g, b)
	}
	if r, _, _, _ := dec.At(1, 0).RGBA(); r != 0 {
		t.Errorf("unsampled red rendered as %#x", r)
	}
}
