package demosaic

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	defaultPanelWidth = 800
	panelGap          = 10
	headerH           = 24
	summaryLineH      = 18
)

// Panel is one labelled image on a comparison sheet. When Zones is set the
// 3x3 zone grid and per-zone differences are drawn over it.
type Panel struct {
	Label string
	Image *Image
	Zones *ZoneComparison
}

// RenderComparison writes a side-by-side JPEG sheet of panels to outputPath.
func RenderComparison(panels []Panel, panelWidth int, outputPath string) error {
	img, err := renderSheet(panels, panelWidth)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create comparison file: %w", err)
	}
	defer f.Close()

	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

// RenderComparisonBytes renders the sheet and returns it as JPEG bytes.
func RenderComparisonBytes(panels []Panel, panelWidth int) ([]byte, error) {
	img, err := renderSheet(panels, panelWidth)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderSheet lays panels out left to right, each scaled to panelWidth,
// with a label above and a summary band below.
func renderSheet(panels []Panel, panelWidth int) (*image.RGBA, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("no panels to render")
	}
	if panelWidth <= 0 {
		panelWidth = defaultPanelWidth
	}

	panelH := 0
	summaryLines := 1
	for i, p := range panels {
		if p.Image == nil || p.Image.Rows == 0 || p.Image.Cols == 0 {
			return nil, fmt.Errorf("panel %d has no image", i)
		}
		h := p.Image.Rows * panelWidth / p.Image.Cols
		if h > panelH {
			panelH = h
		}
		if p.Zones != nil {
			summaryLines = 2
		}
	}
	if panelH < 1 {
		panelH = 1
	}

	sheetW := len(panels)*panelWidth + (len(panels)+1)*panelGap
	summaryH := summaryLines*summaryLineH + panelGap
	sheetH := headerH + panelH + summaryH
	sheet := image.NewRGBA(image.Rect(0, 0, sheetW, sheetH))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 255}), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	textColor := color.RGBA{255, 255, 255, 255}
	summaryColor := color.RGBA{220, 220, 220, 255}

	for i, p := range panels {
		x0 := panelGap + i*(panelWidth+panelGap)
		h := p.Image.Rows * panelWidth / p.Image.Cols
		if h < 1 {
			h = 1
		}
		rect := image.Rect(x0, headerH, x0+panelWidth, headerH+h)
		src := p.Image.RGBA64()
		draw.CatmullRom.Scale(sheet, rect, src, src.Bounds(), draw.Src, nil)

		drawCenteredText(sheet, face, p.Label, x0+panelWidth/2, headerH-8, textColor)
		if p.Zones != nil {
			drawZoneGrid(sheet, rect, p.Zones)
		}

		summaryY := headerH + panelH + summaryLineH
		drawText(sheet, face, fmt.Sprintf("%dx%d", p.Image.Cols, p.Image.Rows), x0, summaryY, summaryColor)
		if p.Zones != nil {
			line := fmt.Sprintf("mean |diff| %.4f  off-axis %.1f%%  worst %s", p.Zones.MeanAbsDiff, p.Zones.OffAxisPct, p.Zones.WorstZone)
			if !p.Zones.Reliable {
				line += "  [FEW SAMPLES]"
			}
			drawText(sheet, face, line, x0, summaryY+summaryLineH, summaryColor)
		}
	}
	return sheet, nil
}

// drawZoneGrid draws the 3x3 field grid over rect and prints each zone's
// mean absolute difference at its center.
func drawZoneGrid(img *image.RGBA, rect image.Rectangle, zones *ZoneComparison) {
	w, h := rect.Dx(), rect.Dy()
	xLo := rect.Min.X + int(float64(w)*fieldEdgeFraction)
	xHi := rect.Min.X + int(float64(w)*(1.0-fieldEdgeFraction))
	yLo := rect.Min.Y + int(float64(h)*fieldEdgeFraction)
	yHi := rect.Min.Y + int(float64(h)*(1.0-fieldEdgeFraction))

	xBounds := [3][2]int{{rect.Min.X, xLo}, {xLo, xHi}, {xHi, rect.Max.X}}
	yBounds := [3][2]int{{rect.Min.Y, yLo}, {yLo, yHi}, {yHi, rect.Max.Y}}

	gridColor := color.RGBA{255, 255, 255, 180}
	for x := rect.Min.X; x < rect.Max.X; x++ {
		img.Set(x, yLo, gridColor)
		img.Set(x, yHi, gridColor)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		img.Set(xLo, y, gridColor)
		img.Set(xHi, y, gridColor)
	}

	face := basicfont.Face7x13
	textColor := color.RGBA{255, 255, 80, 255}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			zone := zones.Zones[ZoneOrder[row*3+col]]
			cx := (xBounds[col][0] + xBounds[col][1]) / 2
			cy := (yBounds[row][0] + yBounds[row][1]) / 2
			drawCenteredText(img, face, zone.Label, cx, cy-6, textColor)
			drawCenteredText(img, face, fmt.Sprintf("%.4f", zone.MeanAbsDiff), cx, cy+10, textColor)
		}
	}
}

// drawText draws a string at (x, y) using the given font face.
func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawCenteredText draws a string centered at (cx, cy).
func drawCenteredText(img *image.RGBA, face font.Face, s string, cx, cy int, c color.RGBA) {
	advance := font.MeasureString(face, s)
	drawText(img, face, s, cx-advance.Round()/2, cy, c)
}
