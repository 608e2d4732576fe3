package demosaic

import "fmt"

// Pipeline is the processing chain around the engine: level normalization,
// white balance, demosaic, and an optional crop of the uncorrected border.
type Pipeline struct {
	// Black and White are the sensor levels mapped to 0 and 1. A White of
	// zero uses the full range of the frame's bit depth.
	Black float64
	White float64

	Multipliers   Multipliers
	Reconstructor Reconstructor

	// Crop removes Border cells from every edge of the result.
	Crop bool
}

// Run develops one raw frame. The frame is not modified.
func (p *Pipeline) Run(frame *RawFrame) (*Image, error) {
	if p.Reconstructor == nil {
		return nil, fmt.Errorf("pipeline has no reconstructor")
	}
	white := p.White
	if white == 0 {
		white = WhiteLevel(frame.BitDepth)
	}
	m, err := Normalize(frame.Mosaic, p.Black, white)
	if err != nil {
		return nil, err
	}
	wb := p.Multipliers
	if wb == (Multipliers{}) {
		wb = Unity
	}
	if m, err = WhiteBalance(m, wb); err != nil {
		return nil, err
	}

	img, err := Demosaic(m, p.Reconstructor)
	if err != nil {
		return nil, err
	}
	if p.Crop {
		return img.Crop(Border)
	}
	return img, nil
}
