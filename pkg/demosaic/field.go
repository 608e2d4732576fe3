package demosaic

import (
	"fmt"
	"math"
	"sort"
)

const (
	fieldEdgeFraction = 0.25
	minSamplesPerZone = 16
)

// ZonePosition identifies a zone in the 3x3 field grid.
type ZonePosition int

const (
	ZoneTopLeft ZonePosition = iota
	ZoneTop
	ZoneTopRight
	ZoneLeft
	ZoneCenter
	ZoneRight
	ZoneBottomLeft
	ZoneBottom
	ZoneBottomRight
)

// ZoneOrder lists the zones row by row.
var ZoneOrder = []ZonePosition{
	ZoneTopLeft, ZoneTop, ZoneTopRight,
	ZoneLeft, ZoneCenter, ZoneRight,
	ZoneBottomLeft, ZoneBottom, ZoneBottomRight,
}

var zoneLabels = map[ZonePosition]string{
	ZoneTopLeft:     "TL",
	ZoneTop:         "T",
	ZoneTopRight:    "TR",
	ZoneLeft:        "L",
	ZoneCenter:      "Center",
	ZoneRight:       "R",
	ZoneBottomLeft:  "BL",
	ZoneBottom:      "B",
	ZoneBottomRight: "BR",
}

func (z ZonePosition) String() string { return zoneLabels[z] }

// ZoneData holds the disagreement between two reconstructions in one zone.
type ZoneData struct {
	Label string
	// ChannelMeanAbsDiff is indexed by Channel.
	ChannelMeanAbsDiff [3]float64
	MeanAbsDiff        float64
	MedianAbsDiff      float64
	Samples            int
}

// ZoneComparison is the 3x3 field breakdown of |a - b| over cells sampled in
// both images.
type ZoneComparison struct {
	Zones       map[ZonePosition]ZoneData
	MeanAbsDiff float64
	// OffAxisPct compares the mean of the outer zones to the center.
	OffAxisPct float64
	BestZone   string
	WorstZone  string
	Reliable   bool
}

// CompareZones measures where two reconstructions of the same mosaic differ.
func CompareZones(a, b *Image) (*ZoneComparison, error) {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.Rows, a.Cols, b.Rows, b.Cols)
	}

	xLo := float64(a.Cols) * fieldEdgeFraction
	xHi := float64(a.Cols) * (1.0 - fieldEdgeFraction)
	yLo := float64(a.Rows) * fieldEdgeFraction
	yHi := float64(a.Rows) * (1.0 - fieldEdgeFraction)

	type acc struct {
		chanSum   [3]float64
		chanCount [3]int
		diffs     []float64
	}
	accs := make(map[ZonePosition]*acc, len(ZoneOrder))
	for _, pos := range ZoneOrder {
		accs[pos] = &acc{}
	}

	var total float64
	var totalCount int
	for y := 0; y < a.Rows; y++ {
		for x := 0; x < a.Cols; x++ {
			z := accs[classifyZone(float64(x), float64(y), xLo, xHi, yLo, yHi)]
			base := 3 * (y*a.Cols + x)
			for c := 0; c < 3; c++ {
				i := base + c
				if !a.Known[i] || !b.Known[i] {
					continue
				}
				d := math.Abs(a.Pix[i] - b.Pix[i])
				z.chanSum[c] += d
				z.chanCount[c]++
				z.diffs = append(z.diffs, d)
				total += d
				totalCount++
			}
		}
	}

	result := &ZoneComparison{Zones: make(map[ZonePosition]ZoneData, len(ZoneOrder))}
	if totalCount > 0 {
		result.MeanAbsDiff = total / float64(totalCount)
	}

	result.Reliable = true
	bestVal, worstVal := math.MaxFloat64, -1.0
	var offAxisSum float64
	offAxisCount := 0
	for _, pos := range ZoneOrder {
		z := accs[pos]
		zd := ZoneData{Label: zoneLabels[pos], Samples: len(z.diffs)}
		var sum float64
		for c := 0; c < 3; c++ {
			if z.chanCount[c] > 0 {
				zd.ChannelMeanAbsDiff[c] = z.chanSum[c] / float64(z.chanCount[c])
			}
			sum += z.chanSum[c]
		}
		if zd.Samples > 0 {
			zd.MeanAbsDiff = sum / float64(zd.Samples)
			zd.MedianAbsDiff = medianFloat64(z.diffs)
		}
		result.Zones[pos] = zd

		if zd.Samples < minSamplesPerZone {
			result.Reliable = false
			continue
		}
		if zd.MeanAbsDiff < bestVal {
			bestVal = zd.MeanAbsDiff
			result.BestZone = zd.Label
		}
		if zd.MeanAbsDiff > worstVal {
			worstVal = zd.MeanAbsDiff
			result.WorstZone = zd.Label
		}
		if pos != ZoneCenter {
			offAxisSum += zd.MeanAbsDiff
			offAxisCount++
		}
	}

	center := result.Zones[ZoneCenter].MeanAbsDiff
	if offAxisCount > 0 && center > 0 {
		result.OffAxisPct = (offAxisSum/float64(offAxisCount) - center) / center * 100.0
	}
	return result, nil
}

func classifyZone(x, y, xLo, xHi, yLo, yHi float64) ZonePosition {
	var col, row int
	if x < xLo {
		col = 0
	} else if x < xHi {
		col = 1
	} else {
		col = 2
	}
	if y < yLo {
		row = 0
	} else if y < yHi {
		row = 1
	} else {
		row = 2
	}
	return ZoneOrder[row*3+col]
}

func medianFloat64(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2.0
	}
	return sorted[n/2]
}
