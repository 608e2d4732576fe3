package demosaic

// Channel identifies one of the three reconstructed color planes.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Channels lists the planes in output order.
var Channels = [3]Channel{Red, Green, Blue}

func (c Channel) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	default:
		return "Unknown"
	}
}

// Pattern names the color filter array this package is built for.
const Pattern = "RGGB"

// rggb is indexed by [row&1][col&1].
//
//	(even row, even col) = R
//	(even row, odd  col) = G  (Gr)
//	(odd  row, even col) = G  (Gb)
//	(odd  row, odd  col) = B
var rggb = [2][2]Channel{
	{Red, Green},
	{Green, Blue},
}

// ColorAt returns the color sampled by the sensor cell at (row, col).
// Every component that needs the CFA geometry goes through here.
func ColorAt(row, col int) Channel {
	return rggb[row&1][col&1]
}
