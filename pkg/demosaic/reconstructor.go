package demosaic

import (
	"fmt"
	"strings"
)

// Reconstructor fills the missing samples of three sparse planes produced by
// Split. Implementations never modify their inputs and return fresh planes.
type Reconstructor interface {
	Name() string
	Reconstruct(r, g, b *Plane) (*Plane, *Plane, *Plane, error)
}

const (
	MethodBilinear = "bilinear"
	MethodGradient = "gradient"
)

// Methods lists the names NewReconstructor accepts.
var Methods = []string{MethodBilinear, MethodGradient}

// NewReconstructor returns the strategy registered under method. The gradient
// strategy falls back to bilinear for cells it cannot classify.
func NewReconstructor(method string, workers int) (Reconstructor, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case MethodBilinear:
		return &Bilinear{Workers: workers}, nil
	case MethodGradient, "gradient-corrected", "malvar":
		return &GradientCorrected{
			Workers:  workers,
			Fallback: &Bilinear{Workers: workers},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownMethod, method, strings.Join(Methods, ", "))
	}
}

// Demosaic splits m, reconstructs it with rec and assembles the result.
func Demosaic(m *Mosaic, rec Reconstructor) (*Image, error) {
	r, g, b, err := Split(m)
	if err != nil {
		return nil, err
	}
	r, g, b, err = rec.Reconstruct(r, g, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Name(), err)
	}
	return Assemble(r, g, b)
}
