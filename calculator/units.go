package calculator

import (
	"errors"
	"fmt"
	"math"
)

// EnergyToWavelength converts photon energy in keV to wavelength in Å.
const EnergyToWavelength = 12.398

var ErrUnknownUnit = errors.New("unknown display unit")

// Wavelength returns the wavelength in Å for a beam energy in keV.
func Wavelength(energy float64) float64 {
	return EnergyToWavelength / energy
}

// Units holds the display values of one scattering angle.
type Units struct {
	TwoTheta float64 `json:"tth"` // degrees
	D        float64 `json:"d"`   // Å
	Q        float64 `json:"q"`   // Å⁻¹
	S        float64 `json:"s"`   // sin(θ)/λ, Å⁻¹
}

// Convert maps the angle between the incident beam and the diffracted ray
// (radians) to the four display units at the given energy.
func Convert(energy, theta float64) Units {
	lambda := Wavelength(energy)
	sin := math.Sin(theta / 2)
	return Units{
		TwoTheta: theta * 180 / math.Pi,
		D:        lambda / (2 * sin),
		Q:        4 * math.Pi * sin / lambda,
		S:        sin / lambda,
	}
}

// ThetaFromD is the inverse of Convert for d-spacings. ok is false when the
// reflection cannot be reached at this energy (λ/2d > 1) or d is not positive.
func ThetaFromD(d, energy float64) (theta float64, ok bool) {
	if d <= 0 || energy <= 0 {
		return 0, false
	}
	ratio := Wavelength(energy) / (2 * d)
	if ratio > 1 {
		return 0, false
	}
	return 2 * math.Asin(ratio), true
}

// Unit selects which display value labels the contours.
type Unit int

const (
	UnitTwoTheta Unit = iota
	UnitD
	UnitQ
	UnitS
)

var unitLabels = [...]string{
	UnitTwoTheta: "2θ [°]",
	UnitD:        "d [Å]",
	UnitQ:        "q [Å⁻¹]",
	UnitS:        "sin(θ)/λ [Å⁻¹]",
}

// ParseUnit validates a unit index.
func ParseUnit(i int) (Unit, error) {
	if i < 0 || i >= len(unitLabels) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownUnit, i)
	}
	return Unit(i), nil
}

// UnitLabels returns the labels of all units, indexed by Unit.
func UnitLabels() []string {
	return append([]string(nil), unitLabels[:]...)
}

// Label returns the axis label of the unit.
func (u Unit) Label() string {
	if u < 0 || int(u) >= len(unitLabels) {
		return ""
	}
	return unitLabels[u]
}

// Value picks the unit's value out of v.
func (u Unit) Value(v Units) float64 {
	switch u {
	case UnitD:
		return v.D
	case UnitQ:
		return v.Q
	case UnitS:
		return v.S
	default:
		return v.TwoTheta
	}
}

// Format renders the unit's value as contour label text.
func (u Unit) Format(v Units) string {
	if u == UnitTwoTheta {
		return fmt.Sprintf("%.1f", v.TwoTheta)
	}
	return fmt.Sprintf("%.2f", u.Value(v))
}
