package calculator

import (
	"errors"
	"fmt"
	"math"
)

// Pose field tokens as sent by the input controls.
const (
	TokenEnergy   = "ener"
	TokenDistance = "dist"
	TokenRotation = "rota"
	TokenTilt     = "tilt"
	TokenYOffset  = "yoff"
	TokenXOffset  = "xoff"
)

// Tokens lists every pose token.
var Tokens = []string{TokenEnergy, TokenDistance, TokenRotation, TokenTilt, TokenYOffset, TokenXOffset}

var (
	ErrUnknownToken = errors.New("unknown pose token")
	ErrInvalidPose  = errors.New("invalid pose")
)

// Pose is the detector position relative to the sample and the beam energy.
type Pose struct {
	Energy   float64 `json:"ener"` // keV
	Distance float64 `json:"dist"` // mm
	Rotation float64 `json:"rota"` // degrees
	Tilt     float64 `json:"tilt"` // degrees
	YOffset  float64 `json:"yoff"` // mm
	XOffset  float64 `json:"xoff"` // mm
}

// With returns a copy of p with the field named by token replaced.
func (p Pose) With(token string, value float64) (Pose, error) {
	switch token {
	case TokenEnergy:
		p.Energy = value
	case TokenDistance:
		p.Distance = value
	case TokenRotation:
		p.Rotation = value
	case TokenTilt:
		p.Tilt = value
	case TokenYOffset:
		p.YOffset = value
	case TokenXOffset:
		p.XOffset = value
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}
	return p, p.Validate()
}

// Validate rejects poses the geometry cannot be evaluated for.
func (p Pose) Validate() error {
	switch {
	case !(p.Energy > 0):
		return fmt.Errorf("%w: energy %g keV", ErrInvalidPose, p.Energy)
	case !(p.Distance > 0):
		return fmt.Errorf("%w: distance %g mm", ErrInvalidPose, p.Distance)
	}
	for _, v := range []float64{p.Rotation, p.Tilt, p.YOffset, p.XOffset} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite field", ErrInvalidPose)
		}
	}
	return nil
}

// Limit bounds one pose field in the input controls.
type Limit struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"stp"`
}

// Clamp limits v to [Min, Max] and snaps it to the step grid starting at Min.
func (l Limit) Clamp(v float64) float64 {
	v = math.Max(l.Min, math.Min(l.Max, v))
	if l.Step > 0 {
		v = l.Min + math.Round((v-l.Min)/l.Step)*l.Step
		v = math.Min(l.Max, v)
	}
	return v
}
