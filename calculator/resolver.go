package calculator

import "xrdplan/reference"

// Resolved is a reference entry reachable at the current energy.
type Resolved struct {
	Index      int     // position in the reference list
	D          float64 // Å
	Theta      float64 // radians
	Reflection *reference.Reflection
}

// Resolve converts the first limit d-spacings of ref into cone half-angles at
// the given energy. Placeholder (non-positive) entries and reflections out of
// reach at this energy are left out. The empty reference resolves to nothing.
func Resolve(ref reference.Reference, energy float64, limit int) []Resolved {
	n := min(len(ref.DSpacings), max(limit, 0))
	out := make([]Resolved, 0, n)
	for i, d := range ref.DSpacings[:n] {
		theta, ok := ThetaFromD(d, energy)
		if !ok {
			continue
		}
		r := Resolved{Index: i, D: d, Theta: theta}
		if payload, ok := ref.Payload(i); ok {
			r.Reflection = &payload
		}
		out = append(out, r)
	}
	return out
}
