package calculator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"xrdplan/geometry"
)

const (
	// EccentricityDecimals is the rounding applied before classification so
	// that float noise at exact boundaries does not flip the branch.
	EccentricityDecimals = 10
	// LineEccentricity is where the hyperbola degenerates into a line.
	LineEccentricity = 100
	// ViewportMargin inflates the viewport for the visibility check.
	ViewportMargin = 0.05
)

// ConicType is the shape of a cone/detector-plane intersection.
type ConicType int

const (
	None ConicType = iota
	Circle
	Ellipse
	Parabola
	Hyperbola
	Line
)

var conicNames = [...]string{
	None:      "none",
	Circle:    "circle",
	Ellipse:   "ellipse",
	Parabola:  "parabola",
	Hyperbola: "hyperbola",
	Line:      "line",
}

func (t ConicType) String() string {
	if t < 0 || int(t) >= len(conicNames) {
		return "unknown"
	}
	return conicNames[t]
}

// MarshalText encodes the type by name.
func (t ConicType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Conic is the visible part of one cone intersection. Each arc is an open
// polyline; separate arcs must not be joined when drawn.
type Conic struct {
	Type  ConicType          `json:"type"`
	Arcs  [][]geometry.Point `json:"arcs,omitempty"`
	Label geometry.Point     `json:"label"`
}

// Visible reports whether the conic has anything to draw.
func (c Conic) Visible() bool {
	return c.Type != None
}

// Points returns all arc points in order.
func (c Conic) Points() []geometry.Point {
	var n int
	for _, arc := range c.Arcs {
		n += len(arc)
	}
	pts := make([]geometry.Point, 0, n)
	for _, arc := range c.Arcs {
		pts = append(pts, arc...)
	}
	return pts
}

// Omega is the cone-axis deflection in radians combining detector tilt and
// rotation.
func Omega(p Pose) float64 {
	return -deg2rad(p.Tilt + p.Rotation)
}

// Eccentricity returns the rounded eccentricity of the conic cut by a cone of
// half-angle theta from a plane deflected by omega.
func Eccentricity(omega, theta float64) float64 {
	return roundTo(math.Cos(math.Pi/2-omega)/math.Cos(theta), EccentricityDecimals)
}

// Classify maps an eccentricity to exactly one conic type. Non-finite input
// is None.
func Classify(ecc float64) ConicType {
	a := math.Abs(ecc)
	switch {
	case math.IsNaN(a) || math.IsInf(a, 0):
		return None
	case a == 0:
		return Circle
	case a < 1:
		return Ellipse
	case a == 1:
		return Parabola
	case a < LineEccentricity:
		return Hyperbola
	default:
		return Line
	}
}

// Synthesize intersects the cone of half-angle theta (radians) with the
// detector plane under pose p and samples the part visible in view using
// roughly steps points. Degenerate and out-of-view cones yield a None conic.
func Synthesize(p Pose, theta float64, steps int, view geometry.Extent) Conic {
	omega := Omega(p)
	// NaN fails the first comparison
	if !(theta >= 0) || theta > math.Pi/2+math.Abs(omega) {
		return Conic{}
	}
	if steps < 2 {
		steps = 2
	}

	ct := math.Cos(theta)
	if ct == 0 {
		return Conic{}
	}
	st := math.Sin(theta)
	dyCone := p.Distance * math.Tan(omega)
	dzCone := math.Hypot(p.Distance, dyCone)
	compTilt := deg2rad(p.Tilt) * p.Distance
	y1 := dzCone * st / math.Cos(omega+theta)
	y2 := dzCone * st / math.Cos(omega-theta)

	x0 := p.XOffset
	y0 := dyCone - p.YOffset + compTilt
	clip := view.Inflate(ViewportMargin)

	ecc := Eccentricity(omega, theta)
	kind := Classify(ecc)
	if kind != Parabola && !(finite(y1) && finite(y2)) {
		return Conic{}
	}

	var arcs [][]geometry.Point
	switch kind {
	case Circle:
		r := (y1 + y2) / 2
		center := geometry.Pt(x0, y0+(y1-y2)/2)
		if math.Abs(center.Distance(geometry.Point{})-r) > view.Diagonal() {
			return Conic{}
		}
		arcs = [][]geometry.Point{ellipseArc(center, r, r, 0, 2*math.Pi, steps)}
	case Ellipse:
		h := (y1 + y2) / 2
		w := dzCone * st * (y1 + y2) / (2 * math.Sqrt(y1*y2) * ct)
		center := geometry.Pt(x0, y0+(y1-y2)/2)
		arcs = ellipseArcs(center, w, h, clip, steps)
	case Parabola:
		arcs = [][]geometry.Point{parabola(p, omega, theta, ecc, y0-dyCone, clip, steps)}
	case Hyperbola:
		a := math.Abs(y1+y2) / 2
		b := dzCone * st * math.Abs(y1+y2) / (2 * math.Sqrt(math.Abs(y1*y2)) * math.Abs(ct))
		center := geometry.Pt(x0, y0+(y1-y2)/2)
		arcs = [][]geometry.Point{hyperbola(center, a, b, sign(ecc), clip, steps)}
	case Line:
		y := y0 + sign(-ecc)*math.Min(math.Abs(y1), math.Abs(y2))
		arcs = [][]geometry.Point{{geometry.Pt(-clip.HalfWidth, y), geometry.Pt(clip.HalfWidth, y)}}
	default:
		return Conic{}
	}

	arcs = dropNonFinite(arcs)
	if !anyInside(arcs, clip) {
		return Conic{}
	}
	return Conic{Type: kind, Arcs: arcs, Label: labelAnchor(arcs, omega, theta)}
}

// ellipseArcs samples the full ellipse, or, when it spans past both the left
// and right edge of the viewport, only the upper and lower arcs inside it.
func ellipseArcs(center geometry.Point, w, h float64, clip geometry.Extent, steps int) [][]geometry.Point {
	lo, hi := (-clip.HalfWidth-center.X)/w, (clip.HalfWidth-center.X)/w
	if lo <= -1 || hi >= 1 {
		return [][]geometry.Point{ellipseArc(center, w, h, 0, 2*math.Pi, steps)}
	}
	a1, a2 := math.Asin(lo), math.Asin(hi)
	n := max(steps/2, 2)
	return [][]geometry.Point{
		ellipseArc(center, w, h, a1, a2, n),
		ellipseArc(center, w, h, math.Pi-a2, math.Pi-a1, n),
	}
}

// ellipseArc samples x = cx + w·sin(t), y = cy + h·cos(t) for t in [t0, t1].
func ellipseArc(center geometry.Point, w, h, t0, t1 float64, n int) []geometry.Point {
	ts := floats.Span(make([]float64, n), t0, t1)
	pts := make([]geometry.Point, n)
	for i, t := range ts {
		pts[i] = geometry.Pt(center.X+w*math.Sin(t), center.Y+h*math.Cos(t))
	}
	return pts
}

// parabola samples y = vertex + x²·tan(ω)/(2·distance) across the viewport
// width. yShift moves foot-of-detector coordinates into viewport coordinates.
func parabola(p Pose, omega, theta, ecc, yShift float64, clip geometry.Extent, n int) []geometry.Point {
	yd := sign(ecc) * p.Distance * math.Tan(math.Abs(omega)-theta)
	k := math.Tan(omega) / (2 * p.Distance)
	ts := floats.Span(make([]float64, n), -clip.HalfWidth-p.XOffset, clip.HalfWidth-p.XOffset)
	pts := make([]geometry.Point, n)
	for i, t := range ts {
		pts[i] = geometry.Pt(p.XOffset+t, yShift+yd+k*t*t)
	}
	return pts
}

// hyperbola samples one branch, opening in direction dir, across the
// viewport width.
func hyperbola(center geometry.Point, a, b, dir float64, clip geometry.Extent, n int) []geometry.Point {
	u0 := math.Asinh((-clip.HalfWidth - center.X) / b)
	u1 := math.Asinh((clip.HalfWidth - center.X) / b)
	us := floats.Span(make([]float64, n), u0, u1)
	pts := make([]geometry.Point, n)
	for i, u := range us {
		pts[i] = geometry.Pt(center.X+b*math.Sinh(u), center.Y+dir*a*math.Cosh(u))
	}
	return pts
}

func dropNonFinite(arcs [][]geometry.Point) [][]geometry.Point {
	kept := arcs[:0]
	for _, arc := range arcs {
		pts := arc[:0]
		for _, pt := range arc {
			if finite(pt.X) && finite(pt.Y) {
				pts = append(pts, pt)
			}
		}
		if len(pts) > 0 {
			kept = append(kept, pts)
		}
	}
	return kept
}

func anyInside(arcs [][]geometry.Point, clip geometry.Extent) bool {
	for _, arc := range arcs {
		for _, pt := range arc {
			if clip.Contains(pt) {
				return true
			}
		}
	}
	return false
}

// labelAnchor picks the point with the largest y when the curve faces up
// (omega <= 0 forward, omega > 0 backward) and the smallest y otherwise.
func labelAnchor(arcs [][]geometry.Point, omega, theta float64) geometry.Point {
	var pts []geometry.Point
	var ys []float64
	for _, arc := range arcs {
		for _, pt := range arc {
			pts = append(pts, pt)
			ys = append(ys, pt.Y)
		}
	}
	if (omega <= 0 && theta < math.Pi/2) || (omega > 0 && theta >= math.Pi/2) {
		return pts[floats.MaxIdx(ys)]
	}
	return pts[floats.MinIdx(ys)]
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
