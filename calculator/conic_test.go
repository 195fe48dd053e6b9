package calculator

import (
	"math"
	"testing"

	"xrdplan/geometry"
)

var eiger4M = geometry.Extent{HalfWidth: 78.5, HalfHeight: 78.2}

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// coneResidual is zero when pt lies on the cone of half-angle theta around
// the beam, for the detector under pose p.
func coneResidual(p Pose, theta float64, pt geometry.Point) float64 {
	omega := Omega(p)
	xf := pt.X - p.XOffset
	yf := pt.Y + p.YOffset - rad(p.Tilt)*p.Distance
	dot := yf*math.Sin(omega) + p.Distance*math.Cos(omega)
	return dot/math.Sqrt(xf*xf+yf*yf+p.Distance*p.Distance) - math.Cos(theta)
}

func TestCircleWhenUntilted(t *testing.T) {
	view := geometry.Extent{HalfWidth: 100, HalfHeight: 100}
	for _, deg := range []float64{2, 10, 25, 40, 50} {
		p := Pose{Energy: 21, Distance: 75}
		theta := rad(deg)
		c := Synthesize(p, theta, 100, view)
		if c.Type != Circle {
			t.Fatalf("theta %g: type %v want circle", deg, c.Type)
		}
		if e := Eccentricity(Omega(p), theta); e != 0 {
			t.Fatalf("theta %g: ecc %g", deg, e)
		}
		r := p.Distance * math.Tan(theta)
		for _, pt := range c.Points() {
			if math.Abs(math.Hypot(pt.X, pt.Y)-r) > 1e-9 {
				t.Fatalf("theta %g: point %+v off circle of radius %g", deg, pt, r)
			}
		}
	}
}

func TestCircleFollowsBeamOffset(t *testing.T) {
	p := Pose{Energy: 21, Distance: 100, XOffset: 12, YOffset: 7}
	c := Synthesize(p, rad(15), 100, geometry.Extent{HalfWidth: 100, HalfHeight: 100})
	if c.Type != Circle {
		t.Fatalf("type %v", c.Type)
	}
	r := p.Distance * math.Tan(rad(15))
	center := geometry.Pt(12, -7)
	for _, pt := range c.Points() {
		if math.Abs(pt.Distance(center)-r) > 1e-9 {
			t.Fatalf("point %+v not on circle around %+v", pt, center)
		}
	}
}

func TestCircleOutOfView(t *testing.T) {
	view := geometry.Extent{HalfWidth: 10, HalfHeight: 10}
	c := Synthesize(Pose{Energy: 21, Distance: 500}, rad(40), 100, view)
	if c.Visible() || len(c.Arcs) != 0 {
		t.Fatalf("circle enclosing the viewport should not be visible: %v", c.Type)
	}
}

func TestBackscatterLimit(t *testing.T) {
	for _, rota := range []float64{0, 10, 25, -30} {
		p := Pose{Energy: 21, Distance: 75, Rotation: rota}
		limit := math.Pi/2 + math.Abs(Omega(p))
		for _, theta := range []float64{limit + 1e-6, limit + 0.1, math.Pi} {
			if c := Synthesize(p, theta, 100, eiger4M); c.Visible() {
				t.Fatalf("rota %g theta %g: got %v", rota, theta, c.Type)
			}
		}
	}
}

func TestScenarioEllipse(t *testing.T) {
	p := Pose{Energy: 21, Distance: 75, Rotation: 25}
	c := Synthesize(p, rad(10), 100, eiger4M)
	if c.Type != Ellipse {
		t.Fatalf("type %v want ellipse", c.Type)
	}
	pts := c.Points()
	if len(pts) == 0 {
		t.Fatal("no points")
	}
	maxY := math.Inf(-1)
	for _, pt := range pts {
		maxY = math.Max(maxY, pt.Y)
	}
	if c.Label.Y != maxY {
		t.Fatalf("label y %g want max y %g", c.Label.Y, maxY)
	}
}

func TestScenarioBeyondBackscatter(t *testing.T) {
	p := Pose{Energy: 21, Distance: 75, Rotation: 25}
	if c := Synthesize(p, rad(170), 100, eiger4M); c.Visible() {
		t.Fatalf("theta 170: got %v", c.Type)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		ecc  float64
		want ConicType
	}{
		{0, Circle},
		{0.3, Ellipse},
		{-0.9999, Ellipse},
		{1, Parabola},
		{-1, Parabola},
		{1.0001, Hyperbola},
		{-99.99, Hyperbola},
		{100, Line},
		{-100, Line},
		{1e6, Line},
		{math.NaN(), None},
		{math.Inf(1), None},
	}
	for _, tc := range tests {
		if got := Classify(tc.ecc); got != tc.want {
			t.Fatalf("Classify(%g) = %v want %v", tc.ecc, got, tc.want)
		}
	}
}

func TestClassifyExhaustive(t *testing.T) {
	for om := -80.0; om <= 80; om += 2.5 {
		for th := 0.0; th < 180; th += 0.5 {
			ecc := Eccentricity(rad(om), rad(th))
			if !finite(ecc) {
				continue
			}
			if Classify(ecc) == None {
				t.Fatalf("omega %g theta %g: finite ecc %g unclassified", om, th, ecc)
			}
		}
	}
	// float noise at omega = 0 must not leave the circle branch
	if e := Eccentricity(0, rad(33)); e != 0 {
		t.Fatalf("ecc at omega 0: %g", e)
	}
}

func TestParabola(t *testing.T) {
	// omega = -30°, theta = 60°: the cone edge runs parallel to the detector
	p := Pose{Energy: 21, Distance: 75, Rotation: 30}
	view := geometry.Extent{HalfWidth: 100, HalfHeight: 100}
	c := Synthesize(p, rad(60), 101, view)
	if c.Type != Parabola {
		t.Fatalf("type %v want parabola", c.Type)
	}
	vertex := p.Distance * math.Tan(rad(30))
	if math.Abs(c.Label.Y-vertex) > 1e-9 || math.Abs(c.Label.X) > 1e-9 {
		t.Fatalf("label %+v want vertex (0, %g)", c.Label, vertex)
	}
}

func TestHyperbolaAndLine(t *testing.T) {
	p := Pose{Energy: 21, Distance: 75, Rotation: 30}
	view := geometry.Extent{HalfWidth: 100, HalfHeight: 100}
	if c := Synthesize(p, rad(80), 101, view); c.Type != Hyperbola {
		t.Fatalf("theta 80: type %v want hyperbola", c.Type)
	}
	// the flat cone meets the detector 130 mm above the beam
	view = geometry.Extent{HalfWidth: 200, HalfHeight: 200}
	c := Synthesize(p, math.Pi/2-1e-4, 101, view)
	if c.Type != Line {
		t.Fatalf("theta ~90: type %v want line", c.Type)
	}
	pts := c.Points()
	if len(pts) != 2 || pts[0].Y != pts[1].Y {
		t.Fatalf("line should be one horizontal segment: %+v", pts)
	}
	if math.Abs(pts[0].X) < view.HalfWidth || math.Abs(pts[0].Y-75/math.Tan(rad(30))) > 0.1 {
		t.Fatalf("line should span the viewport: %+v", pts)
	}
}

func TestPointsLieOnCone(t *testing.T) {
	view := geometry.Extent{HalfWidth: 80, HalfHeight: 80}
	seen := map[ConicType]bool{}
	for rota := -60.0; rota <= 60; rota += 5 {
		for _, tilt := range []float64{-10, 0, 10} {
			p := Pose{Energy: 21, Distance: 75, Rotation: rota, Tilt: tilt, YOffset: 3, XOffset: -4}
			for th := 0.5; th < 150; th += 0.5 {
				theta := rad(th)
				c := Synthesize(p, theta, 101, view)
				seen[c.Type] = true
				if c.Type == None || c.Type == Line {
					continue
				}
				for _, pt := range c.Points() {
					if r := coneResidual(p, theta, pt); math.Abs(r) > 1e-9 {
						t.Fatalf("rota %g tilt %g theta %g %v: point %+v residual %g", rota, tilt, th, c.Type, pt, r)
					}
				}
			}
		}
	}
	for _, kind := range []ConicType{Circle, Ellipse, Parabola, Hyperbola, Line, None} {
		if !seen[kind] {
			t.Fatalf("sweep never produced %v", kind)
		}
	}
}

func TestWideEllipseSplitsIntoArcs(t *testing.T) {
	// narrow viewport, the ellipse crosses both vertical edges
	view := geometry.Extent{HalfWidth: 5, HalfHeight: 100}
	p := Pose{Energy: 21, Distance: 75, Rotation: 10}
	c := Synthesize(p, rad(30), 100, view)
	if c.Type != Ellipse {
		t.Fatalf("type %v", c.Type)
	}
	if len(c.Arcs) != 2 {
		t.Fatalf("got %d arcs want 2", len(c.Arcs))
	}
	clip := view.Inflate(ViewportMargin)
	for _, arc := range c.Arcs {
		for _, pt := range arc {
			if math.Abs(pt.X) > clip.HalfWidth+1e-9 {
				t.Fatalf("arc point %+v outside clip width", pt)
			}
		}
	}
}

func TestLabelSide(t *testing.T) {
	view := geometry.Extent{HalfWidth: 200, HalfHeight: 200}
	// omega > 0, forward: label on the lowest point
	p := Pose{Energy: 21, Distance: 75, Rotation: -20}
	c := Synthesize(p, rad(15), 100, view)
	if c.Type != Ellipse {
		t.Fatalf("forward cone: type %v", c.Type)
	}
	for _, pt := range c.Points() {
		if pt.Y < c.Label.Y {
			t.Fatalf("label %+v is not the lowest point", c.Label)
		}
	}
	// omega > 0, backward: label on the highest point
	p = Pose{Energy: 21, Distance: 75, Rotation: -40}
	c = Synthesize(p, rad(100), 100, view)
	if !c.Visible() {
		t.Fatal("backward hyperbola should be visible")
	}
	for _, pt := range c.Points() {
		if pt.Y > c.Label.Y {
			t.Fatalf("label %+v is not the highest point", c.Label)
		}
	}
}

func TestDegenerateInput(t *testing.T) {
	p := Pose{Energy: 21, Distance: 75, Rotation: 25}
	for _, theta := range []float64{math.NaN(), -0.1, math.Inf(1)} {
		if c := Synthesize(p, theta, 100, eiger4M); c.Visible() {
			t.Fatalf("theta %g: got %v", theta, c.Type)
		}
	}
}
