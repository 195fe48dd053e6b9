package calculator

import (
	"gonum.org/v1/gonum/floats"

	"xrdplan/geometry"
	"xrdplan/reference"
)

// Curve is one contour with its display metadata.
type Curve struct {
	Conic
	Visible bool    `json:"visible"`
	Theta   float64 `json:"theta"` // radians
	Units   Units   `json:"units"`
	// Color is the fraction i/N fed to the colormap.
	Color   float64 `json:"color"`
	Text    string  `json:"text"`
	Tooltip string  `json:"tooltip,omitempty"`

	Reflection *reference.Reflection `json:"reflection,omitempty"`
}

// ContourSet holds both contour families.
type ContourSet struct {
	Primary   []Curve `json:"primary"`
	Reference []Curve `json:"reference"`
	UnitLabel string  `json:"unit"`
}

// Generator drives the conic synthesis over the contour families.
type Generator struct {
	plot PlotConfig
	exec executor
}

func NewGenerator(plot PlotConfig) *Generator {
	return &Generator{plot: plot, exec: newExecutor(plot.Workers)}
}

// Angles returns the primary family's half-angles in radians, evenly spaced
// between the configured minimum and maximum.
func (g *Generator) Angles() []float64 {
	lo, hi := deg2rad(g.plot.TThMin), deg2rad(g.plot.TThMax)
	if g.plot.TThNum == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, g.plot.TThNum), lo, hi)
}

// Primary synthesizes the fixed-size primary family. Curves that do not
// reach the viewport keep their slot and are marked invisible.
func (g *Generator) Primary(p Pose, view geometry.Extent, unit Unit) []Curve {
	angles := g.Angles()
	curves := make([]Curve, len(angles))
	g.exec.dispatch(len(angles), func(i int) {
		curves[i] = g.curve(p, angles[i], view, unit)
		curves[i].Color = float64(i) / float64(len(angles))
	})
	return curves
}

// Reference synthesizes one curve per reachable reference d-spacing, up to
// the configured cap. Non-positive and unreachable entries are skipped.
func (g *Generator) Reference(p Pose, view geometry.Extent, unit Unit, ref reference.Reference) []Curve {
	if ref.IsNone() {
		return []Curve{}
	}
	entries := Resolve(ref, p.Energy, g.plot.RefNum)
	curves := make([]Curve, len(entries))
	g.exec.dispatch(len(entries), func(i int) {
		e := entries[i]
		c := g.curve(p, e.Theta, view, unit)
		c.Color = float64(i) / float64(len(entries))
		if e.Reflection != nil {
			c.Reflection = e.Reflection
			c.Tooltip = e.Reflection.Label()
		}
		curves[i] = c
	})
	return curves
}

func (g *Generator) curve(p Pose, theta float64, view geometry.Extent, unit Unit) Curve {
	conic := Synthesize(p, theta, g.plot.Steps, view)
	units := Convert(p.Energy, theta)
	return Curve{
		Conic:   conic,
		Visible: conic.Visible(),
		Theta:   theta,
		Units:   units,
		Text:    unit.Format(units),
	}
}
