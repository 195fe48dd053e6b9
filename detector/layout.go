package detector

import (
	"math"

	"xrdplan/geometry"
)

// Layout builds the module mosaic of a detector. Module indices run
// symmetrically around the beam: for an odd module count the center module
// sits on the beam axis, for an even count the beam passes through the
// central gap.
//
// A non-zero bore splits the mosaic into quadrants that are pushed outward
// by half the bore diameter, each quadrant along a direction rotated by 90°
// from its neighbour, leaving a hole at the image center.
func Layout(s Spec) []geometry.Rect {
	hgp, vgp := s.HGapMM(), s.VGapMM()
	hms, vms := s.ModuleWidth, s.ModuleHeight

	rects := make([]geometry.Rect, 0, s.Columns*s.Rows)
	for i := -(s.Columns / 2); i < s.Columns-s.Columns/2; i++ {
		for j := -(s.Rows / 2); j < s.Rows-s.Rows/2; j++ {
			x := float64(i)*(hms+hgp) + hgp/2 - (hms+hgp)/2*float64(s.Columns%2)
			y := float64(j)*(vms+vgp) + vgp/2 - (vms+vgp)/2*float64(s.Rows%2)
			r := geometry.NewRect(x, y, hms, vms)
			if s.Bore != 0 {
				dx, dy := boreOffset(r.Center(), s.Bore)
				r = r.Translate(dx, dy)
			}
			rects = append(rects, r)
		}
	}
	return rects
}

// boreOffset returns the outward shift of the quadrant holding c.
// Modules centered on an axis count as lying on its positive side.
func boreOffset(c geometry.Point, bore float64) (float64, float64) {
	d := math.Abs(bore) / 2
	right, up := c.X >= 0, c.Y >= 0
	if bore > 0 {
		switch {
		case right && up:
			return d, 0
		case !right && up:
			return 0, d
		case !right && !up:
			return -d, 0
		default:
			return 0, -d
		}
	}
	switch {
	case right && up:
		return 0, d
	case !right && up:
		return -d, 0
	case !right && !up:
		return 0, -d
	default:
		return d, 0
	}
}

// Viewport returns the half extents needed to show every module, scaled by
// scale (1 shows the mosaic edge to edge).
func Viewport(rects []geometry.Rect, scale float64) geometry.Extent {
	box := geometry.BoundingBox(rects)
	e := geometry.Extent{
		HalfWidth:  math.Max(math.Abs(box.X), math.Abs(box.X+box.Width)),
		HalfHeight: math.Max(math.Abs(box.Y), math.Abs(box.Y+box.Height)),
	}
	if scale > 0 {
		e.HalfWidth *= scale
		e.HalfHeight *= scale
	}
	return e
}
