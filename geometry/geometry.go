// Package geometry provides the detector-plane point and rectangle types.
// All coordinates are millimeters in the detector plane, origin at the
// viewport center, x to the right and y up.
package geometry

import "math"

// Point is a point in the detector plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Rect is an axis aligned rectangle given by its origin (lower left corner)
// and size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Extent is the half-width and half-height of a rectangle centered on the origin.
type Extent struct {
	HalfWidth  float64 `json:"half_width"`
	HalfHeight float64 `json:"half_height"`
}

// Inflate returns the extent grown by the given fraction on both axes.
func (e Extent) Inflate(fraction float64) Extent {
	return Extent{HalfWidth: e.HalfWidth * (1 + fraction), HalfHeight: e.HalfHeight * (1 + fraction)}
}

// Contains reports whether p lies inside the extent, edges included.
func (e Extent) Contains(p Point) bool {
	return math.Abs(p.X) <= e.HalfWidth && math.Abs(p.Y) <= e.HalfHeight
}

// Diagonal returns the distance from the origin to a corner.
func (e Extent) Diagonal() float64 {
	return math.Hypot(e.HalfWidth, e.HalfHeight)
}

// BoundingBox computes the axis-aligned bounding box of a set of rectangles.
func BoundingBox(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].X+rects[0].Width, rects[0].Y+rects[0].Height
	for _, r := range rects[1:] {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.X+r.Width)
		maxY = math.Max(maxY, r.Y+r.Height)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
